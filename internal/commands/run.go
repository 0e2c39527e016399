package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/flujo-dev/flujo/internal/gitops"
	"github.com/flujo-dev/flujo/internal/logger"
	"github.com/flujo-dev/flujo/internal/model"
	"github.com/flujo-dev/flujo/internal/period"
	"github.com/flujo-dev/flujo/internal/pipeline"
	"github.com/flujo-dev/flujo/internal/report"
	"github.com/flujo-dev/flujo/internal/runlog"
)

// export writes res to path and appends the run log. It returns the files
// written, relative to the project root where possible.
func (p *project) export(command string, in pipeline.Inputs, res *pipeline.Result, path string) ([]string, error) {
	written, err := report.Save(path, res.Tables()...)
	if err != nil {
		return nil, fmt.Errorf("writing export: %w", err)
	}
	rel := make([]string, len(written))
	for i, w := range written {
		rel[i] = p.rel(w)
	}

	entry := res.LogEntry(command, in, rel[0])
	entry.RunID = runlog.NewRunID()
	entry.Timestamp = time.Now().UTC()
	entry.Statement = p.rel(in.Statement)
	if in.Projection != "" {
		entry.Projection = p.rel(in.Projection)
	}
	if err := runlog.Append(p.Root, []runlog.Entry{entry}); err != nil {
		return nil, fmt.Errorf("writing run log: %w", err)
	}
	log := logger.WithFields(p.Log, map[string]any{"run_id": entry.RunID, "command": command})
	log.Debug().Strs("files", rel).Msg("run recorded")
	return rel, nil
}

// shouldCommit honors an explicit --commit, and otherwise git.auto_commit
// when the project is a git repository.
func (p *project) shouldCommit(cmd *cobra.Command, flag bool) (bool, error) {
	isRepo := gitops.IsRepo(p.Root)
	if cmd.Flags().Changed("commit") {
		if flag && !isRepo {
			return false, fmt.Errorf("--commit: %s: %w", p.Root, errNotRepo)
		}
		return flag, nil
	}
	return p.Config.Git.AutoCommit && isRepo, nil
}

func (p *project) commit(message string, paths []string) (string, error) {
	author := gitops.Author{Name: p.Config.Git.AuthorName, Email: p.Config.Git.AuthorEmail}
	var inside []string
	for _, path := range paths {
		// Exports written outside the project are not versioned.
		if !outsideRoot(path) {
			inside = append(inside, path)
		}
	}
	return gitops.CommitPaths(p.Root, message, author, append(inside, runlog.File)...)
}

// outsideRoot reports whether a path returned by project.rel points outside
// the project.
func outsideRoot(rel string) bool {
	return filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func printUnprojected(w io.Writer, aggs []model.Aggregate) {
	if len(aggs) == 0 {
		return
	}
	total := decimal.Zero
	for _, a := range aggs {
		total = total.Add(a.Net)
	}
	fmt.Fprintf(w, "Activity without projection: %d buckets, net %s\n", len(aggs), total.StringFixed(2))
}

func printCoverage(w io.Writer, res *pipeline.Result) {
	cov := res.Coverage
	fmt.Fprintf(w, "Classified %d of %d rows (%s%%)", cov.Classified, cov.Total, cov.Percent.StringFixed(2))
	if !cov.Cutoff.IsZero() {
		fmt.Fprintf(w, " up to %s", cov.Cutoff.Format(period.DateLayout))
	}
	fmt.Fprintln(w)
	if n := res.StatementStats.Anomalies(); n > 0 {
		fmt.Fprintf(w, "Unreadable values: %d\n", n)
	}
	s := res.Summary
	fmt.Fprintf(w, "Credits %s  Debits %s  Net %s\n", s.Credits.StringFixed(2), s.Debits.StringFixed(2), s.Net.StringFixed(2))
	if s.Difference != nil {
		fmt.Fprintf(w, "Closing balance %s, statement %s (difference %s)\n",
			s.ComputedClosing.StringFixed(2), s.StatementBalance.StringFixed(2), s.Difference.StringFixed(2))
	}
}

var severityColors = map[model.Severity]*color.Color{
	model.SeverityOK:        color.New(color.FgGreen),
	model.SeverityAttention: color.New(color.FgYellow),
	model.SeverityCritical:  color.New(color.FgRed, color.Bold),
}

func severity(s model.Severity) string {
	if c, ok := severityColors[s]; ok {
		return c.Sprint(string(s))
	}
	return string(s)
}

func printEvaluations(w io.Writer, evals []model.MonthlyEvaluation) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "MONTH\tPROJECTED\tACTUAL\tVARIANCE\tSEVERITY\tELAPSED\tADJ PROJECTED\tADJ VARIANCE\tADJ SEVERITY\t")
	for _, e := range evals {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			period.FormatMonth(e.Month),
			e.Projected.StringFixed(2),
			e.Actual.StringFixed(2),
			e.Variance.StringFixed(2),
			severity(e.Severity),
			e.Elapsed.StringFixed(4),
			e.AdjustedProjected.StringFixed(2),
			e.AdjustedVariance.StringFixed(2),
			severity(e.AdjustedSeverity),
		)
	}
	return tw.Flush()
}

func printWritten(w io.Writer, files []string) {
	for _, f := range files {
		fmt.Fprintf(w, "Wrote %s\n", f)
	}
}
