package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flujo-dev/flujo/internal/model"
	"github.com/flujo-dev/flujo/internal/pipeline"
)

type reconcileOptions struct {
	repo    string
	opening string
	cutoff  string
	from    string
	to      string
	classes []string
	out     string
	commit  bool
}

func newReconcileCommand(g *globalOptions) *cobra.Command {
	var o reconcileOptions

	cmd := &cobra.Command{
		Use:   "reconcile <statement> <projection>",
		Short: "Compare actual cash flow with a monthly projection",
		Long: `Classify a bank statement, aggregate it by classification and month, and
join it with a projection matrix (one row per classification, one column
per month). Each month gets a severity label against the full projection
and against the projection prorated to the days elapsed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, g, o.repo)
			if err != nil {
				return err
			}

			in := pipeline.Inputs{Statement: args[0], Projection: args[1]}
			if in.Opening, err = parseOpening(o.opening); err != nil {
				return err
			}
			if in.Cutoff, err = parseDateFlag("cutoff", o.cutoff); err != nil {
				return err
			}
			if in.Filter.From, err = parseMonthFlag("from", o.from); err != nil {
				return err
			}
			if in.Filter.To, err = parseMonthFlag("to", o.to); err != nil {
				return err
			}
			for _, c := range o.classes {
				in.Filter.Classifications = append(in.Filter.Classifications, model.Classification(c))
			}

			commit, err := p.shouldCommit(cmd, o.commit)
			if err != nil {
				return err
			}
			return runReconcile(cmd, p, in, o.out, commit)
		},
	}

	cmd.Flags().StringVar(&o.repo, "repo", ".", "project directory")
	cmd.Flags().StringVar(&o.opening, "opening", "", "opening balance for the cash summary")
	cmd.Flags().StringVar(&o.cutoff, "cutoff", "", "count coverage up to this date (default: latest transaction)")
	cmd.Flags().StringVar(&o.from, "from", "", "first month to include, e.g. 2025-06")
	cmd.Flags().StringVar(&o.to, "to", "", "last month to include")
	cmd.Flags().StringArrayVar(&o.classes, "class", nil, "only these classifications (repeatable)")
	cmd.Flags().StringVar(&o.out, "out", "", "export file, .csv or .xlsx (default exports/<statement>_conciliacion.<format>)")
	cmd.Flags().BoolVar(&o.commit, "commit", false, "commit the exports and run log (default: git.auto_commit in a git project)")

	return cmd
}

func runReconcile(cmd *cobra.Command, p *project, in pipeline.Inputs, out string, commit bool) error {
	res, err := pipeline.New(p.Config, p.Rules).Run(cmd.Context(), in)
	if err != nil {
		return err
	}
	files, err := p.export("reconcile", in, res, p.exportPath(out, in.Statement, "conciliacion"))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if err := printEvaluations(w, res.Evaluations); err != nil {
		return err
	}
	fmt.Fprintln(w)
	printCoverage(w, res)
	printUnprojected(w, res.Unprojected)
	if len(res.UnknownLabels) > 0 {
		fmt.Fprintf(w, "Projected classifications no rule assigns: %d\n", len(res.UnknownLabels))
	}
	printWritten(w, files)

	if commit {
		hash, err := p.commit("reconcile: "+filepath.Base(in.Statement), files)
		if err != nil {
			return fmt.Errorf("committing exports: %w", err)
		}
		fmt.Fprintf(w, "Committed %s\n", hash)
	}
	return nil
}
