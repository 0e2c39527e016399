// Package pipeline runs statement classification and reconciliation end to
// end: load, shape, aggregate, reconcile, evaluate.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/flujo-dev/flujo/internal/config"
	"github.com/flujo-dev/flujo/internal/importer"
	"github.com/flujo-dev/flujo/internal/logger"
	"github.com/flujo-dev/flujo/internal/model"
	"github.com/flujo-dev/flujo/internal/normalize"
	"github.com/flujo-dev/flujo/internal/projection"
	"github.com/flujo-dev/flujo/internal/reconcile"
	"github.com/flujo-dev/flujo/internal/report"
	"github.com/flujo-dev/flujo/internal/rules"
	"github.com/flujo-dev/flujo/internal/runlog"
)

// Inputs names the files and parameters of one run.
type Inputs struct {
	Statement  string
	Projection string // empty for classification only
	Opening    decimal.Decimal
	Cutoff     *time.Time // coverage cutoff; nil means the latest transaction
	Filter     reconcile.Filter
}

// Result holds everything a run computed.
type Result struct {
	Transactions    []model.Transaction
	StatementStats  importer.Stats
	StatementDigest string
	Coverage        reconcile.CoverageReport
	Summary         reconcile.CashSummary
	ClassTotals     []reconcile.ClassTotals

	// Set only when a projection was given.
	Projection       *projection.Matrix
	ProjectionDigest string
	Entries          []model.ProjectionEntry
	Aggregates       []model.Aggregate
	Rows             []model.ReconciliationRow // after Filter
	Unprojected      []model.Aggregate
	Evaluations      []model.MonthlyEvaluation
	VarianceTotals   []reconcile.VarianceTotals
	AsOf             time.Time // zero when no transaction is dated
	UnknownLabels    []model.Classification
}

// Reconciled reports whether the run had a projection.
func (r *Result) Reconciled() bool {
	return r.Projection != nil
}

// Tables renders the result for export. The first table is the main one:
// reconciliation rows when reconciled, classified transactions otherwise.
func (r *Result) Tables() []report.Table {
	source := r.StatementStats.Header
	classified := report.Classified(report.TableClassified, source, r.Transactions)
	unclassified := report.Classified(report.TableUnclassified, source, r.Coverage.Unclassified)
	summary := report.Summary(r.Summary, r.Coverage)
	totals := report.ClassTotals(r.ClassTotals)
	if !r.Reconciled() {
		return []report.Table{classified, totals, unclassified, summary}
	}
	return []report.Table{
		report.Reconciliation(r.Rows),
		report.Evaluation(r.Evaluations),
		report.VarianceTotals(r.VarianceTotals),
		report.Unprojected(r.Unprojected),
		classified,
		totals,
		unclassified,
		summary,
	}
}

// LogEntry describes the run for the run log.
func (r *Result) LogEntry(command string, in Inputs, export string) runlog.Entry {
	return runlog.Entry{
		Command:          command,
		Statement:        in.Statement,
		StatementDigest:  r.StatementDigest,
		Projection:       in.Projection,
		ProjectionDigest: r.ProjectionDigest,
		Rows:             r.Coverage.Total,
		Classified:       r.Coverage.Classified,
		Percent:          r.Coverage.Percent,
		Anomalies:        r.StatementStats.Anomalies(),
		Export:           export,
	}
}

// Runner holds the settings shared by every run.
type Runner struct {
	Config   *config.Config
	Rules    *rules.Table
	Registry *importer.Registry
}

// New creates a Runner reading files with the default registry.
func New(cfg *config.Config, table *rules.Table) *Runner {
	return &Runner{Config: cfg, Rules: table, Registry: importer.DefaultRegistry()}
}

// Run reconciles in with a one-off Runner.
func Run(ctx context.Context, cfg *config.Config, table *rules.Table, in Inputs) (*Result, error) {
	return New(cfg, table).Run(ctx, in)
}

// Classify classifies the statement only, ignoring in.Projection.
func Classify(ctx context.Context, cfg *config.Config, table *rules.Table, in Inputs) (*Result, error) {
	in.Projection = ""
	return New(cfg, table).Run(ctx, in)
}

type loadedStatement struct {
	txns   []model.Transaction
	stats  importer.Stats
	digest string
}

type loadedProjection struct {
	matrix *projection.Matrix
	digest string
}

// Run loads the statement and, when given, the projection concurrently,
// then computes the result on the calling goroutine.
func (rn *Runner) Run(ctx context.Context, in Inputs) (*Result, error) {
	log := logger.FromContext(ctx)

	var st loadedStatement
	var pj loadedProjection
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		st, err = rn.loadStatement(gctx, in.Statement)
		return err
	})
	if in.Projection != "" {
		g.Go(func() error {
			var err error
			pj, err = rn.loadProjection(gctx, in.Projection)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		StatementStats:  st.stats,
		StatementDigest: st.digest,
	}

	res.Transactions = importer.Shape(st.txns, rn.Rules)
	res.Coverage = reconcile.Coverage(res.Transactions, in.Cutoff)
	res.Summary = reconcile.Summarize(res.Transactions, in.Opening)
	res.ClassTotals = reconcile.ByClassification(res.Transactions)

	log.Info().
		Str("statement", in.Statement).
		Int("rows", st.stats.Rows).
		Int("classified", res.Coverage.Classified).
		Str("percent_classified", res.Coverage.Percent.StringFixed(2)).
		Msg("statement classified")
	if n := st.stats.Anomalies(); n > 0 {
		log.Warn().
			Int("bad_dates", st.stats.BadDates).
			Int("bad_amounts", st.stats.BadAmounts).
			Int("bad_balances", st.stats.BadBalances).
			Msg("statement rows with unreadable values")
	}

	if pj.matrix == nil {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Projection = pj.matrix
	res.ProjectionDigest = pj.digest
	res.Entries = projection.Unpivot(pj.matrix)
	res.Aggregates = reconcile.Aggregate(res.Transactions)
	res.Unprojected = reconcile.Unprojected(res.Entries, res.Aggregates)
	res.Rows = in.Filter.Apply(reconcile.Reconcile(res.Entries, res.Aggregates))
	res.VarianceTotals = reconcile.TotalsByClassification(res.Rows)
	res.UnknownLabels = unknownLabels(pj.matrix.Classifications(), rn.Rules)

	asOf, ok := reconcile.AsOf(res.Transactions)
	if ok {
		res.AsOf = asOf
	} else {
		log.Warn().Msg("no dated transactions; every month is evaluated as not started")
	}
	res.Evaluations = reconcile.Evaluate(res.Rows, res.AsOf, rn.Config.SeverityThresholds())

	log.Info().
		Str("projection", in.Projection).
		Int("projected_months", len(pj.matrix.Months())).
		Int("entries", len(res.Entries)).
		Int("rows", len(res.Rows)).
		Int("months", len(res.Evaluations)).
		Int("unprojected", len(res.Unprojected)).
		Msg("projection reconciled")
	ms := pj.matrix.Stats
	if ms.DroppedRows > 0 || ms.BadCells > 0 || len(ms.SkippedColumns) > 0 {
		log.Warn().
			Int("dropped_rows", ms.DroppedRows).
			Int("bad_cells", ms.BadCells).
			Strs("skipped_columns", ms.SkippedColumns).
			Msg("projection cells ignored")
	}
	if len(res.UnknownLabels) > 0 {
		labels := make([]string, len(res.UnknownLabels))
		for i, l := range res.UnknownLabels {
			labels[i] = string(l)
		}
		log.Warn().Strs("labels", labels).Msg("projection labels no rule produces")
	}
	return res, nil
}

func (rn *Runner) loadStatement(ctx context.Context, path string) (loadedStatement, error) {
	var out loadedStatement
	sheet, err := rn.Registry.Open(path)
	if err != nil {
		return out, fmt.Errorf("reading statement: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	out.txns, out.stats, err = rn.Config.StatementParser().Parse(sheet)
	if err != nil {
		return out, fmt.Errorf("parsing statement %s: %w", path, err)
	}
	out.digest, err = runlog.Digest(path)
	return out, err
}

func (rn *Runner) loadProjection(ctx context.Context, path string) (loadedProjection, error) {
	var out loadedProjection
	sheet, err := rn.Registry.Open(path)
	if err != nil {
		return out, fmt.Errorf("reading projection: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	out.matrix, err = projection.ReadMatrix(sheet, rn.Config.ProjectionOptions())
	if err != nil {
		return out, fmt.Errorf("parsing projection %s: %w", path, err)
	}
	out.digest, err = runlog.Digest(path)
	return out, err
}

// unknownLabels returns projected labels the rule table never assigns. Their
// actuals will always be zero.
func unknownLabels(projected []model.Classification, table *rules.Table) []model.Classification {
	known := make(map[string]bool)
	for _, l := range table.Labels() {
		known[normalize.Normalize(string(l))] = true
	}
	var out []model.Classification
	for _, l := range projected {
		if !known[normalize.Normalize(string(l))] {
			out = append(out, l)
		}
	}
	return out
}
