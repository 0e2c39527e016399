// Package report renders classification and reconciliation results as
// tables and writes them to CSV files or an XLSX workbook.
package report

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flujo-dev/flujo/internal/model"
	"github.com/flujo-dev/flujo/internal/period"
	"github.com/flujo-dev/flujo/internal/reconcile"
)

// Table names, also used as sheet names and CSV file suffixes.
const (
	TableClassified     = "clasificados"
	TableUnclassified   = "no_clasificados"
	TableReconciliation = "conciliacion"
	TableEvaluation     = "evaluacion"
	TableUnprojected    = "sin_proyeccion"
	TableClassTotals    = "totales"
	TableVariance       = "diferencias"
	TableSummary        = "resumen"
)

// Table is a rendered export: a header and string rows. Numeric marks the
// columns written as numbers in a workbook.
type Table struct {
	Name    string
	Header  []string
	Numeric []bool
	Rows    [][]string
}

func newTable(name string, cols ...column) Table {
	t := Table{Name: name, Header: make([]string, len(cols)), Numeric: make([]bool, len(cols))}
	for i, c := range cols {
		t.Header[i] = c.name
		t.Numeric[i] = c.numeric
	}
	return t
}

type column struct {
	name    string
	numeric bool
}

func text(name string) column { return column{name: name} }
func num(name string) column  { return column{name: name, numeric: true} }

func money(d decimal.Decimal) string    { return d.StringFixed(2) }
func fraction(d decimal.Decimal) string { return d.StringFixed(4) }

func optMoney(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return money(*d)
}

func optDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(period.DateLayout)
}

func optMonth(t *time.Time) string {
	if t == nil {
		return ""
	}
	return period.FormatMonth(*t)
}

// Classified renders shaped transactions in statement order. With a source
// header the original cells are kept as read, followed by classification
// and month; without one the parsed fields are written instead.
func Classified(name string, source []string, txns []model.Transaction) Table {
	if len(source) == 0 {
		return classifiedParsed(name, txns)
	}
	cols := make([]column, 0, len(source)+2)
	for _, h := range source {
		cols = append(cols, text(h))
	}
	cols = append(cols, text("classification"), text("month"))
	t := newTable(name, cols...)
	for _, txn := range txns {
		row := make([]string, len(source), len(source)+2)
		copy(row, txn.Raw)
		row = append(row, txn.Classification.String(), optMonth(txn.Month))
		t.Rows = append(t.Rows, row)
	}
	return t
}

func classifiedParsed(name string, txns []model.Transaction) Table {
	t := newTable(name,
		num("row"), text("date"), text("description"), num("credit"), num("debit"),
		num("balance"), num("net"), text("classification"), text("month"),
	)
	for _, txn := range txns {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(txn.Row),
			optDate(txn.Date),
			txn.Description,
			money(txn.Credit),
			money(txn.Debit),
			optMoney(txn.Balance),
			money(txn.Net()),
			txn.Classification.String(),
			optMonth(txn.Month),
		})
	}
	return t
}

// Reconciliation renders reconciliation rows in the order given.
func Reconciliation(rows []model.ReconciliationRow) Table {
	t := newTable(TableReconciliation,
		text("classification"), text("month"), num("projected_amount"), num("actual_net_amount"), num("variance"),
	)
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Classification.String(),
			period.FormatMonth(r.Month),
			money(r.Projected),
			money(r.Actual),
			money(r.Variance),
		})
	}
	return t
}

// Unprojected renders actual activity whose classification and month have
// no projection entry.
func Unprojected(aggs []model.Aggregate) Table {
	t := newTable(TableUnprojected,
		text("classification"), text("month"), num("count"),
		num("credits"), num("debits"), num("actual_net_amount"),
	)
	for _, a := range aggs {
		t.Rows = append(t.Rows, []string{
			a.Classification.String(),
			period.FormatMonth(a.Month),
			strconv.Itoa(a.Count),
			money(a.Credits),
			money(a.Debits),
			money(a.Net),
		})
	}
	return t
}

// Evaluation renders the monthly stoplight evaluation.
func Evaluation(evals []model.MonthlyEvaluation) Table {
	t := newTable(TableEvaluation,
		text("month"), num("projected_total"), num("actual_total"), num("variance"),
		num("elapsed_fraction"), num("progress_adjusted_projection"), num("progress_adjusted_variance"),
		text("severity_label"), text("progress_adjusted_severity_label"),
	)
	for _, e := range evals {
		t.Rows = append(t.Rows, []string{
			period.FormatMonth(e.Month),
			money(e.Projected),
			money(e.Actual),
			money(e.Variance),
			fraction(e.Elapsed),
			money(e.AdjustedProjected),
			money(e.AdjustedVariance),
			string(e.Severity),
			string(e.AdjustedSeverity),
		})
	}
	return t
}

// ClassTotals renders credit and debit totals per classification.
func ClassTotals(totals []reconcile.ClassTotals) Table {
	t := newTable(TableClassTotals,
		text("classification"), num("count"), num("credits"), num("debits"), num("net"),
	)
	for _, ct := range totals {
		t.Rows = append(t.Rows, []string{
			ct.Classification.String(),
			strconv.Itoa(ct.Count),
			money(ct.Credits),
			money(ct.Debits),
			money(ct.Credits.Sub(ct.Debits)),
		})
	}
	return t
}

// VarianceTotals renders the reconciliation summed per classification.
func VarianceTotals(totals []reconcile.VarianceTotals) Table {
	t := newTable(TableVariance,
		text("classification"), num("projected"), num("actual"), num("variance"),
	)
	for _, vt := range totals {
		t.Rows = append(t.Rows, []string{
			vt.Classification.String(),
			money(vt.Projected),
			money(vt.Actual),
			money(vt.Variance),
		})
	}
	return t
}

// Summary renders the cash summary and coverage as metric/value pairs.
func Summary(s reconcile.CashSummary, cov reconcile.CoverageReport) Table {
	t := newTable(TableSummary, text("metric"), text("value"))
	add := func(k, v string) { t.Rows = append(t.Rows, []string{k, v}) }
	add("credits", money(s.Credits))
	add("debits", money(s.Debits))
	add("net", money(s.Net))
	add("opening_balance", money(s.Opening))
	add("computed_closing_balance", money(s.ComputedClosing))
	add("statement_balance", optMoney(s.StatementBalance))
	add("statement_balance_date", optDate(s.StatementDate))
	add("balance_difference", optMoney(s.Difference))
	if !cov.Cutoff.IsZero() {
		add("coverage_cutoff", cov.Cutoff.Format(period.DateLayout))
	} else {
		add("coverage_cutoff", "")
	}
	add("rows_evaluated", strconv.Itoa(cov.Total))
	add("rows_classified", strconv.Itoa(cov.Classified))
	add("percent_classified", money(cov.Percent))
	return t
}
