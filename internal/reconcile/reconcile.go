package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/flujo-dev/flujo/internal/model"
)

// Reconcile left-joins projection entries with actual aggregates on
// (classification, month). Every entry yields exactly one row, in entry
// order; a missing actual is zero.
func Reconcile(entries []model.ProjectionEntry, aggs []model.Aggregate) []model.ReconciliationRow {
	actuals := index(aggs)

	rows := make([]model.ReconciliationRow, len(entries))
	for i, e := range entries {
		actual, ok := actuals[joinKey(e.Classification, e.Month)]
		if !ok {
			actual = decimal.Zero
		}
		rows[i] = model.ReconciliationRow{
			Classification: e.Classification,
			Month:          e.Month,
			Projected:      e.Projected,
			Actual:         actual,
			Variance:       actual.Sub(e.Projected),
		}
	}
	return rows
}

// Unprojected returns the aggregates no projection entry refers to, such as
// unclassified spending. The left join drops them, so they are reported here.
func Unprojected(entries []model.ProjectionEntry, aggs []model.Aggregate) []model.Aggregate {
	projected := make(map[bucketKey]bool, len(entries))
	for _, e := range entries {
		projected[joinKey(e.Classification, e.Month)] = true
	}
	var out []model.Aggregate
	for _, a := range aggs {
		if !projected[joinKey(a.Classification, a.Month)] {
			out = append(out, a)
		}
	}
	return out
}
