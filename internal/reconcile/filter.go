package reconcile

import (
	"time"

	"github.com/flujo-dev/flujo/internal/model"
	"github.com/flujo-dev/flujo/internal/normalize"
	"github.com/flujo-dev/flujo/internal/period"
)

// Filter narrows reconciliation rows to a month range and a set of labels.
// Zero values select everything.
type Filter struct {
	From            *time.Time // compared by month
	To              *time.Time // compared by month, inclusive
	Classifications []model.Classification
}

// IsZero reports whether the filter selects every row.
func (f Filter) IsZero() bool {
	return f.From == nil && f.To == nil && len(f.Classifications) == 0
}

// Apply returns the rows matching f, in order.
func (f Filter) Apply(rows []model.ReconciliationRow) []model.ReconciliationRow {
	if f.IsZero() {
		return rows
	}
	var want map[string]bool
	if len(f.Classifications) > 0 {
		want = make(map[string]bool, len(f.Classifications))
		for _, c := range f.Classifications {
			want[normalize.Normalize(string(c))] = true
		}
	}

	var out []model.ReconciliationRow
	for _, r := range rows {
		if f.From != nil && r.Month.Before(period.MonthStart(*f.From)) {
			continue
		}
		if f.To != nil && r.Month.After(period.MonthStart(*f.To)) {
			continue
		}
		if want != nil && !want[normalize.Normalize(string(r.Classification))] {
			continue
		}
		out = append(out, r)
	}
	return out
}
