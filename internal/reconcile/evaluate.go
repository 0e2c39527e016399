package reconcile

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flujo-dev/flujo/internal/model"
	"github.com/flujo-dev/flujo/internal/period"
)

// Thresholds are the lower bounds of the OK and ATTENTION bands, as
// variance/projection ratios. Overage is never penalized.
type Thresholds struct {
	Attention decimal.Decimal // ratio >= Attention is OK
	Critical  decimal.Decimal // Critical <= ratio < Attention is ATTENTION
}

// DefaultThresholds returns the 5% / 15% shortfall bands.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Attention: decimal.RequireFromString("-0.05"),
		Critical:  decimal.RequireFromString("-0.15"),
	}
}

// Severity labels variance/denominator. A zero denominator yields none.
func (th Thresholds) Severity(variance, denominator decimal.Decimal, none model.Severity) model.Severity {
	if denominator.IsZero() {
		return none
	}
	ratio := variance.Div(denominator)
	switch {
	case ratio.GreaterThanOrEqual(th.Attention):
		return model.SeverityOK
	case ratio.GreaterThanOrEqual(th.Critical):
		return model.SeverityAttention
	default:
		return model.SeverityCritical
	}
}

// elapsedDays returns how many days of month have passed as of asOf,
// inclusive and capped at the month length, along with that length.
func elapsedDays(month *time.Time, asOf time.Time) (days, inMonth int) {
	if month == nil {
		return 0, 0
	}
	start := period.MonthStart(*month)
	inMonth = period.DaysInMonth(start)
	day := period.Day(asOf)
	if start.After(day) {
		return 0, inMonth
	}
	days = int(day.Sub(start).Hours()/24) + 1
	if days > inMonth {
		days = inMonth
	}
	return days, inMonth
}

// ElapsedFraction returns the fraction of month elapsed as of asOf: 0 for a
// nil or future month, 1 for a fully past month.
func ElapsedFraction(month *time.Time, asOf time.Time) decimal.Decimal {
	days, inMonth := elapsedDays(month, asOf)
	if days == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(days)).Div(decimal.NewFromInt(int64(inMonth)))
}

// AsOf returns the latest transaction date, or ok=false when no row is dated.
func AsOf(txns []model.Transaction) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, txn := range txns {
		if txn.Date == nil {
			continue
		}
		if !found || txn.Date.After(latest) {
			latest = *txn.Date
			found = true
		}
	}
	return latest, found
}

// Evaluate totals rows per month (ascending) and assigns both stoplight
// labels: against the full projection and against the projection scaled by
// the elapsed fraction of the month as of asOf.
func Evaluate(rows []model.ReconciliationRow, asOf time.Time, th Thresholds) []model.MonthlyEvaluation {
	byMonth := make(map[time.Time]*model.MonthlyEvaluation)
	for _, r := range rows {
		ev, ok := byMonth[r.Month]
		if !ok {
			ev = &model.MonthlyEvaluation{Month: r.Month}
			byMonth[r.Month] = ev
		}
		ev.Projected = ev.Projected.Add(r.Projected)
		ev.Actual = ev.Actual.Add(r.Actual)
		ev.Variance = ev.Variance.Add(r.Variance)
	}

	out := make([]model.MonthlyEvaluation, 0, len(byMonth))
	for _, ev := range byMonth {
		month := ev.Month
		days, inMonth := elapsedDays(&month, asOf)
		ev.Elapsed = ElapsedFraction(&month, asOf)
		ev.AdjustedProjected = decimal.Zero
		if days > 0 {
			// Multiply before dividing so whole-day fractions stay exact.
			ev.AdjustedProjected = ev.Projected.Mul(decimal.NewFromInt(int64(days))).Div(decimal.NewFromInt(int64(inMonth)))
		}
		ev.AdjustedVariance = ev.Actual.Sub(ev.AdjustedProjected)
		ev.Severity = th.Severity(ev.Variance, ev.Projected, model.SeverityNoProjection)
		ev.AdjustedSeverity = th.Severity(ev.AdjustedVariance, ev.AdjustedProjected, model.SeverityNoProgress)
		out = append(out, *ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}
