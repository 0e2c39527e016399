package reconcile

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flujo-dev/flujo/internal/model"
)

// CashSummary compares computed cash flow with the statement's own balance.
type CashSummary struct {
	Credits         decimal.Decimal
	Debits          decimal.Decimal
	Net             decimal.Decimal
	Opening         decimal.Decimal
	ComputedClosing decimal.Decimal

	// Statement balance from the latest dated row that reports one; nil
	// when no row does.
	StatementBalance *decimal.Decimal
	StatementDate    *time.Time
	Difference       *decimal.Decimal // ComputedClosing - StatementBalance
}

// Summarize totals txns and derives the closing balance from opening.
func Summarize(txns []model.Transaction, opening decimal.Decimal) CashSummary {
	s := CashSummary{Opening: opening}
	lastIdx := -1
	for i, txn := range txns {
		s.Credits = s.Credits.Add(txn.Credit)
		s.Debits = s.Debits.Add(txn.Debit)
		if txn.Balance == nil || txn.Date == nil {
			continue
		}
		// Later rows win ties so same-day movements end on the final balance.
		if lastIdx < 0 || !txn.Date.Before(*txns[lastIdx].Date) {
			lastIdx = i
		}
	}
	s.Net = s.Credits.Sub(s.Debits)
	s.ComputedClosing = opening.Add(s.Net)

	if lastIdx >= 0 {
		bal := *txns[lastIdx].Balance
		date := *txns[lastIdx].Date
		diff := s.ComputedClosing.Sub(bal)
		s.StatementBalance = &bal
		s.StatementDate = &date
		s.Difference = &diff
	}
	return s
}

// ClassTotals holds credits and debits for one classification.
type ClassTotals struct {
	Classification model.Classification
	Credits        decimal.Decimal
	Debits         decimal.Decimal
	Count          int
}

// ByClassification totals every transaction per label, sorted by label.
func ByClassification(txns []model.Transaction) []ClassTotals {
	totals := make(map[model.Classification]*ClassTotals)
	for _, txn := range txns {
		ct, ok := totals[txn.Classification]
		if !ok {
			ct = &ClassTotals{Classification: txn.Classification}
			totals[txn.Classification] = ct
		}
		ct.Credits = ct.Credits.Add(txn.Credit)
		ct.Debits = ct.Debits.Add(txn.Debit)
		ct.Count++
	}
	out := make([]ClassTotals, 0, len(totals))
	for _, ct := range totals {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Classification < out[j].Classification })
	return out
}

// VarianceTotals is the reconciliation summed over all months for one label.
type VarianceTotals struct {
	Classification model.Classification
	Projected      decimal.Decimal
	Actual         decimal.Decimal
	Variance       decimal.Decimal
}

// TotalsByClassification sums rows per label, largest projection first.
func TotalsByClassification(rows []model.ReconciliationRow) []VarianceTotals {
	totals := make(map[model.Classification]*VarianceTotals)
	for _, r := range rows {
		vt, ok := totals[r.Classification]
		if !ok {
			vt = &VarianceTotals{Classification: r.Classification}
			totals[r.Classification] = vt
		}
		vt.Projected = vt.Projected.Add(r.Projected)
		vt.Actual = vt.Actual.Add(r.Actual)
		vt.Variance = vt.Variance.Add(r.Variance)
	}
	out := make([]VarianceTotals, 0, len(totals))
	for _, vt := range totals {
		out = append(out, *vt)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Projected.Cmp(out[j].Projected); c != 0 {
			return c > 0
		}
		return out[i].Classification < out[j].Classification
	})
	return out
}
