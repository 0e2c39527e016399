package reconcile

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flujo-dev/flujo/internal/model"
)

// CoverageReport measures how much of a statement the rule table classifies.
type CoverageReport struct {
	Cutoff       time.Time
	Total        int
	Classified   int
	Unclassified []model.Transaction
	Percent      decimal.Decimal // Classified/Total*100, zero when Total is 0
}

// Coverage counts dated rows on or before cutoff. A nil cutoff means the
// latest transaction date. Undated rows are never counted.
func Coverage(txns []model.Transaction, cutoff *time.Time) CoverageReport {
	var rep CoverageReport
	if cutoff != nil {
		rep.Cutoff = *cutoff
	} else if asOf, ok := AsOf(txns); ok {
		rep.Cutoff = asOf
	} else {
		return rep
	}

	for _, txn := range txns {
		if txn.Date == nil || txn.Date.After(rep.Cutoff) {
			continue
		}
		rep.Total++
		if txn.Classification.IsClassified() {
			rep.Classified++
		} else {
			rep.Unclassified = append(rep.Unclassified, txn)
		}
	}

	rep.Percent = decimal.Zero
	if rep.Total > 0 {
		rep.Percent = decimal.NewFromInt(int64(rep.Classified * 100)).Div(decimal.NewFromInt(int64(rep.Total)))
	}
	return rep
}
