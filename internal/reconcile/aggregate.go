// Package reconcile aggregates classified transactions by month, joins them
// with projections and evaluates the variance.
package reconcile

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flujo-dev/flujo/internal/model"
	"github.com/flujo-dev/flujo/internal/normalize"
)

type bucketKey struct {
	class model.Classification
	month time.Time
}

// Aggregate sums credits and debits per (classification, month). Rows
// without a month are excluded. Net is |credits - debits|, so the sign of
// the bucket is not kept. Output is sorted by classification, then month.
func Aggregate(txns []model.Transaction) []model.Aggregate {
	buckets := make(map[bucketKey]*model.Aggregate)
	for _, txn := range txns {
		if txn.Month == nil {
			continue
		}
		k := bucketKey{class: txn.Classification, month: *txn.Month}
		agg, ok := buckets[k]
		if !ok {
			agg = &model.Aggregate{Classification: txn.Classification, Month: *txn.Month}
			buckets[k] = agg
		}
		agg.Credits = agg.Credits.Add(txn.Credit)
		agg.Debits = agg.Debits.Add(txn.Debit)
		agg.Count++
	}

	out := make([]model.Aggregate, 0, len(buckets))
	for _, agg := range buckets {
		agg.Net = agg.Credits.Sub(agg.Debits).Abs()
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Classification != out[j].Classification {
			return out[i].Classification < out[j].Classification
		}
		return out[i].Month.Before(out[j].Month)
	})
	return out
}

// joinKey matches labels regardless of case and accents, since projection
// sheets are typed by hand.
func joinKey(c model.Classification, month time.Time) bucketKey {
	return bucketKey{class: model.Classification(normalize.Normalize(string(c))), month: month}
}

func index(aggs []model.Aggregate) map[bucketKey]decimal.Decimal {
	idx := make(map[bucketKey]decimal.Decimal, len(aggs))
	for _, a := range aggs {
		k := joinKey(a.Classification, a.Month)
		// Two labels differing only by case fold into one bucket.
		if prev, ok := idx[k]; ok {
			idx[k] = prev.Add(a.Net)
			continue
		}
		idx[k] = a.Net
	}
	return idx
}
