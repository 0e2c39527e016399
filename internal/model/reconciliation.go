package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Severity is the stoplight label of a variance-to-projection ratio.
type Severity string

const (
	SeverityOK           Severity = "OK"
	SeverityAttention    Severity = "ATTENTION"
	SeverityCritical     Severity = "CRITICAL"
	SeverityNoProjection Severity = "NO_PROJECTION"
	SeverityNoProgress   Severity = "NO_PROGRESS"
)

// ProjectionEntry is one cell of an unpivoted projection matrix.
type ProjectionEntry struct {
	Classification Classification
	Month          time.Time
	Projected      decimal.Decimal
}

// Aggregate holds actual activity for one (classification, month) bucket.
type Aggregate struct {
	Classification Classification
	Month          time.Time
	Credits        decimal.Decimal
	Debits         decimal.Decimal
	Net            decimal.Decimal // |Credits - Debits|
	Count          int
}

// ReconciliationRow pairs a projection cell with its actual net amount.
type ReconciliationRow struct {
	Classification Classification
	Month          time.Time
	Projected      decimal.Decimal
	Actual         decimal.Decimal
	Variance       decimal.Decimal // Actual - Projected
}

// MonthlyEvaluation is the stoplight evaluation of one month.
type MonthlyEvaluation struct {
	Month             time.Time
	Projected         decimal.Decimal
	Actual            decimal.Decimal
	Variance          decimal.Decimal
	Elapsed           decimal.Decimal // fraction of the month elapsed as of the latest transaction
	AdjustedProjected decimal.Decimal
	AdjustedVariance  decimal.Decimal
	Severity          Severity
	AdjustedSeverity  Severity
}
