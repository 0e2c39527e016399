package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one bank-statement line after loading and shaping.
type Transaction struct {
	Row            int        // 1-based data row in the source file
	Date           *time.Time // nil when the source date could not be parsed
	Description    string
	Credit         decimal.Decimal // inflow magnitude, zero if none
	Debit          decimal.Decimal // outflow magnitude, zero if none
	Balance        *decimal.Decimal
	Normalized     string
	Classification Classification
	Month          *time.Time // first day of Date's month, nil with Date
	Raw            []string   // source cells, aligned with the statement header
}

// Net returns credit minus debit.
func (t Transaction) Net() decimal.Decimal {
	return t.Credit.Sub(t.Debit)
}

// IsCredit reports whether the transaction is an inflow. Zero counts as a debit.
func (t Transaction) IsCredit() bool {
	return t.Net().IsPositive()
}
