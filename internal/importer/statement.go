package importer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/flujo-dev/flujo/internal/model"
	"github.com/flujo-dev/flujo/internal/normalize"
	"github.com/flujo-dev/flujo/internal/period"
	"github.com/flujo-dev/flujo/internal/rules"
)

// Columns names the statement columns. Matching ignores case and accents.
type Columns struct {
	Date        string
	Description string
	Credit      string
	Debit       string
	Balance     string // optional
}

// DefaultColumns returns the column names of the bank's cartola export.
func DefaultColumns() Columns {
	return Columns{
		Date:        "FECHA",
		Description: "DESCRIPCION",
		Credit:      "ABONOS (CLP)",
		Debit:       "CARGOS (CLP)",
		Balance:     "SALDO (CLP)",
	}
}

func (c Columns) required() []string {
	return []string{c.Date, c.Description, c.Credit, c.Debit}
}

// Stats describes a parsed statement: its source header and the per-row
// anomalies absorbed while parsing.
type Stats struct {
	Header      []string // source column names, in file order
	Rows        int
	SkippedRows int // entirely blank rows
	BadDates    int
	BadAmounts  int
	BadBalances int
}

// Anomalies returns the total number of absorbed field errors.
func (s Stats) Anomalies() int {
	return s.BadDates + s.BadAmounts + s.BadBalances
}

// StatementParser turns a statement Sheet into transactions.
type StatementParser struct {
	Columns Columns
	// DecimalComma reads "1.234,56" style amounts from text exports.
	DecimalComma bool
}

// NewStatementParser creates a parser for the given columns.
func NewStatementParser(cols Columns) *StatementParser {
	return &StatementParser{Columns: cols}
}

// Parse returns one transaction per non-blank row. Unparseable dates become
// nil and unparseable amounts zero; the counts are reported in Stats. The
// only error is a *model.SchemaError for missing required columns.
func (p *StatementParser) Parse(s *Sheet) ([]model.Transaction, Stats, error) {
	var stats Stats

	t, err := s.Table(p.Columns.required()...)
	if err != nil {
		return nil, stats, err
	}

	colDate := t.Col(p.Columns.Date)
	colDesc := t.Col(p.Columns.Description)
	colCredit := t.Col(p.Columns.Credit)
	colDebit := t.Col(p.Columns.Debit)
	colBalance := -1
	if p.Columns.Balance != "" {
		colBalance = t.Col(p.Columns.Balance)
	}

	decimalComma := p.DecimalComma && !t.RawNumbers
	stats.Header = sourceHeader(t.RawHeader)

	var txns []model.Transaction
	for i, rec := range t.Rows {
		if isBlank(rec) {
			stats.SkippedRows++
			continue
		}
		stats.Rows++

		txn := model.Transaction{
			Row:         i + 1,
			Description: Cell(rec, colDesc),
			Raw:         rec,
		}

		if d, err := period.ParseDayFirst(Cell(rec, colDate)); err == nil {
			txn.Date = &d
		} else {
			stats.BadDates++
		}

		credit, ok := ParseAmount(Cell(rec, colCredit), decimalComma)
		if !ok {
			stats.BadAmounts++
		}
		debit, ok := ParseAmount(Cell(rec, colDebit), decimalComma)
		if !ok {
			stats.BadAmounts++
		}
		txn.Credit = credit.Abs()
		txn.Debit = debit.Abs()

		if raw := Cell(rec, colBalance); raw != "" {
			if bal, ok := ParseAmount(raw, decimalComma); ok {
				txn.Balance = &bal
			} else {
				stats.BadBalances++
			}
		}

		txns = append(txns, txn)
	}
	return txns, stats, nil
}

// sourceHeader trims the header names and labels blank ones by position.
func sourceHeader(raw []string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		out[i] = strings.TrimSpace(h)
		if out[i] == "" {
			out[i] = fmt.Sprintf("column_%d", i+1)
		}
	}
	return out
}

var currencyTokens = strings.NewReplacer("US$", "", "$", "", "CLP", "", "clp", "", "USD", "", "EUR", "", "€", "")

// ParseAmount parses a monetary cell. Blank cells are zero and ok. Currency
// symbols, spaces and thousands separators are ignored; parentheses mean a
// negative amount. Unparseable text yields zero and ok=false.
func ParseAmount(s string, decimalComma bool) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return decimal.Zero, true
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = currencyTokens.Replace(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\t':
			return -1
		case '.':
			if decimalComma {
				return -1
			}
		case ',':
			if decimalComma {
				return '.'
			}
			return -1
		}
		return r
	}, s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// Shape normalizes each description, classifies it with table and derives
// the month bucket. It modifies txns in place and returns it.
func Shape(txns []model.Transaction, table *rules.Table) []model.Transaction {
	for i := range txns {
		txn := &txns[i]
		txn.Normalized = normalize.Normalize(txn.Description)
		txn.Classification = table.Classify(txn.Normalized, txn.Net())
		txn.Month = nil
		if txn.Date != nil {
			m := period.MonthStart(*txn.Date)
			txn.Month = &m
		}
	}
	return txns
}
