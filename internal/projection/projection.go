// Package projection reads budgeted cash-flow matrices (classification rows
// by month columns) and unpivots them into long form.
package projection

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flujo-dev/flujo/internal/importer"
	"github.com/flujo-dev/flujo/internal/model"
	"github.com/flujo-dev/flujo/internal/normalize"
	"github.com/flujo-dev/flujo/internal/period"
)

// DefaultClassificationColumn is the header of the label column.
const DefaultClassificationColumn = "CLASIFICACION"

// Column is a month column of the matrix.
type Column struct {
	Index int
	Label string
	Month time.Time
}

// Row is one classification row; Cells align with Matrix.Columns and are
// nil where the sheet is blank.
type Row struct {
	Classification model.Classification
	Cells          []*decimal.Decimal
}

// Stats counts what ReadMatrix skipped.
type Stats struct {
	DroppedRows    int      // rows without a classification
	SkippedColumns []string // headers that are not month labels
	BadCells       int      // non-blank cells that are not amounts, read as zero
}

// Matrix is a parsed projection sheet.
type Matrix struct {
	Columns []Column
	Rows    []Row
	Stats   Stats
}

// Options controls how a projection sheet is read.
type Options struct {
	// Column is the classification column; empty means
	// DefaultClassificationColumn.
	Column string
	// DecimalComma reads "1.234,56" style amounts from text exports.
	DecimalComma bool
}

// ReadMatrix parses a projection sheet. The classification column is
// required; every other column whose header parses as a month becomes a
// month column. Classifications are normalized so they join with actual
// activity regardless of case or accents.
func ReadMatrix(s *importer.Sheet, opts Options) (*Matrix, error) {
	classColumn := opts.Column
	if classColumn == "" {
		classColumn = DefaultClassificationColumn
	}
	t, err := s.Table(classColumn)
	if err != nil {
		return nil, err
	}
	classIdx := t.Col(classColumn)
	decimalComma := opts.DecimalComma && !t.RawNumbers

	m := &Matrix{}
	for i, h := range t.RawHeader {
		if i == classIdx {
			continue
		}
		month, err := period.ParseMonth(h)
		if err != nil {
			if !importer.IsUnnamed(t.Header[i]) {
				m.Stats.SkippedColumns = append(m.Stats.SkippedColumns, h)
			}
			continue
		}
		m.Columns = append(m.Columns, Column{Index: i, Label: h, Month: month})
	}

	for _, rec := range t.Rows {
		label := normalize.Normalize(importer.Cell(rec, classIdx))
		if label == "" {
			m.Stats.DroppedRows++
			continue
		}
		row := Row{Classification: model.Classification(label), Cells: make([]*decimal.Decimal, len(m.Columns))}
		for j, col := range m.Columns {
			raw := importer.Cell(rec, col.Index)
			if raw == "" {
				continue
			}
			amt, ok := importer.ParseAmount(raw, decimalComma)
			if !ok {
				m.Stats.BadCells++
			}
			row.Cells[j] = &amt
		}
		m.Rows = append(m.Rows, row)
	}
	return m, nil
}

// Unpivot returns one entry per non-blank cell, column by column, rows in
// sheet order within each column.
func Unpivot(m *Matrix) []model.ProjectionEntry {
	var out []model.ProjectionEntry
	for j, col := range m.Columns {
		for _, row := range m.Rows {
			cell := row.Cells[j]
			if cell == nil {
				continue
			}
			out = append(out, model.ProjectionEntry{
				Classification: row.Classification,
				Month:          col.Month,
				Projected:      *cell,
			})
		}
	}
	return out
}

// Months returns the distinct month columns in sheet order.
func (m *Matrix) Months() []time.Time {
	seen := make(map[time.Time]bool)
	var out []time.Time
	for _, c := range m.Columns {
		if !seen[c.Month] {
			seen[c.Month] = true
			out = append(out, c.Month)
		}
	}
	return out
}

// Classifications returns the row labels in sheet order, without duplicates.
func (m *Matrix) Classifications() []model.Classification {
	seen := make(map[model.Classification]bool)
	var out []model.Classification
	for _, r := range m.Rows {
		if !seen[r.Classification] {
			seen[r.Classification] = true
			out = append(out, r.Classification)
		}
	}
	return out
}
