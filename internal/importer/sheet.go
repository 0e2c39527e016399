package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/flujo-dev/flujo/internal/model"
	"github.com/flujo-dev/flujo/internal/normalize"
)

// headerScanRows bounds how far down a sheet the header row is searched for.
// Bank exports often carry a few lines of account details above it.
const headerScanRows = 20

// Sheet is the raw grid of cells read from one input file.
type Sheet struct {
	Name    string
	Records [][]string
	// RawNumbers is set when numeric cells are machine-formatted (XLSX), so
	// amounts always use '.' as the decimal separator.
	RawNumbers bool
}

// Table is a Sheet with its header row located. Header names are normalized.
type Table struct {
	Name       string
	RawHeader  []string
	Header     []string
	Rows       [][]string
	RawNumbers bool
	index      map[string]int
}

// Table locates the header row: the first of the leading rows that contains
// every required column. When none does, a *model.SchemaError names the
// columns missing from the scanned row that holds the most of them.
func (s *Sheet) Table(required ...string) (*Table, error) {
	var best []string
	found := false
	for i, rec := range s.Records {
		if i >= headerScanRows {
			break
		}
		if isBlank(rec) {
			continue
		}
		t := newTable(s, i)
		missing := t.missing(required)
		if len(missing) == 0 {
			return t, nil
		}
		if !found || len(missing) < len(best) {
			best, found = missing, true
		}
	}
	if !found {
		best = normalizeAll(required)
	}
	return nil, &model.SchemaError{Table: s.Name, Missing: best}
}

func newTable(s *Sheet, headerRow int) *Table {
	header := make([]string, len(s.Records[headerRow]))
	index := make(map[string]int, len(header))
	for i, h := range s.Records[headerRow] {
		header[i] = normalize.Normalize(h)
		if _, dup := index[header[i]]; !dup && header[i] != "" {
			index[header[i]] = i
		}
	}
	return &Table{
		Name:       s.Name,
		RawHeader:  s.Records[headerRow],
		Header:     header,
		Rows:       s.Records[headerRow+1:],
		RawNumbers: s.RawNumbers,
		index:      index,
	}
}

// Col returns the index of the named column, or -1.
func (t *Table) Col(name string) int {
	if i, ok := t.index[normalize.Normalize(name)]; ok {
		return i
	}
	return -1
}

// Cell returns the trimmed cell at col, or "" when the row is short or col < 0.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func (t *Table) missing(required []string) []string {
	var out []string
	for _, name := range required {
		if t.Col(name) < 0 {
			out = append(out, normalize.Normalize(name))
		}
	}
	return out
}

// IsUnnamed reports whether a header is a placeholder for an unlabeled column.
func IsUnnamed(header string) bool {
	return header == "" || strings.HasPrefix(header, "UNNAMED")
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func normalizeAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = normalize.Normalize(n)
	}
	return out
}

// Reader decodes one file format into a Sheet.
type Reader interface {
	Read(r io.Reader, name string) (*Sheet, error)
	Format() string
}

// CSVReader reads comma- or semicolon-delimited text exports.
type CSVReader struct{}

// Format returns the reader name.
func (CSVReader) Format() string { return "csv" }

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read sniffs the delimiter from the first line and reads every record.
func (CSVReader) Read(r io.Reader, name string) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s CSV: %w", name, err)
	}
	return &Sheet{Name: name, Records: records}, nil
}

func sniffDelimiter(data []byte) rune {
	line, _, _ := bufio.NewReader(bytes.NewReader(data)).ReadLine()
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// XLSXReader reads the first worksheet of an Excel workbook.
type XLSXReader struct {
	// Sheet selects a worksheet by name; empty means the first one.
	Sheet string
}

// Format returns the reader name.
func (XLSXReader) Format() string { return "xlsx" }

// Read returns raw cell values, so dates arrive as serial numbers and
// amounts without display formatting.
func (x XLSXReader) Read(r io.Reader, name string) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening %s workbook: %w", name, err)
	}
	defer f.Close()

	sheet := x.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%s: workbook has no sheets", name)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading %s sheet %q: %w", name, sheet, err)
	}
	return &Sheet{Name: name, Records: rows, RawNumbers: true}, nil
}
