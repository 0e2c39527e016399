// Package runlog records one CSV row per classify or reconcile run in
// logs/run-log.csv, so a result can be traced back to its exact inputs.
package runlog

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is one row in the run log.
type Entry struct {
	RunID            string
	Timestamp        time.Time
	Command          string
	Statement        string
	StatementDigest  string
	Projection       string
	ProjectionDigest string
	Rows             int
	Classified       int
	Percent          decimal.Decimal
	Anomalies        int
	Export           string
}

// Header is the CSV header for run-log.csv.
const Header = "run_id,timestamp,command,statement,statement_sha256,projection,projection_sha256,rows,classified,percent_classified,anomalies,export"

// File is the run log path relative to the project root.
const File = "logs/run-log.csv"

const (
	numFields           = 12
	colRunID            = 0
	colTimestamp        = 1
	colCommand          = 2
	colStatement        = 3
	colStatementDigest  = 4
	colProjection       = 5
	colProjectionDigest = 6
	colRows             = 7
	colClassified       = 8
	colPercent          = 9
	colAnomalies        = 10
	colExport           = 11
)

// NewRunID returns a random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Digest returns the hex SHA-256 of the file at path.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colRunID] = e.RunID
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colCommand] = e.Command
	row[colStatement] = e.Statement
	row[colStatementDigest] = e.StatementDigest
	row[colProjection] = e.Projection
	row[colProjectionDigest] = e.ProjectionDigest
	row[colRows] = strconv.Itoa(e.Rows)
	row[colClassified] = strconv.Itoa(e.Classified)
	row[colPercent] = e.Percent.StringFixed(2)
	row[colAnomalies] = strconv.Itoa(e.Anomalies)
	row[colExport] = e.Export
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	ints := make(map[int]int, 3)
	for _, col := range []int{colRows, colClassified, colAnomalies} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		ints[col] = n
	}
	pct, err := decimal.NewFromString(record[colPercent])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing percent %q: %w", record[colPercent], err)
	}

	return Entry{
		RunID:            record[colRunID],
		Timestamp:        ts,
		Command:          record[colCommand],
		Statement:        record[colStatement],
		StatementDigest:  record[colStatementDigest],
		Projection:       record[colProjection],
		ProjectionDigest: record[colProjectionDigest],
		Rows:             ints[colRows],
		Classified:       ints[colClassified],
		Percent:          pct,
		Anomalies:        ints[colAnomalies],
		Export:           record[colExport],
	}, nil
}

// Append writes entries to <repoRoot>/logs/run-log.csv, creating the file and header if needed.
func Append(repoRoot string, entries []Entry) error {
	path := filepath.Join(repoRoot, File)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <repoRoot>/logs/run-log.csv.
// Returns an empty slice if the file does not exist.
func Read(repoRoot string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(repoRoot, File))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
