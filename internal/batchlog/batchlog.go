// Package batchlog keeps an append-only CSV record of batch runs such as
// CSV imports and bulk renewal invoicing.
package batchlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/duesbook/duesbook/internal/model"
)

// Entry is one row in the batch log.
type Entry struct {
	Timestamp time.Time
	Action    string
	Source    string
	BatchID   string
	Succeeded int
	Failed    int
	Skipped   int
}

// Header is the CSV header for batch-log.csv.
const Header = "timestamp,action,source,batch_id,succeeded,failed,skipped"

const (
	numFields    = 7
	logDir       = "logs"
	logFile      = "logs/batch-log.csv"
	colTimestamp = 0
	colAction    = 1
	colSource    = 2
	colBatchID   = 3
	colSucceeded = 4
	colFailed    = 5
	colSkipped   = 6
)

// FromResult records a finished batch.
func FromResult(ts time.Time, action, source string, r model.BatchResult) Entry {
	return Entry{
		Timestamp: ts,
		Action:    action,
		Source:    source,
		BatchID:   r.BatchID,
		Succeeded: r.SuccessCount,
		Failed:    r.ErrorCount,
		Skipped:   r.Skipped,
	}
}

// Result converts the entry back to counts.
func (e Entry) Result() model.BatchResult {
	return model.BatchResult{BatchID: e.BatchID, SuccessCount: e.Succeeded, ErrorCount: e.Failed, Skipped: e.Skipped}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colAction] = e.Action
	row[colSource] = e.Source
	row[colBatchID] = e.BatchID
	row[colSucceeded] = strconv.Itoa(e.Succeeded)
	row[colFailed] = strconv.Itoa(e.Failed)
	row[colSkipped] = strconv.Itoa(e.Skipped)
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

	var counts [3]int
	for i, col := range []int{colSucceeded, colFailed, colSkipped} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		counts[i] = n
	}

	return Entry{
		Timestamp: ts,
		Action:    record[colAction],
		Source:    record[colSource],
		BatchID:   record[colBatchID],
		Succeeded: counts[0],
		Failed:    counts[1],
		Skipped:   counts[2],
	}, nil
}

// Append writes entries to <root>/logs/batch-log.csv, creating the file and header if needed.
func Append(root string, entries []Entry) error {
	dir := filepath.Join(root, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(root, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening batch log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

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

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <root>/logs/batch-log.csv.
// Returns an empty slice if the file does not exist.
func Read(root string) ([]Entry, error) {
	path := filepath.Join(root, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening batch log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading batch log CSV: %w", err)
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
