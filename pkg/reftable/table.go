// Package reftable loads the published requirement id table that turns the
// opaque checklist UUIDs of an IFS NEO export into display numbers and
// chapter grouping.
package reftable

import (
	"fmt"
	"strings"

	"github.com/M00N69/NEOREVIEW/pkg/parser"
)

// Column names of the published CSV.
const (
	ColUUID     = "UUID"
	ColNum      = "Num"
	ColChapter  = "Chapitre"
	ColTheme    = "Theme"
	ColSubTheme = "SSTheme"
)

var requiredColumns = []string{ColUUID, ColNum, ColChapter, ColTheme, ColSubTheme}

// Row is one requirement of the published table.
type Row struct {
	UUID     string `json:"uuid"`
	Num      string `json:"num"`
	Chapter  string `json:"chapter"`
	Theme    string `json:"theme"`
	SubTheme string `json:"subTheme"`
}

// Stats describes how the published file condensed into the table.
type Stats struct {
	SourceRows   int `json:"sourceRows"`
	Kept         int `json:"kept"`
	DroppedBlank int `json:"droppedBlank"`
	Duplicates   int `json:"duplicates"`
}

// Table indexes requirement rows by UUID. Build it with Parse; a nil *Table
// is a valid "no table available" value for every caller.
type Table struct {
	Rows  []Row `json:"rows"`
	Stats Stats `json:"stats"`

	byUUID map[string]int
}

// Parse builds a Table from the raw bytes of the published CSV. Rows missing
// either UUID or Num are dropped, and duplicate (Chapitre, Num) pairs
// collapse to their first occurrence. Header validation is strict: a file
// without the five required columns is not a requirement table.
func Parse(data []byte) (*Table, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("requirement table: %w", err)
	}

	present := make(map[string]bool, len(res.Header))
	for _, h := range res.Header {
		present[h] = true
	}
	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("requirement table: missing columns %s", strings.Join(missing, ", "))
	}

	t := &Table{byUUID: make(map[string]int, len(res.Records))}
	t.Stats.SourceRows = len(res.Records)
	seenPair := make(map[[2]string]bool, len(res.Records))

	for _, rec := range res.Records {
		row := Row{
			UUID:     strings.TrimSpace(rec[ColUUID]),
			Num:      strings.TrimSpace(rec[ColNum]),
			Chapter:  strings.TrimSpace(rec[ColChapter]),
			Theme:    strings.TrimSpace(rec[ColTheme]),
			SubTheme: strings.TrimSpace(rec[ColSubTheme]),
		}
		if row.UUID == "" || row.Num == "" {
			t.Stats.DroppedBlank++
			continue
		}
		pair := [2]string{row.Chapter, row.Num}
		if seenPair[pair] {
			t.Stats.Duplicates++
			continue
		}
		seenPair[pair] = true

		t.Rows = append(t.Rows, row)
		// first occurrence wins for duplicate UUIDs as well
		if _, exists := t.byUUID[row.UUID]; !exists {
			t.byUUID[row.UUID] = len(t.Rows) - 1
		}
	}
	t.Stats.Kept = len(t.Rows)

	return t, nil
}

// ByUUID returns the requirement row for a checklist UUID. A nil table never
// matches, so callers can hold a nil *Table when the fetch failed.
func (t *Table) ByUUID(uuid string) (Row, bool) {
	if t == nil {
		return Row{}, false
	}
	i, ok := t.byUUID[uuid]
	if !ok {
		return Row{}, false
	}
	return t.Rows[i], true
}

// Len returns the number of usable rows. Nil-safe.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
