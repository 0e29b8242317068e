// Package parser reads published reference CSV files into header-keyed rows.
// It is deliberately forgiving: reference tables are maintained by hand in
// spreadsheets and re-exported, so mixed encodings, stray quotes and ragged
// rows are the normal case, not the exception.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Warning flags a row the parser had to repair or skip.
type Warning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Result holds parsed rows plus everything a caller may want to log about
// how the file was read.
type Result struct {
	Header   []string            `json:"header"`
	Records  []map[string]string `json:"records"`
	Warnings []Warning           `json:"warnings"`
	Encoding string              `json:"encoding"`
}

// Parse decodes and reads a CSV file into one map per row, keyed by the
// trimmed header names. Rows with too few cells are padded, rows with too
// many are truncated, unreadable rows are skipped; every repair produces a
// Warning. Row numbers in warnings are spreadsheet-style: the header is
// row 1.
func Parse(data []byte) (*Result, error) {
	decoded, encName, err := DetectAndDecode(data)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	r := csv.NewReader(bytes.NewReader(decoded))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file: no header row")
		}
		return nil, fmt.Errorf("read header row: %w", err)
	}
	for i, h := range header {
		header[i] = cleanCell(h)
	}

	res := &Result{Header: header, Encoding: encName}
	width := len(header)
	row := 1

	for {
		cells, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			res.Warnings = append(res.Warnings, Warning{Row: row, Message: fmt.Sprintf("unreadable row skipped: %v", err)})
			continue
		}

		switch {
		case len(cells) < width:
			res.Warnings = append(res.Warnings, Warning{
				Row:     row,
				Message: fmt.Sprintf("%d cells where %d expected, missing cells treated as empty", len(cells), width),
			})
			padded := make([]string, width)
			copy(padded, cells)
			cells = padded
		case len(cells) > width:
			res.Warnings = append(res.Warnings, Warning{
				Row:     row,
				Message: fmt.Sprintf("%d cells where %d expected, extra cells dropped", len(cells), width),
			})
			cells = cells[:width]
		}

		rec := make(map[string]string, width)
		for i, name := range header {
			rec[name] = cells[i]
		}
		res.Records = append(res.Records, rec)
	}

	if len(res.Records) == 0 {
		return nil, errors.New("file contains no data rows")
	}
	return res, nil
}

// cleanCell trims surrounding whitespace and any byte order mark that leaked
// into a header cell.
func cleanCell(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}
