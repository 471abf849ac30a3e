package csvdoc

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrColumnOutOfRange is returned by SortBy for an index outside the field list.
var ErrColumnOutOfRange = errors.New("column index out of range")

// ParseError describes CSV text that could not be turned into a Table.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse csv: line %d: %s", e.Line, e.Message)
	}
	return "parse csv: " + e.Message
}

// Row maps a field name to its cell value.
type Row map[string]string

// Value returns the cell for field, or "" when the row has no such cell.
func (r Row) Value(field string) string {
	return r[field]
}

// Table holds the parsed header fields and the data rows in their current order.
type Table struct {
	Fields []string
	Rows   []Row
	// Warnings counts rows that carried more cells than there are fields.
	Warnings int
}

// Parse reads CSV text whose first record is the header row.
func Parse(text string) (*Table, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, &ParseError{Message: "no header row"}
	}
	if err != nil {
		return nil, toParseError(err)
	}

	t := &Table{Fields: uniqueFields(header), Rows: []Row{}}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, toParseError(err)
		}
		if len(record) > len(t.Fields) {
			t.Warnings++
		}
		row := make(Row, len(t.Fields))
		for i, f := range t.Fields {
			if i < len(record) {
				row[f] = record[i]
			} else {
				row[f] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func toParseError(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &ParseError{Line: perr.Line, Message: perr.Err.Error()}
	}
	return &ParseError{Message: err.Error()}
}

// uniqueFields suffixes repeated header names with _1, _2, ... so that every
// column keeps its own key in Row.
func uniqueFields(header []string) []string {
	seen := make(map[string]int, len(header))
	taken := make(map[string]bool, len(header))
	for _, h := range header {
		taken[h] = true
	}
	out := make([]string, len(header))
	for i, h := range header {
		n, dup := seen[h]
		seen[h] = n + 1
		if !dup {
			out[i] = h
			continue
		}
		name := fmt.Sprintf("%s_%d", h, n)
		for taken[name] {
			n++
			name = fmt.Sprintf("%s_%d", h, n)
		}
		seen[h] = n + 1
		taken[name] = true
		out[i] = name
	}
	return out
}

// Serialize writes the header and rows back out as CSV text with "\n" line
// endings and no trailing newline.
func Serialize(t *Table) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := writeRecord(&buf, w, t.Fields); err != nil {
		return "", errors.Wrap(err, "write header")
	}
	record := make([]string, len(t.Fields))
	for i, row := range t.Rows {
		for j, f := range t.Fields {
			record[j] = row.Value(f)
		}
		if err := writeRecord(&buf, w, record); err != nil {
			return "", errors.Wrapf(err, "write row %d", i)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrap(err, "flush csv")
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// writeRecord writes a lone empty cell as "" so the line is not read back as
// a blank line and skipped.
func writeRecord(buf *bytes.Buffer, w *csv.Writer, record []string) error {
	if len(record) == 1 && record[0] == "" {
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
		buf.WriteString("\"\"\n")
		return nil
	}
	return w.Write(record)
}

// SortBy returns a table with the same fields whose rows are ordered by the
// given column. The sort is stable: rows with equal keys keep the order they
// had in t. The receiver is not modified.
func (t *Table) SortBy(column int, ascending bool) (*Table, error) {
	if column < 0 || column >= len(t.Fields) {
		return nil, errors.Wrapf(ErrColumnOutOfRange, "sort by %d of %d", column, len(t.Fields))
	}
	field := t.Fields[column]
	rows := make([]Row, len(t.Rows))
	copy(rows, t.Rows)

	c := collate.New(language.Und)
	sort.SliceStable(rows, func(i, j int) bool {
		cmp := c.CompareString(rows[i].Value(field), rows[j].Value(field))
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	})

	return &Table{Fields: t.Fields, Rows: rows, Warnings: t.Warnings}, nil
}
