// Package table holds the row/column representation shared by loaders and the reconciliation core.
package table

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one row keyed by column name.
// Raw records hold strings or decoded JSON scalars; canonical records hold
// decimal.Decimal for monetary fields and Date for date fields.
type Record map[string]any

// Date is a parsed date cell. Valid is false for the missing-date marker.
type Date struct {
	Time  time.Time
	Valid bool
}

// MissingDate returns the marker stored for unparsable dates
func MissingDate() Date {
	return Date{}
}

// Key formats the date as YYYY-MM-DD, or "" for the missing marker
func (d Date) Key() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format("2006-01-02")
}

// MarshalJSON writes valid dates as YYYY-MM-DD and the missing marker as null
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Key())
}

// Amount returns the decimal stored in col
func (r Record) Amount(col string) (decimal.Decimal, bool) {
	v, ok := r[col].(decimal.Decimal)
	return v, ok
}

// Text returns the string stored in col
func (r Record) Text(col string) (string, bool) {
	v, ok := r[col].(string)
	return v, ok
}

// Date returns the date stored in col
func (r Record) Date(col string) (Date, bool) {
	v, ok := r[col].(Date)
	return v, ok
}

// Clone returns a shallow copy of the record
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered set of columns and the rows that use them
type Table struct {
	Columns []string
	Rows    []Record
}

// New creates an empty table with the given columns
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows. A nil table has none.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// HasColumn reports whether name is one of the table columns
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Append adds a row, registering any column not seen before
func (t *Table) Append(r Record) {
	for _, col := range sortedKeys(r) {
		if !t.HasColumn(col) {
			t.Columns = append(t.Columns, col)
		}
	}
	t.Rows = append(t.Rows, r)
}

// Clone deep-copies the table so callers can mutate rows freely.
// A nil table clones to an empty one.
func (t *Table) Clone() *Table {
	if t == nil {
		return New()
	}
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Record, 0, len(t.Rows)),
	}
	for _, r := range t.Rows {
		if r == nil {
			r = Record{}
		}
		out.Rows = append(out.Rows, r.Clone())
	}
	if len(out.Columns) == 0 {
		out.Columns = columnsFromRows(out.Rows)
	}
	return out
}

// Rename renames columns in place. Unmapped columns keep their names.
func (t *Table) Rename(mapping map[string]string) {
	if t == nil || len(mapping) == 0 {
		return
	}
	for i, c := range t.Columns {
		if to, ok := mapping[c]; ok {
			t.Columns[i] = to
		}
	}
	for i, r := range t.Rows {
		renamed := make(Record, len(r))
		for k, v := range r {
			if to, ok := mapping[k]; ok {
				k = to
			}
			renamed[k] = v
		}
		t.Rows[i] = renamed
	}
}

// Filter returns a table with the rows for which keep returns true
func (t *Table) Filter(keep func(Record) bool) *Table {
	out := New()
	if t == nil {
		return out
	}
	out.Columns = append(out.Columns, t.Columns...)
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Head returns up to n rows from the start of the table
func (t *Table) Head(n int) []Record {
	if t == nil || n <= 0 {
		return nil
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return append([]Record(nil), t.Rows[:n]...)
}

// Tail returns up to n rows from the end of the table
func (t *Table) Tail(n int) []Record {
	if t == nil || n <= 0 {
		return nil
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return append([]Record(nil), t.Rows[len(t.Rows)-n:]...)
}

func columnsFromRows(rows []Record) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range rows {
		for _, k := range sortedKeys(r) {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return cols
}

func sortedKeys(r Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
