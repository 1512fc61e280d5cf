// Package table defines the minimal in-memory columnar table used as the codec's read
// output and write input (spec.md §3). The host runtime's own columnar table
// interchange library is an external collaborator out of scope for this codec (§1);
// this package is the concrete data model the codec itself owns at that boundary.
package table

import (
	"fmt"

	"github.com/kongson-cheung/qvdgo/errs"
	"github.com/kongson-cheung/qvdgo/value"
)

// ElementType identifies the declared type family of a column, used on write to pick
// a symbol kind (spec.md §4.5's element-type-family table) and on read to record the
// schema inferred from the decoded symbols (spec.md §4.2).
type ElementType uint8

const (
	ElementUnknown ElementType = iota
	ElementBool
	ElementUint8
	ElementInt16
	ElementInt32
	ElementInt64
	ElementFloat32
	ElementFloat64
	ElementString
	ElementDate      // calendar date; cells are dual values built by value.DateDays
	ElementTimeOfDay // time of day; cells are dual values built by value.TimeOfDay
	ElementTimestamp // date and time; cells are dual values built by value.TimestampAt
	ElementNull      // all-null column, no declared concrete type
)

func (e ElementType) String() string {
	switch e {
	case ElementBool:
		return "bool"
	case ElementUint8:
		return "uint8"
	case ElementInt16:
		return "int16"
	case ElementInt32:
		return "int32"
	case ElementInt64:
		return "int64"
	case ElementFloat32:
		return "float32"
	case ElementFloat64:
		return "float64"
	case ElementString:
		return "string"
	case ElementDate:
		return "date"
	case ElementTimeOfDay:
		return "time_of_day"
	case ElementTimestamp:
		return "timestamp"
	case ElementNull:
		return "null"
	default:
		return "unknown"
	}
}

// Column is a single named, typed column of a Table. Cells are stored as value.Value
// so that Null can be represented uniformly alongside Int32/Float64/Text payloads.
type Column struct {
	Name   string
	Type   ElementType
	Values []value.Value
}

// Len returns the number of rows in the column.
func (c Column) Len() int { return len(c.Values) }

// Table is an ordered list of named typed columns sharing a common row count
// (spec.md §3).
type Table struct {
	Columns []Column
}

// New builds a Table from columns, validating that every column shares the same row
// count.
func New(columns ...Column) (*Table, error) {
	t := &Table{Columns: columns}
	if _, err := t.RowCount(); err != nil {
		return nil, err
	}

	return t, nil
}

// RowCount returns the table's common row count, or ErrColumnLengthMismatch if the
// columns disagree.
func (t *Table) RowCount() (int, error) {
	if len(t.Columns) == 0 {
		return 0, nil
	}

	n := t.Columns[0].Len()
	for _, c := range t.Columns[1:] {
		if c.Len() != n {
			return 0, fmt.Errorf("%w: column %q has %d rows, want %d",
				errs.ErrColumnLengthMismatch, c.Name, c.Len(), n)
		}
	}

	return n, nil
}

// Column returns the column named name, or false if no such column exists.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}

	return Column{}, false
}

// Concat appends each later batch's columns row-wise onto a copy of the first batch's
// columns, matched by position; column counts and names must agree. A caller with
// multiple input batches concatenates them with Concat before calling WriteFile
// (spec.md §6: "writer accepts multiple record batches and concatenates before
// encoding").
func Concat(batches ...*Table) (*Table, error) {
	if len(batches) == 0 {
		return &Table{}, nil
	}

	first := batches[0]
	out := make([]Column, len(first.Columns))
	for i, c := range first.Columns {
		out[i] = Column{Name: c.Name, Type: c.Type, Values: append([]value.Value(nil), c.Values...)}
	}

	for _, b := range batches[1:] {
		if len(b.Columns) != len(out) {
			return nil, fmt.Errorf("%w: batch has %d columns, want %d",
				errs.ErrColumnLengthMismatch, len(b.Columns), len(out))
		}
		for i, c := range b.Columns {
			if c.Name != out[i].Name {
				return nil, fmt.Errorf("%w: batch column %d named %q, want %q",
					errs.ErrColumnLengthMismatch, i, c.Name, out[i].Name)
			}
			out[i].Values = append(out[i].Values, c.Values...)
		}
	}

	return New(out...)
}
