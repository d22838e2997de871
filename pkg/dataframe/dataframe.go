// Package dataframe provides Table, a rectangular table whose columns each
// hold text or numbers, with conversions to and from CSV documents and
// numeric matrices.
//
// Cells are stored row-major as tagged values. Every conversion copies its
// input; no table shares storage with a document or matrix.
package dataframe

import (
	"io"

	"github.com/nathangeffen/libuseful/pkg/array"
	"github.com/nathangeffen/libuseful/pkg/csv"
	"github.com/nathangeffen/libuseful/pkg/errors"
)

// Table is a typed, rectangular table.
type Table struct {
	header csv.Row
	types  []ColumnType
	cells  *array.Buffer[Value]
	rows   int
}

// New returns an empty table with cols columns. types must have exactly
// cols entries; header must too, or be empty for a table without names.
func New(cols int, header []string, types []ColumnType) (*Table, error) {
	if cols < 1 {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "table needs at least one column, got %d", cols)
	}
	if len(types) != cols {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument,
			"got %d column types for %d columns", len(types), cols)
	}
	if len(header) != 0 && len(header) != cols {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument,
			"got %d header names for %d columns", len(header), cols)
	}
	for i, ct := range types {
		if ct != Number && ct != Text {
			return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "column %d has unknown type %d", i, int(ct))
		}
	}

	return &Table{
		header: csv.Row(header).Clone(),
		types:  append([]ColumnType(nil), types...),
		cells:  array.New[Value](),
	}, nil
}

// Rows returns the number of rows.
func (t *Table) Rows() int { return t.rows }

// Cols returns the number of columns.
func (t *Table) Cols() int { return len(t.types) }

// HasHeader reports whether the columns are named.
func (t *Table) HasHeader() bool { return len(t.header) > 0 }

// Header returns a copy of the column names.
func (t *Table) Header() csv.Row { return t.header.Clone() }

// Types returns a copy of the column types.
func (t *Table) Types() []ColumnType {
	return append([]ColumnType(nil), t.types...)
}

// ColumnType returns the type of column col.
func (t *Table) ColumnType(col int) (ColumnType, error) {
	if col < 0 || col >= len(t.types) {
		return 0, errors.IndexOutOfRange("column", col, len(t.types))
	}
	return t.types[col], nil
}

// Append adds one row. values must match the column count and each value's
// kind must match its column type. Storage grows by exactly one row when
// full.
func (t *Table) Append(values ...Value) error {
	cols := len(t.types)
	if len(values) != cols {
		return arityMismatch(cols, len(values))
	}
	for i, v := range values {
		if v.kind != t.types[i] {
			return typeMismatch(i, t.types[i], v.kind)
		}
	}

	if err := t.cells.Reserve((t.rows + 1) * cols); err != nil {
		return err
	}
	for _, v := range values {
		if err := t.cells.Push(v); err != nil {
			_ = t.cells.Truncate(t.rows * cols)
			return err
		}
	}
	t.rows++
	return nil
}

// Reserve ensures storage for at least rows rows in total, so that the
// following appends do not reallocate.
func (t *Table) Reserve(rows int) error {
	return t.cells.Reserve(rows * len(t.types))
}

// AppendVar adds one row from plain Go values: a string (or []byte) for
// each text column and any integer or float type for each number column.
func (t *Table) AppendVar(args ...any) error {
	if len(args) != len(t.types) {
		return arityMismatch(len(t.types), len(args))
	}

	values := make([]Value, len(args))
	for i, arg := range args {
		v, ok := toValue(arg, t.types[i])
		if !ok {
			return errors.Newf(errors.ErrorTypeInvalidArgument,
				"column %d expects %s, got %T", i, t.types[i], arg).
				WithDetail("column", i)
		}
		values[i] = v
	}
	return t.Append(values...)
}

func toValue(arg any, ct ColumnType) (Value, bool) {
	if ct == Text {
		switch s := arg.(type) {
		case string:
			return TextValue(s), true
		case []byte:
			return TextValue(string(s)), true
		}
		return Value{}, false
	}

	switch n := arg.(type) {
	case float64:
		return NumberValue(n), true
	case float32:
		return NumberValue(float64(n)), true
	case int:
		return NumberValue(float64(n)), true
	case int8:
		return NumberValue(float64(n)), true
	case int16:
		return NumberValue(float64(n)), true
	case int32:
		return NumberValue(float64(n)), true
	case int64:
		return NumberValue(float64(n)), true
	case uint:
		return NumberValue(float64(n)), true
	case uint8:
		return NumberValue(float64(n)), true
	case uint16:
		return NumberValue(float64(n)), true
	case uint32:
		return NumberValue(float64(n)), true
	case uint64:
		return NumberValue(float64(n)), true
	}
	return Value{}, false
}

// At returns the cell at (row, col).
func (t *Table) At(row, col int) (Value, error) {
	if row < 0 || row >= t.rows {
		return Value{}, errors.IndexOutOfRange("row", row, t.rows)
	}
	if col < 0 || col >= len(t.types) {
		return Value{}, errors.IndexOutOfRange("column", col, len(t.types))
	}
	return t.cells.At(row*len(t.types) + col)
}

// Float returns the number at (row, col). The column must be a Number column.
func (t *Table) Float(row, col int) (float64, error) {
	v, err := t.At(row, col)
	if err != nil {
		return 0, err
	}
	if v.kind != Number {
		return 0, typeMismatch(col, Number, v.kind)
	}
	return v.num, nil
}

// Text returns the string at (row, col). The column must be a Text column.
func (t *Table) Text(row, col int) (string, error) {
	v, err := t.At(row, col)
	if err != nil {
		return "", err
	}
	if v.kind != Text {
		return "", typeMismatch(col, Text, v.kind)
	}
	return v.text, nil
}

// Row returns a copy of row r.
func (t *Table) Row(r int) ([]Value, error) {
	if r < 0 || r >= t.rows {
		return nil, errors.IndexOutOfRange("row", r, t.rows)
	}
	cols := len(t.types)
	out := make([]Value, cols)
	copy(out, t.cells.Slice()[r*cols:(r+1)*cols])
	return out, nil
}

// Write serializes the table as CSV.
func (t *Table) Write(w io.Writer, opts csv.WriteOptions) error {
	doc, err := t.ToCSV()
	if err != nil {
		return err
	}
	return csv.Write(w, doc, opts)
}

// Free releases the cells, header and column types.
func (t *Table) Free() {
	t.cells.Free()
	t.header = nil
	t.types = nil
	t.rows = 0
}
