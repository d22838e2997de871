// Package csv holds tabular text documents: a header row plus data rows of
// cells. Documents are read with a quote-aware state machine, validated
// for uniform row width, and serialized back with configurable quoting.
package csv

import (
	"github.com/nathangeffen/libuseful/pkg/array"
	"github.com/nathangeffen/libuseful/pkg/errors"
)

// Row is an ordered sequence of cells.
type Row []string

// Clone returns a copy of r.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Document is a header row plus data rows. Rows may have different widths
// until validated. The zero value is an empty document without a header.
type Document struct {
	header Row
	rows   *array.Buffer[Row]
}

// New returns a document with the given header and no rows. Calling New
// without arguments produces a document without a header.
func New(header ...string) *Document {
	return &Document{
		header: Row(header).Clone(),
		rows:   array.New[Row](),
	}
}

// NewWithPolicy is New with a custom growth policy for the row storage.
func NewWithPolicy(p array.Policy, header ...string) (*Document, error) {
	rows, err := array.NewWithPolicy[Row](p)
	if err != nil {
		return nil, err
	}
	return &Document{header: Row(header).Clone(), rows: rows}, nil
}

func (d *Document) ensure() {
	if d.rows == nil {
		d.rows = array.New[Row]()
	}
}

// Append adds a copy of cells as a new data row.
func (d *Document) Append(cells ...string) error {
	d.ensure()
	return d.rows.Push(Row(cells).Clone())
}

// SetHeader replaces the header with a copy of cells.
func (d *Document) SetHeader(cells ...string) {
	d.header = Row(cells).Clone()
}

// HasHeader reports whether the document has a non-empty header row.
func (d *Document) HasHeader() bool {
	return len(d.header) > 0
}

// Header returns a copy of the header row.
func (d *Document) Header() Row {
	return d.header.Clone()
}

// Len returns the number of data rows.
func (d *Document) Len() int {
	if d.rows == nil {
		return 0
	}
	return d.rows.Len()
}

// Row returns a copy of data row i.
func (d *Document) Row(i int) (Row, error) {
	d.ensure()
	r, err := d.rows.At(i)
	if err != nil {
		return nil, errors.IndexOutOfRange("row", i, d.Len())
	}
	return r.Clone(), nil
}

// Rows returns the data rows. The result aliases the document and must not
// be modified.
func (d *Document) Rows() []Row {
	d.ensure()
	return d.rows.Slice()
}

// At returns the cell at (row, col).
func (d *Document) At(row, col int) (string, error) {
	d.ensure()
	r, err := d.rows.At(row)
	if err != nil {
		return "", errors.IndexOutOfRange("row", row, d.Len())
	}
	if col < 0 || col >= len(r) {
		return "", errors.IndexOutOfRange("column", col, len(r))
	}
	return r[col], nil
}

// Width returns the column count rows are expected to have: the header
// width, or the width of the first row when there is no header.
func (d *Document) Width() int {
	if d.HasHeader() {
		return len(d.header)
	}
	if d.Len() > 0 {
		return len(d.Rows()[0])
	}
	return 0
}

// Cells returns the total number of cells, header included.
func (d *Document) Cells() int {
	n := len(d.header)
	for _, r := range d.Rows() {
		n += len(r)
	}
	return n
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	out := &Document{header: d.header.Clone()}
	rows := make([]Row, d.Len())
	for i, r := range d.Rows() {
		rows[i] = r.Clone()
	}
	out.rows = array.From(rows)
	return out
}

// Free releases the header and all rows.
func (d *Document) Free() {
	d.header = nil
	if d.rows != nil {
		d.rows.Free()
	}
}
