// Package matrix provides a dense row-major matrix of float64 values, the
// purely numeric projection of a table or CSV document.
package matrix

import (
	"github.com/nathangeffen/libuseful/pkg/csv"
	"github.com/nathangeffen/libuseful/pkg/errors"
	"github.com/nathangeffen/libuseful/pkg/numeric"
)

// Matrix is a rows x cols grid of float64 stored row-major.
type Matrix struct {
	rows, cols int
	vals       []float64
}

// New returns a zero-filled rows x cols matrix.
func New(rows, cols int) (*Matrix, error) {
	if rows < 0 || cols < 0 {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "invalid matrix shape %dx%d", rows, cols)
	}
	return &Matrix{rows: rows, cols: cols, vals: make([]float64, rows*cols)}, nil
}

// FromCSV converts every cell of a valid, non-empty document to a number.
// Cells that are not complete numbers are recorded in the report and stored
// as their best-effort value.
func FromCSV(doc *csv.Document) (*Matrix, *numeric.Report, error) {
	if doc.Len() == 0 {
		return nil, nil, errors.New(errors.ErrorTypeInvalidArgument, "document has no rows")
	}
	if err := doc.Validate(false).Err(); err != nil {
		return nil, nil, err
	}

	rows := doc.Rows()
	m, err := New(len(rows), len(rows[0]))
	if err != nil {
		return nil, nil, err
	}

	report := numeric.NewReport("matrix")
	for i, row := range rows {
		for j, cell := range row {
			m.vals[i*m.cols+j] = report.Convert(i, j, cell)
		}
	}
	return m, report, nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

func (m *Matrix) index(r, c int) (int, error) {
	if r < 0 || r >= m.rows {
		return 0, errors.IndexOutOfRange("row", r, m.rows)
	}
	if c < 0 || c >= m.cols {
		return 0, errors.IndexOutOfRange("column", c, m.cols)
	}
	return r*m.cols + c, nil
}

// At returns the value at (r, c).
func (m *Matrix) At(r, c int) (float64, error) {
	i, err := m.index(r, c)
	if err != nil {
		return 0, err
	}
	return m.vals[i], nil
}

// Set stores v at (r, c).
func (m *Matrix) Set(r, c int, v float64) error {
	i, err := m.index(r, c)
	if err != nil {
		return err
	}
	m.vals[i] = v
	return nil
}

// Row returns a copy of row r.
func (m *Matrix) Row(r int) ([]float64, error) {
	if r < 0 || r >= m.rows {
		return nil, errors.IndexOutOfRange("row", r, m.rows)
	}
	out := make([]float64, m.cols)
	copy(out, m.vals[r*m.cols:(r+1)*m.cols])
	return out, nil
}

// Values returns a row-major copy of every value.
func (m *Matrix) Values() []float64 {
	out := make([]float64, len(m.vals))
	copy(out, m.vals)
	return out
}

// ToCSV renders the matrix as a document of fixed six-decimal cells. The
// header is optional and must match the column count when given.
func (m *Matrix) ToCSV(header ...string) (*csv.Document, error) {
	if len(header) > 0 && len(header) != m.cols {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument,
			"header has %d names for %d columns", len(header), m.cols)
	}

	doc := csv.New(header...)
	cells := make([]string, m.cols)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			cells[c] = numeric.FormatFixed(m.vals[r*m.cols+c])
		}
		if err := doc.Append(cells...); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Free releases the storage.
func (m *Matrix) Free() {
	m.vals = nil
	m.rows, m.cols = 0, 0
}
