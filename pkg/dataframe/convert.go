package dataframe

import (
	"go.uber.org/zap"

	"github.com/nathangeffen/libuseful/pkg/csv"
	"github.com/nathangeffen/libuseful/pkg/errors"
	"github.com/nathangeffen/libuseful/pkg/logger"
	"github.com/nathangeffen/libuseful/pkg/matrix"
	"github.com/nathangeffen/libuseful/pkg/numeric"
)

// FromCSV builds a table from a valid, non-empty document, one type per
// column. Number cells that do not parse completely keep their best-effort
// value and are listed in the returned report.
func FromCSV(doc *csv.Document, types []ColumnType) (*Table, *numeric.Report, error) {
	if doc.Len() == 0 {
		return nil, nil, errors.New(errors.ErrorTypeInvalidArgument, "document has no rows")
	}
	if err := doc.Validate(false).Err(); err != nil {
		return nil, nil, err
	}

	rows := doc.Rows()
	cols := len(rows[0])
	if len(types) != cols {
		return nil, nil, errors.Newf(errors.ErrorTypeInvalidArgument,
			"got %d column types for %d columns", len(types), cols)
	}

	var header []string
	if doc.HasHeader() {
		header = doc.Header()
	}
	t, err := New(cols, header, types)
	if err != nil {
		return nil, nil, err
	}
	if err := t.cells.Reserve(len(rows) * cols); err != nil {
		return nil, nil, err
	}

	report := numeric.NewReport("dataframe")
	for i, row := range rows {
		for j, cell := range row {
			var v Value
			if types[j] == Number {
				v = NumberValue(report.Convert(i, j, cell))
			} else {
				v = TextValue(cell)
			}
			if err := t.cells.Push(v); err != nil {
				return nil, nil, err
			}
		}
		t.rows++
	}

	logger.Debug("table built from document",
		zap.Int("rows", t.rows),
		zap.Int("columns", cols),
		zap.Int("conversion_errors", report.Len()))
	return t, report, nil
}

// InferTypes guesses one type for each cell of the first row. A column is
// Number when every one of its cells is a complete number. An empty
// document yields nil.
func InferTypes(doc *csv.Document) []ColumnType {
	rows := doc.Rows()
	if len(rows) == 0 {
		return nil
	}

	types := make([]ColumnType, len(rows[0]))
	for c := range types {
		types[c] = Number
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			if _, err := numeric.Parse(row[c]); err != nil {
				types[c] = Text
				break
			}
		}
	}
	return types
}

// ToCSV renders every cell as text. Numbers use six decimals.
func (t *Table) ToCSV() (*csv.Document, error) {
	doc := csv.New(t.header...)
	cols := len(t.types)
	cells := make([]string, cols)
	all := t.cells.Slice()
	for r := 0; r < t.rows; r++ {
		for c, v := range all[r*cols : (r+1)*cols] {
			cells[c] = v.String()
		}
		if err := doc.Append(cells...); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// ToMatrix converts every cell to a number. Text cells are parsed and
// failures are recorded in the report like FromCSV does.
func (t *Table) ToMatrix() (*matrix.Matrix, *numeric.Report, error) {
	if t.rows == 0 {
		return nil, nil, errors.New(errors.ErrorTypeInvalidArgument, "table has no rows")
	}

	cols := len(t.types)
	m, err := matrix.New(t.rows, cols)
	if err != nil {
		return nil, nil, err
	}

	report := numeric.NewReport("dataframe")
	for i, v := range t.cells.Slice() {
		r, c := i/cols, i%cols
		f := v.num
		if v.kind == Text {
			f = report.Convert(r, c, v.text)
		}
		if err := m.Set(r, c, f); err != nil {
			return nil, nil, err
		}
	}
	return m, report, nil
}
