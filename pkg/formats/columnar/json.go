package columnar

import (
	"io"
	"math"

	"github.com/nathangeffen/libuseful/pkg/dataframe"
	"github.com/nathangeffen/libuseful/pkg/errors"
	"github.com/nathangeffen/libuseful/pkg/json"
)

// jsonTable is the JSON document layout:
//
//	{"header": ["name", "age"], "types": ["text", "number"], "rows": [["Joe", 23]]}
type jsonTable struct {
	Header []string               `json:"header,omitempty"`
	Types  []dataframe.ColumnType `json:"types"`
	Rows   [][]any                `json:"rows"`
}

func writeJSON(w io.Writer, t *dataframe.Table) error {
	doc := jsonTable{
		Types: t.Types(),
		Rows:  make([][]any, t.Rows()),
	}
	if t.HasHeader() {
		doc.Header = t.Header()
	}

	for r := range doc.Rows {
		row, err := t.Row(r)
		if err != nil {
			return err
		}
		cells := make([]any, len(row))
		for c, v := range row {
			if v.Kind() == dataframe.Text {
				cells[c] = v.Str()
				continue
			}
			f := v.Float()
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return errors.Newf(errors.ErrorTypeData, "row %d, column %d: %v has no JSON representation", r, c, f).
					WithDetail("format", string(JSON))
			}
			cells[c] = f
		}
		doc.Rows[r] = cells
	}

	if err := json.Encode(w, doc); err != nil {
		return dataError(err, JSON, "failed to encode JSON table")
	}
	return nil
}

func readJSON(r io.Reader) (*dataframe.Table, error) {
	var doc jsonTable
	if err := json.Decode(r, &doc); err != nil {
		return nil, dataError(err, JSON, "failed to decode JSON table")
	}

	t, err := dataframe.New(len(doc.Types), doc.Header, doc.Types)
	if err != nil {
		return nil, err
	}

	if err := t.Reserve(len(doc.Rows)); err != nil {
		return nil, err
	}

	values := make([]dataframe.Value, len(doc.Types))
	for i, row := range doc.Rows {
		if len(row) != len(doc.Types) {
			return nil, errors.Newf(errors.ErrorTypeData, "row %d has %d cells, expected %d", i, len(row), len(doc.Types))
		}
		for c, cell := range row {
			switch v := cell.(type) {
			case string:
				values[c] = dataframe.TextValue(v)
			case float64:
				values[c] = dataframe.NumberValue(v)
			default:
				return nil, errors.Newf(errors.ErrorTypeData, "row %d, column %d: unexpected JSON value %v", i, c, cell)
			}
		}
		if err := t.Append(values...); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "JSON row does not match column types").
				WithDetail("row", i)
		}
	}
	return t, nil
}
