package columnar

import (
	"bytes"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/nathangeffen/libuseful/pkg/dataframe"
	"github.com/nathangeffen/libuseful/pkg/errors"
)

func tableToArrowSchema(t *dataframe.Table) *arrow.Schema {
	names := columnNames(t)
	fields := make([]arrow.Field, t.Cols())
	for i, ct := range t.Types() {
		fields[i] = arrow.Field{Name: names[i], Type: arrowType(ct)}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(ct dataframe.ColumnType) arrow.DataType {
	if ct == dataframe.Number {
		return arrow.PrimitiveTypes.Float64
	}
	return arrow.BinaryTypes.String
}

func columnTypeFromArrow(dt arrow.DataType) (dataframe.ColumnType, bool) {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64,
		arrow.FLOAT32, arrow.FLOAT64:
		return dataframe.Number, true
	case arrow.STRING, arrow.LARGE_STRING:
		return dataframe.Text, true
	default:
		return 0, false
	}
}

// recordBatches builds one record per batchSize rows and hands each to emit.
func recordBatches(mem memory.Allocator, schema *arrow.Schema, t *dataframe.Table, batchSize int, emit func(arrow.Record) error) error {
	if batchSize <= 0 {
		batchSize = t.Rows()
	}

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	flush := func() error {
		rec := b.NewRecord()
		defer rec.Release()
		return emit(rec)
	}

	pending := 0
	for r := 0; r < t.Rows(); r++ {
		row, err := t.Row(r)
		if err != nil {
			return err
		}
		for c, v := range row {
			switch fb := b.Field(c).(type) {
			case *array.Float64Builder:
				fb.Append(v.Float())
			case *array.StringBuilder:
				fb.Append(v.Str())
			default:
				return errors.Newf(errors.ErrorTypeInternal, "unexpected builder %T", fb)
			}
		}
		pending++
		if pending == batchSize {
			if err := flush(); err != nil {
				return err
			}
			pending = 0
		}
	}
	if pending > 0 || t.Rows() == 0 {
		return flush()
	}
	return nil
}

// tableFromSchema allocates an empty table matching an Arrow schema.
func tableFromSchema(schema *arrow.Schema, format Format) (*dataframe.Table, error) {
	fields := schema.Fields()
	header := make([]string, len(fields))
	types := make([]dataframe.ColumnType, len(fields))
	for i, f := range fields {
		ct, ok := columnTypeFromArrow(f.Type)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeData, "column %q has unsupported type %s", f.Name, f.Type).
				WithDetail("format", string(format))
		}
		header[i] = f.Name
		types[i] = ct
	}
	return dataframe.New(len(fields), header, types)
}

// appendRecord copies every row of rec into t. Nulls become 0 or "".
func appendRecord(t *dataframe.Table, rec arrow.Record) error {
	cols := int(rec.NumCols())
	values := make([]dataframe.Value, cols)
	for r := 0; r < int(rec.NumRows()); r++ {
		for c := 0; c < cols; c++ {
			values[c] = arrowValue(rec.Column(c), r)
		}
		if err := t.Append(values...); err != nil {
			return err
		}
	}
	return nil
}

func arrowValue(col arrow.Array, i int) dataframe.Value {
	null := col.IsNull(i)
	switch c := col.(type) {
	case *array.String:
		if null {
			return dataframe.TextValue("")
		}
		return dataframe.TextValue(strings.Clone(c.Value(i)))
	case *array.LargeString:
		if null {
			return dataframe.TextValue("")
		}
		return dataframe.TextValue(strings.Clone(c.Value(i)))
	}

	if null {
		return dataframe.NumberValue(0)
	}
	var f float64
	switch c := col.(type) {
	case *array.Float64:
		f = c.Value(i)
	case *array.Float32:
		f = float64(c.Value(i))
	case *array.Int64:
		f = float64(c.Value(i))
	case *array.Int32:
		f = float64(c.Value(i))
	case *array.Int16:
		f = float64(c.Value(i))
	case *array.Int8:
		f = float64(c.Value(i))
	case *array.Uint64:
		f = float64(c.Value(i))
	case *array.Uint32:
		f = float64(c.Value(i))
	case *array.Uint16:
		f = float64(c.Value(i))
	case *array.Uint8:
		f = float64(c.Value(i))
	}
	return dataframe.NumberValue(f)
}

func writeArrow(w io.Writer, t *dataframe.Table, config *WriterConfig) error {
	mem := memory.NewGoAllocator()
	schema := tableToArrowSchema(t)

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		return dataError(err, Arrow, "failed to create Arrow writer")
	}

	if err := recordBatches(mem, schema, t, config.BatchSize, fw.Write); err != nil {
		_ = fw.Close()
		return dataError(err, Arrow, "failed to write record batch")
	}
	if err := fw.Close(); err != nil {
		return dataError(err, Arrow, "failed to close Arrow writer")
	}
	return nil
}

func readArrow(r io.Reader) (*dataframe.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read Arrow data")
	}

	fr, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, dataError(err, Arrow, "failed to create Arrow reader")
	}
	defer fr.Close()

	t, err := tableFromSchema(fr.Schema(), Arrow)
	if err != nil {
		return nil, err
	}
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, dataError(err, Arrow, "failed to read record batch")
		}
		if err := appendRecord(t, rec); err != nil {
			return nil, err
		}
	}
	return t, nil
}
