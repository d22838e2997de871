package columnar

import (
	"io"
	"strconv"
	"strings"

	"github.com/linkedin/goavro/v2"

	"github.com/nathangeffen/libuseful/pkg/dataframe"
	"github.com/nathangeffen/libuseful/pkg/errors"
	"github.com/nathangeffen/libuseful/pkg/json"
)

const avroRecordName = "Table"

type avroField struct {
	Name string `json:"name"`
	Type any    `json:"type"`
	Doc  string `json:"doc,omitempty"`
}

type avroSchema struct {
	Type   string      `json:"type"`
	Name   string      `json:"name"`
	Fields []avroField `json:"fields"`
}

// avroName turns a column name into an Avro field name:
// [A-Za-z_][A-Za-z0-9_]*, unique within used.
func avroName(name string, used map[string]bool) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	base := b.String()
	if base == "" {
		base = "_"
	}

	out := base
	for n := 2; used[out]; n++ {
		out = base + "_" + strconv.Itoa(n)
	}
	used[out] = true
	return out
}

// tableToAvroSchema returns the schema JSON and the field name of each
// column. Original column names are kept in each field's doc.
func tableToAvroSchema(t *dataframe.Table) (string, []string, error) {
	names := columnNames(t)
	used := make(map[string]bool, len(names))
	fieldNames := make([]string, len(names))

	schema := avroSchema{Type: "record", Name: avroRecordName}
	for i, ct := range t.Types() {
		fieldNames[i] = avroName(names[i], used)
		typ := "string"
		if ct == dataframe.Number {
			typ = "double"
		}
		schema.Fields = append(schema.Fields, avroField{Name: fieldNames[i], Type: typ, Doc: names[i]})
	}

	b, err := json.Marshal(schema)
	if err != nil {
		return "", nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode Avro schema")
	}
	return string(b), fieldNames, nil
}

func avroCompression(name string) (string, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return goavro.CompressionSnappyLabel, nil
	case "deflate":
		return goavro.CompressionDeflateLabel, nil
	case "none", "null":
		return goavro.CompressionNullLabel, nil
	default:
		return "", errors.Newf(errors.ErrorTypeInvalidArgument, "unsupported Avro compression %q", name)
	}
}

func writeAvro(w io.Writer, t *dataframe.Table, config *WriterConfig) error {
	compression, err := avroCompression(config.Compression)
	if err != nil {
		return err
	}
	schema, fieldNames, err := tableToAvroSchema(t)
	if err != nil {
		return err
	}

	codec, err := goavro.NewCodec(schema)
	if err != nil {
		return dataError(err, Avro, "failed to create Avro codec")
	}
	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Codec:           codec,
		CompressionName: compression,
	})
	if err != nil {
		return dataError(err, Avro, "failed to create Avro writer")
	}

	batch := make([]any, 0, t.Rows())
	for r := 0; r < t.Rows(); r++ {
		row, err := t.Row(r)
		if err != nil {
			return err
		}
		native := make(map[string]any, len(row))
		for c, v := range row {
			if v.Kind() == dataframe.Number {
				native[fieldNames[c]] = v.Float()
			} else {
				native[fieldNames[c]] = v.Str()
			}
		}
		batch = append(batch, native)
	}

	if err := ocf.Append(batch); err != nil {
		return dataError(err, Avro, "failed to write Avro records")
	}
	return nil
}

func columnTypeFromAvro(typ any) (dataframe.ColumnType, bool) {
	switch v := typ.(type) {
	case string:
		switch v {
		case "double", "float", "int", "long":
			return dataframe.Number, true
		case "string":
			return dataframe.Text, true
		}
	case []any:
		// ["null", T]
		for _, u := range v {
			if s, ok := u.(string); ok && s != "null" {
				return columnTypeFromAvro(s)
			}
		}
	case map[string]any:
		return columnTypeFromAvro(v["type"])
	}
	return 0, false
}

func readAvro(r io.Reader) (*dataframe.Table, error) {
	ocf, err := goavro.NewOCFReader(r)
	if err != nil {
		return nil, dataError(err, Avro, "failed to create Avro reader")
	}

	var schema avroSchema
	if err := json.Unmarshal([]byte(ocf.Codec().Schema()), &schema); err != nil {
		return nil, dataError(err, Avro, "failed to decode Avro schema")
	}
	if schema.Type != "record" {
		return nil, errors.Newf(errors.ErrorTypeData, "Avro schema is %q, expected record", schema.Type)
	}

	header := make([]string, len(schema.Fields))
	types := make([]dataframe.ColumnType, len(schema.Fields))
	for i, f := range schema.Fields {
		ct, ok := columnTypeFromAvro(f.Type)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeData, "Avro field %q has unsupported type", f.Name).
				WithDetail("format", string(Avro))
		}
		header[i] = f.Name
		if f.Doc != "" {
			header[i] = f.Doc
		}
		types[i] = ct
	}

	t, err := dataframe.New(len(header), header, types)
	if err != nil {
		return nil, err
	}

	values := make([]dataframe.Value, len(header))
	for ocf.Scan() {
		datum, err := ocf.Read()
		if err != nil {
			return nil, dataError(err, Avro, "failed to read Avro record")
		}
		record, ok := datum.(map[string]any)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeData, "Avro datum is %T, expected record", datum)
		}
		for i, f := range schema.Fields {
			values[i] = avroValue(unwrapUnion(record[f.Name]), types[i])
		}
		if err := t.Append(values...); err != nil {
			return nil, err
		}
	}
	if err := ocf.Err(); err != nil {
		return nil, dataError(err, Avro, "failed to scan Avro file")
	}
	return t, nil
}

// unwrapUnion strips goavro's {"type": value} wrapping of union values.
func unwrapUnion(v any) any {
	if m, ok := v.(map[string]any); ok && len(m) == 1 {
		for _, inner := range m {
			return inner
		}
	}
	return v
}

func avroValue(v any, ct dataframe.ColumnType) dataframe.Value {
	if ct == dataframe.Text {
		s, _ := v.(string)
		return dataframe.TextValue(s)
	}
	switch n := v.(type) {
	case float64:
		return dataframe.NumberValue(n)
	case float32:
		return dataframe.NumberValue(float64(n))
	case int32:
		return dataframe.NumberValue(float64(n))
	case int64:
		return dataframe.NumberValue(float64(n))
	}
	return dataframe.NumberValue(0)
}
