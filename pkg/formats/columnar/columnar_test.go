package columnar

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathangeffen/libuseful/pkg/dataframe"
	"github.com/nathangeffen/libuseful/pkg/errors"
)

func people(t *testing.T) *dataframe.Table {
	t.Helper()

	df, err := dataframe.New(3, []string{"First", "Last", "age"},
		[]dataframe.ColumnType{dataframe.Text, dataframe.Text, dataframe.Number})
	require.NoError(t, err)
	require.NoError(t, df.AppendVar("Joe", "Bloggs", 23.123457))
	require.NoError(t, df.AppendVar("Jane", "Doe", 30.123456789))
	require.NoError(t, df.AppendVar("Igor", `The "Gentle" Giant`, 22.222222222))
	require.NoError(t, df.AppendVar("Lola", "Lillyfield", 90))
	return df
}

func assertSameTable(t *testing.T, want, got *dataframe.Table) {
	t.Helper()

	require.Equal(t, want.Rows(), got.Rows())
	require.Equal(t, want.Cols(), got.Cols())
	assert.Equal(t, want.Header(), got.Header())
	assert.Equal(t, want.Types(), got.Types())
	for r := 0; r < want.Rows(); r++ {
		w, err := want.Row(r)
		require.NoError(t, err)
		g, err := got.Row(r)
		require.NoError(t, err)
		assert.Equal(t, w, g, "row %d", r)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []Format{Arrow, Parquet, Avro, JSON} {
		t.Run(string(format), func(t *testing.T) {
			df := people(t)

			var buf bytes.Buffer
			require.NoError(t, Write(&buf, df, format))
			require.NotZero(t, buf.Len())

			got, err := Read(&buf, format)
			require.NoError(t, err)
			assertSameTable(t, df, got)
		})
	}
}

func TestRoundTripBatches(t *testing.T) {
	df := people(t)

	for _, format := range []Format{Arrow, Parquet} {
		t.Run(string(format), func(t *testing.T) {
			config := DefaultWriterConfig(format)
			config.BatchSize = 3

			var buf bytes.Buffer
			require.NoError(t, WriteConfig(&buf, df, config))

			got, err := Read(&buf, format)
			require.NoError(t, err)
			assertSameTable(t, df, got)
		})
	}
}

func TestCompressionOptions(t *testing.T) {
	tests := []struct {
		format      Format
		compression string
		wantErr     bool
	}{
		{Parquet, "gzip", false},
		{Parquet, "zstd", false},
		{Parquet, "none", false},
		{Parquet, "rar", true},
		{Avro, "deflate", false},
		{Avro, "null", false},
		{Avro, "zstd", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.format)+"/"+tt.compression, func(t *testing.T) {
			df := people(t)
			config := DefaultWriterConfig(tt.format)
			config.Compression = tt.compression

			var buf bytes.Buffer
			err := WriteConfig(&buf, df, config)
			if tt.wantErr {
				assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument), "got %v", err)
				return
			}
			require.NoError(t, err)

			got, err := Read(&buf, tt.format)
			require.NoError(t, err)
			assertSameTable(t, df, got)
		})
	}
}

func TestHeaderlessTable(t *testing.T) {
	df, err := dataframe.New(2, nil, []dataframe.ColumnType{dataframe.Number, dataframe.Number})
	require.NoError(t, err)
	require.NoError(t, df.AppendVar(1, 2))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, df, Arrow))

	got, err := Read(&buf, Arrow)
	require.NoError(t, err)
	assert.Equal(t, []string{"V1", "V2"}, []string(got.Header()))
}

func TestAvroFieldNames(t *testing.T) {
	df, err := dataframe.New(3, []string{"first name", "first-name", "2nd"},
		[]dataframe.ColumnType{dataframe.Text, dataframe.Text, dataframe.Number})
	require.NoError(t, err)
	require.NoError(t, df.AppendVar("a", "b", 3))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, df, Avro))
	raw := buf.Bytes()

	ocf, err := goavro.NewOCFReader(bytes.NewReader(raw))
	require.NoError(t, err)
	schema := ocf.Codec().Schema()
	assert.Contains(t, schema, `"name":"first_name"`)
	assert.Contains(t, schema, `"name":"first_name_2"`)
	assert.Contains(t, schema, `"name":"_2nd"`)

	got, err := Read(bytes.NewReader(raw), Avro)
	require.NoError(t, err)
	assertSameTable(t, df, got)
}

func TestJSONLayout(t *testing.T) {
	df, err := dataframe.New(2, []string{"name", "n"},
		[]dataframe.ColumnType{dataframe.Text, dataframe.Number})
	require.NoError(t, err)
	require.NoError(t, df.AppendVar("x", 1.5))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, df, JSON))
	assert.JSONEq(t, `{"header":["name","n"],"types":["text","number"],"rows":[["x",1.5]]}`, buf.String())

	require.NoError(t, df.AppendVar("y", math.Inf(1)))
	buf.Reset()
	assert.True(t, errors.IsType(Write(&buf, df, JSON), errors.ErrorTypeData))
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"malformed", `{"types": [`},
		{"unknown type", `{"types":["date"],"rows":[]}`},
		{"short row", `{"types":["text","number"],"rows":[["a"]]}`},
		{"wrong kind", `{"types":["number"],"rows":[["a"]]}`},
		{"no columns", `{"types":[],"rows":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.in), JSON)
			assert.Error(t, err)
		})
	}
}

func TestReadGarbage(t *testing.T) {
	for _, format := range []Format{Arrow, Parquet, Avro} {
		t.Run(string(format), func(t *testing.T) {
			_, err := Read(strings.NewReader("definitely not a columnar file"), format)
			assert.True(t, errors.IsType(err, errors.ErrorTypeData), "got %v", err)
		})
	}
}

func TestFormats(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"parquet", Parquet, true},
		{"ARROW", Arrow, true},
		{"feather", Arrow, true},
		{"avro", Avro, true},
		{"json", JSON, true},
		{"orc", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if !tt.ok {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	f, ok := FromPath("out/people.parquet")
	assert.True(t, ok)
	assert.Equal(t, Parquet, f)
	_, ok = FromPath("people.csv")
	assert.False(t, ok)

	info := GetFormatInfo(Avro)
	require.NotNil(t, info)
	assert.Equal(t, ".avro", info.FileExtension)
	assert.Nil(t, GetFormatInfo("orc"))

	var buf bytes.Buffer
	err := Write(&buf, people(t), "orc")
	assert.True(t, errors.IsType(err, errors.ErrorTypeCapability))
}
