// Package columnar serializes typed tables in Arrow IPC, Parquet, Avro OCF
// and JSON.
//
// Number columns map to float64 (Arrow Float64, Parquet DOUBLE, Avro
// double) and Text columns to UTF-8 strings. Reading accepts any of the
// integer or floating point physical types as a Number column.
package columnar

import (
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nathangeffen/libuseful/pkg/dataframe"
	"github.com/nathangeffen/libuseful/pkg/errors"
	"github.com/nathangeffen/libuseful/pkg/logger"
	"github.com/nathangeffen/libuseful/pkg/metrics"
)

// Format represents a table serialization format
type Format string

const (
	// Arrow is the Apache Arrow IPC file format
	Arrow Format = "arrow"
	// Parquet is Apache Parquet
	Parquet Format = "parquet"
	// Avro is an Apache Avro object container file
	Avro Format = "avro"
	// JSON is a single JSON object holding header, types and rows
	JSON Format = "json"
)

// ParseFormat parses a format name such as "parquet".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Arrow, Parquet, Avro, JSON:
		return f, nil
	case "ipc", "feather":
		return Arrow, nil
	default:
		return "", errors.Newf(errors.ErrorTypeInvalidArgument, "unsupported columnar format: %s", s)
	}
}

// FromPath picks a format from the file extension. ok is false when the
// extension is not a columnar one.
func FromPath(path string) (f Format, ok bool) {
	for _, info := range formats {
		if strings.EqualFold(filepath.Ext(path), info.FileExtension) {
			return info.Format, true
		}
	}
	return "", false
}

// WriterConfig configures table writers
type WriterConfig struct {
	Format Format
	// Compression names the Parquet codec (snappy, gzip, zstd, lz4, none)
	// or the Avro codec (snappy, deflate, none). Empty means snappy.
	Compression string
	// BatchSize bounds the rows per Arrow record batch. Zero writes one batch.
	BatchSize int
}

// DefaultWriterConfig returns default writer configuration
func DefaultWriterConfig(format Format) *WriterConfig {
	return &WriterConfig{
		Format:      format,
		Compression: "snappy",
		BatchSize:   10000,
	}
}

// Write serializes t in the given format with default settings.
func Write(w io.Writer, t *dataframe.Table, format Format) error {
	return WriteConfig(w, t, DefaultWriterConfig(format))
}

// WriteConfig serializes t according to config.
func WriteConfig(w io.Writer, t *dataframe.Table, config *WriterConfig) error {
	if config == nil {
		return errors.New(errors.ErrorTypeInvalidArgument, "writer config is required")
	}

	timer := metrics.NewTimer("columnar_write")
	defer timer.Stop()

	var err error
	switch config.Format {
	case Arrow:
		err = writeArrow(w, t, config)
	case Parquet:
		err = writeParquet(w, t, config)
	case Avro:
		err = writeAvro(w, t, config)
	case JSON:
		err = writeJSON(w, t)
	default:
		return errors.Newf(errors.ErrorTypeCapability, "unsupported columnar format: %s", config.Format)
	}
	if err != nil {
		return err
	}

	metrics.RowsWritten.Add(float64(t.Rows()))
	logger.Debug("table written",
		zap.String("format", string(config.Format)),
		zap.Int("rows", t.Rows()),
		zap.Int("columns", t.Cols()))
	return nil
}

// Read parses a table in the given format. The whole input is buffered
// because Arrow and Parquet readers need random access.
func Read(r io.Reader, format Format) (*dataframe.Table, error) {
	timer := metrics.NewTimer("columnar_read")
	defer timer.Stop()

	var (
		t   *dataframe.Table
		err error
	)
	switch format {
	case Arrow:
		t, err = readArrow(r)
	case Parquet:
		t, err = readParquet(r)
	case Avro:
		t, err = readAvro(r)
	case JSON:
		t, err = readJSON(r)
	default:
		return nil, errors.Newf(errors.ErrorTypeCapability, "unsupported columnar format: %s", format)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("table read",
		zap.String("format", string(format)),
		zap.Int("rows", t.Rows()),
		zap.Int("columns", t.Cols()))
	return t, nil
}

// FormatInfo provides information about a format
type FormatInfo struct {
	Format           Format
	Name             string
	FileExtension    string
	MIMEType         string
	SupportsCompress bool
}

var formats = []FormatInfo{
	{Format: Arrow, Name: "Apache Arrow", FileExtension: ".arrow", MIMEType: "application/vnd.apache.arrow.file"},
	{Format: Parquet, Name: "Apache Parquet", FileExtension: ".parquet", MIMEType: "application/vnd.apache.parquet", SupportsCompress: true},
	{Format: Avro, Name: "Apache Avro", FileExtension: ".avro", MIMEType: "application/avro", SupportsCompress: true},
	{Format: JSON, Name: "JSON table", FileExtension: ".json", MIMEType: "application/json"},
}

// GetFormatInfo returns information about a format, or nil if unknown.
func GetFormatInfo(format Format) *FormatInfo {
	for i := range formats {
		if formats[i].Format == format {
			info := formats[i]
			return &info
		}
	}
	return nil
}

// columnNames returns the table header, or V1..Vn when it has none.
func columnNames(t *dataframe.Table) []string {
	if t.HasHeader() {
		return t.Header()
	}
	names := make([]string, t.Cols())
	for i := range names {
		names[i] = "V" + strconv.Itoa(i+1)
	}
	return names
}

func dataError(err error, format Format, message string) error {
	return errors.Wrap(err, errors.ErrorTypeData, message).
		WithDetail("format", string(format))
}
