package config

import (
	"strings"

	"github.com/nathangeffen/libuseful/pkg/errors"
)

// Config is the complete tool configuration.
type Config struct {
	// Name identifies the configuration, e.g. the dataset it was written for
	Name string `yaml:"name" json:"name" mapstructure:"name"`
	// Version indicates the configuration version
	Version string `yaml:"version" json:"version" mapstructure:"version"`

	CSV           CSVConfig           `yaml:"csv" json:"csv" mapstructure:"csv"`
	Buffer        BufferConfig        `yaml:"buffer" json:"buffer" mapstructure:"buffer"`
	Conversion    ConversionConfig    `yaml:"conversion" json:"conversion" mapstructure:"conversion"`
	Output        OutputConfig        `yaml:"output" json:"output" mapstructure:"output"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability" mapstructure:"observability"`
}

// CSVConfig controls parsing and serialization of CSV text.
type CSVConfig struct {
	// Delimiter is the single-byte cell separator
	Delimiter string `yaml:"delimiter" json:"delimiter" mapstructure:"delimiter"`
	// Quote is the single-byte quoting character
	Quote string `yaml:"quote" json:"quote" mapstructure:"quote"`
	// HasHeader treats the first row as column names
	HasHeader bool `yaml:"has_header" json:"has_header" mapstructure:"has_header"`
	// TrimCR accepts CRLF line endings
	TrimCR bool `yaml:"trim_cr" json:"trim_cr" mapstructure:"trim_cr"`
	// SkipBlankLines keeps reading after a blank line instead of stopping
	SkipBlankLines bool `yaml:"skip_blank_lines" json:"skip_blank_lines" mapstructure:"skip_blank_lines"`
	// QuoteMode is minimal, always or never
	QuoteMode string `yaml:"quote_mode" json:"quote_mode" mapstructure:"quote_mode"`
	// CRLF writes "\r\n" line endings
	CRLF bool `yaml:"crlf" json:"crlf" mapstructure:"crlf"`
}

// BufferConfig is the growth policy for growable buffers.
type BufferConfig struct {
	InitialCapacity   int `yaml:"initial_capacity" json:"initial_capacity" mapstructure:"initial_capacity"`
	GrowthNumerator   int `yaml:"growth_numerator" json:"growth_numerator" mapstructure:"growth_numerator"`
	GrowthDenominator int `yaml:"growth_denominator" json:"growth_denominator" mapstructure:"growth_denominator"`
	// MaxCapacity caps every buffer; 0 means unlimited
	MaxCapacity int `yaml:"max_capacity" json:"max_capacity" mapstructure:"max_capacity"`
}

// ConversionConfig controls CSV to table conversion.
type ConversionConfig struct {
	// ColumnTypes lists one type per column, e.g. "text,text,number"
	ColumnTypes string `yaml:"column_types" json:"column_types" mapstructure:"column_types"`
	// FailFast turns the first numeric conversion failure into an error
	FailFast bool `yaml:"fail_fast" json:"fail_fast" mapstructure:"fail_fast"`
}

// OutputConfig selects the output encoding.
type OutputConfig struct {
	// Format is csv, json, arrow, parquet or avro
	Format string `yaml:"format" json:"format" mapstructure:"format"`
	// Compression is a stream codec for csv and json output (gzip, zstd,
	// snappy, s2, lz4, deflate, none) or the internal codec for parquet and avro
	Compression string `yaml:"compression" json:"compression" mapstructure:"compression"`
	// CompressionLevel from 1 (fastest) to 9 (best); 0 uses the default
	CompressionLevel int `yaml:"compression_level" json:"compression_level" mapstructure:"compression_level"`
}

// ObservabilityConfig contains logging, metrics and tracing settings.
type ObservabilityConfig struct {
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	// LogEncoding is json or console
	LogEncoding string `yaml:"log_encoding" json:"log_encoding" mapstructure:"log_encoding"`
	// EnableMetrics logs a metrics snapshot when a command finishes
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics" mapstructure:"enable_metrics"`
	// EnableTracing exports spans to stderr
	EnableTracing bool `yaml:"enable_tracing" json:"enable_tracing" mapstructure:"enable_tracing"`
	// ServiceName is the tracing service name
	ServiceName string `yaml:"service_name" json:"service_name" mapstructure:"service_name"`
}

// NewDefaultConfig returns a configuration matching the library defaults:
// comma separated input with a header, buffers growing 10, 15, 22, ...
// and CSV output.
func NewDefaultConfig(name string) *Config {
	return &Config{
		Name:    name,
		Version: "1.0.0",
		CSV: CSVConfig{
			Delimiter: ",",
			Quote:     `"`,
			HasHeader: true,
			QuoteMode: "minimal",
		},
		Buffer: BufferConfig{
			InitialCapacity:   10,
			GrowthNumerator:   3,
			GrowthDenominator: 2,
		},
		Output: OutputConfig{
			Format:      "csv",
			Compression: "none",
		},
		Observability: ObservabilityConfig{
			LogLevel:    "warn",
			LogEncoding: "console",
			ServiceName: "useful",
		},
	}
}

var (
	validFormats     = []string{"csv", "json", "arrow", "parquet", "avro"}
	validQuoteModes  = []string{"minimal", "always", "never"}
	validLogLevels   = []string{"debug", "info", "warn", "error"}
	validLogEncoding = []string{"json", "console"}
)

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if len(c.CSV.Delimiter) != 1 {
		return invalid("csv.delimiter must be a single byte, got %q", c.CSV.Delimiter)
	}
	if len(c.CSV.Quote) != 1 {
		return invalid("csv.quote must be a single byte, got %q", c.CSV.Quote)
	}
	if c.CSV.Delimiter == c.CSV.Quote {
		return invalid("csv.delimiter and csv.quote must differ")
	}
	if !oneOf(c.CSV.QuoteMode, validQuoteModes) {
		return invalid("csv.quote_mode must be one of %s", strings.Join(validQuoteModes, ", "))
	}

	b := c.Buffer
	if b.InitialCapacity < 1 {
		return invalid("buffer.initial_capacity must be positive")
	}
	if b.GrowthDenominator < 1 || b.GrowthNumerator <= b.GrowthDenominator {
		return invalid("buffer growth factor %d/%d must be greater than 1", b.GrowthNumerator, b.GrowthDenominator)
	}
	if b.MaxCapacity < 0 {
		return invalid("buffer.max_capacity cannot be negative")
	}
	if b.MaxCapacity > 0 && b.MaxCapacity < b.InitialCapacity {
		return invalid("buffer.max_capacity %d is below initial_capacity %d", b.MaxCapacity, b.InitialCapacity)
	}

	if !oneOf(c.Output.Format, validFormats) {
		return invalid("output.format must be one of %s", strings.Join(validFormats, ", "))
	}
	if c.Output.CompressionLevel < 0 || c.Output.CompressionLevel > 9 {
		return invalid("output.compression_level must be between 0 and 9")
	}

	if !oneOf(c.Observability.LogLevel, validLogLevels) {
		return invalid("observability.log_level must be one of %s", strings.Join(validLogLevels, ", "))
	}
	if !oneOf(c.Observability.LogEncoding, validLogEncoding) {
		return invalid("observability.log_encoding must be json or console")
	}
	return nil
}

// DelimiterByte returns the configured delimiter.
func (c *CSVConfig) DelimiterByte() byte {
	if c.Delimiter == "" {
		return ','
	}
	return c.Delimiter[0]
}

// QuoteByte returns the configured quoting character.
func (c *CSVConfig) QuoteByte() byte {
	if c.Quote == "" {
		return '"'
	}
	return c.Quote[0]
}

// IsCompressionEnabled returns true if output compression was requested
func (o *OutputConfig) IsCompressionEnabled() bool {
	return o.Compression != "" && o.Compression != "none"
}

func oneOf(s string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(s, a) {
			return true
		}
	}
	return false
}

func invalid(format string, args ...interface{}) error {
	return errors.Newf(errors.ErrorTypeConfig, format, args...)
}
