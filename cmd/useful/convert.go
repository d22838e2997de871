package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/nathangeffen/libuseful/pkg/compression"
	"github.com/nathangeffen/libuseful/pkg/csv"
	"github.com/nathangeffen/libuseful/pkg/dataframe"
	"github.com/nathangeffen/libuseful/pkg/errors"
	"github.com/nathangeffen/libuseful/pkg/formats/columnar"
	"github.com/nathangeffen/libuseful/pkg/logger"
	"github.com/nathangeffen/libuseful/pkg/observability"
)

const formatCSV = "csv"

type convertOptions struct {
	types       string
	format      string
	compression string
	level       int
}

func (a *app) convertCommand() *cobra.Command {
	var opts convertOptions
	cmd := &cobra.Command{
		Use:   "convert INPUT OUTPUT",
		Short: "Convert a table between CSV, JSON, Arrow, Parquet and Avro",
		Long: `Convert reads a table and writes it in another format. CSV input is typed
with --types, the conversion.column_types setting, or by inspecting the cells.
The output format comes from --format or the OUTPUT extension. Use "-" as
OUTPUT to write to standard output.`,
		Example: `  useful convert people.csv people.parquet --types "text, text, number"
  useful convert people.csv.gz - --format json
  useful convert people.avro people.csv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return observability.Trace(cmd.Context(), "convert", func(ctx context.Context) error {
				ctx = context.WithValue(ctx, logger.OperationKey, "convert")
				ctx = context.WithValue(ctx, logger.DocumentKey, args[0])
				return a.convert(ctx, cmd.OutOrStdout(), args[0], args[1], opts)
			}, attribute.String("input", args[0]), attribute.String("output", args[1]))
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.types, "types", "t", "", `Comma separated column types, e.g. "text, number"`)
	flags.StringVarP(&opts.format, "format", "f", "", "Output format (csv, json, arrow, parquet, avro)")
	flags.StringVar(&opts.compression, "compression", "", "Output compression; for parquet and avro the internal codec")
	flags.IntVar(&opts.level, "level", 0, "Compression level from 1 (fastest) to 9 (best)")
	return cmd
}

func (a *app) convert(ctx context.Context, stdout io.Writer, input, output string, opts convertOptions) error {
	t, err := a.readTable(input, opts.types)
	if err != nil {
		return err
	}
	defer t.Free()

	format, err := a.outputFormat(output, opts.format)
	if err != nil {
		return err
	}
	codec := opts.compression
	if codec == "" && a.cfg.Output.IsCompressionEnabled() {
		codec = a.cfg.Output.Compression
	}
	level := opts.level
	if level == 0 {
		level = a.cfg.Output.CompressionLevel
	}

	if err := a.writeTable(stdout, output, t, format, codec, level); err != nil {
		return err
	}

	logger.WithContext(ctx).Info("table converted",
		zap.String("output", output),
		zap.String("format", format),
		zap.Int("rows", t.Rows()),
		zap.Int("columns", t.Cols()))
	if output != "-" {
		fmt.Fprintf(stdout, "Converted %d rows and %d columns to %s\n", t.Rows(), t.Cols(), format)
	}
	return nil
}

// readTable loads input as a typed table. Columnar inputs carry their own
// types; CSV inputs are typed from the list, the configuration, or inference.
func (a *app) readTable(input, types string) (*dataframe.Table, error) {
	if format, ok := columnar.FromPath(compression.StripExtension(input)); ok {
		return readColumnar(input, format)
	}

	doc, err := csv.ReadFile(input, a.readOptions())
	if err != nil {
		return nil, err
	}
	defer doc.Free()

	if types == "" {
		types = a.cfg.Conversion.ColumnTypes
	}
	var columnTypes []dataframe.ColumnType
	if types != "" {
		if columnTypes, err = dataframe.ParseColumnTypes(types); err != nil {
			return nil, err
		}
	} else {
		columnTypes = dataframe.InferTypes(doc)
		logger.Debug("column types inferred", zap.Stringers("types", columnTypes))
	}

	t, report, err := dataframe.FromCSV(doc, columnTypes)
	if err != nil {
		return nil, err
	}
	if a.cfg.Conversion.FailFast {
		if err := report.Err(); err != nil {
			t.Free()
			return nil, errors.Wrap(err, errors.ErrorTypeNumericFormat, "conversion failed").
				WithDetail("cells", report.Len())
		}
	}
	return t, nil
}

func readColumnar(input string, format columnar.Format) (*dataframe.Table, error) {
	f, err := os.Open(input)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open input").
			WithDetail("path", input)
	}
	defer f.Close()

	r, err := compression.NewReader(compression.FromPath(input), f)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return columnar.Read(r, format)
}

// outputFormat resolves the output format from the flag, then the file
// extension, then the configuration.
func (a *app) outputFormat(output, flag string) (string, error) {
	name := flag
	if name == "" && output != "-" {
		base := compression.StripExtension(output)
		if f, ok := columnar.FromPath(base); ok {
			name = string(f)
		} else if strings.EqualFold(filepath.Ext(base), ".csv") {
			name = formatCSV
		}
	}
	if name == "" {
		name = a.cfg.Output.Format
	}

	name = strings.ToLower(name)
	if name == formatCSV {
		return name, nil
	}
	f, err := columnar.ParseFormat(name)
	if err != nil {
		return "", err
	}
	return string(f), nil
}

// writeTable serializes t. CSV, JSON and Arrow output is wrapped in stream
// compression chosen by codec or the file suffix. Parquet and Avro
// compress internally, so codec names their block codec instead.
func (a *app) writeTable(stdout io.Writer, output string, t *dataframe.Table, format, codec string, level int) (err error) {
	internal := format == string(columnar.Parquet) || format == string(columnar.Avro)

	alg := compression.None
	if !internal {
		if output != "-" {
			alg = compression.FromPath(output)
		}
		if alg == compression.None && codec != "" {
			if alg, err = compression.ParseAlgorithm(codec); err != nil {
				return err
			}
		}
	}

	var dst io.Writer = stdout
	if output != "-" {
		f, ferr := os.Create(output)
		if ferr != nil {
			return errors.Wrap(ferr, errors.ErrorTypeFile, "failed to create output").
				WithDetail("path", output)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = errors.Wrap(cerr, errors.ErrorTypeFile, "failed to close output")
			}
		}()
		dst = f
	}

	if level == 0 {
		level = int(compression.Default)
	}
	w, err := compression.NewWriter(alg, dst, compression.Level(level))
	if err != nil {
		return err
	}

	switch {
	case format == formatCSV:
		wopts, werr := a.writeOptions()
		if werr != nil {
			err = werr
		} else {
			err = t.Write(w, wopts)
		}
	case internal:
		cfg := columnar.DefaultWriterConfig(columnar.Format(format))
		if codec != "" {
			cfg.Compression = codec
		}
		err = columnar.WriteConfig(w, t, cfg)
	default:
		err = columnar.Write(w, t, columnar.Format(format))
	}
	if err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to finish compressed stream")
	}
	return nil
}
