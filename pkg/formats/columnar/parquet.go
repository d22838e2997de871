package columnar

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/nathangeffen/libuseful/pkg/dataframe"
	"github.com/nathangeffen/libuseful/pkg/errors"
)

// sink hides Close from the Parquet writer, which otherwise closes the
// destination when it finishes the footer.
type sink struct{ io.Writer }

func parquetCompression(name string) (compress.Compression, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "lz4":
		return compress.Codecs.Lz4Raw, nil
	case "brotli":
		return compress.Codecs.Brotli, nil
	case "none", "uncompressed":
		return compress.Codecs.Uncompressed, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeInvalidArgument, "unsupported Parquet compression %q", name)
	}
}

func writeParquet(w io.Writer, t *dataframe.Table, config *WriterConfig) error {
	codec, err := parquetCompression(config.Compression)
	if err != nil {
		return err
	}

	mem := memory.NewGoAllocator()
	schema := tableToArrowSchema(t)

	props := parquet.NewWriterProperties(
		parquet.WithCompression(codec),
		parquet.WithAllocator(mem),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(mem))

	fw, err := pqarrow.NewFileWriter(schema, sink{w}, props, arrowProps)
	if err != nil {
		return dataError(err, Parquet, "failed to create Parquet writer")
	}

	if err := recordBatches(mem, schema, t, config.BatchSize, fw.Write); err != nil {
		_ = fw.Close()
		return dataError(err, Parquet, "failed to write row group")
	}
	if err := fw.Close(); err != nil {
		return dataError(err, Parquet, "failed to close Parquet writer")
	}
	return nil
}

func readParquet(r io.Reader) (*dataframe.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read Parquet data")
	}

	fr, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, dataError(err, Parquet, "failed to create Parquet reader")
	}
	defer fr.Close()

	mem := memory.NewGoAllocator()
	ar, err := pqarrow.NewFileReader(fr, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, dataError(err, Parquet, "failed to create Arrow reader")
	}

	tbl, err := ar.ReadTable(context.Background())
	if err != nil {
		return nil, dataError(err, Parquet, "failed to read Parquet table")
	}
	defer tbl.Release()

	return tableFromArrowTable(tbl, Parquet)
}

func tableFromArrowTable(tbl arrow.Table, format Format) (*dataframe.Table, error) {
	t, err := tableFromSchema(tbl.Schema(), format)
	if err != nil {
		return nil, err
	}

	if err := t.Reserve(int(tbl.NumRows())); err != nil {
		return nil, err
	}

	tr := array.NewTableReader(tbl, max(tbl.NumRows(), 1))
	defer tr.Release()
	for tr.Next() {
		if err := appendRecord(t, tr.Record()); err != nil {
			return nil, err
		}
	}
	if err := tr.Err(); err != nil {
		return nil, dataError(err, format, "failed to read record batch")
	}
	return t, nil
}
