// Package libuseful is a small toolkit for delimiter-separated data: growable
// buffers, text buffers, a CSV engine, typed tables and numeric matrices.
//
// # Architecture
//
// Containers are built bottom-up. Every growable container shares one
// growth policy (start at 10 slots, grow by half when full, optionally cap
// at a maximum):
//
//	pkg/array      - Generic growable buffer with the shared growth policy
//	pkg/strings    - Text buffers, splitting and joining built on pkg/array
//	pkg/csv        - CSV state machine, documents, validation and writer
//	pkg/numeric    - strtod-style number parsing with per-cell reports
//	pkg/dataframe  - Typed tables of number and text columns
//	pkg/matrix     - Dense row-major float64 matrices
//
// Around them sit the formats and the ambient stack:
//
//	pkg/formats/columnar - Arrow, Parquet, Avro and JSON serialization of tables
//	pkg/compression      - gzip, zstd, snappy, s2, lz4 and deflate streams
//	pkg/mmap             - Memory-mapped file input for the CSV reader
//	pkg/config           - YAML configuration with ${VAR} substitution
//	pkg/errors           - Structured error handling
//	pkg/logger           - Structured logging on zap
//	pkg/metrics          - Prometheus counters for rows, cells and conversions
//	pkg/observability    - OpenTelemetry tracing
//	pkg/profiling        - pprof capture around a command run
//
// # Quick Start
//
// Read a CSV file into a typed table and convert it to a matrix:
//
//	import (
//	    "github.com/nathangeffen/libuseful/pkg/csv"
//	    "github.com/nathangeffen/libuseful/pkg/dataframe"
//	)
//
//	doc, err := csv.ReadFile("people.csv", csv.DefaultReadOptions())
//	if err != nil {
//	    return err
//	}
//	types, _ := dataframe.ParseColumnTypes("text, text, number")
//	table, report, err := dataframe.FromCSV(doc, types)
//	if err != nil {
//	    return err
//	}
//	if !report.OK() {
//	    // cells that were not complete numbers kept their leading value
//	}
//	m, _, err := table.ToMatrix()
//
// # Command Line
//
// The useful command exposes the same operations:
//
//	useful validate data/ --glob "*.csv" --verbose
//	useful convert people.csv people.parquet --types "text, text, number"
//	useful matrix grid.csv
//	useful config init useful.yaml
//
// Settings come from defaults, then the --config file, then USEFUL_*
// environment variables (USEFUL_CSV_DELIMITER for csv.delimiter), then
// flags.
package libuseful
