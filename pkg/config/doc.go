// Package config provides the configuration file format for the useful
// command line tool.
//
// A Config groups settings into sections:
//   - CSV: delimiter, quoting and header handling for reading and writing
//   - Buffer: the growth policy of every growable buffer
//   - Conversion: column types and how numeric conversion failures are treated
//   - Output: target format and compression
//   - Observability: logging, metrics and tracing
//
// Configuration is stored as YAML. Values may reference environment
// variables with ${VAR_NAME} or ${VAR_NAME:-default}:
//
//	csv:
//	  delimiter: ";"
//	output:
//	  format: ${USEFUL_FORMAT:-parquet}
//
// Load always starts from NewDefaultConfig, so a file only needs the keys
// it changes.
package config
