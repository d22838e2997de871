package config_test

import (
	"fmt"
	"log"

	"github.com/nathangeffen/libuseful/pkg/config"
)

// ExampleNewDefaultConfig demonstrates creating a configuration with
// default values.
func ExampleNewDefaultConfig() {
	cfg := config.NewDefaultConfig("people")

	fmt.Printf("Delimiter: %s\n", cfg.CSV.Delimiter)
	fmt.Printf("Growth: %d, x%d/%d\n", cfg.Buffer.InitialCapacity,
		cfg.Buffer.GrowthNumerator, cfg.Buffer.GrowthDenominator)
	fmt.Printf("Format: %s\n", cfg.Output.Format)

	// Output:
	// Delimiter: ,
	// Growth: 10, x3/2
	// Format: csv
}

// ExampleConfig_Validate shows how to validate a configuration
// before using it.
func ExampleConfig_Validate() {
	cfg := config.NewDefaultConfig("semicolons")
	cfg.CSV.Delimiter = ";"
	cfg.Output.Format = "parquet"
	cfg.Output.Compression = "zstd"

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	fmt.Println("Configuration is valid!")

	cfg.CSV.Delimiter = "::"
	fmt.Println(cfg.Validate())

	// Output:
	// Configuration is valid!
	// config: csv.delimiter must be a single byte, got "::"
}
