package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/nathangeffen/libuseful/pkg/csv"
	"github.com/nathangeffen/libuseful/pkg/errors"
	"github.com/nathangeffen/libuseful/pkg/logger"
	"github.com/nathangeffen/libuseful/pkg/observability"
)

func (a *app) validateCommand() *cobra.Command {
	var (
		verbose bool
		pattern string
	)
	cmd := &cobra.Command{
		Use:   "validate PATH",
		Short: "Check that every row of a CSV file has the same width",
		Long: `Validate reads each file and checks that every data row has as many cells
as the header. When PATH is a directory, every file matching --glob is checked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectFiles(args[0], pattern)
			if err != nil {
				return err
			}
			return observability.Trace(cmd.Context(), "validate", func(ctx context.Context) error {
				ctx = context.WithValue(ctx, logger.OperationKey, "validate")
				return a.validateFiles(ctx, cmd.OutOrStdout(), files, verbose)
			}, attribute.String("path", args[0]), attribute.Int("files", len(files)))
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every mismatched row")
	cmd.Flags().StringVar(&pattern, "glob", "*.csv", "File name pattern used when PATH is a directory")
	return cmd
}

// collectFiles expands a directory into the sorted list of regular files
// whose base name matches pattern. A plain file is returned as is.
func collectFiles(path, pattern string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "cannot access input").
			WithDetail("path", path)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInvalidArgument, "invalid glob pattern").
			WithDetail("pattern", pattern)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "cannot list directory").
			WithDetail("path", path)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && g.Match(e.Name()) {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, errors.Newf(errors.ErrorTypeFile, "no files in %s match %q", path, pattern)
	}
	return files, nil
}

func (a *app) validateFiles(ctx context.Context, out io.Writer, files []string, verbose bool) error {
	invalid := 0
	for _, path := range files {
		doc, err := csv.ReadFile(path, a.readOptions())
		if err != nil {
			return err
		}
		report := doc.Validate(verbose)

		prefix := ""
		if len(files) > 1 {
			prefix = path + ": "
		}
		if report.Valid() {
			fmt.Fprintf(out, "%sCSV is valid\n", prefix)
		} else {
			invalid++
			fmt.Fprintf(out, "%sCSV is invalid\n", prefix)
			if verbose {
				for _, m := range report.Mismatches {
					fmt.Fprintf(out, "  %s\n", m)
				}
			}
		}
		log := logger.WithContext(context.WithValue(ctx, logger.DocumentKey, path))
		log.Info("file validated",
			zap.Int("rows", doc.Len()),
			zap.Bool("valid", report.Valid()))
		doc.Free()
	}

	if invalid > 0 {
		return errors.Newf(errors.ErrorTypeValidation, "%d of %d files failed validation", invalid, len(files))
	}
	return nil
}
