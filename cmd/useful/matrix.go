package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nathangeffen/libuseful/pkg/csv"
	"github.com/nathangeffen/libuseful/pkg/matrix"
	"github.com/nathangeffen/libuseful/pkg/numeric"
	"github.com/nathangeffen/libuseful/pkg/observability"
)

func (a *app) matrixCommand() *cobra.Command {
	var asCSV bool
	cmd := &cobra.Command{
		Use:   "matrix FILE",
		Short: "Read a CSV file as a numeric matrix",
		Long: `Matrix converts every cell of FILE to a number and prints the result.
Cells that are not complete numbers keep their leading numeric part and are
reported on stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return observability.Trace(cmd.Context(), "matrix", func(ctx context.Context) error {
				return a.printMatrix(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], asCSV)
			}, attribute.String("input", args[0]))
		},
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "Print the matrix as CSV instead of an aligned table")
	return cmd
}

func (a *app) printMatrix(stdout, stderr io.Writer, path string, asCSV bool) error {
	doc, err := csv.ReadFile(path, a.readOptions())
	if err != nil {
		return err
	}
	defer doc.Free()

	m, report, err := matrix.FromCSV(doc)
	if err != nil {
		return err
	}
	defer m.Free()

	var header []string
	if doc.HasHeader() {
		header = doc.Header()
	}
	if asCSV {
		out, err := m.ToCSV(header...)
		if err != nil {
			return err
		}
		opts, err := a.writeOptions()
		if err != nil {
			return err
		}
		if err := csv.Write(stdout, out, opts); err != nil {
			return err
		}
	} else {
		fmt.Fprint(stdout, renderMatrix(m, header))
	}

	for _, e := range report.Errors {
		fmt.Fprintf(stderr, "row %d, column %d: cannot convert %q, stored %s\n",
			e.Row, e.Col, e.Text, numeric.FormatFixed(e.Value))
	}
	return nil
}

// renderMatrix lays the values out in right-aligned columns under an
// optional header. Widths are measured in terminal cells.
func renderMatrix(m *matrix.Matrix, header []string) string {
	rows := m.Rows()
	cols := m.Cols()
	cells := make([][]string, 0, rows+1)
	if len(header) == cols {
		cells = append(cells, header)
	}
	for r := 0; r < rows; r++ {
		vals, _ := m.Row(r)
		line := make([]string, cols)
		for c, v := range vals {
			line[c] = numeric.FormatFixed(v)
		}
		cells = append(cells, line)
	}

	widths := make([]int, cols)
	for _, line := range cells {
		for c, cell := range line {
			widths[c] = max(widths[c], runewidth.StringWidth(cell))
		}
	}

	var sb strings.Builder
	for _, line := range cells {
		for c, cell := range line {
			if c > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(runewidth.FillLeft(cell, widths[c]))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
