package csv

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nathangeffen/libuseful/pkg/errors"
	"github.com/nathangeffen/libuseful/pkg/logger"
)

// RowMismatch describes a data row whose width differs from the expected one.
type RowMismatch struct {
	Row      int
	Columns  int
	Expected int
}

func (m RowMismatch) String() string {
	return fmt.Sprintf("Row %d has %d columns, expected %d.", m.Row, m.Columns, m.Expected)
}

// ValidationReport is the outcome of Validate.
type ValidationReport struct {
	Expected   int
	Mismatches []RowMismatch
}

// Valid reports whether every row had the expected width.
func (r ValidationReport) Valid() bool {
	return len(r.Mismatches) == 0
}

// Err returns an ErrorTypeValidation error describing the first mismatch,
// or nil for a valid document.
func (r ValidationReport) Err() error {
	if r.Valid() {
		return nil
	}
	first := r.Mismatches[0]
	return errors.New(errors.ErrorTypeValidation, first.String()).
		WithDetail("row", first.Row).
		WithDetail("mismatches", len(r.Mismatches))
}

// Validate checks that every data row has as many cells as the header, or
// as the first row when there is no header. Verbose validation reports and
// logs every mismatch; otherwise it stops at the first one. The document is
// not modified.
func (d *Document) Validate(verbose bool) ValidationReport {
	rows := d.Rows()
	report := ValidationReport{Expected: d.Width()}

	start := 0
	if !d.HasHeader() {
		start = 1
	}

	for i := start; i < len(rows); i++ {
		if len(rows[i]) == report.Expected {
			continue
		}
		m := RowMismatch{Row: i, Columns: len(rows[i]), Expected: report.Expected}
		report.Mismatches = append(report.Mismatches, m)
		if !verbose {
			break
		}
		logger.Warn(m.String(),
			zap.Int("row", m.Row),
			zap.Int("columns", m.Columns),
			zap.Int("expected", m.Expected))
	}
	return report
}

// IsValid reports whether every row has the expected width.
func (d *Document) IsValid(verbose bool) bool {
	return d.Validate(verbose).Valid()
}
