package numeric

import (
	stderrors "errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nathangeffen/libuseful/pkg/logger"
	"github.com/nathangeffen/libuseful/pkg/metrics"
)

// CellError describes a cell whose text was not a complete number.
type CellError struct {
	Row   int
	Col   int
	Text  string
	Value float64 // best-effort value that was stored
	Err   error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("row %d, column %d: %v", e.Row, e.Col, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

// Report collects per-cell conversion failures for one conversion call.
// A nil *Report is an empty report.
type Report struct {
	source string
	Errors []*CellError
}

// NewReport returns an empty report. source labels the conversion in logs
// and metrics, e.g. "dataframe" or "matrix".
func NewReport(source string) *Report {
	return &Report{source: source}
}

// Convert parses text for cell (row, col). Failures are recorded, logged and
// counted; the best-effort value is returned either way.
func (r *Report) Convert(row, col int, text string) float64 {
	v, err := Parse(text)
	if err != nil {
		r.Errors = append(r.Errors, &CellError{Row: row, Col: col, Text: text, Value: v, Err: err})
		metrics.ConversionErrors.WithLabelValues(r.source).Inc()
		logger.Warn("error converting cell to number",
			zap.String("source", r.source),
			zap.Int("row", row),
			zap.Int("column", col),
			zap.String("text", text))
	}
	return v
}

// OK reports whether every cell converted cleanly.
func (r *Report) OK() bool {
	return r == nil || len(r.Errors) == 0
}

// Len returns the number of failed cells.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Errors)
}

// Err joins every cell error, or returns nil for a clean report.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return stderrors.Join(errs...)
}

// Rows returns the distinct row indices that had failures, in order.
func (r *Report) Rows() []int {
	if r == nil {
		return nil
	}
	var rows []int
	seen := make(map[int]bool)
	for _, e := range r.Errors {
		if !seen[e.Row] {
			seen[e.Row] = true
			rows = append(rows, e.Row)
		}
	}
	return rows
}
