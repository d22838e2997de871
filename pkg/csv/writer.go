package csv

import (
	"bufio"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/nathangeffen/libuseful/pkg/errors"
	"github.com/nathangeffen/libuseful/pkg/logger"
	"github.com/nathangeffen/libuseful/pkg/metrics"
	stringpool "github.com/nathangeffen/libuseful/pkg/strings"
)

// QuoteMode selects which cells are quoted on output.
type QuoteMode int

const (
	// QuoteMinimal quotes cells containing the delimiter, the quote
	// character, a carriage return or a line feed, doubling embedded quotes.
	QuoteMinimal QuoteMode = iota
	// QuoteNever writes cells verbatim. Output is only re-readable when no
	// cell contains special characters.
	QuoteNever
	// QuoteAlways quotes every cell.
	QuoteAlways
)

var quoteModeNames = map[QuoteMode]string{
	QuoteMinimal: "minimal",
	QuoteNever:   "never",
	QuoteAlways:  "always",
}

func (m QuoteMode) String() string {
	if s, ok := quoteModeNames[m]; ok {
		return s
	}
	return "unknown"
}

// ParseQuoteMode converts a configuration value to a QuoteMode. The empty
// string means QuoteMinimal.
func ParseQuoteMode(s string) (QuoteMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return QuoteMinimal, nil
	}
	for m, n := range quoteModeNames {
		if n == name {
			return m, nil
		}
	}
	return QuoteMinimal, errors.Newf(errors.ErrorTypeConfig, "unknown quote mode %q", s)
}

// WriteOptions controls serialization.
type WriteOptions struct {
	// Delimiter separates cells. Zero means ','.
	Delimiter byte
	// Quote is the quoting character. Zero means '"'.
	Quote byte
	Mode  QuoteMode
	// CRLF ends lines with "\r\n" instead of "\n".
	CRLF bool
}

// DefaultWriteOptions returns comma separated, minimally quoted output.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{Delimiter: defaultDelimiter, Quote: defaultQuote}
}

func (o WriteOptions) delimiter() byte {
	if o.Delimiter == 0 {
		return defaultDelimiter
	}
	return o.Delimiter
}

func (o WriteOptions) quote() byte {
	if o.Quote == 0 {
		return defaultQuote
	}
	return o.Quote
}

// fieldNeedsQuote reports whether field must be quoted to survive a round trip.
func fieldNeedsQuote(field string, delim, quote byte) bool {
	for i := 0; i < len(field); i++ {
		switch field[i] {
		case delim, quote, '\n', '\r':
			return true
		}
	}
	return false
}

type rowWriter struct {
	w     *bufio.Writer
	line  *stringpool.Text
	delim byte
	quote byte
	mode  QuoteMode
	eol   string
	rows  int
}

func (rw *rowWriter) writeCell(cell string) error {
	quoted := rw.mode == QuoteAlways ||
		(rw.mode == QuoteMinimal && fieldNeedsQuote(cell, rw.delim, rw.quote))
	if !quoted {
		return rw.line.Append(cell)
	}

	if err := rw.line.PushChar(rw.quote); err != nil {
		return err
	}
	for i := 0; i < len(cell); i++ {
		if cell[i] == rw.quote {
			if err := rw.line.PushChar(rw.quote); err != nil {
				return err
			}
		}
		if err := rw.line.PushChar(cell[i]); err != nil {
			return err
		}
	}
	return rw.line.PushChar(rw.quote)
}

// writeRow emits the cells separated by the delimiter, without a trailing
// delimiter, followed by one line break.
func (rw *rowWriter) writeRow(row Row) error {
	rw.line.Reset()
	for i, cell := range row {
		if i > 0 {
			if err := rw.line.PushChar(rw.delim); err != nil {
				return err
			}
		}
		if err := rw.writeCell(cell); err != nil {
			return err
		}
	}
	if err := rw.line.Append(rw.eol); err != nil {
		return err
	}
	if _, err := rw.w.Write(rw.line.Bytes()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write CSV row")
	}
	rw.rows++
	return nil
}

func newRowWriter(w io.Writer, opts WriteOptions) *rowWriter {
	rw := &rowWriter{
		w:     bufio.NewWriter(w),
		line:  stringpool.NewText(),
		delim: opts.delimiter(),
		quote: opts.quote(),
		mode:  opts.Mode,
		eol:   "\n",
	}
	if opts.CRLF {
		rw.eol = "\r\n"
	}
	return rw
}

// WriteRow serializes a single row followed by a line break.
func WriteRow(w io.Writer, row Row, opts WriteOptions) error {
	rw := newRowWriter(w, opts)
	if err := rw.writeRow(row); err != nil {
		return err
	}
	if err := rw.w.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to flush CSV output")
	}
	metrics.RowsWritten.Inc()
	return nil
}

// Write serializes doc to w: the header first when present, then every
// data row.
func Write(w io.Writer, doc *Document, opts WriteOptions) error {
	rw := newRowWriter(w, opts)

	if doc.HasHeader() {
		if err := rw.writeRow(doc.header); err != nil {
			return err
		}
	}
	for _, row := range doc.Rows() {
		if err := rw.writeRow(row); err != nil {
			return err
		}
	}
	if err := rw.w.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to flush CSV output")
	}

	metrics.RowsWritten.Add(float64(rw.rows))
	logger.Debug("csv document written",
		zap.Int("rows", rw.rows),
		zap.String("quote_mode", rw.mode.String()))
	return nil
}

// String renders doc with DefaultWriteOptions.
func (d *Document) String() string {
	var sb strings.Builder
	if err := Write(&sb, d, DefaultWriteOptions()); err != nil {
		return ""
	}
	return sb.String()
}
