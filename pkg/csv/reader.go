package csv

import (
	"bufio"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/nathangeffen/libuseful/pkg/array"
	"github.com/nathangeffen/libuseful/pkg/errors"
	"github.com/nathangeffen/libuseful/pkg/logger"
	"github.com/nathangeffen/libuseful/pkg/metrics"
	stringpool "github.com/nathangeffen/libuseful/pkg/strings"
)

const (
	defaultDelimiter = ','
	defaultQuote     = '"'
)

// ReadOptions controls how a document is parsed.
type ReadOptions struct {
	// HasHeader treats the first row as the header.
	HasHeader bool
	// Delimiter separates cells. Zero means ','.
	Delimiter byte
	// Quote opens and closes quoted sections. Zero means '"'.
	Quote byte
	// TrimCR drops a carriage return that directly precedes a line feed
	// outside quotes, so CRLF files parse like LF files.
	TrimCR bool
	// SkipBlankLines keeps reading past blank lines. Without it a blank line
	// ends the document.
	SkipBlankLines bool
	// Policy is the growth policy for cell, row and document storage.
	// The zero value means array.DefaultPolicy.
	Policy array.Policy
}

// DefaultReadOptions returns options for a comma separated file with a
// header row.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		HasHeader: true,
		Delimiter: defaultDelimiter,
		Quote:     defaultQuote,
	}
}

func (o ReadOptions) delimiter() byte {
	if o.Delimiter == 0 {
		return defaultDelimiter
	}
	return o.Delimiter
}

func (o ReadOptions) quote() byte {
	if o.Quote == 0 {
		return defaultQuote
	}
	return o.Quote
}

// parser reads rows one byte at a time. End of input is sticky: once seen,
// every later read reports it again without touching the source.
type parser struct {
	src    io.ByteScanner
	delim  byte
	quote  byte
	trimCR bool
	eof    bool
	cell   *stringpool.Text
	cells  *array.Buffer[string]
}

func newParser(r io.Reader, opts ReadOptions) (*parser, error) {
	src, ok := r.(io.ByteScanner)
	if !ok {
		src = bufio.NewReader(r)
	}

	cell, err := stringpool.NewTextWithPolicy(opts.Policy)
	if err != nil {
		return nil, err
	}
	cells, err := array.NewWithPolicy[string](opts.Policy)
	if err != nil {
		return nil, err
	}

	return &parser{
		src:    src,
		delim:  opts.delimiter(),
		quote:  opts.quote(),
		trimCR: opts.TrimCR,
		cell:   cell,
		cells:  cells,
	}, nil
}

// next returns the next byte, or ok=false at end of input.
func (p *parser) next() (c byte, ok bool, err error) {
	if p.eof {
		return 0, false, nil
	}
	c, err = p.src.ReadByte()
	if err == io.EOF {
		p.eof = true
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, errors.ErrorTypeFile, "failed to read CSV input")
	}
	return c, true, nil
}

func (p *parser) unread() {
	_ = p.src.UnreadByte()
}

// peek reports whether the next byte equals want, consuming it only if so.
func (p *parser) peek(want byte) (bool, error) {
	c, ok, err := p.next()
	if err != nil || !ok {
		return false, err
	}
	if c != want {
		p.unread()
		return false, nil
	}
	return true, nil
}

// readRow parses the next row. A row with no cells means a blank line or
// the end of input; the second result reports the latter.
//
// Quotes toggle the quoted state, and a doubled quote inside a quoted
// section yields one literal quote. Delimiters and line feeds inside quotes
// belong to the cell. An empty cell is kept when a delimiter closes it and
// dropped when the row ends.
func (p *parser) readRow() (Row, bool, error) {
	p.cells.Reset()
	p.cell.Reset()
	inQuote := false

	for {
		c, ok, err := p.next()
		if err != nil {
			return nil, false, err
		}

		closeCell, endRow := false, !ok
		switch {
		case !ok:
		case c == p.quote:
			doubled, err := p.peek(p.quote)
			if err != nil {
				return nil, false, err
			}
			if doubled && inQuote {
				err = p.cell.PushChar(p.quote)
			} else {
				if doubled {
					p.unread()
				}
				inQuote = !inQuote
			}
			if err != nil {
				return nil, false, err
			}
		case inQuote:
			err = p.cell.PushChar(c)
		case c == p.delim:
			closeCell = true
		case c == '\n':
			endRow = true
		case c == '\r' && p.trimCR:
			var lf bool
			if lf, err = p.peek('\n'); err == nil {
				if lf {
					p.unread()
				} else {
					err = p.cell.PushChar(c)
				}
			}
		default:
			err = p.cell.PushChar(c)
		}
		if err != nil {
			return nil, false, err
		}

		if closeCell || endRow {
			if p.cell.Len() > 0 || closeCell {
				if err := p.cells.Push(p.cell.String()); err != nil {
					return nil, false, err
				}
			}
			p.cell.Reset()
		}

		if endRow {
			return Row(p.cells.Slice()).Clone(), p.eof, nil
		}
	}
}

// Read parses a document from r. Reading stops at the end of input or,
// unless opts.SkipBlankLines is set, at the first blank line.
func Read(r io.Reader, opts ReadOptions) (*Document, error) {
	p, err := newParser(r, opts)
	if err != nil {
		return nil, err
	}

	doc, err := NewWithPolicy(opts.Policy)
	if err != nil {
		return nil, err
	}

	if opts.HasHeader {
		for {
			header, eof, err := p.readRow()
			if err != nil {
				return nil, err
			}
			doc.header = header
			if len(header) > 0 || eof || !opts.SkipBlankLines {
				break
			}
		}
	}

	for {
		row, eof, err := p.readRow()
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			if eof || !opts.SkipBlankLines {
				break
			}
			continue
		}
		if err := doc.rows.Push(row); err != nil {
			return nil, err
		}
	}

	metrics.RowsRead.Add(float64(doc.Len()))
	metrics.CellsRead.Add(float64(doc.Cells()))
	logger.Debug("csv document parsed",
		zap.Bool("header", doc.HasHeader()),
		zap.Int("rows", doc.Len()),
		zap.Int("columns", doc.Width()))

	return doc, nil
}

// ReadString parses a document held in s.
func ReadString(s string, opts ReadOptions) (*Document, error) {
	return Read(strings.NewReader(s), opts)
}
