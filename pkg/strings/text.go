package strings

import (
	"fmt"
	"io"

	"github.com/nathangeffen/libuseful/pkg/array"
	"github.com/nathangeffen/libuseful/pkg/errors"
)

// Text is a growable byte string backed by an array.Buffer. The buffer
// always holds a trailing NUL after the content; Len does not count it.
//
// The zero value is an empty Text using the default growth policy.
type Text struct {
	buf *array.Buffer[byte]
}

// NewText returns an empty Text.
func NewText() *Text {
	t := &Text{}
	t.ensure()
	return t
}

// NewTextWithPolicy returns an empty Text whose storage grows according to p.
func NewTextWithPolicy(p array.Policy) (*Text, error) {
	buf, err := array.NewWithPolicy[byte](p)
	if err != nil {
		return nil, err
	}
	if err := buf.Push(0); err != nil {
		return nil, err
	}
	return &Text{buf: buf}, nil
}

// FromString returns a Text holding a copy of s.
func FromString(s string) *Text {
	t := NewText()
	_ = t.Copy(s) // unlimited policy
	return t
}

func (t *Text) ensure() {
	if t.buf == nil {
		t.buf = array.New[byte]()
	}
	if t.buf.Len() == 0 {
		_ = t.buf.Push(0)
	}
}

// sibling returns an empty Text sharing t's growth policy.
func (t *Text) sibling() (*Text, error) {
	t.ensure()
	return NewTextWithPolicy(t.buf.Policy())
}

// Len returns the content length, terminator excluded.
func (t *Text) Len() int {
	t.ensure()
	return t.buf.Len() - 1
}

// Cap returns the allocated capacity, terminator slot included.
func (t *Text) Cap() int {
	t.ensure()
	return t.buf.Cap()
}

// Bytes returns the content without the terminator. The slice aliases t
// and is invalidated by the next modification.
func (t *Text) Bytes() []byte {
	t.ensure()
	s := t.buf.Slice()
	return s[:len(s)-1]
}

// String returns a copy of the content.
func (t *Text) String() string {
	return string(t.Bytes())
}

// Reset empties the content but keeps the allocated capacity.
func (t *Text) Reset() {
	t.ensure()
	t.buf.Reset()
	_ = t.buf.Push(0)
}

// Free releases the storage. The Text remains usable.
func (t *Text) Free() {
	if t.buf != nil {
		t.buf.Free()
	}
}

// dropTerminator removes the trailing NUL so content can be appended.
func (t *Text) dropTerminator() {
	t.ensure()
	_ = t.buf.Truncate(t.buf.Len() - 1)
}

// terminate appends the NUL. If the buffer cannot grow, the last content
// byte is overwritten so the Text stays terminated.
func (t *Text) terminate() error {
	err := t.buf.Push(0)
	if err != nil {
		if n := t.buf.Len(); n > 0 {
			_ = t.buf.Set(n-1, 0)
		}
	}
	return err
}

// appendBytes adds p after the content. Copying stops at the first failed
// growth; the Text is terminated in every case.
func (t *Text) appendBytes(p []byte) (int, error) {
	t.dropTerminator()
	for i, c := range p {
		if err := t.buf.Push(c); err != nil {
			_ = t.terminate()
			return i, err
		}
	}
	return len(p), t.terminate()
}

// Copy replaces the content with src.
func (t *Text) Copy(src string) error {
	t.Reset()
	_, err := t.appendBytes([]byte(src))
	return err
}

// Append adds src after the current content.
func (t *Text) Append(src string) error {
	_, err := t.appendBytes([]byte(src))
	return err
}

// Write implements io.Writer by appending p.
func (t *Text) Write(p []byte) (int, error) {
	return t.appendBytes(p)
}

// Format replaces the content with the formatted result and returns its
// length. The exact length is measured before anything is written, so the
// buffer grows at most once.
func (t *Text) Format(format string, args ...interface{}) (int, error) {
	t.ensure()
	n, err := fmt.Fprintf(io.Discard, format, args...)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeInternal, "failed to measure formatted text")
	}
	if err := t.buf.Reserve(n + 1); err != nil {
		return 0, err
	}
	t.Reset()
	if _, err := fmt.Fprintf(t, format, args...); err != nil {
		return 0, err
	}
	return n, nil
}

// FormatAppend formats into a pooled scratch Text and appends the result.
// It returns the length of the appended text.
func (t *Text) FormatAppend(format string, args ...interface{}) (int, error) {
	scratch := scratchPool.Get()
	defer scratchPool.Put(scratch)

	n, err := scratch.Format(format, args...)
	if err != nil {
		return 0, err
	}
	if _, err := t.appendBytes(scratch.Bytes()); err != nil {
		return 0, err
	}
	return n, nil
}

// PushChar appends a single byte. Pushing NUL leaves the Text unchanged.
func (t *Text) PushChar(c byte) error {
	t.ensure()
	last := t.buf.Len() - 1
	_ = t.buf.Set(last, c)
	if c == 0 {
		return nil
	}
	if err := t.buf.Push(0); err != nil {
		_ = t.buf.Set(last, 0)
		return err
	}
	return nil
}

// Substring returns a new Text holding at most count bytes starting at
// start. The range is clipped to the content, so a start past the end
// yields an empty Text.
func (t *Text) Substring(start, count int) (*Text, error) {
	if start < 0 || count < 0 {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument,
			"invalid substring range start=%d count=%d", start, count)
	}

	out, err := t.sibling()
	if err != nil {
		return nil, err
	}

	n := t.Len()
	if start >= n {
		return out, nil
	}
	end := start + count
	if end > n || end < start {
		end = n
	}
	if _, err := out.appendBytes(t.Bytes()[start:end]); err != nil {
		return out, err
	}
	return out, nil
}

// ReadLine replaces the content with the next line from r, including its
// newline when one is present. It reports false once r is exhausted and no
// bytes were read.
func (t *Text) ReadLine(r io.ByteReader) (bool, error) {
	t.Reset()
	for {
		c, err := r.ReadByte()
		if err == io.EOF {
			return t.Len() > 0, nil
		}
		if err != nil {
			return t.Len() > 0, errors.Wrap(err, errors.ErrorTypeFile, "failed to read line")
		}
		if err := t.PushChar(c); err != nil {
			return true, err
		}
		if c == '\n' {
			return true, nil
		}
	}
}

// Split breaks the content into pieces; see Split.
func (t *Text) Split(delims string) ([]*Text, error) {
	return Split(t.String(), delims)
}
