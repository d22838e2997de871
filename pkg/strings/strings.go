// Package strings provides the Text buffer and pooled string helpers for
// libuseful. Other packages import it as stringpool.
package strings

import (
	"strings"

	"github.com/nathangeffen/libuseful/pkg/pool"
)

// scratchPool recycles Text values used as formatting scratch space.
var scratchPool = pool.New(
	func() *Text { return NewText() },
	func(t *Text) { t.Reset() },
)

// Clone creates a copy of a string (useful when you need to own the memory)
func Clone(s string) string {
	return strings.Clone(s)
}

// Sprintf formats into a pooled scratch Text and returns an owned copy.
func Sprintf(format string, args ...interface{}) string {
	scratch := scratchPool.Get()
	defer scratchPool.Put(scratch)

	if _, err := scratch.Format(format, args...); err != nil {
		return ""
	}
	return scratch.String()
}

// Split breaks s into pieces at any byte found in delims. The end of s also
// closes a piece. Empty pieces are never produced, so runs of delimiters
// collapse and leading or trailing delimiters are ignored.
func Split(s, delims string) ([]*Text, error) {
	var pieces []*Text
	current := NewText()

	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(delims, c) < 0 {
			if err := current.PushChar(c); err != nil {
				return pieces, err
			}
			continue
		}
		if current.Len() > 0 {
			pieces = append(pieces, current)
			current = NewText()
		}
	}
	if current.Len() > 0 {
		pieces = append(pieces, current)
	}
	return pieces, nil
}

// Join concatenates pieces with delim between consecutive elements.
func Join(pieces []*Text, delim string) (*Text, error) {
	return JoinFunc(pieces, delim, (*Text).String)
}

// JoinFunc renders each item with conv and joins the results with delim.
func JoinFunc[T any](items []T, delim string, conv func(T) string) (*Text, error) {
	out := NewText()
	for i, item := range items {
		if i > 0 {
			if err := out.Append(delim); err != nil {
				return out, err
			}
		}
		if err := out.Append(conv(item)); err != nil {
			return out, err
		}
	}
	return out, nil
}
