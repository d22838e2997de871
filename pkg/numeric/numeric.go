// Package numeric converts between cell text and float64.
//
// Parse follows C strtod: it skips leading white space, reads the longest
// prefix that forms a number and returns that value even when the text
// has trailing content. Anything short of a full match is reported as an
// ErrorTypeNumericFormat error alongside the best-effort value, so callers
// can decide whether to keep the value or reject the cell.
package numeric

import (
	stderrors "errors"
	"math"
	"strconv"
	"strings"

	"github.com/nathangeffen/libuseful/pkg/errors"
)

// Parse converts s to a float64. It returns 0 and an error when no prefix
// of s is a number, and the prefix value with an error when s has trailing
// content. Hexadecimal notation is not recognized.
func Parse(s string) (float64, error) {
	start := 0
	for start < len(s) && isSpace(s[start]) {
		start++
	}

	end := scan(s, start)
	if end == start {
		return 0, formatError(s, "no numeric prefix")
	}

	v, err := parsePrefix(s[start:end])
	if err != nil {
		return 0, formatError(s, err.Error())
	}

	if end != len(s) {
		return v, formatError(s, "trailing characters after number")
	}
	return v, nil
}

// parsePrefix converts a prefix accepted by scan. Out-of-range values
// saturate to ±Inf or 0 without an error, as strtod does.
func parsePrefix(num string) (float64, error) {
	if strings.EqualFold(strings.TrimLeft(num, "+-"), "nan") {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(num, 64)
	var numErr *strconv.NumError
	if err != nil && stderrors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
		return v, nil
	}
	return v, err
}

// FormatFixed renders v with six digits after the decimal point, the same
// output as printf's %f.
func FormatFixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatError(s, reason string) error {
	return errors.Newf(errors.ErrorTypeNumericFormat, "cannot convert %q to number: %s", s, reason).
		WithDetail("text", s)
}

// scan returns the end of the longest numeric prefix of s starting at i,
// or i when there is none.
func scan(s string, i int) int {
	j := i
	if j < len(s) && (s[j] == '+' || s[j] == '-') {
		j++
	}

	rest := strings.ToLower(s[j:])
	switch {
	case strings.HasPrefix(rest, "infinity"):
		return j + len("infinity")
	case strings.HasPrefix(rest, "inf"):
		return j + len("inf")
	case strings.HasPrefix(rest, "nan"):
		return j + len("nan")
	}

	digits := 0
	for j < len(s) && isDigit(s[j]) {
		j++
		digits++
	}
	if j < len(s) && s[j] == '.' {
		j++
		for j < len(s) && isDigit(s[j]) {
			j++
			digits++
		}
	}
	if digits == 0 {
		return i
	}

	if j < len(s) && (s[j] == 'e' || s[j] == 'E') {
		k := j + 1
		if k < len(s) && (s[k] == '+' || s[k] == '-') {
			k++
		}
		if k < len(s) && isDigit(s[k]) {
			for k < len(s) && isDigit(s[k]) {
				k++
			}
			j = k
		}
	}
	return j
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\v' || c == '\f' || c == '\r'
}
