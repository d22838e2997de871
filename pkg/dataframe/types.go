package dataframe

import (
	"strings"

	"github.com/nathangeffen/libuseful/pkg/errors"
	"github.com/nathangeffen/libuseful/pkg/numeric"
	stringpool "github.com/nathangeffen/libuseful/pkg/strings"
)

// ColumnType is the fixed type of every cell in a column.
type ColumnType int

const (
	// Number columns hold float64 values.
	Number ColumnType = iota
	// Text columns hold strings.
	Text
)

// String returns the string representation of the column type.
func (t ColumnType) String() string {
	switch t {
	case Number:
		return "number"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// ParseColumnType accepts "number" (or num, dbl, double, float) and
// "text" (or str, string), case-insensitively.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "number", "num", "dbl", "double", "float":
		return Number, nil
	case "text", "str", "string":
		return Text, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeInvalidArgument, "unknown column type %q", s)
	}
}

// ParseColumnTypes parses a list such as "text,text,number". Commas and
// spaces both separate entries.
func ParseColumnTypes(list string) ([]ColumnType, error) {
	pieces, err := stringpool.Split(list, ", ")
	if err != nil {
		return nil, err
	}
	types := make([]ColumnType, 0, len(pieces))
	for _, p := range pieces {
		ct, err := ParseColumnType(p.String())
		if err != nil {
			return nil, err
		}
		types = append(types, ct)
	}
	return types, nil
}

// Value is one cell: either text or a number, as reported by Kind.
type Value struct {
	kind ColumnType
	text string
	num  float64
}

// TextValue returns a text cell.
func TextValue(s string) Value {
	return Value{kind: Text, text: s}
}

// NumberValue returns a numeric cell.
func NumberValue(f float64) Value {
	return Value{kind: Number, num: f}
}

// Kind reports which variant v holds.
func (v Value) Kind() ColumnType { return v.kind }

// Str returns the text payload, or "" for a number.
func (v Value) Str() string { return v.text }

// Float returns the numeric payload, or 0 for text.
func (v Value) Float() float64 { return v.num }

// String renders text verbatim and numbers with six decimals.
func (v Value) String() string {
	if v.kind == Text {
		return v.text
	}
	return numeric.FormatFixed(v.num)
}

// MarshalText implements encoding.TextMarshaler.
func (t ColumnType) MarshalText() ([]byte, error) {
	if t != Number && t != Text {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "unknown column type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using ParseColumnType.
func (t *ColumnType) UnmarshalText(b []byte) error {
	ct, err := ParseColumnType(string(b))
	if err != nil {
		return err
	}
	*t = ct
	return nil
}
