package strings

import (
	"bufio"
	"strings"
	"testing"

	"github.com/nathangeffen/libuseful/pkg/array"
	"github.com/nathangeffen/libuseful/pkg/errors"
)

func assertTerminated(t *testing.T, txt *Text) {
	t.Helper()
	raw := txt.buf.Slice()
	if len(raw) != txt.Len()+1 || raw[len(raw)-1] != 0 {
		t.Fatalf("expected trailing NUL after %d bytes, got %v", txt.Len(), raw)
	}
}

func TestNewTextEmpty(t *testing.T) {
	txt := NewText()
	if txt.Len() != 0 {
		t.Errorf("expected length 0, got %d", txt.Len())
	}
	if txt.String() != "" {
		t.Errorf("expected empty string, got %q", txt.String())
	}
	assertTerminated(t, txt)

	var zero Text
	if err := zero.Append("ok"); err != nil {
		t.Fatalf("zero Text append: %v", err)
	}
	if zero.String() != "ok" {
		t.Errorf("expected 'ok', got %q", zero.String())
	}
}

func TestCopyAndAppend(t *testing.T) {
	txt := NewText()
	if err := txt.Copy("Hello"); err != nil {
		t.Fatal(err)
	}
	capAfterCopy := txt.Cap()
	if err := txt.Append(", world"); err != nil {
		t.Fatal(err)
	}
	if got := txt.String(); got != "Hello, world" {
		t.Errorf("expected 'Hello, world', got %q", got)
	}
	assertTerminated(t, txt)

	if err := txt.Copy("Hi"); err != nil {
		t.Fatal(err)
	}
	if got := txt.String(); got != "Hi" {
		t.Errorf("expected 'Hi', got %q", got)
	}
	if txt.Cap() < capAfterCopy {
		t.Errorf("copy must keep capacity, had %d now %d", capAfterCopy, txt.Cap())
	}
}

func TestCopyStopsAtCapacityLimit(t *testing.T) {
	p := array.DefaultPolicy()
	p.InitialCapacity = 4
	p.MaxCapacity = 4
	txt, err := NewTextWithPolicy(p)
	if err != nil {
		t.Fatal(err)
	}

	err = txt.Copy("abcdef")
	if !errors.IsType(err, errors.ErrorTypeOutOfMemory) {
		t.Fatalf("expected out_of_memory, got %v", err)
	}
	if got := txt.String(); got != "abc" {
		t.Errorf("expected truncated 'abc', got %q", got)
	}
	assertTerminated(t, txt)
}

func TestFormat(t *testing.T) {
	txt := FromString("previous content")
	n, err := txt.Format("%s is %d years old", "Joe", 23)
	if err != nil {
		t.Fatal(err)
	}
	want := "Joe is 23 years old"
	if n != len(want) {
		t.Errorf("expected length %d, got %d", len(want), n)
	}
	if txt.String() != want {
		t.Errorf("expected %q, got %q", want, txt.String())
	}
	assertTerminated(t, txt)
}

func TestFormatAppend(t *testing.T) {
	txt := FromString("total:")
	n, err := txt.FormatAppend(" %.2f", 3.14159)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("expected 5 appended bytes, got %d", n)
	}
	if got := txt.String(); got != "total: 3.14" {
		t.Errorf("expected 'total: 3.14', got %q", got)
	}
	if _, inUse, _, _ := scratchPool.Stats(); inUse != 0 {
		t.Errorf("scratch buffer not returned to pool, %d in use", inUse)
	}
}

func TestPushChar(t *testing.T) {
	txt := NewText()
	for _, c := range []byte("abc") {
		if err := txt.PushChar(c); err != nil {
			t.Fatal(err)
		}
	}
	if err := txt.PushChar(0); err != nil {
		t.Fatal(err)
	}
	if got := txt.String(); got != "abc" {
		t.Errorf("expected 'abc', got %q", got)
	}
	assertTerminated(t, txt)
}

func TestSubstring(t *testing.T) {
	src := FromString("Hello, world")

	tests := []struct {
		name         string
		start, count int
		want         string
	}{
		{"prefix", 0, 5, "Hello"},
		{"middle", 7, 3, "wor"},
		{"clipped", 7, 100, "world"},
		{"start past end", 50, 3, ""},
		{"zero count", 3, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := src.Substring(tt.start, tt.count)
			if err != nil {
				t.Fatal(err)
			}
			if sub.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, sub.String())
			}
			assertTerminated(t, sub)
		})
	}

	if _, err := src.Substring(-1, 2); !errors.IsType(err, errors.ErrorTypeInvalidArgument) {
		t.Errorf("expected invalid_argument for negative start, got %v", err)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		delims string
		want   []string
	}{
		{"single delimiter", "a,b,c", ",", []string{"a", "b", "c"}},
		{"delimiter set", "a, b;c", ", ;", []string{"a", "b", "c"}},
		{"runs collapse", ",,a,,b,,", ",", []string{"a", "b"}},
		{"no delimiter", "abc", ",", []string{"abc"}},
		{"empty input", "", ",", nil},
		{"only delimiters", ";;;", ";", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pieces, err := Split(tt.input, tt.delims)
			if err != nil {
				t.Fatal(err)
			}
			if len(pieces) != len(tt.want) {
				t.Fatalf("expected %d pieces, got %d", len(tt.want), len(pieces))
			}
			for i, p := range pieces {
				if p.Len() == 0 {
					t.Errorf("piece %d is empty", i)
				}
				if p.String() != tt.want[i] {
					t.Errorf("piece %d: expected %q, got %q", i, tt.want[i], p.String())
				}
			}
		})
	}
}

func TestJoin(t *testing.T) {
	pieces, _ := Split("x y z", " ")
	joined, err := Join(pieces, ", ")
	if err != nil {
		t.Fatal(err)
	}
	if got := joined.String(); got != "x, y, z" {
		t.Errorf("expected 'x, y, z', got %q", got)
	}

	empty, err := Join(nil, ",")
	if err != nil {
		t.Fatal(err)
	}
	if empty.Len() != 0 {
		t.Errorf("expected empty join, got %q", empty.String())
	}
}

func TestJoinFunc(t *testing.T) {
	joined, err := JoinFunc([]int{1, 2, 3}, "+", func(i int) string { return Sprintf("%d", i*10) })
	if err != nil {
		t.Fatal(err)
	}
	if got := joined.String(); got != "10+20+30" {
		t.Errorf("expected '10+20+30', got %q", got)
	}
}

func TestReadLine(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("first\nsecond\nlast"))
	txt := NewText()

	var lines []string
	for {
		ok, err := txt.ReadLine(r)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		lines = append(lines, txt.String())
	}

	want := []string{"first\n", "second\n", "last"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("expected %q, got %q", want, lines)
	}
}

func TestSprintf(t *testing.T) {
	if got := Sprintf("%s has %d columns", "Row 2", 2); got != "Row 2 has 2 columns" {
		t.Errorf("unexpected result %q", got)
	}
	if got := Sprintf("100%%"); got != "100%" {
		t.Errorf("expected '100%%', got %q", got)
	}
}

func TestClone(t *testing.T) {
	s := "hello"
	if c := Clone(s); c != s {
		t.Errorf("expected %q, got %q", s, c)
	}
}
