package json

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{ calls int }

type badValue struct{}

func (badValue) MarshalJSON() ([]byte, error) { return nil, errors.New("no representation") }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.calls++
	return 0, errors.New("disk full")
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, map[string]any{"name": "<Joe>", "age": 23.5}))
	assert.Equal(t, `{"age":23.5,"name":"<Joe>"}`+"\n", buf.String())
}

func TestEncodeFailureWritesNothing(t *testing.T) {
	w := &failingWriter{}
	assert.Error(t, Encode(w, badValue{}))
	assert.Zero(t, w.calls)

	assert.Error(t, Encode(w, []int{1}))
	assert.Equal(t, 1, w.calls)
}

func TestDecode(t *testing.T) {
	var v struct {
		Rows [][]any `json:"rows"`
	}
	require.NoError(t, Decode(strings.NewReader(`{"rows":[["a",1.5]]}`), &v))
	assert.Equal(t, [][]any{{"a", 1.5}}, v.Rows)
}

func TestBufferPool(t *testing.T) {
	buf := GetBuffer()
	buf.WriteString("scratch")
	PutBuffer(buf)

	again := GetBuffer()
	assert.Zero(t, again.Len())
	PutBuffer(again)

	huge := bytes.NewBuffer(make([]byte, 0, 2*maxPooledBuffer))
	PutBuffer(huge)
}

func TestMarshalRoundTrip(t *testing.T) {
	b, err := Marshal([]string{"x", "y"})
	require.NoError(t, err)

	var got []string
	require.NoError(t, Unmarshal(b, &got))
	assert.Equal(t, []string{"x", "y"}, got)

	indented, err := MarshalIndent(map[string]int{"a": 1}, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", string(indented))
}
