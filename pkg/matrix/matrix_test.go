package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathangeffen/libuseful/pkg/csv"
	"github.com/nathangeffen/libuseful/pkg/errors"
)

const grid = `V1,V2,V3,V4
1,2,3,4
10,20,30,40
100,200,300,400
1000,2000,3000,4000
10000,20000,30000,40000
`

func TestFromCSV(t *testing.T) {
	doc, err := csv.ReadString(grid, csv.DefaultReadOptions())
	require.NoError(t, err)

	m, report, err := FromCSV(doc)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 5, m.Rows())
	assert.Equal(t, 4, m.Cols())

	tests := []struct {
		r, c int
		want float64
	}{
		{0, 0, 1},
		{4, 1, 20000},
		{0, 3, 4},
		{4, 3, 40000},
	}
	for _, tt := range tests {
		v, err := m.At(tt.r, tt.c)
		require.NoError(t, err)
		assert.Equal(t, tt.want, v, "cell (%d,%d)", tt.r, tt.c)
	}

	before := m.Values()
	require.NoError(t, m.Set(4, 1, 27))
	v, err := m.At(4, 1)
	require.NoError(t, err)
	assert.Equal(t, 27.0, v)

	after := m.Values()
	for i := range before {
		if i == 4*4+1 {
			continue
		}
		assert.Equal(t, before[i], after[i])
	}
}

func TestFromCSVFailSoft(t *testing.T) {
	doc := csv.New()
	require.NoError(t, doc.Append("abc", "3.14"))

	m, report, err := FromCSV(doc)
	require.NoError(t, err)

	v, _ := m.At(0, 0)
	assert.Equal(t, 0.0, v)
	v, _ = m.At(0, 1)
	assert.Equal(t, 3.14, v)

	require.Equal(t, 1, report.Len())
	assert.Equal(t, 0, report.Errors[0].Col)
	assert.True(t, errors.IsType(report.Err(), errors.ErrorTypeNumericFormat))
}

func TestFromCSVPreconditions(t *testing.T) {
	_, _, err := FromCSV(csv.New("a", "b"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument))

	ragged := csv.New("a", "b")
	require.NoError(t, ragged.Append("1", "2"))
	require.NoError(t, ragged.Append("3"))
	_, _, err = FromCSV(ragged)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestBounds(t *testing.T) {
	m, err := New(2, 3)
	require.NoError(t, err)

	_, err = m.At(2, 0)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIndexOutOfRange))
	assert.True(t, errors.IsType(m.Set(0, 3, 1), errors.ErrorTypeIndexOutOfRange))
	assert.True(t, errors.IsType(m.Set(-1, 0, 1), errors.ErrorTypeIndexOutOfRange))

	_, err = m.Row(5)
	assert.Error(t, err)

	_, err = New(-1, 2)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument))
}

func TestToCSV(t *testing.T) {
	m, err := New(1, 2)
	require.NoError(t, err)
	require.NoError(t, m.Set(0, 0, 1.5))

	doc, err := m.ToCSV("x", "y")
	require.NoError(t, err)
	assert.Equal(t, "x,y\n1.500000,0.000000\n", doc.String())

	_, err = m.ToCSV("only")
	assert.Error(t, err)

	row, err := m.Row(0)
	require.NoError(t, err)
	row[0] = 99
	v, _ := m.At(0, 0)
	assert.Equal(t, 1.5, v, "Row returns a copy")
}
