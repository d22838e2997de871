package csv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathangeffen/libuseful/pkg/compression"
	"github.com/nathangeffen/libuseful/pkg/errors"
)

func TestFileRoundTripCompressed(t *testing.T) {
	doc, err := ReadString(people, DefaultReadOptions())
	require.NoError(t, err)
	plain := doc.String()

	for _, name := range []string{"people.csv", "people.csv.gz", "people.csv.zst", "people.csv.lz4", "people.csv.sz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteFile(path, doc, DefaultWriteOptions()))

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			if compression.FromPath(path) == compression.None {
				assert.Equal(t, plain, string(raw))
			} else {
				assert.NotEqual(t, plain, string(raw))
			}

			again, err := ReadFile(path, DefaultReadOptions())
			require.NoError(t, err)
			assert.Equal(t, doc.Header(), again.Header())
			assert.Equal(t, rowsOf(doc), rowsOf(again))
		})
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.csv"), DefaultReadOptions())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}

func TestReadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	doc, err := ReadFile(path, DefaultReadOptions())
	require.NoError(t, err)
	assert.False(t, doc.HasHeader())
	assert.Zero(t, doc.Len())
}
