package csv

import (
	"os"

	"github.com/nathangeffen/libuseful/pkg/compression"
	"github.com/nathangeffen/libuseful/pkg/errors"
	"github.com/nathangeffen/libuseful/pkg/mmap"
)

// ReadFile parses the document stored at path. Files with a compression
// suffix such as .gz or .zst are decompressed transparently; other files
// are memory-mapped.
func ReadFile(path string, opts ReadOptions) (*Document, error) {
	alg := compression.FromPath(path)
	if alg == compression.None {
		m, err := mmap.NewReader(path)
		if err != nil {
			return nil, err
		}
		defer m.Close()
		return Read(m, opts)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open CSV file").
			WithDetail("path", path)
	}
	defer f.Close()

	r, err := compression.NewReader(alg, f)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return Read(r, opts)
}

// WriteFile serializes doc to path, compressing according to the file suffix.
func WriteFile(path string, doc *Document, opts WriteOptions) error {
	return WriteFileLevel(path, doc, opts, compression.Default)
}

// WriteFileLevel is WriteFile with an explicit compression level.
func WriteFileLevel(path string, doc *Document, opts WriteOptions, level compression.Level) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create CSV file").
			WithDetail("path", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, errors.ErrorTypeFile, "failed to close CSV file")
		}
	}()

	w, err := compression.NewWriter(compression.FromPath(path), f, level)
	if err != nil {
		return err
	}
	if err := Write(w, doc, opts); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to finish compressed stream")
	}
	return nil
}
