// Package mmap provides read-only memory-mapped access to files.
package mmap

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/nathangeffen/libuseful/pkg/errors"
)

// Reader maps a whole file into memory. The data is valid until Close.
type Reader struct {
	file   *os.File
	data   []byte
	mapped bool
	reader *bytes.Reader

	mu sync.Mutex
}

// NewReader opens and maps filename. An empty file yields a Reader with no
// data, since a zero-length mapping is not allowed.
func NewReader(filename string) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open file").
			WithDetail("path", filename)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to stat file").
			WithDetail("path", filename)
	}

	r := &Reader{file: file}
	if size := stat.Size(); size > 0 {
		data, mapped, err := mapFile(file, size)
		if err != nil {
			file.Close()
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to map file").
				WithDetail("path", filename)
		}
		r.data, r.mapped = data, mapped
	}
	r.reader = bytes.NewReader(r.data)
	return r, nil
}

// Bytes returns the mapped file contents. The slice must not be used
// after Close.
func (r *Reader) Bytes() []byte {
	return r.data
}

// Len returns the file size in bytes.
func (r *Reader) Len() int {
	return len(r.data)
}

// Read implements io.Reader over the mapped contents.
func (r *Reader) Read(p []byte) (int, error) {
	if r.reader == nil {
		return 0, io.EOF
	}
	return r.reader.Read(p)
}

// Close unmaps the file and closes it
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.data != nil && r.mapped {
		err = munmap(r.data)
	}
	r.data = nil
	r.reader = nil

	if r.file != nil {
		if closeErr := r.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.file = nil
	}
	return err
}
