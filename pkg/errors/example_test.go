package errors_test

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/nathangeffen/libuseful/pkg/errors"
)

// Example demonstrates basic error creation with details.
func Example() {
	err := errors.New(errors.ErrorTypeOutOfMemory, "buffer cannot grow").
		WithDetail("capacity", 10).
		WithDetail("max_capacity", 10)

	fmt.Println(err.Error())
	fmt.Println(err.Details["capacity"])

	// Output:
	// out_of_memory: buffer cannot grow
	// 10
}

// ExampleWrap shows how to wrap an I/O error while reading a CSV stream.
func ExampleWrap() {
	err := errors.Wrap(io.ErrUnexpectedEOF, errors.ErrorTypeFile, "failed to read CSV row").
		WithDetail("file", "data.csv")

	if errors.IsType(err, errors.ErrorTypeFile) {
		fmt.Println("This is a file error")
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		fmt.Println("Original error was unexpected EOF")
	}

	// Output:
	// This is a file error
	// Original error was unexpected EOF
}

// ExampleIndexOutOfRange shows the bounds error used by every container.
func ExampleIndexOutOfRange() {
	err := errors.IndexOutOfRange("row", 12, 9)
	fmt.Println(err)
	fmt.Println(errors.TypeOf(err))

	// Output:
	// index_out_of_range: row index 12 out of range [0, 9)
	// index_out_of_range
}
