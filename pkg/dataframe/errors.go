package dataframe

import "github.com/nathangeffen/libuseful/pkg/errors"

func typeMismatch(col int, want, got ColumnType) error {
	return errors.Newf(errors.ErrorTypeInvalidArgument,
		"column %d expects %s, got %s", col, want, got).
		WithDetail("column", col)
}

func arityMismatch(want, got int) error {
	return errors.Newf(errors.ErrorTypeInvalidArgument,
		"expected %d values, got %d", want, got)
}
