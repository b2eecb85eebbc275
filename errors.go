package tightbinding

import (
	"github.com/pkg/errors"
)

var (
	// ErrConfiguration is returned for invalid or inconsistent parameters.
	ErrConfiguration = errors.New("tightbinding: configuration error")
	// ErrMissingData is returned when a required table cannot be loaded from the hopping file.
	ErrMissingData = errors.New("tightbinding: missing data")
	// ErrHermiticity is returned when a built matrix is not symmetric.
	ErrHermiticity = errors.New("tightbinding: hermiticity violation")
)

func configErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}

// missingData reports a failed table read as ErrMissingData, keeping the read error's message.
func missingData(err error, what string) error {
	return errors.Wrapf(ErrMissingData, "%s: %v", what, err)
}
