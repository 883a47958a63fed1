package field

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSurface indicates the host could not provide a drawing surface.
	ErrNoSurface = errors.New("field: drawing surface unavailable")

	// ErrInvalidBounds indicates a non-positive or non-finite surface size.
	ErrInvalidBounds = errors.New("field: invalid surface bounds")

	// ErrInvalidOptions indicates an option value outside its valid range.
	ErrInvalidOptions = errors.New("field: invalid options")
)

// OptionError reports which option failed validation.
type OptionError struct {
	Option string
	Value  float64
	Reason string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("field: option %s=%g: %s", e.Option, e.Value, e.Reason)
}

func (e *OptionError) Unwrap() error {
	return ErrInvalidOptions
}
