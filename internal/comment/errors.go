package comment

import (
	"errors"
	"fmt"
)

// ErrMissingColumn is the sentinel wrapped by MissingColumnError.
var ErrMissingColumn = errors.New("missing required column")

// MissingColumnError reports a required input column that is absent.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s %q", ErrMissingColumn, e.Column)
}

func (e *MissingColumnError) Unwrap() error { return ErrMissingColumn }
