package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrMissingCondition = errors.New("missing track condition")
	ErrBodyTooLarge     = errors.New("request body too large")
	ErrNoData           = errors.New("no valid horse data found")
)

// wrap prefixes err with the handler operation name.
func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
