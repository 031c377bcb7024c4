package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound  = errors.New("card not found")
	ErrInvalidID = errors.New("card id is required")
)
