package cardtool

import "errors"

// Error constants.
var (
	ErrNoData      = errors.New("no valid horse data found")
	ErrMissingFile = errors.New("missing -file")
	ErrServer      = errors.New("server request failed")
)
