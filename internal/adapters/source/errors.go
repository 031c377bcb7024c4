package source

import "errors"

// Sentinel kinds for text extraction errors.
var (
	ErrExtract                = errors.New("extract race card text failed")
	ErrUnsupportedContentType = errors.New("unsupported content type")
)
