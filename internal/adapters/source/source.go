// Package source extracts race-card text from the documents it arrives in.
//
// Every extractor returns normalised plain text ready for the record parser.
package source

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/okian/racecard/pkg/metrics"
)

// Media types understood by Extract.
const (
	MediaTypeText = "text/plain"
	MediaTypeHTML = "text/html"
	MediaTypePDF  = "application/pdf"
)

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Normalize applies NFKC so full-width digits and non-breaking spaces from
// OCR and PDF text layers become plain ASCII, and unifies line endings.
func Normalize(text string) string {
	return lineBreaks.Replace(norm.NFKC.String(text))
}

// FromText reads plain text.
func FromText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: read text: %w", ErrExtract, err)
	}
	return Normalize(string(data)), nil
}

// Extract dispatches on the media type of contentType. An empty content type
// is treated as plain text.
func Extract(contentType string, body []byte) (string, error) {
	mediaType := MediaTypeText
	if contentType != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
		}
		mediaType = mt
	}

	var (
		format string
		text   string
		err    error
	)
	switch mediaType {
	case MediaTypeText:
		format = "text"
		text, err = FromText(bytes.NewReader(body))
	case MediaTypeHTML:
		format = "html"
		text, err = FromHTML(bytes.NewReader(body))
	case MediaTypePDF:
		format = "pdf"
		text, err = FromPDF(bytes.NewReader(body), int64(len(body)))
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, mediaType)
	}
	return observe(format, text, err)
}

func observe(format, text string, err error) (string, error) {
	if err != nil {
		metrics.RecordExtractionError(format)
		return "", err
	}
	metrics.RecordExtraction(format)
	return text, nil
}

// ExtractFile picks an extractor from the file extension.
func ExtractFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pdf" {
		text, err := OpenPDF(path)
		return observe("pdf", text, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", ErrExtract, path, err)
	}
	defer f.Close()

	format, read := "text", FromText
	if ext == ".html" || ext == ".htm" {
		format, read = "html", FromHTML
	}
	text, err := read(f)
	return observe(format, text, err)
}
