package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// OpenPDF extracts the text layer of a PDF file.
func OpenPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf %s: %w", ErrExtract, path, err)
	}
	defer f.Close()
	return pdfText(r)
}

// FromPDF extracts the text layer of an in-memory PDF.
func FromPDF(r io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: read pdf: %w", ErrExtract, err)
	}
	return pdfText(reader)
}

// pdfText joins page texts with a newline between pages.
func pdfText(r *pdf.Reader) (text string, err error) {
	// The pdf reader panics on some malformed content streams.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: malformed pdf: %v", ErrExtract, rec)
		}
	}()

	var b strings.Builder
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %w", ErrExtract, i, err)
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return Normalize(b.String()), nil
}
