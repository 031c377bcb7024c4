package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelector lists the elements that each become one line of text.
const blockSelector = "tr, p, li, h1, h2, h3, h4, h5, h6, pre"

// FromHTML flattens a race-card page into lines. Each table row becomes one
// line with its cells separated by a space; preformatted blocks keep their
// lines and other outermost blocks become one line each. Pages without such
// blocks fall back to the document text.
func FromHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("%w: parse html: %w", ErrExtract, err)
	}
	doc.Find("script, style, noscript").Remove()

	var lines []string
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		switch goquery.NodeName(s) {
		case "tr":
			cells := s.Find("td, th").Map(func(_ int, c *goquery.Selection) string {
				return collapse(c.Text())
			})
			lines = appendLine(lines, strings.Join(cells, " "))
		case "pre":
			for _, l := range strings.Split(s.Text(), "\n") {
				lines = appendLine(lines, l)
			}
		default:
			lines = appendLine(lines, s.Text())
		}
	})

	if len(lines) == 0 {
		return Normalize(doc.Text()), nil
	}
	return Normalize(strings.Join(lines, "\n")), nil
}

func appendLine(lines []string, text string) []string {
	if line := collapse(text); line != "" {
		return append(lines, line)
	}
	return lines
}

// collapse joins whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
