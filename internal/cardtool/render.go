package cardtool

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/okian/racecard/internal/domain/types"
)

// Render writes one "rank. name: score" line per entry, or the entries as an
// indented JSON array.
func Render(w io.Writer, entries []types.Entry, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%d. %s: %.2f\n", e.Rank, e.Name, e.Score); err != nil {
			return err
		}
	}
	return nil
}
