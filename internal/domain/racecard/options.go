package racecard

// Option applies a configuration option to the Parser.
type Option func(*Parser)

// WithVerdictMarkers replaces the markers that identify non-data lines.
// Blank markers are ignored; an empty list keeps the default.
func WithVerdictMarkers(markers ...string) Option {
	return func(p *Parser) {
		kept := make([]string, 0, len(markers))
		for _, m := range markers {
			if m != "" {
				kept = append(kept, m)
			}
		}
		if len(kept) > 0 {
			p.verdictMarkers = kept
		}
	}
}

// WithWeightSuffix sets the unit suffix stripped from the header weight.
func WithWeightSuffix(suffix string) Option {
	return func(p *Parser) {
		if suffix != "" {
			p.weightSuffix = suffix
		}
	}
}
