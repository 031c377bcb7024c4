// Package racecard turns loosely structured race-card text into horse records.
//
// The format has no grammar, only conventions: a line whose first visible
// rune is numeric opens a new runner, the header carries the draw, the name
// and a trailing weight, the second line carries the form figures, and the
// last line of the runner ends with the age. Fields that cannot be read fall
// back to defaults; parsing never fails.
package racecard

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/okian/racecard/internal/domain/model"
)

// Default parser configuration constants.
const (
	defaultVerdictMarker = "ATR VERDICT"
	defaultWeightSuffix  = "kg"
)

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Parser extracts horse records from race-card text.
type Parser struct {
	verdictMarkers []string
	weightSuffix   string
}

// NewParser creates a parser with configuration options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		verdictMarkers: []string{defaultVerdictMarker},
		weightSuffix:   defaultWeightSuffix,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

var defaultParser = NewParser()

// Parse extracts horse records using the default configuration.
func Parse(raw string) []model.HorseRecord {
	return defaultParser.Parse(raw)
}

// Parse extracts one record per header-led group of lines, in input order.
func (p *Parser) Parse(raw string) []model.HorseRecord {
	horses := []model.HorseRecord{}
	var group []string

	for _, line := range strings.Split(lineBreaks.Replace(raw), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || p.isVerdict(line) {
			continue
		}
		if isHeader(trimmed) {
			if len(group) > 0 {
				horses = append(horses, p.parseGroup(group))
			}
			group = []string{line}
			continue
		}
		// Lines before the first header belong to no runner.
		if len(group) > 0 {
			group = append(group, line)
		}
	}
	if len(group) > 0 {
		horses = append(horses, p.parseGroup(group))
	}

	return horses
}

func (p *Parser) isVerdict(line string) bool {
	for _, marker := range p.verdictMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// isHeader reports whether a trimmed line opens a new runner.
func isHeader(trimmed string) bool {
	r, size := utf8.DecodeRuneInString(trimmed)
	return size > 0 && unicode.IsNumber(r)
}

func (p *Parser) parseGroup(lines []string) model.HorseRecord {
	header := strings.Fields(lines[0])

	// Headers are never blank, so there is at least the draw token. A trailing
	// token is the weight, not part of the name, when it is a finite
	// non-negative number or a number carrying the weight suffix.
	nameTokens := header[1:]
	rawWeight, hasSuffix := strings.CutSuffix(header[len(header)-1], p.weightSuffix)
	weight, ok := parseWeight(rawWeight)
	if !ok && hasSuffix {
		_, err := strconv.ParseFloat(rawWeight, 64)
		ok = err == nil
	}
	if ok && len(nameTokens) > 0 {
		nameTokens = nameTokens[:len(nameTokens)-1]
	}
	name := strings.Join(nameTokens, " ")

	age := 0
	if last := strings.Fields(lines[len(lines)-1]); len(last) > 0 {
		age = parseAge(last[len(last)-1])
	}

	form := []model.PriorResult{}
	if len(lines) > 1 {
		form = parseForm(lines[1])
	}

	return model.HorseRecord{
		Name:          name,
		Age:           age,
		CurrentWeight: weight,
		// No separate source for the previous weight yet.
		PriorWeight:  weight,
		PriorResults: form,
	}
}

// parseForm reads one PriorResult per whitespace-separated form token.
func parseForm(line string) []model.PriorResult {
	tokens := strings.Fields(line)
	results := make([]model.PriorResult, 0, len(tokens))
	for _, tok := range tokens {
		position, err := strconv.Atoi(strings.TrimFunc(tok, unicode.IsLetter))
		if err != nil {
			position = 0
		}
		results = append(results, model.PriorResult{
			FinishPosition: position,
			GroundCode:     letters(tok),
		})
	}
	return results
}

func letters(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseWeight reads a finite non-negative weight. ok is false, and the
// weight 0, for anything else.
func parseWeight(s string) (w float64, ok bool) {
	w, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return 0, false
	}
	return w, true
}

func parseAge(s string) int {
	age, err := strconv.Atoi(s)
	if err != nil || age < 0 {
		return 0
	}
	return age
}
