package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTrackCondition is returned when a string names no track condition.
var ErrUnknownTrackCondition = errors.New("unknown track condition")

// TrackCondition is the going a race is run on.
type TrackCondition int

// Supported track conditions. The zero value is Good.
const (
	Good TrackCondition = iota
	Soft
	Heavy
	Firm
	Standard
)

var conditionTokens = [...]string{
	Good:     "Gd",
	Soft:     "Sft",
	Heavy:    "Hy",
	Firm:     "Fm",
	Standard: "St",
}

var conditionNames = [...]string{
	Good:     "Good",
	Soft:     "Soft",
	Heavy:    "Heavy",
	Firm:     "Firm",
	Standard: "Standard",
}

// AllTrackConditions returns every condition in declaration order.
func AllTrackConditions() []TrackCondition {
	return []TrackCondition{Good, Soft, Heavy, Firm, Standard}
}

// Valid reports whether c is one of the declared conditions.
func (c TrackCondition) Valid() bool {
	return c >= Good && c <= Standard
}

// Token is the short ground code used for display and for matching form figures.
func (c TrackCondition) Token() string {
	if !c.Valid() {
		return ""
	}
	return conditionTokens[c]
}

// Name is the long display name.
func (c TrackCondition) Name() string {
	if !c.Valid() {
		return ""
	}
	return conditionNames[c]
}

func (c TrackCondition) String() string {
	if !c.Valid() {
		return fmt.Sprintf("TrackCondition(%d)", int(c))
	}
	return c.Token()
}

// ParseTrackCondition accepts a token ("Sft") or a long name ("soft"), ignoring case.
func ParseTrackCondition(s string) (TrackCondition, error) {
	s = strings.TrimSpace(s)
	for _, c := range AllTrackConditions() {
		if strings.EqualFold(s, c.Token()) || strings.EqualFold(s, c.Name()) {
			return c, nil
		}
	}
	return Good, fmt.Errorf("%w: %q", ErrUnknownTrackCondition, s)
}

// MarshalJSON encodes the condition as its token.
func (c TrackCondition) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTrackCondition, int(c))
	}
	return json.Marshal(c.Token())
}

// UnmarshalJSON accepts anything ParseTrackCondition accepts.
func (c *TrackCondition) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTrackCondition(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
