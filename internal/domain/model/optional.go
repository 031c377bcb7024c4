package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// OptionalFloat is a float64 that may be unknown. The zero value is unknown,
// which is distinct from a known 0.
type OptionalFloat struct {
	value float64
	known bool
}

// Known returns an OptionalFloat holding v.
func Known(v float64) OptionalFloat {
	return OptionalFloat{value: v, known: true}
}

// Get returns the value and whether it is known.
func (o OptionalFloat) Get() (float64, bool) {
	return o.value, o.known
}

// Or returns the value, or def when unknown.
func (o OptionalFloat) Or(def float64) float64 {
	if !o.known {
		return def
	}
	return o.value
}

// IsKnown reports whether a value is present.
func (o OptionalFloat) IsKnown() bool { return o.known }

func (o OptionalFloat) String() string {
	if !o.known {
		return "unknown"
	}
	return strconv.FormatFloat(o.value, 'g', -1, 64)
}

// MarshalJSON encodes unknown values as null.
func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.known {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(o.value, 'g', -1, 64)), nil
}

// UnmarshalJSON decodes null as unknown.
func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = OptionalFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Known(v)
	return nil
}
