// Package model contains domain models passed between layers.
package model

// PriorResult is one historical race taken from a horse's form figures.
type PriorResult struct {
	FinishPosition int    `json:"finish_position"` // 0 when the figure could not be read
	GroundCode     string `json:"ground_code"`     // letters of the form token, e.g. "Gd"
}

// HorseRecord is a single runner parsed from a race card. Records are built
// once per parse pass and treated as immutable values afterwards.
type HorseRecord struct {
	Name          string        `json:"name"`
	Age           int           `json:"age"`
	CurrentWeight float64       `json:"current_weight"`
	PriorWeight   float64       `json:"prior_weight"`
	JockeyRating  OptionalFloat `json:"jockey_rating"`
	TrainerRating OptionalFloat `json:"trainer_rating"`
	PriorResults  []PriorResult `json:"prior_results"`
	RaceDistance  OptionalFloat `json:"race_distance"`
}

// Clone returns a copy that shares no slices with h.
func (h HorseRecord) Clone() HorseRecord {
	out := h
	if h.PriorResults != nil {
		out.PriorResults = make([]PriorResult, len(h.PriorResults))
		copy(out.PriorResults, h.PriorResults)
	}
	return out
}

// Breakdown lists the sub-terms that produced a score.
type Breakdown struct {
	AgeAdjustment            float64       `json:"age_adjustment"`
	WeightChangeAdjustment   float64       `json:"weight_change_adjustment"`
	AverageGroundPerformance OptionalFloat `json:"average_ground_performance"`
	WeatherAdjustment        float64       `json:"weather_adjustment"`
}

// ScoredHorse pairs a record with its computed score.
type ScoredHorse struct {
	Horse     HorseRecord `json:"horse"`
	Score     float64     `json:"score"`
	Breakdown Breakdown   `json:"breakdown"`
}
