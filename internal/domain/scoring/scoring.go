// Package scoring ranks horse records under a track condition.
//
// The score is a deterministic combination of independent heuristics:
//
//	(ageAdj + weightCoef*weight + jockeyCoef*jockey + trainerCoef*trainer + groundCoef*avgGround)
//	    * weightChangeAdj * weatherAdj
//
// Unknown ratings and an unknown ground average contribute 0. Horses are
// scored independently and ranked by score descending; equal scores keep
// their input order.
package scoring

import (
	"cmp"
	"slices"

	"github.com/okian/racecard/internal/domain/model"
)

// Default coefficients.
const (
	DefaultWeightCoefficient  = -1.0
	DefaultJockeyCoefficient  = 2.0
	DefaultTrainerCoefficient = 2.0
	DefaultGroundCoefficient  = -3.0
	DefaultWeightGainFactor   = 1.19
)

// Age curve and form thresholds.
const (
	ageRampStart      = 2.0
	agePeak           = 4.5
	ageDecaySpan      = 5.0
	sprintDistance    = 1.0
	sprintCeiling     = 10.0
	routeCeiling      = 15.0
	sprintDecayRate   = 6.0
	routeDecayRate    = 9.5
	strongFormAverage = 3.0
	weakFormAverage   = 6.0
	strongFormFactor  = 1.2
	neutralFactor     = 1.0
	weakFormFactor    = 0.8
)

// Coefficients are the tunable multipliers of the score.
type Coefficients struct {
	Weight           float64 // applied to the current weight
	Jockey           float64 // applied to the jockey rating
	Trainer          float64 // applied to the trainer rating
	Ground           float64 // applied to the average finish on the selected ground
	WeightGainFactor float64 // multiplier when the horse carries more than last time
}

// DefaultCoefficients returns the stock heuristic coefficients.
func DefaultCoefficients() Coefficients {
	return Coefficients{
		Weight:           DefaultWeightCoefficient,
		Jockey:           DefaultJockeyCoefficient,
		Trainer:          DefaultTrainerCoefficient,
		Ground:           DefaultGroundCoefficient,
		WeightGainFactor: DefaultWeightGainFactor,
	}
}

// Engine scores and ranks horses. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	coef Coefficients
}

// NewEngine creates an engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{coef: DefaultCoefficients()}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Coefficients returns the coefficients in use.
func (e *Engine) Coefficients() Coefficients { return e.coef }

var defaultEngine = NewEngine()

// Rank scores horses with the default coefficients.
func Rank(horses []model.HorseRecord, condition model.TrackCondition) []model.ScoredHorse {
	return defaultEngine.Rank(horses, condition)
}

// Score computes the score of a single horse.
func (e *Engine) Score(h model.HorseRecord, condition model.TrackCondition) model.ScoredHorse {
	ageAdj := AgeAdjustment(float64(h.Age), h.RaceDistance.Or(0))
	weightAdj := e.weightChangeAdjustment(h.CurrentWeight, h.PriorWeight)
	avg, known := AverageGroundPerformance(condition.Token(), h.PriorResults)
	weatherAdj := WeatherAdjustment(avg, known)

	score := (ageAdj +
		e.coef.Weight*h.CurrentWeight +
		e.coef.Jockey*h.JockeyRating.Or(0) +
		e.coef.Trainer*h.TrainerRating.Or(0) +
		e.coef.Ground*avg) * weightAdj * weatherAdj

	breakdown := model.Breakdown{
		AgeAdjustment:          ageAdj,
		WeightChangeAdjustment: weightAdj,
		WeatherAdjustment:      weatherAdj,
	}
	if known {
		breakdown.AverageGroundPerformance = model.Known(avg)
	}

	return model.ScoredHorse{Horse: h, Score: score, Breakdown: breakdown}
}

// Rank scores every horse and sorts by score descending. Ties keep input order.
// The result always has one entry per input horse.
func (e *Engine) Rank(horses []model.HorseRecord, condition model.TrackCondition) []model.ScoredHorse {
	type indexed struct {
		pos    int
		scored model.ScoredHorse
	}
	all := make([]indexed, len(horses))
	for i, h := range horses {
		all[i] = indexed{pos: i, scored: e.Score(h, condition)}
	}

	slices.SortStableFunc(all, func(a, b indexed) int {
		if c := cmp.Compare(b.scored.Score, a.scored.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.pos, b.pos)
	})

	ranked := make([]model.ScoredHorse, len(all))
	for i, x := range all {
		ranked[i] = x.scored
	}
	return ranked
}

func (e *Engine) weightChangeAdjustment(current, prior float64) float64 {
	if current > prior {
		return e.coef.WeightGainFactor
	}
	return neutralFactor
}

// AgeAdjustment ramps up to a distance-dependent ceiling by age 4.5 and
// decays linearly afterwards.
func AgeAdjustment(age, distance float64) float64 {
	ceiling, rate := sprintCeiling, sprintDecayRate
	if distance >= sprintDistance {
		ceiling, rate = routeCeiling, routeDecayRate
	}
	switch {
	case age <= ageRampStart:
		return 0
	case age <= agePeak:
		return (age - ageRampStart) / (agePeak - ageRampStart) * ceiling
	default:
		return ceiling - (age-agePeak)/ageDecaySpan*rate
	}
}

// WeightChangeAdjustment returns the default weight-gain factor when the horse
// carries more than last time, otherwise 1.
func WeightChangeAdjustment(current, prior float64) float64 {
	return defaultEngine.weightChangeAdjustment(current, prior)
}

// AverageGroundPerformance is the mean finish position over results whose
// ground code equals token exactly. ok is false when nothing matches.
func AverageGroundPerformance(token string, results []model.PriorResult) (avg float64, ok bool) {
	total, n := 0, 0
	for _, r := range results {
		if r.GroundCode == token {
			total += r.FinishPosition
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return float64(total) / float64(n), true
}

// WeatherAdjustment boosts strong form on the ground and dampens weak form.
// An unknown average is neutral.
func WeatherAdjustment(avg float64, known bool) float64 {
	switch {
	case !known:
		return neutralFactor
	case avg <= strongFormAverage:
		return strongFormFactor
	case avg <= weakFormAverage:
		return neutralFactor
	default:
		return weakFormFactor
	}
}
