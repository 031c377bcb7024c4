// Package types contains the ranked-row shape shared by the HTTP API and the CLI.
package types

import (
	"time"

	"github.com/okian/racecard/internal/domain/model"
)

// Entry is one ranked horse as presented to clients.
type Entry struct {
	Rank          int             `json:"rank"`
	Name          string          `json:"name"`
	Age           int             `json:"age"`
	CurrentWeight float64         `json:"current_weight"`
	Score         float64         `json:"score"`
	Breakdown     model.Breakdown `json:"breakdown"`
}

// Card is an analyzed card as presented to clients.
type Card struct {
	ID         string               `json:"id"`
	Condition  model.TrackCondition `json:"condition"`
	AnalyzedAt time.Time            `json:"analyzed_at"`
	Count      int                  `json:"count"`
	Horses     []Entry              `json:"horses"`
}

// Entries numbers a ranking from 1. The result is never nil.
func Entries(ranking []model.ScoredHorse) []Entry {
	out := make([]Entry, len(ranking))
	for i, sh := range ranking {
		out[i] = Entry{
			Rank:          i + 1,
			Name:          sh.Horse.Name,
			Age:           sh.Horse.Age,
			CurrentWeight: sh.Horse.CurrentWeight,
			Score:         sh.Score,
			Breakdown:     sh.Breakdown,
		}
	}
	return out
}

// FromAnalysis converts a stored analysis for output.
func FromAnalysis(a model.CardAnalysis) Card {
	entries := Entries(a.Ranking)
	return Card{
		ID:         a.ID,
		Condition:  a.Condition,
		AnalyzedAt: a.AnalyzedAt,
		Count:      len(entries),
		Horses:     entries,
	}
}
