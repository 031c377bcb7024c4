package model

import "time"

// CardAnalysis is the result of parsing one race card and ranking it under a
// track condition. A rescore replaces Ranking as a whole.
type CardAnalysis struct {
	ID         string         `json:"id"`
	Condition  TrackCondition `json:"condition"`
	Horses     []HorseRecord  `json:"horses"`
	Ranking    []ScoredHorse  `json:"ranking"`
	AnalyzedAt time.Time      `json:"analyzed_at"`
}

// Clone returns a deep copy of a.
func (a CardAnalysis) Clone() CardAnalysis {
	out := a
	if a.Horses != nil {
		out.Horses = make([]HorseRecord, len(a.Horses))
		for i, h := range a.Horses {
			out.Horses[i] = h.Clone()
		}
	}
	if a.Ranking != nil {
		out.Ranking = make([]ScoredHorse, len(a.Ranking))
		for i, s := range a.Ranking {
			out.Ranking[i] = s
			out.Ranking[i].Horse = s.Horse.Clone()
		}
	}
	return out
}

// Job is one parse-then-score unit of work submitted for asynchronous processing.
type Job struct {
	ID        string         // content id of the card text
	Text      string         // raw race-card text
	Condition TrackCondition // condition to rank under
}
