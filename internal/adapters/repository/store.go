// Package repository stores analyzed race cards.
package repository

import (
	"context"

	"github.com/okian/racecard/internal/domain/model"
)

// Store provides read/write access to analyzed cards.
type Store interface {
	// Save inserts or replaces the analysis stored under a.ID.
	Save(ctx context.Context, a model.CardAnalysis) error

	// Get returns the analysis stored under id.
	// Returns ErrNotFound if the card is unknown.
	Get(ctx context.Context, id string) (model.CardAnalysis, error)

	// Count returns the number of cards held.
	Count(ctx context.Context) int
}
