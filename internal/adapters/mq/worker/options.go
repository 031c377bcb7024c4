package worker

import (
	"context"

	"github.com/okian/racecard/internal/domain/model"
	"github.com/okian/racecard/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithFailureHandler registers fn to be called for every job that could not
// be analyzed or saved.
func WithFailureHandler(fn func(ctx context.Context, j model.Job, err error)) Option {
	return func(w *InMemoryWorker) {
		w.onFailure = fn
	}
}
