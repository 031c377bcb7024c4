package service

import (
	"github.com/okian/racecard/internal/domain/racecard"
	"github.com/okian/racecard/internal/domain/scoring"
	"github.com/okian/racecard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of analysis workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending submissions.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many card ids are remembered. A value <= 0 is unbounded.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithStoreCapacity bounds the analyzed cards kept. A value <= 0 is unbounded.
func WithStoreCapacity(capacity int) Option {
	return func(s *Service) {
		s.storeCapacity = capacity
	}
}

// WithParserOptions configures the race-card parser.
func WithParserOptions(opts ...racecard.Option) Option {
	return func(s *Service) {
		s.parserOpts = append(s.parserOpts, opts...)
	}
}

// WithCoefficients configures the scoring engine.
func WithCoefficients(c scoring.Coefficients) Option {
	return func(s *Service) {
		s.engineOpts = append(s.engineOpts, scoring.WithCoefficients(c))
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
