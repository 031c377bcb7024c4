package service

import (
	"errors"

	"github.com/okian/racecard/internal/adapters/mq/queue"
	"github.com/okian/racecard/internal/adapters/repository"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = queue.ErrFull
	ErrNotFound     = repository.ErrNotFound
)
