// Package service ties the parser, scoring engine, queue, workers and card
// store together behind the operations the HTTP API needs.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/racecard/internal/adapters/mq/queue"
	"github.com/okian/racecard/internal/adapters/mq/worker"
	"github.com/okian/racecard/internal/adapters/repository"
	"github.com/okian/racecard/internal/domain/dedupe"
	"github.com/okian/racecard/internal/domain/model"
	"github.com/okian/racecard/internal/domain/racecard"
	"github.com/okian/racecard/internal/domain/scoring"
	"github.com/okian/racecard/pkg/logger"
	"github.com/okian/racecard/pkg/metrics"
)

const stopTimeout = 10 * time.Second

// cardNamespace scopes content ids so they never collide with other v5 ids.
var cardNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:racecard:card")) //nolint:gochecknoglobals // fixed namespace

// ContentID returns the deterministic id of a card's text.
func ContentID(text string) string {
	return uuid.NewSHA1(cardNamespace, []byte(text)).String()
}

// Service implements the API dependencies for the ranking system.
type Service struct {
	mu sync.RWMutex

	parser *racecard.Parser
	engine *scoring.Engine

	store   repository.Store
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool

	workerCount   int
	queueSize     int
	dedupeSize    int
	storeCapacity int
	parserOpts    []racecard.Option
	engineOpts    []scoring.Option

	started bool
	now     func() time.Time

	logger logger.Logger
}

// New constructs a Service. Analyze works immediately; the asynchronous
// operations need Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU(),
		queueSize:     1024,
		dedupeSize:    50_000,
		storeCapacity: 10_000,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.parser = racecard.NewParser(s.parserOpts...)
	s.engine = scoring.NewEngine(s.engineOpts...)
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start initializes and starts the queue, worker pool and store.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// A card that is no longer stored, or never will be, must be accepted
	// again on resubmission instead of being acked as a duplicate.
	seen := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.deduper = seen
	s.store = repository.NewMemoryStore(
		repository.WithCapacity(s.storeCapacity),
		repository.WithEvictionHook(func(id string) { seen.Unrecord(context.Background(), id) }),
	)
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s, s.store,
		worker.WithLogger(s.logger.Named("worker")),
		worker.WithFailureHandler(func(ctx context.Context, j model.Job, _ error) { seen.Unrecord(ctx, j.ID) }),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "racecard service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.Int("store_capacity", s.storeCapacity),
	)
	return nil
}

// Stop drains queued cards and shuts the workers down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "racecard service stopped")
}

// Analyze parses text and ranks the horses under condition. A card with no
// recognisable runners yields an analysis with empty Horses and Ranking.
func (s *Service) Analyze(ctx context.Context, text string, condition model.TrackCondition) (model.CardAnalysis, error) {
	if !condition.Valid() {
		return model.CardAnalysis{}, fmt.Errorf("%w: %d", model.ErrUnknownTrackCondition, int(condition))
	}

	horses := s.parser.Parse(text)
	metrics.RecordCardParsed(len(horses))

	a := model.CardAnalysis{
		ID:        ContentID(text),
		Condition: condition,
		Horses:    horses,
	}
	a.Ranking = s.rank(ctx, horses, condition)
	a.AnalyzedAt = s.now().UTC()

	s.logger.Debug(ctx, "card analyzed",
		logger.String("card_id", a.ID),
		logger.String("condition", condition.Token()),
		logger.Int("horses", len(horses)),
	)
	return a, nil
}

func (s *Service) rank(ctx context.Context, horses []model.HorseRecord, condition model.TrackCondition) []model.ScoredHorse {
	start := time.Now()
	ranking := s.engine.Rank(horses, condition)
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordRanking(condition.Token())

	for i, sh := range ranking {
		s.logger.Debug(ctx, "scored horse",
			logger.Int("rank", i+1),
			logger.String("name", sh.Horse.Name),
			logger.Float64("score", sh.Score),
			logger.Float64("age_adjustment", sh.Breakdown.AgeAdjustment),
			logger.Float64("weight_change_adjustment", sh.Breakdown.WeightChangeAdjustment),
			logger.String("avg_ground_performance", sh.Breakdown.AverageGroundPerformance.String()),
			logger.Float64("weather_adjustment", sh.Breakdown.WeatherAdjustment),
		)
	}
	return ranking
}

// Submit queues text for background analysis and returns its content id.
// A card already submitted is acknowledged as a duplicate without new work.
func (s *Service) Submit(ctx context.Context, text string, condition model.TrackCondition) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return "", false, ErrNotStarted
	}
	if !condition.Valid() {
		return "", false, fmt.Errorf("%w: %d", model.ErrUnknownTrackCondition, int(condition))
	}

	id := ContentID(text)
	if s.deduper.SeenAndRecord(ctx, id) {
		metrics.RecordCardDuplicate()
		s.logger.Debug(ctx, "duplicate card submission", logger.String("card_id", id))
		return id, true, nil
	}

	if !s.queue.Enqueue(ctx, model.Job{ID: id, Text: text, Condition: condition}) {
		// Forget the id so the client can retry.
		s.deduper.Unrecord(ctx, id)
		return id, false, ErrBackpressure
	}
	return id, false, nil
}

// Card returns the stored analysis of a submitted card.
func (s *Service) Card(ctx context.Context, id string) (model.CardAnalysis, error) {
	store, err := s.storeIfStarted()
	if err != nil {
		return model.CardAnalysis{}, err
	}
	return store.Get(ctx, id)
}

// Rescore ranks a stored card again under condition and replaces the stored analysis.
func (s *Service) Rescore(ctx context.Context, id string, condition model.TrackCondition) (model.CardAnalysis, error) {
	if !condition.Valid() {
		return model.CardAnalysis{}, fmt.Errorf("%w: %d", model.ErrUnknownTrackCondition, int(condition))
	}
	store, err := s.storeIfStarted()
	if err != nil {
		return model.CardAnalysis{}, err
	}

	a, err := store.Get(ctx, id)
	if err != nil {
		return model.CardAnalysis{}, err
	}
	a.Condition = condition
	a.Ranking = s.rank(ctx, a.Horses, condition)
	a.AnalyzedAt = s.now().UTC()

	if err := store.Save(ctx, a); err != nil {
		return model.CardAnalysis{}, fmt.Errorf("save rescored card %s: %w", id, err)
	}
	return a, nil
}

func (s *Service) storeIfStarted() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.engine.Coefficients()
	stats := map[string]any{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"storeCapacity": s.storeCapacity,
		"coefficients": map[string]float64{
			"weight":             c.Weight,
			"jockey":             c.Jockey,
			"trainer":            c.Trainer,
			"ground":             c.Ground,
			"weight_gain_factor": c.WeightGainFactor,
		},
	}

	if s.started {
		ctx := context.Background()
		queueLen := s.queue.Len(ctx)
		stored := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["storedCards"] = stored
		stats["dedupeEntries"] = s.deduper.Size()
		stats["processed"] = s.pool.Processed()
		stats["failed"] = s.pool.Failed()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateCardsStored(stored)
	}

	return stats
}
