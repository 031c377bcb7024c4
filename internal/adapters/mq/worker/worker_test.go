package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	worker "github.com/okian/racecard/internal/adapters/mq/worker"
	model "github.com/okian/racecard/internal/domain/model"
	logging "github.com/okian/racecard/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan model.Job
	once sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan model.Job, 64)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan model.Job { return mq.jobs }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.jobs) })
	return nil
}

type mockAnalyzer struct {
	mu     sync.Mutex
	errFor map[string]error // keyed by card text
	calls  int
}

func newMockAnalyzer() *mockAnalyzer {
	return &mockAnalyzer{errFor: make(map[string]error)}
}

func (ma *mockAnalyzer) Analyze(_ context.Context, text string, c model.TrackCondition) (model.CardAnalysis, error) {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	ma.calls++
	if err, ok := ma.errFor[text]; ok {
		return model.CardAnalysis{}, err
	}
	h := model.HorseRecord{Name: text, PriorResults: []model.PriorResult{}}
	return model.CardAnalysis{
		ID:        "content-id",
		Condition: c,
		Horses:    []model.HorseRecord{h},
		Ranking:   []model.ScoredHorse{{Horse: h, Score: 1}},
	}, nil
}

type mockSink struct {
	mu    sync.Mutex
	saved map[string]model.CardAnalysis
	err   error
}

func newMockSink() *mockSink {
	return &mockSink{saved: make(map[string]model.CardAnalysis)}
}

func (ms *mockSink) Save(_ context.Context, a model.CardAnalysis) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.err != nil {
		return ms.err
	}
	ms.saved[a.ID] = a
	return nil
}

func (ms *mockSink) get(id string) (model.CardAnalysis, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	a, ok := ms.saved[id]
	return a, ok
}

func (ms *mockSink) count() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.saved)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		analyzer := newMockAnalyzer()
		sink := newMockSink()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		w := worker.NewInMemoryWorker(q, analyzer, sink, worker.WithName("test-worker"))
		go w.Run(ctx)

		convey.Convey("When a job is queued", func() {
			q.jobs <- model.Job{ID: "card-1", Text: "Solo", Condition: model.Heavy}

			convey.Convey("Then the analysis is saved under the job id", func() {
				convey.So(waitFor(func() bool { return sink.count() == 1 }), convey.ShouldBeTrue)
				a, ok := sink.get("card-1")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(a.Condition, convey.ShouldEqual, model.Heavy)
				convey.So(a.Ranking[0].Horse.Name, convey.ShouldEqual, "Solo")
			})
		})

		convey.Convey("When analysis fails", func() {
			analyzer.errFor["broken"] = errors.New("boom")
			q.jobs <- model.Job{ID: "bad", Text: "broken"}
			q.jobs <- model.Job{ID: "good", Text: "fine"}

			convey.Convey("Then the worker keeps going", func() {
				convey.So(waitFor(func() bool { _, ok := sink.get("good"); return ok }), convey.ShouldBeTrue)
				_, ok := sink.get("bad")
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When shut down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then it stops without error and a second call is safe", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a worker pool", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		analyzer := newMockAnalyzer()
		sink := newMockSink()
		pool := worker.NewPool(4, q, analyzer, sink)
		pool.Start(context.Background())

		convey.Convey("When many jobs are queued and the pool shuts down", func() {
			for i := 0; i < 40; i++ {
				q.jobs <- model.Job{ID: fmt.Sprintf("card-%d", i), Text: fmt.Sprintf("horse %d", i)}
			}
			err := pool.Shutdown(context.Background())

			convey.Convey("Then every queued job is drained first", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(sink.count(), convey.ShouldEqual, 40)
				convey.So(pool.Processed(), convey.ShouldEqual, 40)
				convey.So(pool.Failed(), convey.ShouldEqual, 0)
				convey.So(pool.Size(), convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the sink fails", func() {
			sink.mu.Lock()
			sink.err = errors.New("store down")
			sink.mu.Unlock()
			q.jobs <- model.Job{ID: "card-x", Text: "x"}
			convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)

			convey.Convey("Then the failure is counted", func() {
				convey.So(pool.Failed(), convey.ShouldEqual, 1)
				convey.So(pool.Processed(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When a failure handler is registered", func() {
			var (
				mu     sync.Mutex
				failed []string
			)
			analyzer.errFor["broken"] = errors.New("boom")
			hq := newMockQueue()
			handled := worker.NewPool(2, hq, analyzer, sink,
				worker.WithFailureHandler(func(_ context.Context, j model.Job, err error) {
					mu.Lock()
					defer mu.Unlock()
					failed = append(failed, j.ID+": "+err.Error())
				}))
			handled.Start(context.Background())
			hq.jobs <- model.Job{ID: "bad", Text: "broken"}
			hq.jobs <- model.Job{ID: "good", Text: "fine"}
			convey.So(handled.Shutdown(context.Background()), convey.ShouldBeNil)

			convey.Convey("Then it is called once with the failed job only", func() {
				mu.Lock()
				defer mu.Unlock()
				convey.So(failed, convey.ShouldHaveLength, 1)
				convey.So(failed[0], convey.ShouldStartWith, "bad: ")
				convey.So(failed[0], convey.ShouldContainSubstring, "boom")
			})
		})

		convey.Convey("When stopped without draining", func() {
			pool.Stop()

			convey.Convey("Then Stop returns", func() {
				convey.So(pool.Size(), convey.ShouldEqual, 4)
			})
		})
	})

	convey.Convey("Given a pool with no explicit size", t, func() {
		_ = logging.Init()
		pool := worker.NewPool(0, newMockQueue(), newMockAnalyzer(), newMockSink())

		convey.Convey("Then it has at least one worker", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThanOrEqualTo, 1)
		})
	})
}
