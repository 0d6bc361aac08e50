package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/simboard/internal/adapters/mq/worker"
	"github.com/okian/simboard/internal/domain/evaluation"
	"github.com/okian/simboard/internal/domain/model"
	logging "github.com/okian/simboard/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	ch chan worker.Submission
}

func newMockQueue() *mockQueue {
	return &mockQueue{ch: make(chan worker.Submission, 16)}
}

func (q *mockQueue) Dequeue(context.Context) <-chan worker.Submission { return q.ch }

func (q *mockQueue) Close() error {
	close(q.ch)
	return nil
}

type mockUpserter struct {
	mu     sync.Mutex
	stored map[string]model.DerivedCandidate
	fail   map[string]error
}

func newMockUpserter() *mockUpserter {
	return &mockUpserter{
		stored: make(map[string]model.DerivedCandidate),
		fail:   make(map[string]error),
	}
}

func (u *mockUpserter) Upsert(_ context.Context, c model.DerivedCandidate) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err, ok := u.fail[c.AssessmentID]; ok {
		return false, err
	}
	_, known := u.stored[c.AssessmentID]
	u.stored[c.AssessmentID] = c
	return !known, nil
}

func (u *mockUpserter) get(id string) (model.DerivedCandidate, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	c, ok := u.stored[id]
	return c, ok
}

func (u *mockUpserter) len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.stored)
}

// blockingUpserter waits for its context to end.
type blockingUpserter struct{ calls chan error }

func (u *blockingUpserter) Upsert(ctx context.Context, _ model.DerivedCandidate) (bool, error) {
	<-ctx.Done()
	u.calls <- ctx.Err()
	return false, ctx.Err()
}

func submission(id string, scores ...float64) worker.Submission {
	dims := make([]model.DimensionScore, len(scores))
	for i, s := range scores {
		dims[i] = model.DimensionScore{Name: fmt.Sprintf("d%d", i), Score: s}
	}
	return worker.Submission{
		SubmissionID: "sub-" + id,
		Candidate: model.RawCandidate{
			AssessmentID: id,
			SimulationID: "sim-1",
			Status:       model.Completed,
			Dimensions:   dims,
		},
		ReceivedAt: time.Now(),
	}
}

func eventually(cond func() bool) bool {
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
	convey.Convey("Given a worker reading from a queue", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		up := newMockUpserter()
		w := worker.NewInMemoryWorker(q, evaluation.NewDeriver(), up, worker.WithName("test-worker"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a completed submission arrives", func() {
			q.ch <- submission("a1", 4, 3, 2)

			convey.Convey("Then the derived record is stored", func() {
				convey.So(eventually(func() bool { _, ok := up.get("a1"); return ok }), convey.ShouldBeTrue)
				c, _ := up.get("a1")
				convey.So(*c.OverallScore, convey.ShouldEqual, 3.0)
				convey.So(*c.StrengthTier, convey.ShouldEqual, model.TierStrong)
				convey.So(c.MidDimension.Score, convey.ShouldEqual, 3.0)
			})
		})

		convey.Convey("When the store rejects a submission", func() {
			up.mu.Lock()
			up.fail["bad"] = errors.New("boom")
			up.mu.Unlock()
			q.ch <- submission("bad", 1)
			q.ch <- submission("good", 2)

			convey.Convey("Then the worker keeps going", func() {
				convey.So(eventually(func() bool { _, ok := up.get("good"); return ok }), convey.ShouldBeTrue)
				_, ok := up.get("bad")
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the worker is shut down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()

			convey.Convey("Then it stops without error", func() {
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			})
		})
	})
}

func TestInMemoryWorker_UpsertTimeout(t *testing.T) {
	convey.Convey("Given a worker with an upsert timeout over a stalled store", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		up := &blockingUpserter{calls: make(chan error, 1)}
		w := worker.NewInMemoryWorker(q, evaluation.NewDeriver(), up, worker.WithUpsertTimeout(20*time.Millisecond))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)
		q.ch <- submission("slow", 3)

		convey.Convey("Then the write is abandoned at the deadline", func() {
			select {
			case err := <-up.calls:
				convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
			case <-time.After(time.Second):
				convey.So("upsert never timed out", convey.ShouldBeEmpty)
			}
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of three workers", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		up := newMockUpserter()
		pool := worker.NewPool(3, q, evaluation.NewDeriver(), up)
		convey.So(pool.Size(), convey.ShouldEqual, 3)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When many submissions are queued", func() {
			for i := 0; i < 12; i++ {
				q.ch <- submission(fmt.Sprintf("c%d", i), float64(i%4)+1)
			}

			convey.Convey("Then every one is stored", func() {
				convey.So(eventually(func() bool { return up.len() == 12 }), convey.ShouldBeTrue)
			})

			convey.Convey("And shutdown drains the pool", func() {
				convey.So(eventually(func() bool { return up.len() == 12 }), convey.ShouldBeTrue)
				convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a pool with no explicit size", t, func() {
		pool := worker.NewPool(0, newMockQueue(), evaluation.NewDeriver(), newMockUpserter())

		convey.Convey("Then it sizes itself from the CPU count", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
