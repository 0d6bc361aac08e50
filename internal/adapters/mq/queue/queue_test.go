package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/simboard/internal/domain/model"
)

func submission(id string) model.Submission {
	return model.Submission{
		SubmissionID: id,
		Candidate:    model.RawCandidate{AssessmentID: "a-" + id, SimulationID: "sim", Status: model.Completed},
		ReceivedAt:   time.Now(),
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, submission("s1")) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.SubmissionID != "s1" {
		t.Errorf("expected s1, got %v", got.SubmissionID)
	}
	if got.Candidate.AssessmentID != "a-s1" {
		t.Errorf("expected candidate a-s1, got %v", got.Candidate.AssessmentID)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, submission("s1")) || !q.Enqueue(ctx, submission("s2")) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, submission("s3")) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	q.Enqueue(ctx, submission("s1"))
	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if q.Enqueue(ctx, submission("s2")) {
		t.Error("expected enqueue on closed queue to fail")
	}

	// Buffered items drain before the channel closes.
	var drained []string
	for s := range q.Dequeue(ctx) {
		drained = append(drained, s.SubmissionID)
	}
	if len(drained) != 1 || drained[0] != "s1" {
		t.Errorf("expected [s1], got %v", drained)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000))
	ctx := context.Background()

	var wg sync.WaitGroup
	for p := 0; p < 10; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				q.Enqueue(ctx, submission(fmt.Sprintf("p%d-%d", p, j)))
			}
		}(p)
	}
	wg.Wait()

	if l := q.Len(ctx); l != 500 {
		t.Errorf("expected 500 queued submissions, got %d", l)
	}
}
