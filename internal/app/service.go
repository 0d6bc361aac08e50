// Package service wires the ingestion pipeline, the candidate repository and
// the ranking and compare engines into the operations used by the HTTP API
// and the CLI.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/simboard/internal/adapters/mq/queue"
	"github.com/okian/simboard/internal/adapters/mq/worker"
	"github.com/okian/simboard/internal/adapters/repository"
	"github.com/okian/simboard/internal/domain/dedupe"
	"github.com/okian/simboard/internal/domain/evaluation"
	"github.com/okian/simboard/internal/domain/model"
	"github.com/okian/simboard/internal/domain/ranking"
	"github.com/okian/simboard/pkg/logger"
	"github.com/okian/simboard/pkg/metrics"
)

// upsertTimeout bounds one worker write to the store.
const upsertTimeout = 5 * time.Second

// Service implements the API dependencies for the candidate board.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	deduper dedupe.Deduper
	deriver *evaluation.Deriver
	queue   *queue.InMemoryQueue
	pool    *worker.Pool

	workerCount  int
	queueSize    int
	dedupeSize   int
	summaryLimit int
	defaultSort  ranking.SortKey

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSummaryLimit sets the rune limit for display summaries.
func WithSummaryLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.summaryLimit = limit
		}
	}
}

// WithDefaultSort sets the ordering used when a query names none.
func WithDefaultSort(key ranking.SortKey) Option {
	return func(s *Service) {
		s.defaultSort = ranking.ParseSortKey(string(key))
	}
}

// WithStore replaces the in-memory candidate repository.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
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

// New constructs a Service. Read operations work right away; Start is only
// needed for asynchronous ingestion.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU(),
		queueSize:    10000,
		dedupeSize:   50000,
		summaryLimit: evaluation.DefaultSummaryLimit,
		defaultSort:  ranking.SortScore,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.deriver = evaluation.NewDeriver(evaluation.WithSummaryLimit(s.summaryLimit))
	return s
}

// Start creates the submission queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting candidate board service...")

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.deriver, s.store, worker.WithUpsertTimeout(upsertTimeout))
	// Workers outlive the request that started them.
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "candidate board service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop closes the queue and waits for the workers to exit. Submissions still
// queued at that point are dropped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping candidate board service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "candidate board service stopped")
}

// SeenAndRecord atomically checks if a submission id was seen and records it
// if not. Returns true when the id was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordSubmissionDuplicate()
	}
	return seen
}

// Unrecord removes a submission id from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of ids in the deduper.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// NewSubmission wraps raw for the queue, assigning an assessment id when the
// source did not supply one.
func NewSubmission(submissionID string, raw model.RawCandidate) model.Submission { //nolint:gocritic // hugeParam: records are values
	if raw.AssessmentID == "" {
		raw.AssessmentID = uuid.NewString()
	}
	if submissionID == "" {
		submissionID = raw.AssessmentID
	}
	return model.Submission{SubmissionID: submissionID, Candidate: raw, ReceivedAt: time.Now().UTC()}
}

// Enqueue submits a candidate for asynchronous derivation. Returns false when
// the service is not started or the queue is full.
func (s *Service) Enqueue(ctx context.Context, sub model.Submission) bool { //nolint:gocritic // hugeParam: records are values
	s.mu.RLock()
	q := s.queue
	started := s.started
	s.mu.RUnlock()

	if !started {
		s.logger.Warn(ctx, "submission rejected, service not started",
			logger.String("submissionID", sub.SubmissionID))
		return false
	}
	if !q.Enqueue(ctx, sub) {
		return false
	}
	metrics.RecordSubmissionAccepted()
	s.logger.Debug(ctx, "submission enqueued",
		logger.String("submissionID", sub.SubmissionID),
		logger.String("assessmentID", sub.Candidate.AssessmentID),
	)
	return true
}

// Load derives and stores raws synchronously, bypassing the queue. It is
// used for fixture seeding. Returns the number of new assessments.
func (s *Service) Load(ctx context.Context, raws []model.RawCandidate) (int, error) {
	created := 0
	for i, c := range s.deriver.DeriveAll(raws) {
		if c.AssessmentID == "" {
			c.AssessmentID = uuid.NewString()
		}
		isNew, err := s.store.Upsert(ctx, c)
		if err != nil {
			return created, fmt.Errorf("load record %d: %w", i, err)
		}
		if isNew {
			created++
		}
	}
	s.logger.Info(ctx, "candidates loaded",
		logger.Int("records", len(raws)),
		logger.Int("created", created),
	)
	return created, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"dedupeSize":      s.dedupeSize,
		"dedupeEntries":   s.deduper.Size(),
		"totalCandidates": s.store.Count(ctx),
		"simulations":     len(s.store.Simulations(ctx)),
		"defaultSort":     string(s.defaultSort),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
	}
	return stats
}
