package loadgen

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/okian/simboard/pkg/logger"
)

// ErrMismatch is returned when a board disagrees with the local derivation.
var ErrMismatch = errors.New("board verification failed")

const pollInterval = 100 * time.Millisecond

// Run executes one generate, submit and verify cycle.
func Run(ctx context.Context, cfg Config) (Stats, error) {
	cfg = cfg.withDefaults()
	log := logger.Get().Named("loadgen")
	start := time.Now()
	var stats Stats

	log.Info(ctx, "starting load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("candidates", cfg.Candidates),
		logger.Int("simulations", cfg.Simulations),
		logger.Int("workers", cfg.Workers),
		logger.Float64("rate", cfg.Rate),
	)

	c := newClient(cfg.BaseURL, cfg.Timeout, cfg.Rate)
	if err := c.health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	baseline, err := c.stored(ctx)
	if err != nil {
		return stats, fmt.Errorf("read stats: %w", err)
	}

	runID := uuid.NewString()[:8]
	inputs := newGenerator(cfg.Seed).candidates(runID, cfg.Candidates, cfg.Simulations)
	stats.Generated = len(inputs)

	submitStart := time.Now()
	c.submit(ctx, inputs, cfg.Workers, &stats)
	if d := time.Since(submitStart).Seconds(); d > 0 {
		stats.SubmitRate = float64(stats.Submitted) / d
	}
	log.Info(ctx, "submission finished",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
	)

	if err := waitStored(ctx, c, baseline+stats.Accepted, cfg.Settle); err != nil {
		return stats, err
	}

	// Only accepted inputs can be expected on the boards.
	if stats.Failed > 0 {
		return stats, fmt.Errorf("%d submissions failed", stats.Failed)
	}
	want := expectations(inputs)
	sims := make([]string, 0, len(want))
	for sim := range want {
		sims = append(sims, sim)
	}
	slices.Sort(sims)

	for _, sim := range sims {
		b, err := c.board(ctx, sim)
		if err != nil {
			return stats, err
		}
		stats.BoardsRead++
		for _, p := range verifyBoard(b, want[sim]) {
			stats.Mismatches++
			log.Warn(ctx, "board mismatch", logger.String("simulationID", sim), logger.String("problem", p))
		}
	}

	stats.Duration = time.Since(start)
	log.Info(ctx, "load run finished",
		logger.Int("boards", stats.BoardsRead),
		logger.Int("mismatches", stats.Mismatches),
		logger.Duration("duration", stats.Duration),
		logger.Float64("submitPerSecond", stats.SubmitRate),
	)
	if stats.Mismatches > 0 {
		return stats, fmt.Errorf("%w: %d problems", ErrMismatch, stats.Mismatches)
	}
	return stats, nil
}

// waitStored polls until the service holds at least want candidates.
func waitStored(ctx context.Context, c *client, want int, settle time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, settle)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		n, err := c.stored(ctx)
		if err == nil && n >= want {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %d stored candidates (have %d): %w", want, n, ctx.Err())
		case <-ticker.C:
		}
	}
}
