// Package config defines service configuration and how it is loaded.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/simboard/internal/domain/ranking"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: json or text.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// FixturePath optionally names a YAML file of candidates loaded at startup.
	FixturePath string `koanf:"fixture_path"`

	// QueueSize bounds the in-memory submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of derivation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the submission deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// SummaryLimit is the rune length after which display summaries are cut.
	SummaryLimit int `koanf:"summary_limit"`

	// DefaultSort is the ordering used when a dashboard query names none.
	DefaultSort string `koanf:"default_sort"`

	// MetricsEnabled turns Prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRefresh is how often queue, store and runtime gauges are sampled.
	MetricsRefresh time.Duration `koanf:"metrics_refresh"`
}

// New creates a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "json",
		Addr:         ":9080",
		QueueSize:    10_000,
		WorkerCount:  runtime.NumCPU(),
		DedupeSize:   50_000,
		SummaryLimit: 120,
		DefaultSort:  string(ranking.SortScore),

		MetricsEnabled: true,
		MetricsRefresh: 10 * time.Second,
	}
}

// Validate checks value ranges. Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative", ErrInvalidConfig)
	case c.SummaryLimit < 1:
		return fmt.Errorf("%w: summary_limit must be positive", ErrInvalidConfig)
	case c.MetricsRefresh <= 0:
		return fmt.Errorf("%w: metrics_refresh must be positive", ErrInvalidConfig)
	}
	switch ranking.SortKey(c.DefaultSort) {
	case ranking.SortScore, ranking.SortRecent, ranking.SortName:
	default:
		return fmt.Errorf("%w: unknown default_sort %q", ErrInvalidConfig, c.DefaultSort)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
