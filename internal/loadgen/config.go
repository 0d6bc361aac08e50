// Package loadgen drives a running service end to end: it generates random
// candidates, submits them concurrently, then reads every simulation's board
// back and checks it against locally derived expectations.
package loadgen

import (
	"runtime"
	"time"
)

// Default run parameters.
const (
	DefaultSimulations = 3
	DefaultCandidates  = 200
	DefaultTimeout     = 10 * time.Second
	DefaultSettle      = 30 * time.Second
)

// Config holds the parameters of one run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Simulations int           // Number of simulations to spread candidates over
	Candidates  int           // Number of candidates to generate
	Workers     int           // Concurrent submitters
	Rate        float64       // Submissions per second; zero means unlimited
	Timeout     time.Duration // Per request timeout
	Settle      time.Duration // How long to wait for the workers to derive everything
	Seed        uint64        // Generator seed; zero picks a random one
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:9080"
	}
	if c.Simulations < 1 {
		c.Simulations = DefaultSimulations
	}
	if c.Candidates < 1 {
		c.Candidates = DefaultCandidates
	}
	if c.Workers < 1 {
		c.Workers = runtime.NumCPU() * 2
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Settle <= 0 {
		c.Settle = DefaultSettle
	}
	return c
}

// Stats summarizes a run.
type Stats struct {
	Generated  int
	Submitted  int
	Accepted   int
	Duplicate  int
	Failed     int
	BoardsRead int
	Mismatches int
	Duration   time.Duration
	SubmitRate float64
}
