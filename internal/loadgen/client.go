package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/okian/simboard/internal/domain/types"
	"github.com/okian/simboard/pkg/logger"
)

const healthRetries = 5

// client talks to the service API.
type client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
}

// newClient builds a client. A non-positive perSecond disables throttling.
func newClient(baseURL string, timeout time.Duration, perSecond float64) *client {
	lim := rate.NewLimiter(rate.Inf, 0)
	if perSecond > 0 {
		lim = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return &client{http: &http.Client{Timeout: timeout}, baseURL: baseURL, limiter: lim}
}

func (c *client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rd io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s: %w", path, err)
	}
	return resp.StatusCode, nil
}

// health polls /healthz, retrying with exponential backoff while the
// service starts up.
func (c *client) health(ctx context.Context) error {
	check := func() error {
		code, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
		if err != nil {
			return err
		}
		if code != http.StatusOK {
			return fmt.Errorf("health check returned %d", code)
		}
		return nil
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = pollInterval
	return backoff.Retry(check, backoff.WithContext(backoff.WithMaxRetries(b, healthRetries), ctx))
}

type ack struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// submit posts every input with at most workers requests in flight,
// throttled by the client's limiter.
func (c *client) submit(ctx context.Context, inputs []types.CandidateInput, workers int, stats *Stats) {
	var accepted, duplicate, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, in := range inputs {
		if err := c.limiter.Wait(gctx); err != nil {
			break
		}
		g.Go(func() error {
			var a ack
			code, err := c.do(gctx, http.MethodPost, "/assessments", in, &a)
			switch {
			case err != nil:
				failed.Add(1)
				logger.Get().Debug(gctx, "submit failed", logger.String("assessmentID", in.AssessmentID), logger.Error(err))
			case code == http.StatusAccepted:
				accepted.Add(1)
			case code == http.StatusOK && a.Duplicate:
				duplicate.Add(1)
			default:
				failed.Add(1)
				logger.Get().Debug(gctx, "submit rejected", logger.String("assessmentID", in.AssessmentID), logger.Int("status", code))
			}
			// Failures are counted, never returned.
			return nil
		})
	}
	_ = g.Wait()

	stats.Accepted = int(accepted.Load())
	stats.Duplicate = int(duplicate.Load())
	stats.Failed = int(failed.Load())
	stats.Submitted = stats.Accepted + stats.Duplicate + stats.Failed
}

// board is the subset of the candidates response checked here.
type board struct {
	Shown      int               `json:"shown"`
	Total      int               `json:"total"`
	Candidates []types.Candidate `json:"candidates"`
}

func (c *client) board(ctx context.Context, simulationID string) (board, error) {
	var b board
	code, err := c.do(ctx, http.MethodGet, "/simulations/"+url.PathEscape(simulationID)+"/candidates", nil, &b)
	if err != nil {
		return board{}, err
	}
	if code != http.StatusOK {
		return board{}, fmt.Errorf("board %s returned %d", simulationID, code)
	}
	return b, nil
}

// stored returns the service's candidate count.
func (c *client) stored(ctx context.Context) (int, error) {
	var stats struct {
		TotalCandidates int `json:"totalCandidates"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/stats", nil, &stats); err != nil {
		return 0, err
	}
	return stats.TotalCandidates, nil
}
