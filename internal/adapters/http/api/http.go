// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	service "github.com/okian/simboard/internal/app"
	"github.com/okian/simboard/internal/domain/dedupe"
	"github.com/okian/simboard/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	AssessmentDependencies
	BoardDependencies
}

// AssessmentDependencies covers ingestion and single record reads.
type AssessmentDependencies interface {
	dedupe.Deduper

	// Enqueue pushes a submission for async derivation. Returns false on backpressure.
	Enqueue(ctx context.Context, s model.Submission) bool

	// Candidate returns one derived record.
	Candidate(ctx context.Context, assessmentID string) (model.DerivedCandidate, error)
}

// BoardDependencies covers the ranked view and the compare workflow. Every
// call receives the query the dashboard carries, selection included.
type BoardDependencies interface {
	Simulations(ctx context.Context) ([]service.SimulationSummary, error)
	Candidates(ctx context.Context, simulationID string, q url.Values) (service.Board, error)
	Compare(ctx context.Context, simulationID string, q url.Values, action service.Action, id string) (service.Transition, error)
	Commit(ctx context.Context, simulationID string, q url.Values) ([]model.DerivedCandidate, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	assessmentsHandler *AssessmentsHandler
	candidatesHandler  *CandidatesHandler
	compareHandler     *CompareHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(statsProvider),
		statsHandler:       NewStatsHandler(statsProvider),
		assessmentsHandler: NewAssessmentsHandler(deps),
		candidatesHandler:  NewCandidatesHandler(deps),
		compareHandler:     NewCompareHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /readyz", MetricsMiddleware(s.healthHandler.HandleReady, "readyz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /assessments", MetricsMiddleware(s.assessmentsHandler.HandlePost, "assessments"))
	mux.HandleFunc("GET /assessments/{id}", MetricsMiddleware(s.assessmentsHandler.HandleGet, "assessment"))
	mux.HandleFunc("GET /simulations", MetricsMiddleware(s.candidatesHandler.HandleSimulations, "simulations"))
	mux.HandleFunc("GET /simulations/{sim}/candidates", MetricsMiddleware(s.candidatesHandler.HandleList, "candidates"))
	mux.HandleFunc("POST /simulations/{sim}/compare/{action}", MetricsMiddleware(s.compareHandler.HandleAction, "compare_action"))
	mux.HandleFunc("POST /simulations/{sim}/compare/toggle/{id}", MetricsMiddleware(s.compareHandler.HandleToggle, "compare_toggle"))
	mux.HandleFunc("GET /simulations/{sim}/compare", MetricsMiddleware(s.compareHandler.HandleCommit, "compare_commit"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
