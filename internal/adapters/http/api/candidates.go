package api

import (
	"net/http"
	"net/url"
	"strings"

	service "github.com/okian/simboard/internal/app"
	"github.com/okian/simboard/internal/domain/compare"
	"github.com/okian/simboard/internal/domain/types"
)

// CandidatesHandler serves the ranked candidate board of a simulation.
type CandidatesHandler struct {
	deps BoardDependencies
}

// NewCandidatesHandler creates a new candidates handler.
func NewCandidatesHandler(deps BoardDependencies) *CandidatesHandler {
	return &CandidatesHandler{deps: deps}
}

type filtersResponse struct {
	Status   *string  `json:"status"`
	Strength *string  `json:"strength"`
	MinScore *float64 `json:"min_score"`
}

type selectionResponse struct {
	Active     bool     `json:"active"`
	Selected   []string `json:"selected"`
	CanCompare bool     `json:"can_compare"`
	Max        int      `json:"max"`
}

type boardResponse struct {
	SimulationID string            `json:"simulation_id"`
	Shown        int               `json:"shown"`
	Total        int               `json:"total"`
	Empty        bool              `json:"empty"`
	Sort         string            `json:"sort"`
	Filters      filtersResponse   `json:"filters"`
	Compare      selectionResponse `json:"compare"`
	Query        string            `json:"query"`
	Candidates   []types.Candidate `json:"candidates"`
}

func selection(st compare.State, canCompare bool) selectionResponse {
	sel := st.Selected
	if sel == nil {
		sel = []string{}
	}
	return selectionResponse{Active: st.Active, Selected: sel, CanCompare: canCompare, Max: compare.MaxSelected}
}

func renderBoard(b service.Board) boardResponse { //nolint:gocritic // hugeParam: built per request
	out := boardResponse{
		SimulationID: b.SimulationID,
		Shown:        b.View.Shown,
		Total:        b.View.Total,
		Empty:        b.View.Empty(),
		Sort:         string(b.Sort),
		Filters:      filtersResponse{MinScore: b.Filters.MinScore},
		Compare:      selection(b.Selection, b.CanCompare),
		Query:        b.Query.Encode(),
		Candidates:   types.FromDerivedAll(b.View.Records),
	}
	if b.Filters.Status != nil {
		s := b.Filters.Status.String()
		out.Filters.Status = &s
	}
	if b.Filters.Strength != nil {
		s := b.Filters.Strength.String()
		out.Filters.Strength = &s
	}
	return out
}

func simulationID(r *http.Request) string {
	return strings.TrimSpace(r.PathValue("sim"))
}

// query returns the request query, tolerating malformed encodings the same
// way the persisted selection does.
func query(r *http.Request) url.Values {
	q, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		return url.Values{}
	}
	return q
}

// HandleList handles GET /simulations/{sim}/candidates.
func (h *CandidatesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_candidates"

	sim := simulationID(r)
	if sim == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	b, err := h.deps.Candidates(r.Context(), sim, query(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, renderBoard(b))
}

type simulationsResponse struct {
	Simulations []service.SimulationSummary `json:"simulations"`
}

// HandleSimulations handles GET /simulations.
func (h *CandidatesHandler) HandleSimulations(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_simulations"

	sims, err := h.deps.Simulations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if sims == nil {
		sims = []service.SimulationSummary{}
	}
	writeJSON(w, http.StatusOK, simulationsResponse{Simulations: sims})
}
