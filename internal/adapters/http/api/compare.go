package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/simboard/internal/adapters/repository"
	service "github.com/okian/simboard/internal/app"
	"github.com/okian/simboard/internal/domain/compare"
	"github.com/okian/simboard/internal/domain/types"
)

// CompareHandler drives the compare workflow. The selection lives in the
// request query; every response carries the query to use next.
type CompareHandler struct {
	deps BoardDependencies
}

// NewCompareHandler creates a new compare handler.
func NewCompareHandler(deps BoardDependencies) *CompareHandler {
	return &CompareHandler{deps: deps}
}

type transitionResponse struct {
	Outcome *string           `json:"outcome,omitempty"`
	Changed bool              `json:"changed"`
	Compare selectionResponse `json:"compare"`
	Query   string            `json:"query"`
}

type commitResponse struct {
	IDs        []string          `json:"ids"`
	Candidates []types.Candidate `json:"candidates"`
}

func (h *CompareHandler) transition(w http.ResponseWriter, r *http.Request, op string, action service.Action, id string) {
	sim := simulationID(r)
	if sim == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	q := query(r)
	tr, err := h.deps.Compare(r.Context(), sim, q, action, id)
	if errors.Is(err, service.ErrUnknownAction) {
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	out := transitionResponse{
		Changed: !compare.Deserialize(q).Equal(tr.Selection),
		Compare: selection(tr.Selection, tr.CanCompare),
		Query:   tr.Query.Encode(),
	}
	if tr.Outcome != nil {
		s := tr.Outcome.String()
		out.Outcome = &s
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleAction handles POST /simulations/{sim}/compare/{action} for enter
// and exit.
func (h *CompareHandler) HandleAction(w http.ResponseWriter, r *http.Request) {
	const op = "api.compare_action"

	action := service.Action(strings.ToLower(r.PathValue("action")))
	if action == service.ActionToggle {
		// Toggling needs an id: /compare/toggle/{id}.
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	h.transition(w, r, op, action, "")
}

// HandleToggle handles POST /simulations/{sim}/compare/toggle/{id}. Rejected
// toggles, malformed ids included, are reported in the outcome, not as HTTP
// errors.
func (h *CompareHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	const op = "api.compare_toggle"

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	h.transition(w, r, op, service.ActionToggle, id)
}

// HandleCommit handles GET /simulations/{sim}/compare.
func (h *CompareHandler) HandleCommit(w http.ResponseWriter, r *http.Request) {
	const op = "api.compare_commit"

	sim := simulationID(r)
	if sim == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	recs, err := h.deps.Commit(r.Context(), sim, query(r))
	switch {
	case errors.Is(err, compare.ErrCannotCompare):
		writeError(w, http.StatusConflict, "cannot_compare", WrapKind(op, ErrCannotCompare, err))
		return
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	out := commitResponse{IDs: make([]string, len(recs)), Candidates: types.FromDerivedAll(recs)}
	for i, c := range recs {
		out.IDs[i] = c.AssessmentID
	}
	writeJSON(w, http.StatusOK, out)
}
