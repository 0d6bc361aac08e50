package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/okian/simboard/internal/adapters/repository"
	service "github.com/okian/simboard/internal/app"
	"github.com/okian/simboard/internal/domain/model"
	"github.com/okian/simboard/internal/domain/types"
)

// maxBodyBytes caps an ingest request body.
const maxBodyBytes = 1 << 20

// AssessmentsHandler handles ingestion and single record reads.
type AssessmentsHandler struct {
	deps AssessmentDependencies
}

// NewAssessmentsHandler creates a new assessments handler.
func NewAssessmentsHandler(deps AssessmentDependencies) *AssessmentsHandler {
	return &AssessmentsHandler{deps: deps}
}

type ackResponse struct {
	Status       string `json:"status"`
	Duplicate    bool   `json:"duplicate"`
	SubmissionID string `json:"submission_id"`
	AssessmentID string `json:"assessment_id"`
}

func validate(in *types.CandidateInput) error {
	if strings.TrimSpace(in.SimulationID) == "" {
		return errors.New("missing simulation_id")
	}
	if strings.TrimSpace(in.Status) == "" {
		return errors.New("missing status")
	}
	// empty ids are assigned by the service
	if in.AssessmentID != "" {
		if err := model.ValidateAssessmentID(in.AssessmentID); err != nil {
			return err
		}
	}
	for _, d := range in.Dimensions {
		if strings.TrimSpace(d.Name) == "" {
			return errors.New("dimension without name")
		}
		if math.IsNaN(d.Score) || math.IsInf(d.Score, 0) {
			return errors.New("dimension score must be finite")
		}
	}
	return nil
}

// HandlePost handles POST /assessments.
func (h *AssessmentsHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_assessment"

	var in types.CandidateInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validate(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	sub := service.NewSubmission(in.SubmissionID, in.ToRaw())
	ack := ackResponse{SubmissionID: sub.SubmissionID, AssessmentID: sub.Candidate.AssessmentID}

	if h.deps.SeenAndRecord(r.Context(), sub.SubmissionID) {
		ack.Status, ack.Duplicate = "duplicate", true
		writeJSON(w, http.StatusOK, ack)
		return
	}
	if !h.deps.Enqueue(r.Context(), sub) {
		// Let the client retry the same submission id.
		h.deps.Unrecord(r.Context(), sub.SubmissionID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	ack.Status = "accepted"
	writeJSON(w, http.StatusAccepted, ack)
}

// HandleGet handles GET /assessments/{id}.
func (h *AssessmentsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_assessment"

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	c, err := h.deps.Candidate(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.FromDerived(c))
}
