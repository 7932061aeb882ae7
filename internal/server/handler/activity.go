package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/wagerpool/wagerpool/internal/domain"
)

// ActivityService defines the methods that the activity handler requires from
// the service layer.
type ActivityService interface {
	Create(ctx context.Context, caller domain.Account, description string, choices []string, endTime int64, seedPool uint64) (domain.Activity, error)
	Get(ctx context.Context, id uint64) (domain.Activity, error)
	List(ctx context.Context, opts domain.ListOpts) ([]domain.Activity, error)
	ChoiceBetAmount(ctx context.Context, id uint64, choiceIndex int) (uint64, error)
	Resolve(ctx context.Context, caller domain.Account, id uint64, winningChoice int) (domain.Activity, error)
}

// ActivityHandler serves activity lifecycle endpoints.
type ActivityHandler struct {
	activities ActivityService
	logger     *slog.Logger
}

// NewActivityHandler creates an ActivityHandler with the given service and logger.
func NewActivityHandler(activities ActivityService, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{
		activities: activities,
		logger:     logger,
	}
}

// createActivityRequest is the JSON body for activity creation.
type createActivityRequest struct {
	Description string   `json:"description"`
	Choices     []string `json:"choices"`
	EndTime     int64    `json:"end_time"`
	SeedPool    uint64   `json:"seed_pool"`
}

// listActivitiesResponse wraps the list activities response.
type listActivitiesResponse struct {
	Activities []domain.Activity `json:"activities"`
}

// CreateActivity opens a new wagering pool.
// POST /api/activities
func (h *ActivityHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	acct, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req createActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	a, err := h.activities.Create(r.Context(), acct, req.Description, req.Choices, req.EndTime, req.SeedPool)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: create activity failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

// ListActivities returns activity snapshots, newest first.
// GET /api/activities?limit=50&offset=0
func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	activities, err := h.activities.List(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list activities failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list activities")
		return
	}

	if activities == nil {
		activities = []domain.Activity{}
	}

	writeJSON(w, http.StatusOK, listActivitiesResponse{Activities: activities})
}

// GetActivity returns one activity by ID.
// GET /api/activities/{id}
func (h *ActivityHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid activity id")
		return
	}

	a, err := h.activities.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// GetChoiceAmount returns the total staked on one choice of an activity.
// GET /api/activities/{id}/choices/{index}
func (h *ActivityHandler) GetChoiceAmount(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid activity id")
		return
	}
	idx, err := pathUint64(r, "index")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid choice index")
		return
	}

	amount, err := h.activities.ChoiceBetAmount(r.Context(), id, int(idx))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activity_id":  id,
		"choice_index": idx,
		"amount":       amount,
	})
}

// resolveActivityRequest is the JSON body for resolution.
type resolveActivityRequest struct {
	WinningChoice int `json:"winning_choice"`
}

// ResolveActivity freezes the outcome of an activity.
// POST /api/activities/{id}/resolve
func (h *ActivityHandler) ResolveActivity(w http.ResponseWriter, r *http.Request) {
	acct, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id, err := pathUint64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid activity id")
		return
	}

	var req resolveActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	a, err := h.activities.Resolve(r.Context(), acct, id, req.WinningChoice)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: resolve activity failed",
			slog.Uint64("activity_id", id),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, a)
}
