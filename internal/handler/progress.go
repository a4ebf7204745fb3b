package handler

import (
	"net/http"

	"github.com/osse101/liveops/internal/progress"
	"github.com/osse101/liveops/internal/reward"
)

// UpdateProgressRequest is the body of POST /events/{id}/progress
type UpdateProgressRequest struct {
	PlayerID string             `json:"player_id" validate:"required,max=128"`
	Progress map[string]float64 `json:"progress" validate:"required,min=1"`
}

// ProgressHandlers serves player progress and completion endpoints
type ProgressHandlers struct {
	progress progress.Service
	rewards  reward.Service
}

// NewProgressHandlers creates progress handlers
func NewProgressHandlers(progressSvc progress.Service, rewardSvc reward.Service) *ProgressHandlers {
	return &ProgressHandlers{progress: progressSvc, rewards: rewardSvc}
}

// HandleUpdateProgress merges a player's progress and completes the event once requirements are met
// @Summary Update progress
// @Description Merge partial progress for a player. Completion and rewards happen at most once.
// @Tags progress
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body UpdateProgressRequest true "Progress values"
// @Success 200 {object} progress.UpdateResult
// @Failure 400 {object} ValidationErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /events/{id}/progress [post]
func (h *ProgressHandlers) HandleUpdateProgress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, ok := GetPathParam(r, w, ParamEventID)
		if !ok {
			return
		}

		var req UpdateProgressRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Update progress"); err != nil {
			return
		}

		result, err := h.progress.UpdateProgress(r.Context(), eventID, req.PlayerID, req.Progress)
		if err != nil {
			respondServiceError(w, r, "update progress", err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

// HandleGetProgress returns a player's stored progress
// @Summary Get progress
// @Tags progress
// @Produce json
// @Param id path string true "Event ID"
// @Param player_id query string true "Player ID"
// @Success 200 {object} domain.EventProgress
// @Failure 404 {object} ErrorResponse
// @Router /events/{id}/progress [get]
func (h *ProgressHandlers) HandleGetProgress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, ok := GetPathParam(r, w, ParamEventID)
		if !ok {
			return
		}
		playerID, ok := GetQueryParam(r, w, ParamPlayerID)
		if !ok {
			return
		}

		p, err := h.progress.GetProgress(r.Context(), eventID, playerID)
		if err != nil {
			respondServiceError(w, r, "get progress", err)
			return
		}

		respondJSON(w, http.StatusOK, p)
	}
}

// HandleGetCompletion returns a player's completion record
// @Summary Get completion
// @Tags progress
// @Produce json
// @Param id path string true "Event ID"
// @Param player_id query string true "Player ID"
// @Success 200 {object} domain.EventCompletion
// @Failure 404 {object} ErrorResponse
// @Router /events/{id}/completion [get]
func (h *ProgressHandlers) HandleGetCompletion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, ok := GetPathParam(r, w, ParamEventID)
		if !ok {
			return
		}
		playerID, ok := GetQueryParam(r, w, ParamPlayerID)
		if !ok {
			return
		}

		c, err := h.rewards.GetCompletion(r.Context(), eventID, playerID)
		if err != nil {
			respondServiceError(w, r, "get completion", err)
			return
		}

		respondJSON(w, http.StatusOK, c)
	}
}
