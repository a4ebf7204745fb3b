package handler

import (
	"net/http"

	"github.com/osse101/liveops/internal/lifecycle"
	"github.com/osse101/liveops/internal/logger"
	"github.com/osse101/liveops/internal/recurring"
)

// SweepResponse reports how many events a sweep deactivated
type SweepResponse struct {
	Message     string `json:"message"`
	Deactivated int64  `json:"deactivated"`
}

// RecurringRunResponse reports one on-demand class evaluation
type RecurringRunResponse struct {
	Message string            `json:"message"`
	Class   recurring.Class   `json:"class"`
	Outcome recurring.Outcome `json:"outcome"`
}

// SSEStatsResponse reports connected real-time clients
type SSEStatsResponse struct {
	Clients int `json:"clients"`
}

// SetWeatherRequest forces the condition reported by the static provider
type SetWeatherRequest struct {
	Condition string `json:"condition" validate:"required,max=32"`
}

// ClientCounter reports live streaming clients
type ClientCounter interface {
	ClientCount() int
}

// WeatherOverride is a provider whose condition can be set by hand
type WeatherOverride interface {
	Set(condition string)
}

// AdminHandlers serves operator endpoints
type AdminHandlers struct {
	lifecycle lifecycle.Service
	recurring recurring.Service
	streams   ClientCounter
	weather   WeatherOverride
}

// NewAdminHandlers creates admin handlers. streams and weather may be nil.
func NewAdminHandlers(lc lifecycle.Service, rec recurring.Service, streams ClientCounter, weather WeatherOverride) *AdminHandlers {
	return &AdminHandlers{lifecycle: lc, recurring: rec, streams: streams, weather: weather}
}

// HandleSweep deactivates every expired event now
// @Summary Sweep expired events
// @Tags admin
// @Produce json
// @Success 200 {object} SweepResponse
// @Failure 503 {object} ErrorResponse
// @Router /admin/sweep [post]
func (h *AdminHandlers) HandleSweep() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := h.lifecycle.SweepExpiredEvents(r.Context())
		if err != nil {
			respondServiceError(w, r, "sweep", err)
			return
		}

		logger.FromContext(r.Context()).Info(MsgSweepCompleted, "deactivated", n)
		respondJSON(w, http.StatusOK, SweepResponse{Message: MsgSweepCompleted, Deactivated: n})
	}
}

// HandleRunRecurring evaluates one recurring class immediately
// @Summary Run recurring class
// @Description Evaluate daily, weekly, seasonal, weather, special or pattern now. Idempotent per period.
// @Tags admin
// @Produce json
// @Param class path string true "Recurring class"
// @Success 200 {object} RecurringRunResponse
// @Failure 400 {object} ValidationErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /admin/recurring/{class} [post]
func (h *AdminHandlers) HandleRunRecurring() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := GetPathParam(r, w, ParamClass)
		if !ok {
			return
		}
		class := recurring.Class(raw)

		outcome, err := h.recurring.Run(r.Context(), class)
		if err != nil {
			respondServiceError(w, r, "run recurring", err)
			return
		}

		respondJSON(w, http.StatusOK, RecurringRunResponse{Message: MsgRecurringRan, Class: class, Outcome: outcome})
	}
}

// HandleSSEStats reports connected streaming clients
// @Summary SSE client count
// @Tags admin
// @Produce json
// @Success 200 {object} SSEStatsResponse
// @Router /admin/sse [get]
func (h *AdminHandlers) HandleSSEStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := SSEStatsResponse{}
		if h.streams != nil {
			resp.Clients = h.streams.ClientCount()
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

// HandleSetWeather sets the condition the weather class will read next.
// Only available when no live provider is configured.
// @Summary Force weather condition
// @Tags admin
// @Accept json
// @Produce json
// @Param request body SetWeatherRequest true "Condition"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ValidationErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/weather [post]
func (h *AdminHandlers) HandleSetWeather() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.weather == nil {
			respondError(w, http.StatusConflict, ErrMsgLiveWeather)
			return
		}

		var req SetWeatherRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Set weather"); err != nil {
			return
		}

		h.weather.Set(req.Condition)
		logger.FromContext(r.Context()).Info(MsgWeatherSet, "condition", req.Condition)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgWeatherSet})
	}
}
