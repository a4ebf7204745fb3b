package handler

import (
	"net/http"
	"time"

	"github.com/osse101/liveops/internal/calendar"
	"github.com/osse101/liveops/internal/clock"
	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/lifecycle"
	"github.com/osse101/liveops/internal/logger"
	"github.com/osse101/liveops/internal/timewindow"
)

// wallClockLayouts are accepted for start_time and end_time. Values without an
// offset are wall clocks in the request's timezone; a value with an offset
// names an instant and is converted to that timezone's wall clock.
var wallClockLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// CreateEventRequest is the body of POST /events
type CreateEventRequest struct {
	Title             string             `json:"title" validate:"required,max=200"`
	Description       string             `json:"description" validate:"max=2000"`
	EventType         string             `json:"event_type" validate:"required,max=64"`
	StartTime         string             `json:"start_time" validate:"required"`
	EndTime           string             `json:"end_time" validate:"required"`
	Timezone          string             `json:"timezone" validate:"max=64"`
	Priority          int                `json:"priority"`
	IsRecurring       bool               `json:"is_recurring"`
	RecurrencePattern string             `json:"recurrence_pattern,omitempty"`
	Requirements      map[string]float64 `json:"requirements"`
	Rewards           domain.RewardTable `json:"rewards"`
	Metadata          map[string]any     `json:"metadata,omitempty"`
}

func (req CreateEventRequest) toSpec() (domain.EventSpec, error) {
	loc, err := timewindow.LoadLocation(req.Timezone)
	if err != nil {
		return domain.EventSpec{}, domain.NewValidationError(err, map[string]string{"timezone": err.Error()})
	}
	start, err := parseWallClock(req.StartTime, loc)
	if err != nil {
		return domain.EventSpec{}, domain.NewValidationError(domain.ErrInvalidInput, map[string]string{"start_time": "Invalid date-time"})
	}
	end, err := parseWallClock(req.EndTime, loc)
	if err != nil {
		return domain.EventSpec{}, domain.NewValidationError(domain.ErrInvalidInput, map[string]string{"end_time": "Invalid date-time"})
	}
	return domain.EventSpec{
		Title:             req.Title,
		Description:       req.Description,
		EventType:         domain.EventType(req.EventType),
		StartTime:         start,
		EndTime:           end,
		Timezone:          req.Timezone,
		Priority:          req.Priority,
		IsRecurring:       req.IsRecurring,
		RecurrencePattern: req.RecurrencePattern,
		Requirements:      req.Requirements,
		Rewards:           req.Rewards,
		Metadata:          req.Metadata,
	}, nil
}

func parseWallClock(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	var err error
	for _, layout := range wallClockLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// EventListResponse wraps a list of annotated events
type EventListResponse struct {
	Events   []domain.EventView `json:"events"`
	Count    int                `json:"count"`
	Timezone string             `json:"timezone"`
}

// EventHandlers serves the event lifecycle endpoints
type EventHandlers struct {
	service lifecycle.Service
	clock   clock.Clock
}

// NewEventHandlers creates event lifecycle handlers. A nil clock uses the system clock.
func NewEventHandlers(service lifecycle.Service, clk clock.Clock) *EventHandlers {
	if clk == nil {
		clk = clock.NewReal()
	}
	return &EventHandlers{service: service, clock: clk}
}

// HandleCreateEvent creates a manual event
// @Summary Create event
// @Description Create a time-bounded event. Times are wall-clock values in the given timezone (default UTC).
// @Tags events
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "Event definition"
// @Success 201 {object} domain.Event
// @Failure 400 {object} ValidationErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /events [post]
func (h *EventHandlers) HandleCreateEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateEventRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Create event"); err != nil {
			return
		}

		spec, err := req.toSpec()
		if err != nil {
			respondServiceError(w, r, "create event", err)
			return
		}

		evt, err := h.service.CreateEvent(r.Context(), spec)
		if err != nil {
			respondServiceError(w, r, "create event", err)
			return
		}

		respondJSON(w, http.StatusCreated, evt)
	}
}

// HandleGetEvent returns one event by id
// @Summary Get event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} domain.Event
// @Failure 404 {object} ErrorResponse
// @Router /events/{id} [get]
func (h *EventHandlers) HandleGetEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetPathParam(r, w, ParamEventID)
		if !ok {
			return
		}

		evt, err := h.service.GetEvent(r.Context(), id)
		if err != nil {
			respondServiceError(w, r, "get event", err)
			return
		}

		respondJSON(w, http.StatusOK, evt)
	}
}

// HandleCancelEvent deactivates an event. Cancelling an inactive event is a no-op.
// @Summary Cancel event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} DataResponse
// @Failure 404 {object} ErrorResponse
// @Router /events/{id} [delete]
func (h *EventHandlers) HandleCancelEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetPathParam(r, w, ParamEventID)
		if !ok {
			return
		}

		evt, err := h.service.CancelEvent(r.Context(), id)
		if err != nil {
			respondServiceError(w, r, "cancel event", err)
			return
		}

		logger.FromContext(r.Context()).Info(MsgEventCancelled, "event_id", id)
		respondJSON(w, http.StatusOK, DataResponse{Message: MsgEventCancelled, Data: evt})
	}
}

// HandleGetActiveEvents lists events in progress right now
// @Summary Active events
// @Description Active events ordered by priority then start, annotated for the display timezone.
// @Tags events
// @Produce json
// @Param tz query string false "IANA display timezone (default UTC)"
// @Param type query string false "Event type filter"
// @Success 200 {object} EventListResponse
// @Failure 400 {object} ValidationErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /events/active [get]
func (h *EventHandlers) HandleGetActiveEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tz := GetOptionalQueryParam(r, ParamTimezone, timewindow.DefaultTimezone)
		eventType := domain.EventType(GetOptionalQueryParam(r, ParamType, ""))

		views, err := h.service.GetActiveEvents(r.Context(), tz, eventType)
		if err != nil {
			respondServiceError(w, r, "active events", err)
			return
		}

		respondJSON(w, http.StatusOK, EventListResponse{Events: views, Count: len(views), Timezone: tz})
	}
}

// HandleGetUpcomingEvents lists events starting within the horizon
// @Summary Upcoming events
// @Tags events
// @Produce json
// @Param hours query int false "Horizon in hours (default 24)"
// @Param tz query string false "IANA display timezone (default UTC)"
// @Success 200 {object} EventListResponse
// @Failure 400 {object} ValidationErrorResponse
// @Router /events/upcoming [get]
func (h *EventHandlers) HandleGetUpcomingEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hours, ok := GetOptionalIntQueryParam(r, w, ParamHours, DefaultHorizon)
		if !ok {
			return
		}
		tz := GetOptionalQueryParam(r, ParamTimezone, timewindow.DefaultTimezone)

		views, err := h.service.GetUpcomingEvents(r.Context(), hours, tz)
		if err != nil {
			respondServiceError(w, r, "upcoming events", err)
			return
		}

		respondJSON(w, http.StatusOK, EventListResponse{Events: views, Count: len(views), Timezone: tz})
	}
}

// HandleCalendar renders active and upcoming events as an iCalendar feed
// @Summary Calendar feed
// @Tags events
// @Produce text/calendar
// @Param tz query string false "IANA display timezone (default UTC)"
// @Param hours query int false "Upcoming horizon in hours (default 24)"
// @Param name query string false "Calendar name"
// @Success 200 {string} string
// @Failure 400 {object} ValidationErrorResponse
// @Router /events/calendar.ics [get]
func (h *EventHandlers) HandleCalendar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hours, ok := GetOptionalIntQueryParam(r, w, ParamHours, DefaultHorizon)
		if !ok {
			return
		}
		tz := GetOptionalQueryParam(r, ParamTimezone, timewindow.DefaultTimezone)
		name := GetOptionalQueryParam(r, ParamCalName, MsgCalendarDefault)

		loc, err := timewindow.LoadLocation(tz)
		if err != nil {
			respondServiceError(w, r, "calendar", domain.NewValidationError(err, map[string]string{ParamTimezone: "Unknown time zone"}))
			return
		}

		active, err := h.service.GetActiveEvents(r.Context(), tz, "")
		if err != nil {
			respondServiceError(w, r, "calendar", err)
			return
		}
		upcoming, err := h.service.GetUpcomingEvents(r.Context(), hours, tz)
		if err != nil {
			respondServiceError(w, r, "calendar", err)
			return
		}

		body := calendar.Render(name, append(active, upcoming...), loc, h.clock.Now())
		w.Header().Set("Content-Type", calendar.ContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}
