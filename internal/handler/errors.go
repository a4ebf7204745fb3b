package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgMissingQueryParam     = "Missing %s query parameter"
	ErrMsgInvalidQueryParam     = "Invalid %s query parameter"
	ErrMsgMissingPathParam      = "Missing %s path parameter"

	ErrMsgGenericServerError = "Something went wrong"
	ErrMsgEventNotFound      = "Event not found"
	ErrMsgProgressNotFound   = "No progress recorded for this player"
	ErrMsgCompletionNotFound = "Player has not completed this event"
	ErrMsgEventExists        = "An event already exists for this window"
	ErrMsgEventInactive      = "Event is not active"
	ErrMsgGrantFailed        = "Rewards could not be granted. Please try again."
	ErrMsgStoreUnavailable   = "Server is temporarily unavailable. Please try again later."
	ErrMsgLiveWeather        = "A live weather provider is configured"
)

// Success messages for API responses
const (
	MsgEventCancelled  = "Event cancelled"
	MsgSweepCompleted  = "Expired events swept"
	MsgRecurringRan    = "Recurring class evaluated"
	MsgWeatherSet      = "Weather condition set"
	MsgCalendarDefault = "Live events"
)

// Query and path parameter names
const (
	ParamEventID   = "id"
	ParamClass     = "class"
	ParamTimezone  = "tz"
	ParamType      = "type"
	ParamHours     = "hours"
	ParamPlayerID  = "player_id"
	ParamCalName   = "name"
	DefaultHorizon = 24
)

// Log messages
const (
	LogMsgDecodeFailed    = "Failed to decode request"
	LogMsgRequestDecoded  = "Request decoded"
	LogMsgServiceError    = "Service call failed"
	LogMsgReadinessFailed = "Readiness check failed"
	LogMsgEncodeFailed    = "Failed to encode JSON response"
	LogMsgWriteFailed     = "Failed to write response buffer"
)
