package weather

import "time"

// Client defaults
const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 2
	DefaultRetryBase  = 500 * time.Millisecond
	DefaultUnits      = "metric"
)

// Condition types
const (
	ConditionClear        = "clear"
	ConditionRain         = "rain"
	ConditionSnow         = "snow"
	ConditionThunderstorm = "thunderstorm"
	ConditionFog          = "fog"
	ConditionClouds       = "clouds"
)

// Error messages
const (
	ErrMsgRequestFailed = "failed to build weather request"
	ErrMsgStatusFmt     = "weather provider returned status %d"
	ErrMsgDecodeFailed  = "failed to decode weather response"
	ErrMsgNoConditions  = "weather response has no conditions"
)

// Log messages
const (
	LogMsgFetchRetry = "Weather fetch failed, retrying"
	LogMsgCondition  = "Weather condition read"
)
