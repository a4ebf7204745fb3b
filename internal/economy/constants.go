package economy

import "time"

// Client defaults
const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryBase  = 250 * time.Millisecond

	GrantPath = "/grants"

	HeaderAPIKey         = "X-API-Key"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// Error messages
const (
	ErrMsgMarshalFailed   = "failed to marshal grant"
	ErrMsgRequestFailed   = "failed to build grant request"
	ErrMsgUnexpectedFmt   = "economy returned status %d"
	ErrMsgNotConfigured   = "economy endpoint not configured"
	ErrMsgInvalidGrantFmt = "invalid grant amount %d for %s"
)

// Log messages
const (
	LogMsgGrantRetry   = "Economy grant failed, retrying"
	LogMsgGrantApplied = "Economy grant applied"
)
