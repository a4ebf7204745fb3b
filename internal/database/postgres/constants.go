package postgres

// PostgreSQL Error Codes
const (
	// PgErrorCodeUniqueViolation is the PostgreSQL error code for unique constraint violations
	PgErrorCodeUniqueViolation = "23505"
	// PgErrorCodeCheckViolation is raised when start_time >= end_time
	PgErrorCodeCheckViolation = "23514"
)

// Store operation names used in StoreError
const (
	OpInsertEvent        = "insert event"
	OpGetEvent           = "get event"
	OpQueryEvents        = "query events"
	OpDeactivateEvents   = "deactivate events"
	OpGetProgress        = "get progress"
	OpUpsertProgress     = "upsert progress"
	OpGetCompletion      = "get completion"
	OpUpsertCompletion   = "upsert completion"
	OpMarkRewardsClaimed = "mark rewards claimed"
	OpPing               = "ping"
)

// Error Messages
const (
	ErrMsgFailedToEncodeJSON = "failed to encode json column"
	ErrMsgFailedToDecodeJSON = "failed to decode json column"
)
