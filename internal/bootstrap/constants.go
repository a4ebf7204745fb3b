package bootstrap

import "time"

// =============================================================================
// File System Permissions
// =============================================================================

const (
	// DirPermission is the standard permission for creating directories
	DirPermission = 0755

	// LogFilePermission is the permission for log files
	LogFilePermission = 0666
)

// =============================================================================
// Logger Configuration
// =============================================================================

const (
	// LogFileTimestampFormat is the timestamp format for log filenames (YYYY-MM-DD_HH-MM-SS)
	LogFileTimestampFormat = "2006-01-02_15-04-05"

	// LogFileNamePattern is the format string for log filenames
	LogFileNamePattern = "session_%s.log"

	// LogFileExtension is the file extension for log files
	LogFileExtension = ".log"

	// LogFileRetentionCount is the number of older session logs kept next to the new one
	LogFileRetentionCount = 9
)

// Log messages for logger initialization
const (
	LogMsgLoggingInitialized  = "Logging initialized"
	LogMsgStartingService     = "Starting live-ops service"
	LogMsgConfigurationLoaded = "Configuration loaded"
	LogMsgFailedCreateLogsDir = "failed to create logs directory"
	LogMsgFailedOpenLogFile   = "failed to open log file"
	LogMsgFailedDeleteOldLog  = "Failed to delete old log file"
)

// =============================================================================
// Event System Configuration
// =============================================================================

const (
	// EventDefaultMaxRetries is the default number of retry attempts for failed event publishing
	EventDefaultMaxRetries = 5

	// EventDefaultRetryDelay is the default base delay between retry attempts (exponential backoff)
	EventDefaultRetryDelay = 2 * time.Second

	// EventDefaultDeadLetterPath is the default file path for dead-letter event logging
	EventDefaultDeadLetterPath = "logs/event_deadletter.jsonl"
)

// Log messages for event system initialization
const (
	LogMsgEventSystemInitialized         = "Event system initialized"
	LogMsgFailedCreateDeadLetterDir      = "failed to create dead-letter directory"
	LogMsgFailedCreateResilientPublisher = "failed to create resilient publisher"
)

// =============================================================================
// Store and Catalog
// =============================================================================

const (
	// PoolMaxIdle closes pooled connections idle this long
	PoolMaxIdle = 5 * time.Minute

	// PoolMaxLifetime recycles pooled connections after this long
	PoolMaxLifetime = time.Hour
)

const (
	LogMsgStoreOpened    = "Event store opened"
	LogMsgStoreClosed    = "Event store closed"
	LogMsgCatalogLoaded  = "Event catalog loaded"
	ErrMsgFailedOpenPool = "failed to open database pool"
	ErrMsgFailedMigrate  = "failed to apply migrations"
	ErrMsgFailedOpenDB   = "failed to open sqlite store"
	ErrMsgUnknownDriver  = "unknown store driver"
	ErrMsgFailedCatalog  = "failed to load event catalog"
)

// =============================================================================
// Event Handler Configuration
// =============================================================================

const (
	LogMsgMetricsCollectorRegistered = "Metrics collector registered"
	LogMsgSSESubscriberRegistered    = "SSE subscriber registered"
	LogMsgAnnouncerRegistered        = "Discord announcer registered"
	LogMsgAnnouncerDisabled          = "Discord not configured, announcements disabled"
)

// =============================================================================
// Background Jobs
// =============================================================================

const (
	// JobNameSweep is the worker job name for the expiry sweep
	JobNameSweep = "sweep_expired"

	// JobNameRecurringPrefix prefixes each recurring class job name
	JobNameRecurringPrefix = "recurring_"
)

const (
	LogMsgSweepFinished     = "Expiry sweep finished"
	LogMsgSweepFailed       = "Expiry sweep failed"
	LogMsgBackgroundStarted = "Background jobs started"
	ErrMsgFailedSchedule    = "failed to schedule job"
)

// =============================================================================
// Shutdown Messages
// =============================================================================

const (
	LogMsgShuttingDownServer         = "Shutting down server..."
	LogMsgShuttingDownEventPublisher = "Shutting down event publisher..."
	LogMsgServerStopped              = "Server stopped"
	LogMsgServerForcedShutdown       = "Server forced to shutdown"
	LogMsgResilientPublisherFailed   = "Resilient publisher shutdown failed"
	LogMsgWorkerPoolFailed           = "Worker pool shutdown failed"
	LogMsgStoreCloseFailed           = "Event store close failed"
	LogMsgDiscordCloseFailed         = "Discord session close failed"
)
