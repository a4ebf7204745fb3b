package lifecycle

// MaxUpcomingHorizonHours bounds GetUpcomingEvents queries
const MaxUpcomingHorizonHours = 24 * 31

// Log messages
const (
	LogMsgEventCreated        = "Event created"
	LogMsgEventCancelled      = "Event cancelled"
	LogMsgEventAlreadyExists  = "Event already exists for window"
	LogMsgSweepCompleted      = "Expired events swept"
	LogMsgCacheHit            = "Active events served from cache"
	LogMsgCacheFillDiscarded  = "Active events cache fill discarded after invalidation"
	LogMsgCreateEventFailed   = "Failed to create event"
	LogMsgSweepFailed         = "Failed to sweep expired events"
	LogMsgCancelEventNotFound = "Cancel requested for unknown event"
)

// Store operation names used in StoreError wrapping
const (
	OpCreate   = "create event"
	OpGet      = "get event"
	OpActive   = "query active events"
	OpUpcoming = "query upcoming events"
	OpSweep    = "sweep expired events"
	OpCancel   = "cancel event"
)
