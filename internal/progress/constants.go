package progress

// MergeMode selects how an update combines with stored progress
type MergeMode string

const (
	// MergeOverwrite replaces each reported key with the latest value
	MergeOverwrite MergeMode = "overwrite"
	// MergeAccumulate adds each reported value to the stored one
	MergeAccumulate MergeMode = "accumulate"
)

// MaxKeysPerUpdate bounds a single progress payload
const MaxKeysPerUpdate = 64

// Log messages
const (
	LogMsgProgressUpdated   = "Progress updated"
	LogMsgCompletionReached = "Requirements met, completing event"
	LogMsgProgressFailed    = "Failed to update progress"
	LogMsgCompletionFailed  = "Completion after progress update failed"
)

// Store operation names
const (
	OpUpdate      = "update progress"
	OpGetProgress = "get progress"
)
