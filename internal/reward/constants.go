package reward

// Log messages
const (
	LogMsgCompletionRecorded   = "Event completion recorded"
	LogMsgCompletionDuplicate  = "Completion already recorded and claimed"
	LogMsgResumingGrants       = "Completion recorded with unclaimed rewards, resuming grants"
	LogMsgRewardGranted        = "Reward granted"
	LogMsgRewardGrantFailed    = "Reward grant failed, earlier grants are kept"
	LogMsgMarkClaimedFailed    = "Failed to mark rewards claimed"
	LogMsgNoEconomyConfigured  = "No economy configured, completion recorded without grants"
	LogMsgCompletionLookupFail = "Failed to record completion"
)

// Store operation names
const (
	OpComplete      = "complete event"
	OpGetCompletion = "get completion"
)
