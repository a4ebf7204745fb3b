package discord

// Queue settings
const (
	AnnounceQueueSize = 64
)

// Embed colors
const (
	ColorCreated   = 0x3498db // blue
	ColorCompleted = 0x2ecc71 // green
)

// Embed text
const (
	FooterLiveOps       = "LiveOps"
	TitleNewEventFmt    = "New event: %s"
	TitleCompletedFmt   = "%s completed"
	FieldType           = "Type"
	FieldStarts         = "Starts"
	FieldEnds           = "Ends"
	FieldPriority       = "Priority"
	FieldPlayer         = "Player"
	FieldRewards        = "Rewards"
	DescriptionNoReward = "No rewards"
)

// Log messages
const (
	LogMsgAnnouncerStarted = "Discord announcer started"
	LogMsgSendFailed       = "Failed to send Discord announcement"
	LogMsgQueueFull        = "Discord announce queue full, dropping"
	LogMsgBadPayload       = "Unreadable lifecycle payload for Discord"
	LogMsgSessionOpen      = "Discord session opened"
)
