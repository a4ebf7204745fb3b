package sse

// Event is one message on the stream
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload"`

	// routing keys, not serialized
	eventID  string
	playerID string
}

// Filter narrows what a client receives. Zero values match everything.
// Player-scoped events (progress, completion) only reach clients with no
// player filter or a matching one; event.created is never player-scoped.
type Filter struct {
	Types    map[string]bool
	EventID  string
	PlayerID string
}

func (f Filter) matches(e Event) bool {
	if len(f.Types) > 0 && !f.Types[e.Type] {
		return false
	}
	if f.EventID != "" && e.eventID != "" && f.EventID != e.eventID {
		return false
	}
	if f.PlayerID != "" && e.playerID != "" && f.PlayerID != e.playerID {
		return false
	}
	return true
}
