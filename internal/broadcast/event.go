package broadcast

import (
	"encoding/json"
	"time"
)

const (
	EventConnected = "connected"
	EventURLUpdate = "youtube-url-update"
	EventHeartbeat = "heartbeat"
)

type Event struct {
	Type      string
	Message   string
	URL       *string
	Timestamp time.Time
}

// MarshalJSON always writes youtubeUrl on update events, as null when the
// URL was cleared, and never on other events.
func (e Event) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"type":      e.Type,
		"timestamp": e.Timestamp.UTC(),
	}
	if e.Message != "" {
		out["message"] = e.Message
	}
	if e.Type == EventURLUpdate {
		out["youtubeUrl"] = e.URL
	}
	return json.Marshal(out)
}
