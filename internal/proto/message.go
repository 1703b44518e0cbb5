package proto

// The relay protocol has no envelope. The server sends exactly one text frame
// holding the role token after pairing; every later frame is a peer's frame,
// forwarded unmodified with its original frame type.

const (
	RoleWhite = "WHITE"
	RoleBlack = "BLACK"

	// Close reasons sent in the WebSocket close frame.
	CloseReasonMatchEnded = "match ended"
	CloseReasonShutdown   = "server shutting down"
	CloseReasonBye        = "closing"
)

// Stats is the JSON body of GET /stats.
type Stats struct {
	Waiting      int    `json:"waiting"`
	Sessions     int    `json:"sessions"`
	MatchedTotal uint64 `json:"matched_total"`
}

// Match is one entry of GET /matches.
type Match struct {
	SessionID  string `json:"session_id"`
	First      string `json:"first"`
	Second     string `json:"second"`
	FirstRole  string `json:"first_role"`
	SecondRole string `json:"second_role"`
	StartedAt  int64  `json:"started_at"`
	EndedAt    int64  `json:"ended_at"`
	DurationMS int64  `json:"duration_ms"`
	Reason     string `json:"reason"`
}

// Event is the JSON payload published for lifecycle notifications.
type Event struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id,omitempty"`
	Waiting  *int   `json:"waiting,omitempty"`
	Match    *Match `json:"match,omitempty"`
	TS       int64  `json:"ts"`
}

const (
	EventClientConnected    = "client_connected"
	EventClientDisconnected = "client_disconnected"
	EventQueueChanged       = "queue_changed"
	EventMatchStarted       = "match_started"
	EventMatchEnded         = "match_ended"
)

// Error describes an HTTP API error response.
type Error struct {
	Error string `json:"error"`
}
