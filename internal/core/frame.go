package core

// Frame is one opaque message travelling through the relay.
// The payload is never parsed; Binary only preserves the frame kind
// the sender used so the peer receives it the same way.
type Frame struct {
	Binary  bool
	Payload []byte
}

// TextFrame builds a text frame from s.
func TextFrame(s string) Frame {
	return Frame{Payload: []byte(s)}
}
