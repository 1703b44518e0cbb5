package core

import "errors"

// EndReason describes why a session ended or a client was released.
type EndReason string

const (
	ReasonNone             EndReason = ""
	ReasonPeerDisconnected EndReason = "peer_disconnected"
	ReasonShutdown         EndReason = "shutdown"
	ReasonDisconnected     EndReason = "disconnected"
)

var (
	// ErrMatchmakerStopped is returned once Run has exited.
	ErrMatchmakerStopped = errors.New("matchmaker stopped")
)
