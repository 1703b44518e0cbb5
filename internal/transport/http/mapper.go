package http

import (
	"github.com/coder/websocket"

	"github.com/vovakirdan/matchwire/internal/core"
	"github.com/vovakirdan/matchwire/internal/proto"
)

func frameFromMessage(typ websocket.MessageType, data []byte) core.Frame {
	return core.Frame{
		Binary:  typ == websocket.MessageBinary,
		Payload: data,
	}
}

func messageFromFrame(f core.Frame) (websocket.MessageType, []byte) {
	if f.Binary {
		return websocket.MessageBinary, f.Payload
	}
	return websocket.MessageText, f.Payload
}

// closeFor picks the close frame sent to a client the matchmaker released.
func closeFor(reason core.EndReason) (websocket.StatusCode, string) {
	switch reason {
	case core.ReasonShutdown:
		return websocket.StatusGoingAway, proto.CloseReasonShutdown
	case core.ReasonPeerDisconnected:
		return websocket.StatusNormalClosure, proto.CloseReasonMatchEnded
	default:
		return websocket.StatusNormalClosure, proto.CloseReasonBye
	}
}
