package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/matchwire/internal/core"
	"github.com/vovakirdan/matchwire/internal/proto"
	"github.com/vovakirdan/matchwire/internal/utils"
)

// errReleased is returned by the write loop once the matchmaker let go of the client.
var errReleased = errors.New("client released")

// WSOptions tunes per-connection limits.
type WSOptions struct {
	MaxMessageBytes int64
	SendBuffer      int
	WriteTimeout    time.Duration
}

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	mm   *core.Matchmaker
	opts WSOptions
	log  *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(mm *core.Matchmaker, opts WSOptions, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{mm: mm, opts: opts, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()

	if h.opts.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.opts.MaxMessageBytes)
	}

	client := core.NewClient(utils.NewID(), h.opts.SendBuffer)
	if err := h.mm.Enqueue(client); err != nil {
		h.log.Warn().Err(err).Str("client_id", client.ID).Msg("rejecting connection")
		conn.Close(websocket.StatusGoingAway, proto.CloseReasonShutdown)
		return
	}
	defer h.mm.Remove(client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh

	if errors.Is(err, errReleased) {
		// Close before cancelling so the peer sees our status, not a read timeout.
		status, reason := closeFor(client.EndReason())
		conn.Close(status, reason)
		cancel()
		<-errCh
		return
	}

	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := proto.CloseReasonBye
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("client_id", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if !client.Submit(ctx, frameFromMessage(typ, data)) {
			h.log.Debug().Str("client_id", client.ID).Int("bytes", len(data)).Msg("frame dropped")
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case f := <-client.Outbound:
			if err := h.write(ctx, conn, f); err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID).Msg("write ws frame")
				return err
			}
		case <-client.Done():
			// Frames relayed before the match ended are still delivered.
			for {
				select {
				case f := <-client.Outbound:
					if err := h.write(ctx, conn, f); err != nil {
						return err
					}
				default:
					return errReleased
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) write(ctx context.Context, conn *websocket.Conn, f core.Frame) error {
	if h.opts.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.WriteTimeout)
		defer cancel()
	}
	typ, data := messageFromFrame(f)
	return conn.Write(ctx, typ, data)
}
