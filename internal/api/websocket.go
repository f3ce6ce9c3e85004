package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"animeverse/internal/logging"
	"animeverse/internal/services"
	"animeverse/internal/session"
)

const (
	wsWriteWait       = 10 * time.Second
	wsIdleWait        = 10 * time.Minute
	wsMaxMessageBytes = 64 * 1024
)

// CheckOrigin is left nil: gorilla then rejects cross-origin browser
// handshakes and admits clients that send no Origin header.
var upgrader = websocket.Upgrader{
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
	HandshakeTimeout: 10 * time.Second,
}

type wsConn struct {
	conn *websocket.Conn
}

func (w *wsConn) send(event ServerEvent) error {
	if err := w.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return w.conn.WriteJSON(event)
}

func (w *wsConn) sendError(err error) error {
	return w.send(ServerEvent{Type: EventError, Error: services.Kind(err), Message: err.Error()})
}

func (s *Server) handleWebSocket(c *gin.Context) {
	id := c.Param("id")
	if err := s.registry.With(id, func(*session.State) error { return nil }); err != nil {
		s.writeError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		s.logger.Debug("websocket upgrade failed", logging.String(logging.FieldSessionID, id), logging.Error(err))
		return
	}
	defer func() {
		_ = conn.Close()
	}()
	conn.SetReadLimit(wsMaxMessageBytes)

	ctx := services.WithSessionID(c.Request.Context(), id)
	logger := logging.WithContext(ctx, s.logger)
	ws := &wsConn{conn: conn}

	for {
		if err := conn.SetReadDeadline(time.Now().Add(wsIdleWait)); err != nil {
			return
		}
		var event ClientEvent
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket closed unexpectedly", logging.Error(err))
			}
			return
		}

		var writeErr error
		switch event.Type {
		case EventPing:
			writeErr = ws.send(ServerEvent{Type: EventPong})
		case EventMessage:
			writeErr = s.streamTurn(ctx, ws, id, event.Content)
		default:
			writeErr = ws.sendError(services.Wrap(services.ErrValidation, "api", "websocket",
				"unknown event type "+event.Type, nil))
		}
		if writeErr != nil {
			logger.Debug("websocket write failed", logging.Error(writeErr))
			return
		}
	}
}

// streamTurn runs one chat turn, forwarding reply chunks as they arrive. The
// returned error is a write failure; turn failures are sent to the client.
func (s *Server) streamTurn(ctx context.Context, ws *wsConn, id, content string) error {
	var writeErr error
	turnErr := s.registry.With(id, func(state *session.State) error {
		reply, replied, err := s.chat.Send(ctx, state, content, func(chunk string) error {
			if err := ws.send(ServerEvent{Type: EventChunk, Content: chunk}); err != nil {
				writeErr = err
				return err
			}
			return nil
		})
		if err != nil {
			return err
		}
		snap := state.Snapshot()
		if replied {
			writeErr = ws.send(ServerEvent{Type: EventReply, Content: reply, Session: &snap})
		} else {
			writeErr = ws.send(ServerEvent{Type: EventDone, Session: &snap})
		}
		return nil
	})
	if writeErr != nil {
		return writeErr
	}
	if turnErr != nil {
		return ws.sendError(turnErr)
	}
	return nil
}
