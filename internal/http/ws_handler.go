package api

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"livepoll/internal/metrics"
	"livepoll/internal/platform/apperr"
)

// wsConn adapts a websocket connection to the hub's Conn contract. The
// write timeout is the boundary's transport budget; a slow peer fails the
// send and gets evicted rather than stalling a broadcast.
type wsConn struct {
	conn *websocket.Conn
}

func (w *wsConn) Send(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return w.conn.Write(ctx, websocket.MessageText, data)
}

// @Summary     Subscribe to live result updates for a poll
// @Tags        polls
// @Param       id   path  int64  true  "Poll ID"
// @Success     101
// @Failure     400  {object}  map[string]string  "invalid poll id"
// @Router      /ws/polls/{id} [get]
func (h *Handler) handlePollWS(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		return
	}

	conn := &wsConn{conn: c}
	h.hub.Subscribe(pollID, conn)
	metrics.AddWSConnection(1)
	defer func() {
		h.hub.Unsubscribe(pollID, conn)
		metrics.AddWSConnection(-1)
		c.Close(websocket.StatusNormalClosure, "")
	}()

	// Subscribers never send meaningful frames; the read loop exists to
	// detect peer close and keep control frames serviced.
	for {
		if _, _, err := c.Read(r.Context()); err != nil {
			return
		}
	}
}
