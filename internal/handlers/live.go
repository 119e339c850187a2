package handlers

import (
	"context"
	"log"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo/v4"
)

const liveWriteTimeout = 5 * time.Second

// HandleLive pushes the filtered todo list over a WebSocket, once on connect
// and again after every store change. Client messages are ignored.
func (h *APIHandler) HandleLive(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return nil
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(c.Request().Context())

	changed := make(chan struct{}, 1)
	cancel := h.todos.OnChange(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer cancel()

	for {
		if err := h.writeLive(ctx, conn); err != nil {
			if ctx.Err() == nil {
				log.Printf("Failed to send live update: %v", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return nil
		case <-changed:
		}
	}
}

func (h *APIHandler) writeLive(ctx context.Context, conn *websocket.Conn) error {
	ctx, cancel := context.WithTimeout(ctx, liveWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, h.snapshot())
}
