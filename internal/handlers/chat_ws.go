package handlers

import (
	"context"
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// ResumeUpgrade runs the resume checks over plain HTTP before the upgrade so
// that rejections keep their status codes.
func (h *ChatHandler) ResumeUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		streamID, ok, err := h.resumeTarget(c)
		if !ok {
			return err
		}
		c.Locals("stream_id", streamID.String())
		return c.Next()
	}
}

// ResumeWS replays and tails a stream as websocket text frames, one event
// per frame.
func (h *ChatHandler) ResumeWS() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		streamID, _ := c.Locals("stream_id").(string)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Client → server frames are ignored; a read error means the peer left.
		go func() {
			defer cancel()
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}()

		slog.Info("Stream resume started", "stream_id", streamID, "transport", "websocket")
		err := h.svc.Tail(ctx, streamID, func(payload []byte) error {
			return c.WriteMessage(websocket.TextMessage, payload)
		})
		if err != nil && ctx.Err() == nil {
			slog.Warn("Stream resume ended", "stream_id", streamID, "error", err)
		}
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	})
}
