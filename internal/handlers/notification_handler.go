package handlers

import (
	"context"
	"io"
	"net/http"

	"tabletrack/internal/notifications"
	"tabletrack/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	openCountEvent = "openCount"
	seedAttempts   = 3
)

type NotificationHandler struct {
	broadcaster  *notifications.Broadcaster
	orderService services.OrderService
	log          *zap.Logger
}

func NewNotificationHandler(broadcaster *notifications.Broadcaster, orderService services.OrderService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{broadcaster: broadcaster, orderService: orderService, log: log}
}

// Stream pushes the open-order count as server-sent events, starting with
// the current value.
func (h *NotificationHandler) Stream(c *gin.Context) {
	counts, unsubscribe := h.broadcaster.Subscribe()
	defer unsubscribe()

	count, err := h.seedCount(c.Request.Context(), counts)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent(openCountEvent, count)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case count, ok := <-counts:
			if !ok {
				return false
			}
			c.SSEvent(openCountEvent, count)
			return true
		}
	})
}

// seedCount reads the current count. A broadcast that lands during the read
// is consumed and the count read again, so no older value follows the seed.
func (h *NotificationHandler) seedCount(ctx context.Context, counts <-chan int64) (int64, error) {
	for attempt := 1; ; attempt++ {
		count, err := h.orderService.GetOpenOrderCount(ctx)
		if err != nil || attempt == seedAttempts {
			return count, err
		}
		select {
		case _, ok := <-counts:
			if !ok {
				return count, nil
			}
		default:
			return count, nil
		}
	}
}

func (h *NotificationHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"subscribers": h.broadcaster.SubscriberCount(),
	})
}
