package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"resham-cricketer/pkg/feed"
	"resham-cricketer/pkg/live"
	"resham-cricketer/pkg/models"
)

const liveWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type watchFunc func(ctx context.Context, send func(any)) *live.Subscription

// stream upgrades the request and pushes a fresh snapshot on every change
// until the client disconnects. Only the pump goroutine writes to conn.
func (h *Handler) stream(c *gin.Context, watch watchFunc) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	send := func(v any) {
		_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
		if err := conn.WriteJSON(v); err != nil {
			cancel()
		}
	}

	sub := watch(ctx, send)
	h.Metrics.LiveSubscriptions.Inc()
	defer h.Metrics.LiveSubscriptions.Dec()
	defer conn.Close()
	defer cancel()
	defer sub.Close()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) LiveStats(c *gin.Context) {
	h.stream(c, func(ctx context.Context, send func(any)) *live.Subscription {
		return h.Feed.WatchStats(ctx, func(s feed.Stats) {
			send(gin.H{"stats": s, "formatted": s.Formatted()})
		})
	})
}

func (h *Handler) LiveNotifications(c *gin.Context) {
	uid := currentUID(c)
	loc := h.location(c)
	h.stream(c, func(ctx context.Context, send func(any)) *live.Subscription {
		return h.Feed.WatchNotifications(ctx, uid, func(list []models.Notification) {
			send(h.buildNotificationsView(ctx, uid, list, loc))
		})
	})
}
