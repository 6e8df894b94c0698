package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resham-cricketer/pkg/feed"
	"resham-cricketer/pkg/models"
	"resham-cricketer/pkg/notify"
)

type notificationItem struct {
	models.Notification
	Unread bool `json:"unread"`
}

// notificationsView is the notifications screen: today's items, earlier
// items and the unread badge count.
type notificationsView struct {
	Today       []notificationItem `json:"today"`
	Earlier     []notificationItem `json:"earlier"`
	UnreadCount int                `json:"unreadCount"`
	LastReadAt  *int64             `json:"lastReadAt"`
}

func (h *Handler) buildNotificationsView(ctx context.Context, uid string, list []models.Notification, loc *time.Location) notificationsView {
	lastRead, marked, err := h.ReadState.LastRead(ctx, uid)
	if err != nil {
		h.Logger.Warn("read watermark unavailable", zap.String("uid", uid), zap.Error(err))
	}

	items := func(in []models.Notification) []notificationItem {
		out := make([]notificationItem, len(in))
		for i, n := range in {
			out[i] = notificationItem{Notification: n, Unread: notify.IsUnread(n, lastRead, marked)}
		}
		return out
	}

	today, earlier := feed.Partition(list, h.Now(), loc)
	view := notificationsView{
		Today:       items(today),
		Earlier:     items(earlier),
		UnreadCount: notify.UnreadCount(list, lastRead, marked),
	}
	if marked {
		ms := lastRead.UnixMilli()
		view.LastReadAt = &ms
	}
	return view
}

// ListNotifications serves the caller's notifications. A failed read is an
// empty list.
func (h *Handler) ListNotifications(c *gin.Context) {
	uid := currentUID(c)
	list, err := h.Feed.Notifications(c.Request.Context(), uid)
	if err != nil {
		h.Logger.Warn("notifications read failed", zap.String("uid", uid), zap.Error(err))
		list = nil
	}
	c.JSON(http.StatusOK, h.buildNotificationsView(c.Request.Context(), uid, list, h.location(c)))
}

func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	uid := currentUID(c)
	mark, err := h.ReadState.MarkAllRead(c.Request.Context(), uid, h.Now())
	if err != nil {
		h.respondError(c, err, "Error updating notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"lastReadAt": mark.UnixMilli()})
}
