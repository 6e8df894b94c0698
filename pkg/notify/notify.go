// Package notify writes upload and like notifications and tracks each
// user's read watermark.
package notify

import (
	"context"

	"go.uber.org/zap"

	"resham-cricketer/pkg/metrics"
	"resham-cricketer/pkg/models"
)

type Writer interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// Actor is the signed-in user performing an action.
type Actor struct {
	UID         string
	DisplayName string
	Email       string
	PhotoURL    *string
}

// Name returns the first non-empty of display name, email and fallback.
func (a Actor) Name(fallback string) string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	if a.Email != "" {
		return a.Email
	}
	return fallback
}

// Notifier writes exactly one notification per event. Writes never fail the
// caller: errors are logged, counted and dropped.
type Notifier struct {
	w       Writer
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewNotifier(w Writer, m *metrics.Metrics, logger *zap.Logger) *Notifier {
	return &Notifier{w: w, metrics: m, logger: logger}
}

// Upload broadcasts a new clip to everyone, the uploader included.
func (n *Notifier) Upload(ctx context.Context, actor Actor, video *models.Video) {
	n.write(ctx, &models.Notification{
		Type:         models.NotificationUpload,
		ActorID:      actor.UID,
		ActorName:    actor.Name("A player"),
		ActorAvatar:  actor.PhotoURL,
		VideoID:      video.ID,
		VideoTitle:   video.Title,
		TargetUserID: models.BroadcastTarget,
	})
}

// Like tells the clip owner about a like. Liking your own clip is silent.
// Reports whether a notification was attempted.
func (n *Notifier) Like(ctx context.Context, actor Actor, video *models.Video) bool {
	if actor.UID == video.UploaderID {
		return false
	}
	n.write(ctx, &models.Notification{
		Type:         models.NotificationLike,
		ActorID:      actor.UID,
		ActorName:    actor.Name("Someone"),
		ActorAvatar:  actor.PhotoURL,
		VideoID:      video.ID,
		VideoTitle:   video.Title,
		TargetUserID: video.UploaderID,
	})
	return true
}

func (n *Notifier) write(ctx context.Context, notif *models.Notification) {
	kind := string(notif.Type)
	if err := n.w.CreateNotification(ctx, notif); err != nil {
		n.metrics.NotificationsFailed.WithLabelValues(kind).Inc()
		n.logger.Error("notification write failed",
			zap.String("type", kind),
			zap.String("actor_id", notif.ActorID),
			zap.String("video_id", notif.VideoID),
			zap.String("target", notif.TargetUserID),
			zap.Error(err),
		)
		return
	}
	n.metrics.NotificationsSent.WithLabelValues(kind).Inc()
}
