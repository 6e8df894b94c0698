// Package engagement counts views and drives the like button.
//
// Views are counted in the store, once per watch page load. Likes are not
// stored at all: the like button keeps an optimistic liked flag and count
// for the page's lifetime, and the stored likes field is only ever read.
// The sole durable effect of a like is the owner's notification.
package engagement

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"resham-cricketer/pkg/apperr"
	"resham-cricketer/pkg/clips"
	"resham-cricketer/pkg/metrics"
	"resham-cricketer/pkg/models"
	"resham-cricketer/pkg/notify"
	"resham-cricketer/pkg/store"
)

type Store interface {
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	IncrementViews(ctx context.Context, id string) error
}

// LikeState is the like button's page-local state.
type LikeState struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"likeCount"`
}

// Toggle flips the state and reports whether it went from unliked to liked.
func (s *LikeState) Toggle() (becameLiked bool) {
	s.Liked = !s.Liked
	if s.Liked {
		s.Count++
	} else {
		s.Count--
	}
	return s.Liked
}

// WatchPage is what the watch screen opens with.
type WatchPage struct {
	Video    *models.Video `json:"video"`
	EmbedURL string        `json:"embedUrl"`
	Like     LikeState     `json:"like"`
}

type Counters struct {
	store    Store
	notifier *notify.Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewCounters(s Store, n *notify.Notifier, m *metrics.Metrics, logger *zap.Logger) *Counters {
	return &Counters{store: s, notifier: n, metrics: m, logger: logger}
}

// RecordView adds one view. Every call counts, repeat and self views
// included.
func (c *Counters) RecordView(ctx context.Context, videoID string) error {
	if err := c.store.IncrementViews(ctx, videoID); err != nil {
		return err
	}
	c.metrics.ViewsRecorded.Inc()
	return nil
}

// Watch loads a clip and counts the view. The returned video carries the
// counts read before the increment.
func (c *Counters) Watch(ctx context.Context, videoID string) (*WatchPage, error) {
	v, err := c.store.GetVideo(ctx, videoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("clip")
		}
		return nil, apperr.Internal(err, "load clip")
	}
	if err := c.RecordView(ctx, videoID); err != nil {
		// the clip still plays; only the counter is lost
		c.logger.Warn("view increment failed", zap.String("video_id", videoID), zap.Error(err))
	}
	return &WatchPage{
		Video:    v,
		EmbedURL: clips.EmbedURL(v.URL),
		Like:     LikeState{Count: v.Likes},
	}, nil
}

// ToggleLike flips state and, on a new like of someone else's clip, sends
// the owner one notification. Neither the like nor the count is stored.
func (c *Counters) ToggleLike(ctx context.Context, actor notify.Actor, videoID string, state LikeState) (LikeState, error) {
	v, err := c.store.GetVideo(ctx, videoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return state, apperr.NotFound("clip")
		}
		return state, apperr.Internal(err, "load clip")
	}
	if state.Toggle() {
		c.notifier.Like(ctx, actor, v)
	}
	return state, nil
}
