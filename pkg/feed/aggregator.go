package feed

import (
	"context"

	"go.uber.org/zap"

	"resham-cricketer/pkg/live"
	"resham-cricketer/pkg/models"
)

// Source is the read side of the document store the aggregator scans.
type Source interface {
	LatestVideos(ctx context.Context, limit int) ([]models.Video, error)
	VideosByUploader(ctx context.Context, uid string) ([]models.Video, error)
	NotificationsFor(ctx context.Context, targets []string) ([]models.Notification, error)
	VideoStats(ctx context.Context) (count int64, views int64, err error)
	CountUsers(ctx context.Context) (int64, error)
}

// Stats are the home page counters.
type Stats struct {
	Clips   int64 `json:"clips"`
	Players int64 `json:"players"`
	Views   int64 `json:"views"`
}

func (s Stats) Formatted() map[string]string {
	return map[string]string{
		"clips":   FormatStat(s.Clips),
		"players": FormatStat(s.Players),
		"views":   FormatStat(s.Views),
	}
}

type Aggregator struct {
	src       Source
	hub       *live.Hub
	maxVideos int
	logger    *zap.Logger
}

func NewAggregator(src Source, hub *live.Hub, maxVideos int, logger *zap.Logger) *Aggregator {
	if maxVideos <= 0 {
		maxVideos = DefaultMaxVideos
	}
	return &Aggregator{src: src, hub: hub, maxVideos: maxVideos, logger: logger}
}

// Latest returns the newest max clips. max is clamped to the configured
// bound, which also applies when max <= 0.
func (a *Aggregator) Latest(ctx context.Context, max int) ([]models.Video, error) {
	if max <= 0 || max > a.maxVideos {
		max = a.maxVideos
	}
	videos, err := a.src.LatestVideos(ctx, max)
	if err != nil {
		return nil, err
	}
	return SortVideosNewest(videos), nil
}

// SearchLatest filters the latest page by query. It never widens the fetch:
// clips outside the page are not found.
func (a *Aggregator) SearchLatest(ctx context.Context, max int, query string) ([]models.Video, error) {
	videos, err := a.Latest(ctx, max)
	if err != nil {
		return nil, err
	}
	return Search(videos, query), nil
}

// UserClips returns every clip uploaded by uid, newest first.
func (a *Aggregator) UserClips(ctx context.Context, uid string) ([]models.Video, error) {
	videos, err := a.src.VideosByUploader(ctx, uid)
	if err != nil {
		return nil, err
	}
	return SortVideosNewest(videos), nil
}

// Notifications returns the broadcast notifications plus those addressed to
// uid, newest first.
func (a *Aggregator) Notifications(ctx context.Context, uid string) ([]models.Notification, error) {
	list, err := a.src.NotificationsFor(ctx, []string{models.BroadcastTarget, uid})
	if err != nil {
		return nil, err
	}
	return SortNotificationsNewest(list), nil
}

func (a *Aggregator) Stats(ctx context.Context) (Stats, error) {
	clips, views, err := a.src.VideoStats(ctx)
	if err != nil {
		return Stats{}, err
	}
	players, err := a.src.CountUsers(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Clips: clips, Players: players, Views: views}, nil
}

// WatchStats calls fn with the current stats and again after every change
// to videos or users. The pump stops when ctx is done or the returned
// subscription is closed; the caller must do one of the two.
func (a *Aggregator) WatchStats(ctx context.Context, fn func(Stats)) *live.Subscription {
	sub := a.hub.Subscribe(live.Videos, live.Users)
	go a.pump(ctx, sub, func() {
		stats, err := a.Stats(ctx)
		if err != nil {
			a.logger.Warn("stats refresh failed", zap.Error(err))
			return
		}
		fn(stats)
	})
	return sub
}

// WatchNotifications is WatchStats for uid's notification list.
func (a *Aggregator) WatchNotifications(ctx context.Context, uid string, fn func([]models.Notification)) *live.Subscription {
	sub := a.hub.Subscribe(live.Notifications)
	go a.pump(ctx, sub, func() {
		list, err := a.Notifications(ctx, uid)
		if err != nil {
			a.logger.Warn("notifications refresh failed", zap.String("uid", uid), zap.Error(err))
			return
		}
		fn(list)
	})
	return sub
}

func (a *Aggregator) pump(ctx context.Context, sub *live.Subscription, refresh func()) {
	defer sub.Close()
	refresh()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Changes():
			if !ok {
				return
			}
			refresh()
		}
	}
}
