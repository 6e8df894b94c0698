package profile

import (
	"context"
	"errors"
	"strings"

	"resham-cricketer/pkg/apperr"
	"resham-cricketer/pkg/feed"
	"resham-cricketer/pkg/models"
	"resham-cricketer/pkg/store"
)

type ClipLister interface {
	UserClips(ctx context.Context, uid string) ([]models.Video, error)
}

// Page is what the profile screen shows.
type Page struct {
	Profile    *models.UserProfile `json:"profile"`
	Handle     string              `json:"handle"`
	Clips      []models.Video      `json:"clips"`
	TotalViews int64               `json:"totalViews"`
	IsOwn      bool                `json:"isOwn"`
}

// Handle is the @name shown under the display name.
func Handle(p *models.UserProfile) string {
	if p.Username != "" {
		return p.Username
	}
	name := p.DisplayName
	if name == "" {
		name = "player"
	}
	return strings.Join(strings.Fields(strings.ToLower(name)), "")
}

// LoadPage reads uid's profile and clips, newest first.
func LoadPage(ctx context.Context, s Store, clips ClipLister, viewerUID, uid string) (*Page, error) {
	p, err := s.GetUser(ctx, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("player")
		}
		return nil, apperr.Internal(err, "load profile")
	}
	videos, err := clips.UserClips(ctx, uid)
	if err != nil {
		return nil, apperr.Internal(err, "load clips")
	}
	return &Page{
		Profile:    p,
		Handle:     Handle(p),
		Clips:      videos,
		TotalViews: feed.TotalViews(videos),
		IsOwn:      viewerUID == uid,
	}, nil
}
