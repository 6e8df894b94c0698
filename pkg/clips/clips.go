// Package clips publishes and manages an uploader's videos. Video bytes
// stay with the external host; a clip is a share link plus metadata.
package clips

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"resham-cricketer/pkg/apperr"
	"resham-cricketer/pkg/feed"
	"resham-cricketer/pkg/models"
	"resham-cricketer/pkg/notify"
	"resham-cricketer/pkg/store"
	"resham-cricketer/pkg/validation"
)

const DefaultThumbnail = "https://images.unsplash.com/photo-1531415074968-036ba1b575da?w=800&auto=format&fit=crop&q=60"

var driveFileID = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)

// EmbedURL turns a Google Drive share link into its preview URL. Links from
// other hosts are played directly and returned as is.
func EmbedURL(url string) string {
	if !strings.Contains(url, "drive.google.com") {
		return url
	}
	m := driveFileID.FindStringSubmatch(url)
	if m == nil {
		return url
	}
	return "https://drive.google.com/file/d/" + m[1] + "/preview"
}

type Store interface {
	CreateVideo(ctx context.Context, v *models.Video) error
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	UpdateVideoFields(ctx context.Context, id string, f store.VideoFields) error
	DeleteVideo(ctx context.Context, id string) error
	VideosByUploader(ctx context.Context, uid string) ([]models.Video, error)
}

// Draft is the upload form.
type Draft struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Title        string `json:"title"`
	Description  string `json:"description"`
}

// Edit is the management edit form.
type Edit struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

type Service struct {
	store    Store
	notifier *notify.Notifier
	logger   *zap.Logger
}

func NewService(s Store, n *notify.Notifier, logger *zap.Logger) *Service {
	return &Service{store: s, notifier: n, logger: logger}
}

// Publish validates d, stores a live clip and broadcasts the upload. A
// failed broadcast does not fail the publish.
func (s *Service) Publish(ctx context.Context, actor notify.Actor, d Draft) (*models.Video, error) {
	if err := validation.DriveLink(d.URL); err != nil {
		return nil, err
	}
	if err := validation.Title(d.Title); err != nil {
		return nil, err
	}
	if err := validation.Description(d.Description); err != nil {
		return nil, err
	}

	thumb := d.ThumbnailURL
	if thumb == "" {
		thumb = DefaultThumbnail
	}
	v := &models.Video{
		Title:          strings.TrimSpace(d.Title),
		Description:    strings.TrimSpace(d.Description),
		URL:            d.URL,
		ThumbnailURL:   thumb,
		UploaderID:     actor.UID,
		UploaderName:   actor.Name("Player"),
		UploaderAvatar: actor.PhotoURL,
		Status:         models.StatusLive,
	}
	if err := s.store.CreateVideo(ctx, v); err != nil {
		return nil, apperr.Internal(err, "publish clip")
	}
	s.logger.Info("clip published", zap.String("video_id", v.ID), zap.String("uploader_id", actor.UID))

	s.notifier.Upload(ctx, actor, v)
	return v, nil
}

// Update rewrites the editable fields of one of uid's clips.
func (s *Service) Update(ctx context.Context, uid, id string, e Edit) (*models.Video, error) {
	v, err := s.owned(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if err := validation.Title(e.Title); err != nil {
		return nil, err
	}
	if err := validation.Description(e.Description); err != nil {
		return nil, err
	}

	fields := store.VideoFields{
		Title:        e.Title,
		Description:  e.Description,
		URL:          e.URL,
		ThumbnailURL: e.ThumbnailURL,
	}
	if err := s.store.UpdateVideoFields(ctx, id, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("clip")
		}
		return nil, apperr.Internal(err, "update clip")
	}
	v.Title, v.Description, v.URL, v.ThumbnailURL = e.Title, e.Description, e.URL, e.ThumbnailURL
	return v, nil
}

// Delete removes one of uid's clips. Notifications that name it stay.
func (s *Service) Delete(ctx context.Context, uid, id string) error {
	if _, err := s.owned(ctx, uid, id); err != nil {
		return err
	}
	if err := s.store.DeleteVideo(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("clip")
		}
		return apperr.Internal(err, "delete clip")
	}
	s.logger.Info("clip deleted", zap.String("video_id", id), zap.String("uploader_id", uid))
	return nil
}

// Manage lists uid's clips newest first, filtered by title.
func (s *Service) Manage(ctx context.Context, uid, query string) ([]models.Video, error) {
	videos, err := s.store.VideosByUploader(ctx, uid)
	if err != nil {
		return nil, apperr.Internal(err, "load clips")
	}
	return feed.SearchTitles(feed.SortVideosNewest(videos), query), nil
}

func (s *Service) owned(ctx context.Context, uid, id string) (*models.Video, error) {
	v, err := s.store.GetVideo(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("clip")
		}
		return nil, apperr.Internal(err, "load clip")
	}
	if v.UploaderID != uid {
		return nil, apperr.Forbidden("You can only manage your own clips")
	}
	return v, nil
}
