// Package profile edits user profiles and keeps the uploader name and
// avatar copied onto each of the user's videos in step with them.
//
// The edit runs in two phases with no transaction spanning both:
//
//  1. the profile fields are written to users/{uid};
//  2. every video owned by uid is rewritten in one all-or-nothing batch.
//
// If phase 2 fails the profile stays updated and the videos keep the old
// identity until the edit is retried. Nothing repairs that state in the
// background. Retrying is safe since the edit sets values rather than
// adding to them.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"resham-cricketer/pkg/apperr"
	"resham-cricketer/pkg/metrics"
	"resham-cricketer/pkg/models"
	"resham-cricketer/pkg/store"
)

// ErrVideoSyncFailed marks an edit whose profile write landed but whose
// video batch did not.
var ErrVideoSyncFailed = errors.New("profile saved but clips were not updated")

type Store interface {
	GetUser(ctx context.Context, uid string) (*models.UserProfile, error)
	UpdateProfileFields(ctx context.Context, uid string, f store.ProfileFields) error
	VideosByUploader(ctx context.Context, uid string) ([]models.Video, error)
	SyncUploaderIdentity(ctx context.Context, ids []string, name string, avatar *string) error
}

// Update carries the editable profile fields.
type Update struct {
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	Username    string `json:"username"`
	Bio         string `json:"bio"`
}

// SyncError is returned when phase 2 fails after phase 1 committed.
type SyncError struct {
	UID    string
	Videos int
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %d clips of %s: %v", e.Videos, e.UID, e.Err)
}

func (e *SyncError) Unwrap() []error {
	return []error{ErrVideoSyncFailed, e.Err}
}

type Synchronizer struct {
	store   Store
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewSynchronizer(s Store, m *metrics.Metrics, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{store: s, metrics: m, logger: logger}
}

// NormalizeUsername lowercases and strips whitespace.
func NormalizeUsername(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// UpdateProfile applies u to uid's profile and then to uid's videos. Only
// uid itself may edit the profile.
func (s *Synchronizer) UpdateProfile(ctx context.Context, actorUID, uid string, u Update) error {
	if actorUID != uid {
		return apperr.Forbidden("You can only edit your own profile")
	}

	avatar := models.StringPtr(u.PhotoURL)
	fields := store.ProfileFields{
		DisplayName: u.DisplayName,
		PhotoURL:    avatar,
		Username:    NormalizeUsername(u.Username),
		Bio:         u.Bio,
	}

	if err := s.store.UpdateProfileFields(ctx, uid, fields); err != nil {
		s.metrics.ProfileSyncs.WithLabelValues("profile_failed").Inc()
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("profile")
		}
		return apperr.Internal(err, "update profile")
	}

	videos, err := s.store.VideosByUploader(ctx, uid)
	if err != nil {
		return s.syncFailed(uid, 0, err)
	}
	if len(videos) == 0 {
		s.metrics.ProfileSyncs.WithLabelValues("ok").Inc()
		return nil
	}

	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	if err := s.store.SyncUploaderIdentity(ctx, ids, u.DisplayName, avatar); err != nil {
		return s.syncFailed(uid, len(ids), err)
	}

	s.metrics.ProfileSyncs.WithLabelValues("ok").Inc()
	s.logger.Info("profile synced", zap.String("uid", uid), zap.Int("videos", len(ids)))
	return nil
}

func (s *Synchronizer) syncFailed(uid string, n int, err error) error {
	s.metrics.ProfileSyncs.WithLabelValues("videos_failed").Inc()
	s.logger.Error("profile saved, clip sync failed",
		zap.String("uid", uid),
		zap.Int("videos", n),
		zap.Error(err),
	)
	return apperr.Internal(&SyncError{UID: uid, Videos: n, Err: err}, "sync clips")
}
