package clips

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"resham-cricketer/pkg/apperr"
	"resham-cricketer/pkg/database"
	"resham-cricketer/pkg/live"
	"resham-cricketer/pkg/metrics"
	"resham-cricketer/pkg/models"
	"resham-cricketer/pkg/notify"
	"resham-cricketer/pkg/store"
)

const driveURL = "https://drive.google.com/file/d/1AbC_d-9/view?usp=sharing"

type failingNotifications struct{}

func (failingNotifications) CreateNotification(context.Context, *models.Notification) error {
	return errors.New("notifications offline")
}

func newTestService(t *testing.T, w notify.Writer) (*Service, *store.Store) {
	t.Helper()
	db, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := store.New(db, live.NewHub(nil))
	if w == nil {
		w = s
	}
	return NewService(s, notify.NewNotifier(w, metrics.New(), zap.NewNop()), zap.NewNop()), s
}

func TestPublishWritesLiveClipAndBroadcast(t *testing.T) {
	svc, s := newTestService(t, nil)
	ctx := context.Background()

	v, err := svc.Publish(ctx, notify.Actor{UID: "a", Email: "a@example.com"}, Draft{
		URL: driveURL, Title: "  Cover Drive  ", Description: "nets",
	})
	require.NoError(t, err)

	assert.Equal(t, "Cover Drive", v.Title)
	assert.Equal(t, models.StatusLive, v.Status)
	assert.Equal(t, DefaultThumbnail, v.ThumbnailURL)
	assert.Equal(t, "a@example.com", v.UploaderName)
	assert.Zero(t, v.Views)
	assert.Zero(t, v.Likes)

	list, err := s.NotificationsFor(ctx, []string{models.BroadcastTarget})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationUpload, list[0].Type)
	assert.Equal(t, "Cover Drive", list[0].VideoTitle)
	assert.Equal(t, v.ID, list[0].VideoID)
}

func TestPublishValidatesBeforeWriting(t *testing.T) {
	svc, s := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Publish(ctx, notify.Actor{UID: "a"}, Draft{URL: "https://example.com/clip.mp4", Title: "x"})
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeInvalidInput, appErr.Code)

	_, err = svc.Publish(ctx, notify.Actor{UID: "a"}, Draft{URL: driveURL, Title: "   "})
	assert.Error(t, err)

	videos, err := s.VideosByUploader(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, videos)
}

func TestPublishSurvivesNotificationFailure(t *testing.T) {
	svc, s := newTestService(t, failingNotifications{})

	v, err := svc.Publish(context.Background(), notify.Actor{UID: "a", DisplayName: "Alice"}, Draft{URL: driveURL, Title: "Pull"})
	require.NoError(t, err)

	stored, err := s.GetVideo(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.UploaderName)
}

func TestUpdateAndDeleteAreOwnerOnly(t *testing.T) {
	svc, s := newTestService(t, nil)
	ctx := context.Background()
	v, err := svc.Publish(ctx, notify.Actor{UID: "a"}, Draft{URL: driveURL, Title: "Pull"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "b", v.ID, Edit{Title: "Hijack"})
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeForbidden, appErr.Code)

	updated, err := svc.Update(ctx, "a", v.ID, Edit{Title: "Hook Shot", URL: driveURL, ThumbnailURL: "t.png"})
	require.NoError(t, err)
	assert.Equal(t, "Hook Shot", updated.Title)

	stored, err := s.GetVideo(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "t.png", stored.ThumbnailURL)

	assert.Error(t, svc.Delete(ctx, "b", v.ID))
	require.NoError(t, svc.Delete(ctx, "a", v.ID))

	err = svc.Delete(ctx, "a", v.ID)
	appErr, ok = apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeNotFound, appErr.Code)
}

func TestManageFiltersByTitle(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	for _, title := range []string{"Cover Drive", "Pull", "Straight Drive"} {
		_, err := svc.Publish(ctx, notify.Actor{UID: "a"}, Draft{URL: driveURL, Title: title})
		require.NoError(t, err)
	}
	_, err := svc.Publish(ctx, notify.Actor{UID: "b"}, Draft{URL: driveURL, Title: "Drive by b"})
	require.NoError(t, err)

	got, err := svc.Manage(ctx, "a", "drive")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	all, err := svc.Manage(ctx, "a", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestEmbedURL(t *testing.T) {
	assert.Equal(t, "https://drive.google.com/file/d/1AbC_d-9/preview", EmbedURL(driveURL))
	assert.Equal(t, "https://drive.google.com/open?id=x", EmbedURL("https://drive.google.com/open?id=x"))
	assert.Equal(t, "https://cdn.example.com/a.mp4", EmbedURL("https://cdn.example.com/a.mp4"))
}
