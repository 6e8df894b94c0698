package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resham-cricketer/pkg/apperr"
	"resham-cricketer/pkg/auth"
	"resham-cricketer/pkg/clips"
	"resham-cricketer/pkg/engagement"
	"resham-cricketer/pkg/feed"
	"resham-cricketer/pkg/live"
	"resham-cricketer/pkg/metrics"
	"resham-cricketer/pkg/models"
	"resham-cricketer/pkg/notify"
	"resham-cricketer/pkg/profile"
	"resham-cricketer/pkg/store"
)

type ThumbnailUploader interface {
	UploadThumbnail(ctx context.Context, body io.Reader, filename string) (string, error)
}

// Deps wires the handlers. Identity and Thumbnails are optional; their
// routes answer 404 when unset.
type Deps struct {
	Store      *store.Store
	Hub        *live.Hub
	Accounts   *auth.Accounts
	Tokens     *auth.Tokens
	Identity   *auth.IdentityVerifier
	Feed       *feed.Aggregator
	Clips      *clips.Service
	Counters   *engagement.Counters
	Profiles   *profile.Synchronizer
	ReadState  *notify.ReadState
	Thumbnails ThumbnailUploader
	Metrics    *metrics.Metrics
	Logger     *zap.Logger

	DefaultLocation *time.Location
	RateRPS         float64
	RateBurst       int
	Now             func() time.Time
}

type Handler struct {
	Deps
}

func New(d Deps) *Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.DefaultLocation == nil {
		d.DefaultLocation = time.UTC
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	return &Handler{Deps: d}
}

// respondError turns err into the user-facing notice. Server-side failures
// are logged and shown as fallback.
func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status, msg := apperr.Status(err, fallback)
	if status >= http.StatusInternalServerError {
		h.Logger.Error(fallback, zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": msg})
}

func currentUID(c *gin.Context) string {
	return c.GetString(uidKey)
}

// actor describes the signed-in user from their profile. A missing profile
// yields an actor known only by uid.
func (h *Handler) actor(c *gin.Context) notify.Actor {
	uid := currentUID(c)
	p, err := h.Store.GetUser(c.Request.Context(), uid)
	if err != nil {
		return notify.Actor{UID: uid}
	}
	return notify.Actor{
		UID:         uid,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		PhotoURL:    p.PhotoURL,
	}
}

func (h *Handler) location(c *gin.Context) *time.Location {
	if tz := c.Query("tz"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return h.DefaultLocation
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func emptyVideos() []models.Video {
	return []models.Video{}
}
