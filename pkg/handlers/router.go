package handlers

import (
	"github.com/gin-gonic/gin"

	"resham-cricketer/pkg/logging"
)

// Router builds the gin engine with every route mounted.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(h.Logger))

	limit := RateLimit(h.RateRPS, h.RateBurst)

	r.GET("/healthz", Health)
	r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))

	public := r.Group("/", limit)
	public.POST("/signup", h.Signup)
	public.POST("/login", h.Login)
	public.POST("/login/federated", h.FederatedLogin)

	api := r.Group("/", RequireAuth(h.Tokens), limit)
	api.GET("/stats", h.Stats)
	api.GET("/videos", h.ListVideos)
	api.GET("/videos/:id", h.Watch)
	api.POST("/videos/:id/like", h.ToggleLike)
	api.POST("/videos", h.PublishVideo)
	api.PUT("/videos/:id", h.UpdateVideo)
	api.DELETE("/videos/:id", h.DeleteVideo)
	api.GET("/manage/videos", h.ManageVideos)
	api.POST("/thumbnails", h.UploadThumbnail)

	api.GET("/users/:id", h.GetProfile)
	api.PUT("/users/:id", h.UpdateProfile)

	api.GET("/notifications", h.ListNotifications)
	api.POST("/notifications/read", h.MarkNotificationsRead)

	api.GET("/live/stats", h.LiveStats)
	api.GET("/live/notifications", h.LiveNotifications)

	return r
}
