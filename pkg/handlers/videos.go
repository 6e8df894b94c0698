package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resham-cricketer/pkg/apperr"
	"resham-cricketer/pkg/clips"
	"resham-cricketer/pkg/engagement"
)

// Stats serves the home screen counters. A failed read shows zeros.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.Feed.Stats(c.Request.Context())
	if err != nil {
		h.Logger.Warn("stats read failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats, "formatted": stats.Formatted()})
}

// ListVideos serves the explore feed. A failed read is an empty feed.
func (h *Handler) ListVideos(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	videos, err := h.Feed.SearchLatest(c.Request.Context(), limit, c.Query("q"))
	if err != nil {
		h.Logger.Warn("feed read failed", zap.Error(err))
		videos = emptyVideos()
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// Watch opens a clip and counts the view.
func (h *Handler) Watch(c *gin.Context) {
	page, err := h.Counters.Watch(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Error loading clip")
		return
	}
	c.JSON(http.StatusOK, page)
}

// ToggleLike takes the page's like state and returns it flipped.
func (h *Handler) ToggleLike(c *gin.Context) {
	var state engagement.LikeState
	if err := c.ShouldBindJSON(&state); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	next, err := h.Counters.ToggleLike(c.Request.Context(), h.actor(c), c.Param("id"), state)
	if err != nil {
		h.respondError(c, err, "Error updating like")
		return
	}
	c.JSON(http.StatusOK, next)
}

func (h *Handler) PublishVideo(c *gin.Context) {
	var draft clips.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	v, err := h.Clips.Publish(c.Request.Context(), h.actor(c), draft)
	if err != nil {
		h.respondError(c, err, "Upload failed. Please try again.")
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *Handler) UpdateVideo(c *gin.Context) {
	var edit clips.Edit
	if err := c.ShouldBindJSON(&edit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	v, err := h.Clips.Update(c.Request.Context(), currentUID(c), c.Param("id"), edit)
	if err != nil {
		h.respondError(c, err, "Error updating clip")
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) DeleteVideo(c *gin.Context) {
	if err := h.Clips.Delete(c.Request.Context(), currentUID(c), c.Param("id")); err != nil {
		h.respondError(c, err, "Error deleting clip")
		return
	}
	c.Status(http.StatusNoContent)
}

// ManageVideos lists the caller's own clips for the management screen.
func (h *Handler) ManageVideos(c *gin.Context) {
	videos, err := h.Clips.Manage(c.Request.Context(), currentUID(c), c.Query("q"))
	if err != nil {
		h.respondError(c, err, "Error loading clips")
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// UploadThumbnail stores a thumbnail image and returns its URL for the
// upload form.
func (h *Handler) UploadThumbnail(c *gin.Context) {
	if h.Thumbnails == nil {
		h.respondError(c, apperr.NotFound("thumbnail storage"), "")
		return
	}
	file, header, err := c.Request.FormFile("thumbnail")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file upload"})
		return
	}
	defer file.Close()

	url, err := h.Thumbnails.UploadThumbnail(c.Request.Context(), file, header.Filename)
	if err != nil {
		h.respondError(c, err, "Error uploading thumbnail")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"thumbnailUrl": url})
}
