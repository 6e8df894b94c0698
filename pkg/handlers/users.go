package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resham-cricketer/pkg/profile"
)

func (h *Handler) GetProfile(c *gin.Context) {
	page, err := profile.LoadPage(c.Request.Context(), h.Store, h.Feed, currentUID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Error loading profile")
		return
	}
	c.JSON(http.StatusOK, page)
}

// UpdateProfile saves the profile and then rewrites the denormalized
// uploader fields on the user's clips. When only the second step fails the
// response says so, and resubmitting the same form repairs the clips.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var u profile.Update
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	uid := c.Param("id")
	if err := h.Profiles.UpdateProfile(c.Request.Context(), currentUID(c), uid, u); err != nil {
		fallback := "Error updating profile"
		if errors.Is(err, profile.ErrVideoSyncFailed) {
			fallback = profile.ErrVideoSyncFailed.Error()
		}
		h.respondError(c, err, fallback)
		return
	}

	p, err := h.Store.GetUser(c.Request.Context(), uid)
	if err != nil {
		h.respondError(c, err, "Error loading profile")
		return
	}
	c.JSON(http.StatusOK, p)
}
