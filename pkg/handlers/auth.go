package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resham-cricketer/pkg/apperr"
)

type signupRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type federatedRequest struct {
	Assertion string `json:"assertion" binding:"required"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	sess, err := h.Accounts.Signup(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.respondError(c, err, "Error creating account")
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	sess, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err, "Error signing in")
		return
	}
	c.JSON(http.StatusOK, sess)
}

// FederatedLogin signs in with an identity assertion and creates the
// profile on first sign-in.
func (h *Handler) FederatedLogin(c *gin.Context) {
	if h.Identity == nil {
		h.respondError(c, apperr.NotFound("federated sign-in"), "")
		return
	}
	var req federatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	id, err := h.Identity.Verify(req.Assertion)
	if err != nil {
		h.respondError(c, apperr.Unauthorized("Sign-in failed"), "")
		return
	}
	sess, err := h.Accounts.EnsureProfile(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Error signing in")
		return
	}
	status := http.StatusOK
	if sess.Created {
		status = http.StatusCreated
	}
	c.JSON(status, sess)
}
