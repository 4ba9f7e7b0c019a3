package api

import (
	"net/http"

	"blueme/internal/auth"
	"blueme/internal/presence"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Auth     *auth.Service
	Presence *presence.Service
	JWT      *auth.JWT
}

func NewAuthHandler(a *auth.Service, p *presence.Service, jwt *auth.JWT) *AuthHandler {
	return &AuthHandler{Auth: a, Presence: p, JWT: jwt}
}

type registerRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone, password and name are required"})
		return
	}

	user, err := h.Auth.Register(auth.RegisterCommand{
		Phone:    req.Phone,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, user.Public())
}

type loginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone and password are required"})
		return
	}

	user, token, err := h.Auth.Login(req.Phone, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	// Logging in counts as activity.
	_ = h.Presence.Heartbeat(user.ID)

	c.SetCookie(auth.SessionCookie, token, int(h.JWT.TTL().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"user": user.Public(), "token": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}
