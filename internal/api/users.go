package api

import (
	"net/http"
	"strings"

	"blueme/internal/auth"
	"blueme/internal/directory"
	"blueme/internal/presence"
	"blueme/internal/repo"
	"blueme/internal/ws"
	"blueme/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type UserHandler struct {
	Repo      *repo.Repository
	Directory *directory.Service
	Presence  *presence.Service
	Hub       *ws.Hub
}

func NewUserHandler(r *repo.Repository, d *directory.Service, p *presence.Service, hub *ws.Hub) *UserHandler {
	return &UserHandler{Repo: r, Directory: d, Presence: p, Hub: hub}
}

func (h *UserHandler) SearchUsers(c *gin.Context) {
	results, err := h.Directory.SearchUsers(c.Query("q"), auth.CallerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.Repo.UserByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			fail(c, apperr.NotFound("user not found"))
			return
		}
		fail(c, apperr.Wrap(apperr.CodeInternal, "internal server error", err))
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

// GetStatus resolves presence for ?userIds=a,b,c, keyed by user id.
func (h *UserHandler) GetStatus(c *gin.Context) {
	raw := c.Query("userIds")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userIds query parameter is required"})
		return
	}
	ids := []string{}
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	statuses, err := h.Presence.StatusOf(ids)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

// Heartbeat records activity for the caller.
func (h *UserHandler) Heartbeat(c *gin.Context) {
	callerID := auth.CallerID(c)
	if err := h.Presence.Heartbeat(callerID); err != nil {
		fail(c, err)
		return
	}
	if statuses, err := h.Presence.StatusOf([]string{callerID}); err == nil {
		if p, ok := statuses[callerID]; ok {
			h.Hub.NotifyPresence(p)
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
