package api

import (
	"net/http"
	"strings"
	"time"

	"blueme/internal/auth"
	"blueme/internal/repo"
	"blueme/pkg/apperr"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	Repo *repo.Repository
}

func NewProfileHandler(r *repo.Repository) *ProfileHandler {
	return &ProfileHandler{Repo: r}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user, err := h.Repo.UserByID(auth.CallerID(c))
	if err != nil {
		fail(c, apperr.Wrap(apperr.CodeInternal, "internal server error", err))
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

// updateProfileRequest uses pointers so absent fields are left unchanged.
type updateProfileRequest struct {
	Name           *string `json:"name"`
	Status         *string `json:"status"`
	ProfilePicture *string `json:"profilePicture"`
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.Repo.UserByID(auth.CallerID(c))
	if err != nil {
		fail(c, apperr.Wrap(apperr.CodeInternal, "internal server error", err))
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
			return
		}
		user.Name = name
	}
	if req.Status != nil {
		user.Status = strings.TrimSpace(*req.Status)
	}
	if req.ProfilePicture != nil {
		user.ProfilePicture = *req.ProfilePicture
	}
	user.UpdatedAt = time.Now()

	if err := h.Repo.UpdateUser(*user); err != nil {
		fail(c, apperr.Wrap(apperr.CodeInternal, "internal server error", err))
		return
	}
	c.JSON(http.StatusOK, user.Public())
}
