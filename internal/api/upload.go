package api

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"blueme/internal/auth"
	"blueme/internal/repo"
	"blueme/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxPictureSize = 5 << 20 // 5MB

type UploadHandler struct {
	Repo      *repo.Repository
	UploadDir string
}

func NewUploadHandler(r *repo.Repository, uploadDir string) *UploadHandler {
	return &UploadHandler{Repo: r, UploadDir: uploadDir}
}

// UploadProfilePicture stores the uploaded image under the uploads dir,
// points the caller's profile at it and removes the previously stored file
// (inline data: pictures have no file to remove).
func (h *UploadHandler) UploadProfilePicture(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if file.Size > maxPictureSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image must be smaller than 5MB"})
		return
	}
	mimeType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only image uploads are allowed"})
		return
	}

	user, err := h.Repo.UserByID(auth.CallerID(c))
	if err != nil {
		fail(c, apperr.Wrap(apperr.CodeInternal, "internal server error", err))
		return
	}

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		fail(c, apperr.Wrap(apperr.CodeInternal, "internal server error", err))
		return
	}

	ext := filepath.Ext(file.Filename)
	filename := uuid.NewString() + ext
	dest := filepath.Join(h.UploadDir, filename)
	if err := c.SaveUploadedFile(file, dest); err != nil {
		fail(c, apperr.Wrap(apperr.CodeInternal, "internal server error", err))
		return
	}

	h.removePrevious(user.ProfilePicture)

	url := "/uploads/" + filename
	user.ProfilePicture = url
	user.UpdatedAt = time.Now()
	if err := h.Repo.UpdateUser(*user); err != nil {
		fail(c, apperr.Wrap(apperr.CodeInternal, "internal server error", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// removePrevious deletes the previously uploaded file. Inline data: URIs
// and external URLs are left alone.
func (h *UploadHandler) removePrevious(picture string) {
	if !strings.HasPrefix(picture, "/uploads/") {
		return
	}
	name := filepath.Base(picture)
	if err := os.Remove(filepath.Join(h.UploadDir, name)); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not remove old profile picture %s: %v", name, err)
	}
}
