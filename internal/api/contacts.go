package api

import (
	"net/http"

	"blueme/internal/auth"
	"blueme/internal/directory"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	Directory *directory.Service
}

func NewContactHandler(d *directory.Service) *ContactHandler {
	return &ContactHandler{Directory: d}
}

func (h *ContactHandler) GetContacts(c *gin.Context) {
	views, err := h.Directory.ListContacts(auth.CallerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// addContactRequest carries either an existing user id or a phone number
// (optionally with a display name for a not-yet-registered contact).
type addContactRequest struct {
	ContactID string `json:"contactId"`
	Phone     string `json:"phone"`
	Name      string `json:"name"`
}

func (h *ContactHandler) AddContact(c *gin.Context) {
	var req addContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ownerID := auth.CallerID(c)

	if req.ContactID != "" {
		view, err := h.Directory.AddContactByID(ownerID, req.ContactID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, view)
		return
	}

	if req.Phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contactId or phone is required"})
		return
	}
	result, err := h.Directory.AddContactByPhone(ownerID, req.Phone, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"contact": result.Contact, "createdUser": result.CreatedUser})
}
