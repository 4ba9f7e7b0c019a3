package api

import (
	"net/http"

	"blueme/internal/auth"
	"blueme/internal/chat"
	"blueme/internal/presence"
	"blueme/internal/ws"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	Chat     *chat.Service
	Presence *presence.Service
	Hub      *ws.Hub
}

func NewMessageHandler(ch *chat.Service, p *presence.Service, hub *ws.Hub) *MessageHandler {
	return &MessageHandler{Chat: ch, Presence: p, Hub: hub}
}

// GetConversation returns the conversation with ?userId=X. Fetching marks
// the caller's incoming messages as read.
func (h *MessageHandler) GetConversation(c *gin.Context) {
	otherID := c.Query("userId")
	if otherID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId query parameter is required"})
		return
	}
	messages, err := h.Chat.FetchConversation(auth.CallerID(c), otherID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

type sendRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receiverId and content are required"})
		return
	}
	senderID := auth.CallerID(c)

	msg, err := h.Chat.Send(senderID, req.ReceiverID, req.Content)
	if err != nil {
		fail(c, err)
		return
	}

	// Sending counts as activity for the sender.
	_ = h.Presence.Heartbeat(senderID)
	h.Hub.NotifyMessage(*msg)

	c.JSON(http.StatusCreated, msg)
}
