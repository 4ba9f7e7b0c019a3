// Package chat is the conversation log: an append-only list of direct
// messages between user pairs. Messages are never edited or deleted; only
// the read flag changes, and only false -> true.
package chat

import (
	"sort"
	"strings"
	"time"

	"blueme/internal/models"
	"blueme/internal/repo"
	"blueme/pkg/apperr"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Service struct {
	repo *repo.Repository
}

func NewService(r *repo.Repository) *Service {
	return &Service{repo: r}
}

// Conversation returns every message between a and b, in either direction,
// sorted by timestamp ascending. Both sides see the identical set.
func (s *Service) Conversation(a, b string) ([]models.Message, error) {
	all, err := s.repo.Messages()
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "internal server error", err)
	}
	conv := []models.Message{}
	for _, m := range all {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			conv = append(conv, m)
		}
	}
	sort.SliceStable(conv, func(i, j int) bool {
		return conv[i].Timestamp.Before(conv[j].Timestamp)
	})
	return conv, nil
}

// FetchConversation is Conversation from the reader's point of view: as a
// side effect it marks every incoming unread message as read, so read
// receipts are implicit in fetching. The returned slice reflects the
// post-fetch read state.
func (s *Service) FetchConversation(readerID, otherID string) ([]models.Message, error) {
	if _, err := s.repo.MarkRead(readerID, otherID); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "internal server error", err)
	}
	return s.Conversation(readerID, otherID)
}

// Send appends a message. Content must be non-empty after trimming and the
// receiver must exist.
func (s *Service) Send(senderID, receiverID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.InvalidArg("message content is required")
	}
	if receiverID == senderID {
		return nil, apperr.InvalidArg("cannot send a message to yourself")
	}
	if _, err := s.repo.UserByID(receiverID); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, apperr.NotFound("recipient not found")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "internal server error", err)
	}

	msg := models.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  time.Now(),
		Read:       false,
	}
	if err := s.repo.AppendMessage(msg); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "internal server error", err)
	}
	return &msg, nil
}

// UnreadCounts returns, per peer, how many of their messages to userID are
// still unread.
func (s *Service) UnreadCounts(userID string) (map[string]int, error) {
	all, err := s.repo.Messages()
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "internal server error", err)
	}
	counts := map[string]int{}
	for _, m := range all {
		if m.ReceiverID == userID && !m.Read {
			counts[m.SenderID]++
		}
	}
	return counts, nil
}
