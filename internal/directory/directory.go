// Package directory maintains each user's contact list and user search.
// Contact edges are directed (owner -> contact) and never reciprocal
// automatically.
package directory

import (
	"sort"
	"strings"
	"time"

	"blueme/internal/auth"
	"blueme/internal/chat"
	"blueme/internal/models"
	"blueme/internal/presence"
	"blueme/internal/repo"
	"blueme/pkg/apperr"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Service struct {
	repo     *repo.Repository
	presence *presence.Service
	chat     *chat.Service
}

func NewService(r *repo.Repository, p *presence.Service, c *chat.Service) *Service {
	return &Service{repo: r, presence: p, chat: c}
}

// ListContacts joins the owner's contact edges with each target's current
// profile, derived presence and unread count, newest edge first.
func (s *Service) ListContacts(ownerID string) ([]models.ContactView, error) {
	edges, err := s.repo.ContactsOf(ownerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "internal server error", err)
	}
	users, err := s.repo.Users()
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "internal server error", err)
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	unread, err := s.chat.UnreadCounts(ownerID)
	if err != nil {
		return nil, err
	}

	views := []models.ContactView{}
	for _, e := range edges {
		u, ok := byID[e.ContactUserID]
		if !ok {
			// Dangling edge; users are never deleted so this should not
			// happen, but a hand-edited data file must not break listing.
			continue
		}
		views = append(views, models.ContactView{
			ID:             u.ID,
			Name:           u.Name,
			Phone:          u.Phone,
			Status:         u.Status,
			ProfilePicture: u.ProfilePicture,
			AddedAt:        e.AddedAt,
			IsOnline:       s.presence.Online(u.LastSeen),
			LastSeen:       u.LastSeen,
			UnreadCount:    unread[u.ID],
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].AddedAt.After(views[j].AddedAt)
	})
	return views, nil
}

// SearchUsers matches the query case-insensitively against names and as a
// digit substring against phones, excluding the caller and users already
// in the caller's contact list.
func (s *Service) SearchUsers(query, ownerID string) ([]models.PublicUser, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.PublicUser{}, nil
	}
	users, err := s.repo.Users()
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "internal server error", err)
	}
	edges, err := s.repo.ContactsOf(ownerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "internal server error", err)
	}
	already := make(map[string]bool, len(edges))
	for _, e := range edges {
		already[e.ContactUserID] = true
	}

	nameQ := strings.ToLower(query)
	phoneQ := auth.NormalizePhone(query)

	results := []models.PublicUser{}
	for _, u := range users {
		if u.ID == ownerID || already[u.ID] {
			continue
		}
		if strings.Contains(strings.ToLower(u.Name), nameQ) ||
			(phoneQ != "" && strings.Contains(u.Phone, phoneQ)) {
			results = append(results, u.Public())
		}
	}
	return results, nil
}

// AddContactByID adds an edge to an existing user. Idempotent: adding the
// same contact twice leaves a single edge.
func (s *Service) AddContactByID(ownerID, targetID string) (*models.ContactView, error) {
	if targetID == ownerID {
		return nil, apperr.InvalidArg("cannot add yourself as a contact")
	}
	target, err := s.repo.UserByID(targetID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "internal server error", err)
	}

	edge := models.Contact{
		OwnerUserID:   ownerID,
		ContactUserID: targetID,
		AddedAt:       time.Now(),
	}
	if _, err := s.repo.AddContact(edge); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "internal server error", err)
	}
	view := s.view(*target, edge)
	return &view, nil
}

// AddByPhoneResult distinguishes whether add-by-phone attached to an
// existing account or created a placeholder one.
type AddByPhoneResult struct {
	Contact     models.ContactView
	CreatedUser bool
}

// AddContactByPhone adds a contact by phone number, creating a placeholder
// account (empty password, cannot log in) when the phone is unknown.
func (s *Service) AddContactByPhone(ownerID, phone, name string) (*AddByPhoneResult, error) {
	normalized := auth.NormalizePhone(phone)
	if !auth.ValidPhone(normalized) {
		return nil, apperr.InvalidArg("phone number must be 10-15 digits")
	}

	created := false
	target, err := s.repo.UserByPhone(normalized)
	if err != nil {
		if !errors.Is(err, repo.ErrUserNotFound) {
			return nil, apperr.Wrap(apperr.CodeInternal, "internal server error", err)
		}
		displayName := strings.TrimSpace(name)
		if displayName == "" {
			displayName = normalized
		}
		now := time.Now()
		placeholder := models.User{
			ID:        uuid.NewString(),
			Phone:     normalized,
			Name:      displayName,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.InsertUser(placeholder); err != nil {
			return nil, apperr.Wrap(apperr.CodeInternal, "internal server error", err)
		}
		target = &placeholder
		created = true
	}

	if target.ID == ownerID {
		return nil, apperr.InvalidArg("cannot add yourself as a contact")
	}

	edge := models.Contact{
		OwnerUserID:   ownerID,
		ContactUserID: target.ID,
		AddedAt:       time.Now(),
	}
	added, err := s.repo.AddContact(edge)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "internal server error", err)
	}
	if !added {
		return nil, apperr.AlreadyExists("this user is already in your contacts")
	}
	return &AddByPhoneResult{Contact: s.view(*target, edge), CreatedUser: created}, nil
}

func (s *Service) view(u models.User, e models.Contact) models.ContactView {
	return models.ContactView{
		ID:             u.ID,
		Name:           u.Name,
		Phone:          u.Phone,
		Status:         u.Status,
		ProfilePicture: u.ProfilePicture,
		AddedAt:        e.AddedAt,
		IsOnline:       s.presence.Online(u.LastSeen),
		LastSeen:       u.LastSeen,
	}
}
