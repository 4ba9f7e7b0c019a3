// Package presence derives online state from heartbeat timestamps. A user
// is online while their last heartbeat is younger than the staleness
// window; there is no push, clients poll.
package presence

import (
	"fmt"
	"time"

	"blueme/internal/models"
	"blueme/internal/repo"
	"blueme/pkg/apperr"

	"github.com/pkg/errors"
)

// OnlineWindow is the staleness threshold: a heartbeat older than this
// means offline.
const OnlineWindow = 5 * time.Minute

type Service struct {
	repo *repo.Repository

	// now is swappable in tests.
	now func() time.Time
}

func NewService(r *repo.Repository) *Service {
	return &Service{repo: r, now: time.Now}
}

// Heartbeat records activity for the user. Called periodically by active
// clients and as a side effect of sending a message.
func (s *Service) Heartbeat(userID string) error {
	if err := s.repo.TouchLastSeen(userID, s.now()); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Wrap(apperr.CodeInternal, "internal server error", err)
	}
	return nil
}

// Online reports whether a lastSeen timestamp counts as online right now.
func (s *Service) Online(lastSeen time.Time) bool {
	return s.now().Sub(lastSeen) < OnlineWindow
}

// StatusOf resolves presence for each requested user id. Unknown ids are
// skipped rather than failing the whole lookup.
func (s *Service) StatusOf(userIDs []string) (map[string]models.Presence, error) {
	users, err := s.repo.Users()
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "internal server error", err)
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make(map[string]models.Presence, len(userIDs))
	for _, id := range userIDs {
		u, ok := byID[id]
		if !ok {
			continue
		}
		out[id] = s.presenceOf(u)
	}
	return out, nil
}

func (s *Service) presenceOf(u models.User) models.Presence {
	return models.Presence{
		UserID:        u.ID,
		IsOnline:      s.Online(u.LastSeen),
		LastSeen:      u.LastSeen,
		LastSeenLabel: s.Label(u.LastSeen),
	}
}

// Label renders the "last seen ..." display string.
func (s *Service) Label(lastSeen time.Time) string {
	if s.Online(lastSeen) {
		return "online"
	}
	if lastSeen.IsZero() {
		return "last seen a long time ago"
	}
	d := s.now().Sub(lastSeen)
	switch {
	case d < time.Hour:
		return fmt.Sprintf("last seen %d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("last seen %d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("last seen %d days ago", int(d.Hours()/24))
	}
}
