// Package repo gives the services typed access to the three collections.
// Every method is a whole-collection read-modify-write against the
// underlying store; a process-local mutex serializes them so two handlers
// in the same process cannot interleave, but separate processes sharing a
// data dir still race (last writer wins).
package repo

import (
	"sync"
	"time"

	"blueme/internal/models"
	"blueme/internal/store"

	"github.com/pkg/errors"
)

var ErrUserNotFound = errors.New("user not found")

type Repository struct {
	mu    sync.Mutex
	store store.Store
}

func New(s store.Store) *Repository {
	return &Repository{store: s}
}

// --- users ---

func (r *Repository) Users() ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usersLocked()
}

func (r *Repository) usersLocked() ([]models.User, error) {
	users := []models.User{}
	if err := r.store.Load(store.CollectionUsers, &users); err != nil {
		return nil, errors.Wrap(err, "repo.Users")
	}
	return users, nil
}

func (r *Repository) UserByID(id string) (*models.User, error) {
	users, err := r.Users()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

// UserByPhone looks a user up by normalized phone digits.
func (r *Repository) UserByPhone(phone string) (*models.User, error) {
	users, err := r.Users()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Phone == phone {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *Repository) InsertUser(u models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	users, err := r.usersLocked()
	if err != nil {
		return err
	}
	users = append(users, u)
	return errors.Wrap(r.store.Save(store.CollectionUsers, users), "repo.InsertUser")
}

// UpdateUser replaces the stored record with the same ID.
func (r *Repository) UpdateUser(u models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	users, err := r.usersLocked()
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID == u.ID {
			users[i] = u
			return errors.Wrap(r.store.Save(store.CollectionUsers, users), "repo.UpdateUser")
		}
	}
	return ErrUserNotFound
}

// TouchLastSeen sets the user's lastSeen to now.
func (r *Repository) TouchLastSeen(id string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	users, err := r.usersLocked()
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID == id {
			users[i].LastSeen = now
			return errors.Wrap(r.store.Save(store.CollectionUsers, users), "repo.TouchLastSeen")
		}
	}
	return ErrUserNotFound
}

// --- contacts ---

func (r *Repository) contactsLocked() (map[string][]models.Contact, error) {
	contacts := map[string][]models.Contact{}
	if err := r.store.Load(store.CollectionContacts, &contacts); err != nil {
		return nil, errors.Wrap(err, "repo.Contacts")
	}
	return contacts, nil
}

func (r *Repository) ContactsOf(ownerID string) ([]models.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	contacts, err := r.contactsLocked()
	if err != nil {
		return nil, err
	}
	return contacts[ownerID], nil
}

// AddContact appends the edge unless the (owner, contact) pair already
// exists. Reports whether a new edge was written.
func (r *Repository) AddContact(edge models.Contact) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	contacts, err := r.contactsLocked()
	if err != nil {
		return false, err
	}
	for _, c := range contacts[edge.OwnerUserID] {
		if c.ContactUserID == edge.ContactUserID {
			return false, nil
		}
	}
	contacts[edge.OwnerUserID] = append(contacts[edge.OwnerUserID], edge)
	if err := r.store.Save(store.CollectionContacts, contacts); err != nil {
		return false, errors.Wrap(err, "repo.AddContact")
	}
	return true, nil
}

// --- messages ---

func (r *Repository) Messages() ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messagesLocked()
}

func (r *Repository) messagesLocked() ([]models.Message, error) {
	messages := []models.Message{}
	if err := r.store.Load(store.CollectionMessages, &messages); err != nil {
		return nil, errors.Wrap(err, "repo.Messages")
	}
	return messages, nil
}

func (r *Repository) AppendMessage(m models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	messages, err := r.messagesLocked()
	if err != nil {
		return err
	}
	messages = append(messages, m)
	return errors.Wrap(r.store.Save(store.CollectionMessages, messages), "repo.AppendMessage")
}

// MarkRead flips read on every unread message from senderID to readerID.
// Returns the number of messages updated.
func (r *Repository) MarkRead(readerID, senderID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	messages, err := r.messagesLocked()
	if err != nil {
		return 0, err
	}
	updated := 0
	for i := range messages {
		if messages[i].SenderID == senderID && messages[i].ReceiverID == readerID && !messages[i].Read {
			messages[i].Read = true
			updated++
		}
	}
	if updated == 0 {
		return 0, nil
	}
	if err := r.store.Save(store.CollectionMessages, messages); err != nil {
		return 0, errors.Wrap(err, "repo.MarkRead")
	}
	return updated, nil
}
