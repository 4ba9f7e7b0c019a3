package models

import "time"

// User is a registered (or placeholder) account. Password holds the bcrypt
// hash; it is empty for placeholder accounts created by add-contact-by-phone,
// which cannot log in until they register.
type User struct {
	ID             string    `json:"id"`
	Phone          string    `json:"phone"` // normalized, digits only
	Password       string    `json:"password"`
	Name           string    `json:"name"`
	Status         string    `json:"status"`
	ProfilePicture string    `json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	LastSeen       time.Time `json:"lastSeen"`
}

// PublicUser is the wire shape of a user, without the password hash.
type PublicUser struct {
	ID             string    `json:"id"`
	Phone          string    `json:"phone"`
	Name           string    `json:"name"`
	Status         string    `json:"status"`
	ProfilePicture string    `json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	LastSeen       time.Time `json:"lastSeen"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID,
		Phone:          u.Phone,
		Name:           u.Name,
		Status:         u.Status,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
		LastSeen:       u.LastSeen,
	}
}

// Contact is a directed edge: owner added contact. Not reciprocal.
type Contact struct {
	OwnerUserID   string    `json:"ownerUserId"`
	ContactUserID string    `json:"contactUserId"`
	AddedAt       time.Time `json:"addedAt"`
}

// ContactView is a contact edge joined with the target user's current
// profile and derived presence, as returned by GET /contacts.
type ContactView struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Status         string    `json:"status"`
	ProfilePicture string    `json:"profilePicture"`
	AddedAt        time.Time `json:"addedAt"`
	IsOnline       bool      `json:"isOnline"`
	LastSeen       time.Time `json:"lastSeen"`
	UnreadCount    int       `json:"unreadCount"`
}

// Message is immutable once written, except for the Read flag which
// transitions false -> true when the receiver fetches the conversation.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// Presence is the derived online/last-seen state for one user.
type Presence struct {
	UserID        string    `json:"userId"`
	IsOnline      bool      `json:"isOnline"`
	LastSeen      time.Time `json:"lastSeen"`
	LastSeenLabel string    `json:"lastSeenLabel"`
}
