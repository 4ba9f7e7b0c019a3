package auth

import (
	"log"
	"strings"
	"time"

	"blueme/internal/models"
	"blueme/internal/repo"
	"blueme/pkg/apperr"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// genericLoginError deliberately does not distinguish unknown phone from
// wrong password, so login attempts cannot enumerate accounts.
const genericLoginError = "invalid phone number or password"

const minPasswordLen = 6

type Service struct {
	repo *repo.Repository
	jwt  *JWT
}

func NewService(r *repo.Repository, jwt *JWT) *Service {
	return &Service{repo: r, jwt: jwt}
}

type RegisterCommand struct {
	Phone    string
	Password string
	Name     string
}

// Register creates an account, or claims a placeholder account (created by
// add-contact-by-phone, empty password hash) for the same phone.
func (s *Service) Register(cmd RegisterCommand) (*models.User, error) {
	phone := NormalizePhone(cmd.Phone)
	if !ValidPhone(phone) {
		return nil, apperr.InvalidArg("phone number must be 10-15 digits")
	}
	if len(cmd.Password) < minPasswordLen {
		return nil, apperr.InvalidArg("password must be at least 6 characters")
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, apperr.InvalidArg("name is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return nil, apperr.Internal("internal server error")
	}

	existing, err := s.repo.UserByPhone(phone)
	if err != nil && !errors.Is(err, repo.ErrUserNotFound) {
		return nil, apperr.Wrap(apperr.CodeInternal, "internal server error", err)
	}
	if existing != nil {
		if existing.Password != "" {
			return nil, apperr.AlreadyExists("an account with this phone number already exists")
		}
		existing.Password = string(hash)
		existing.Name = name
		existing.UpdatedAt = time.Now()
		if err := s.repo.UpdateUser(*existing); err != nil {
			return nil, apperr.Wrap(apperr.CodeInternal, "internal server error", err)
		}
		return existing, nil
	}

	now := time.Now()
	user := models.User{
		ID:        uuid.NewString(),
		Phone:     phone,
		Password:  string(hash),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		LastSeen:  now,
	}
	if err := s.repo.InsertUser(user); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "internal server error", err)
	}
	return &user, nil
}

// Login verifies credentials and returns the user plus a signed session
// token. Every failure surfaces the same generic message.
func (s *Service) Login(phone, password string) (*models.User, string, error) {
	user, err := s.repo.UserByPhone(NormalizePhone(phone))
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, "", apperr.Unauthorized(genericLoginError)
		}
		return nil, "", apperr.Wrap(apperr.CodeInternal, "internal server error", err)
	}
	// Placeholder accounts have no password hash and cannot log in.
	if user.Password == "" {
		return nil, "", apperr.Unauthorized(genericLoginError)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", apperr.Unauthorized(genericLoginError)
	}

	token, err := s.jwt.Sign(user.ID, user.Phone, user.Name)
	if err != nil {
		log.Printf("Error signing session token: %v", err)
		return nil, "", apperr.Internal("internal server error")
	}
	return user, token, nil
}
