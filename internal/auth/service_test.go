package auth

import (
	"testing"
	"time"

	"blueme/internal/models"
	"blueme/internal/repo"
	"blueme/internal/store"
	"blueme/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *repo.Repository) {
	t.Helper()
	r := repo.New(store.NewFileStore(t.TempDir()))
	return NewService(r, NewJWT("test-secret", time.Hour)), r
}

func TestRegister(t *testing.T) {
	t.Run("creates a user", func(t *testing.T) {
		svc, _ := newTestService(t)
		user, err := svc.Register(RegisterCommand{Phone: "555 123 4567", Password: "secret1", Name: "Alice"})
		require.NoError(t, err)
		assert.Equal(t, "5551234567", user.Phone, "phone is stored normalized")
		assert.Equal(t, "Alice", user.Name)
		assert.NotEmpty(t, user.ID)
		assert.NotEqual(t, "secret1", user.Password, "password must be hashed")
	})

	t.Run("rejects duplicate normalized phone", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.Register(RegisterCommand{Phone: "5551234567", Password: "secret1", Name: "Alice"})
		require.NoError(t, err)

		_, err = svc.Register(RegisterCommand{Phone: "555 123 4567", Password: "other22", Name: "Mallory"})
		require.Error(t, err)
		assert.Equal(t, 400, apperr.HTTPStatus(err))
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.Register(RegisterCommand{Phone: "123", Password: "secret1", Name: "A"})
		assert.Error(t, err, "short phone")
		_, err = svc.Register(RegisterCommand{Phone: "5551234567", Password: "abc", Name: "A"})
		assert.Error(t, err, "short password")
		_, err = svc.Register(RegisterCommand{Phone: "5551234567", Password: "secret1", Name: "  "})
		assert.Error(t, err, "blank name")
	})

	t.Run("claims a placeholder account", func(t *testing.T) {
		svc, r := newTestService(t)
		placeholder := models.User{ID: uuid.NewString(), Phone: "5551234567", Name: "Unknown"}
		require.NoError(t, r.InsertUser(placeholder))

		user, err := svc.Register(RegisterCommand{Phone: "5551234567", Password: "secret1", Name: "Alice"})
		require.NoError(t, err)
		assert.Equal(t, placeholder.ID, user.ID, "existing record is claimed, not duplicated")
		assert.Equal(t, "Alice", user.Name)

		users, err := r.Users()
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}

func TestLogin(t *testing.T) {
	svc, r := newTestService(t)
	_, err := svc.Register(RegisterCommand{Phone: "5551234567", Password: "secret1", Name: "Alice"})
	require.NoError(t, err)

	t.Run("success returns user and token", func(t *testing.T) {
		user, token, err := svc.Login("555 123 4567", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "Alice", user.Name)

		claims, err := svc.jwt.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
	})

	t.Run("unknown phone and wrong password fail identically", func(t *testing.T) {
		_, _, unknownErr := svc.Login("5550000000", "secret1")
		_, _, wrongErr := svc.Login("5551234567", "nope123")
		require.Error(t, unknownErr)
		require.Error(t, wrongErr)
		assert.Equal(t, apperr.UserMessage(unknownErr), apperr.UserMessage(wrongErr),
			"failures must not reveal whether the account exists")
		assert.Equal(t, 401, apperr.HTTPStatus(unknownErr))
	})

	t.Run("placeholder account cannot log in", func(t *testing.T) {
		placeholder := models.User{ID: uuid.NewString(), Phone: "5559999999", Name: "Ghost"}
		require.NoError(t, r.InsertUser(placeholder))
		_, _, err := svc.Login("5559999999", "")
		require.Error(t, err)
		assert.Equal(t, 401, apperr.HTTPStatus(err))
	})
}
