package chat

import (
	"testing"

	"blueme/internal/models"
	"blueme/internal/repo"
	"blueme/internal/store"
	"blueme/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *repo.Repository, models.User, models.User) {
	t.Helper()
	r := repo.New(store.NewFileStore(t.TempDir()))
	alice := models.User{ID: uuid.NewString(), Phone: "5551234567", Name: "Alice"}
	bob := models.User{ID: uuid.NewString(), Phone: "5559876543", Name: "Bob"}
	require.NoError(t, r.InsertUser(alice))
	require.NoError(t, r.InsertUser(bob))
	return NewService(r), r, alice, bob
}

func TestSend(t *testing.T) {
	svc, _, alice, bob := newTestService(t)

	t.Run("appends an unread message", func(t *testing.T) {
		msg, err := svc.Send(alice.ID, bob.ID, "  hi  ")
		require.NoError(t, err)
		assert.Equal(t, "hi", msg.Content, "content is trimmed")
		assert.False(t, msg.Read)
		assert.NotEmpty(t, msg.ID)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		_, err := svc.Send(alice.ID, bob.ID, "   ")
		require.Error(t, err)
		assert.Equal(t, 400, apperr.HTTPStatus(err))
	})

	t.Run("rejects unknown receiver", func(t *testing.T) {
		_, err := svc.Send(alice.ID, "no-such-user", "hi")
		require.Error(t, err)
		assert.Equal(t, 404, apperr.HTTPStatus(err))
	})

	t.Run("rejects self messages", func(t *testing.T) {
		_, err := svc.Send(alice.ID, alice.ID, "hi me")
		assert.Error(t, err)
	})
}

func TestConversationSymmetryAndOrder(t *testing.T) {
	svc, _, alice, bob := newTestService(t)

	_, err := svc.Send(alice.ID, bob.ID, "one")
	require.NoError(t, err)
	_, err = svc.Send(bob.ID, alice.ID, "two")
	require.NoError(t, err)
	_, err = svc.Send(alice.ID, bob.ID, "three")
	require.NoError(t, err)

	fromAlice, err := svc.Conversation(alice.ID, bob.ID)
	require.NoError(t, err)
	fromBob, err := svc.Conversation(bob.ID, alice.ID)
	require.NoError(t, err)

	assert.Equal(t, fromAlice, fromBob, "both sides see the identical conversation")
	require.Len(t, fromAlice, 3)
	for i := 1; i < len(fromAlice); i++ {
		assert.False(t, fromAlice[i].Timestamp.Before(fromAlice[i-1].Timestamp),
			"messages are sorted ascending by timestamp")
	}
	assert.Equal(t, "one", fromAlice[0].Content)
	assert.Equal(t, "three", fromAlice[2].Content)
}

func TestFetchMarksRead(t *testing.T) {
	svc, _, alice, bob := newTestService(t)

	_, err := svc.Send(alice.ID, bob.ID, "hi")
	require.NoError(t, err)

	unread, err := svc.UnreadCounts(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread[alice.ID])

	// Bob fetching the conversation marks the incoming message read.
	conv, err := svc.FetchConversation(bob.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, conv, 1)
	assert.True(t, conv[0].Read)

	unread, err = svc.UnreadCounts(bob.ID)
	require.NoError(t, err)
	assert.Zero(t, unread[alice.ID])

	// Fetching again still shows read=true.
	conv, err = svc.FetchConversation(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, conv[0].Read)
}

func TestFetchDoesNotMarkOutgoing(t *testing.T) {
	svc, _, alice, bob := newTestService(t)

	_, err := svc.Send(alice.ID, bob.ID, "hi")
	require.NoError(t, err)

	// The sender fetching does not mark their own outgoing message read.
	conv, err := svc.FetchConversation(alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, conv, 1)
	assert.False(t, conv[0].Read)

	unread, err := svc.UnreadCounts(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread[alice.ID])
}

func TestUnreadCountsPerPeer(t *testing.T) {
	svc, r, alice, bob := newTestService(t)
	carol := models.User{ID: uuid.NewString(), Phone: "5550001111", Name: "Carol"}
	require.NoError(t, r.InsertUser(carol))

	_, err := svc.Send(alice.ID, bob.ID, "a1")
	require.NoError(t, err)
	_, err = svc.Send(alice.ID, bob.ID, "a2")
	require.NoError(t, err)
	_, err = svc.Send(carol.ID, bob.ID, "c1")
	require.NoError(t, err)

	unread, err := svc.UnreadCounts(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, unread[alice.ID])
	assert.Equal(t, 1, unread[carol.ID])
}
