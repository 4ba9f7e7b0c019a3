package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"testing"
	"time"

	"blueme/internal/auth"
	"blueme/internal/chat"
	"blueme/internal/directory"
	"blueme/internal/presence"
	"blueme/internal/repo"
	"blueme/internal/store"
	"blueme/internal/ws"
	"blueme/pkg/client"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer assembles the full router the way cmd/server does and
// serves it from httptest, so tests drive the real HTTP surface through
// pkg/client.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repository := repo.New(store.NewFileStore(t.TempDir()))
	sessionJWT := auth.NewJWT("test-secret", time.Hour)
	authService := auth.NewService(repository, sessionJWT)
	presenceService := presence.NewService(repository)
	chatService := chat.NewService(repository)
	directoryService := directory.NewService(repository, presenceService, chatService)

	hub := ws.NewHub()
	go hub.Run()

	authHandler := NewAuthHandler(authService, presenceService, sessionJWT)
	contactHandler := NewContactHandler(directoryService)
	messageHandler := NewMessageHandler(chatService, presenceService, hub)
	userHandler := NewUserHandler(repository, directoryService, presenceService, hub)
	profileHandler := NewProfileHandler(repository)
	uploadHandler := NewUploadHandler(repository, t.TempDir())

	r := gin.New()
	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.POST("/auth/logout", authHandler.Logout)

	authorized := r.Group("/", auth.RequireSession(sessionJWT))
	{
		authorized.GET("/contacts", contactHandler.GetContacts)
		authorized.POST("/contacts", contactHandler.AddContact)
		authorized.GET("/messages", messageHandler.GetConversation)
		authorized.POST("/messages", messageHandler.SendMessage)
		authorized.GET("/users/search", userHandler.SearchUsers)
		authorized.GET("/users/status", userHandler.GetStatus)
		authorized.POST("/users/status", userHandler.Heartbeat)
		authorized.GET("/users/:id", userHandler.GetUser)
		authorized.GET("/profile", profileHandler.GetProfile)
		authorized.PUT("/profile", profileHandler.UpdateProfile)
		authorized.POST("/upload/profile-picture", uploadHandler.UploadProfilePicture)
	}

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestRequiresSession(t *testing.T) {
	srv := newTestServer(t)
	c := client.New(srv.URL)

	_, err := c.Contacts()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestRegisterDuplicatePhone(t *testing.T) {
	srv := newTestServer(t)
	c := client.New(srv.URL)

	_, err := c.Register("5551234567", "secret1", "Alice")
	require.NoError(t, err)
	_, err = c.Register("555 123 4567", "secret2", "Mallory")
	require.Error(t, err, "same normalized phone must be rejected")
	assert.Contains(t, err.Error(), "400")
}

// TestAliceAndBob walks the full messaging scenario over HTTP: register
// both users, Alice adds Bob and sends "hi", Bob fetches the conversation
// (which marks it read), and Alice ends up with no unread from Bob.
func TestAliceAndBob(t *testing.T) {
	srv := newTestServer(t)

	aliceClient := client.New(srv.URL)
	bobClient := client.New(srv.URL)

	aliceUser, err := aliceClient.Register("5551234567", "secret1", "Alice")
	require.NoError(t, err)
	bobUser, err := bobClient.Register("5559876543", "secret2", "Bob")
	require.NoError(t, err)

	_, err = aliceClient.Login("5551234567", "secret1")
	require.NoError(t, err)
	_, err = bobClient.Login("5559876543", "secret2")
	require.NoError(t, err)

	require.NoError(t, aliceClient.AddContactByID(bobUser.ID))

	sent, err := aliceClient.SendMessage(bobUser.ID, "hi")
	require.NoError(t, err)
	assert.False(t, sent.Read)

	// Bob fetches the conversation; the message arrives marked read.
	conv, err := bobClient.Conversation(aliceUser.ID)
	require.NoError(t, err)
	require.Len(t, conv, 1)
	assert.Equal(t, "hi", conv[0].Content)
	assert.True(t, conv[0].Read)

	// Alice has no unread from Bob.
	contacts, err := aliceClient.Contacts()
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, bobUser.ID, contacts[0].ID)
	assert.Zero(t, contacts[0].UnreadCount)
	assert.True(t, contacts[0].IsOnline, "bob just logged in")

	// Presence for both shows online.
	statuses, err := aliceClient.Status([]string{aliceUser.ID, bobUser.ID})
	require.NoError(t, err)
	assert.True(t, statuses[bobUser.ID].IsOnline)
}

func TestProfileRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	c := client.New(srv.URL)

	_, err := c.Register("5551234567", "secret1", "Alice")
	require.NoError(t, err)
	_, err = c.Login("5551234567", "secret1")
	require.NoError(t, err)

	status := "out for lunch"
	updated, err := c.UpdateProfile(nil, &status, nil)
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Name, "absent fields are unchanged")
	assert.Equal(t, "out for lunch", updated.Status)

	profile, err := c.Profile()
	require.NoError(t, err)
	assert.Equal(t, "out for lunch", profile.Status)
}

func TestUploadProfilePicture(t *testing.T) {
	srv := newTestServer(t)
	c := client.New(srv.URL)

	_, err := c.Register("5551234567", "secret1", "Alice")
	require.NoError(t, err)
	_, err = c.Login("5551234567", "secret1")
	require.NoError(t, err)

	upload := func(fieldContentType string, size int) *http.Response {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="file"; filename="avatar.png"`)
		hdr.Set("Content-Type", fieldContentType)
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(bytes.Repeat([]byte{0x1}, size))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req, err := http.NewRequest(http.MethodPost, srv.URL+"/upload/profile-picture", &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.AddCookie(sessionCookie(t, srv, c))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := upload("image/png", 128)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = upload("text/plain", 128)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "non-image MIME rejected")
	resp.Body.Close()

	resp = upload("image/png", 6<<20)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "over 5MB rejected")
	resp.Body.Close()
}

// sessionCookie digs the session cookie out of the typed client's jar so
// raw multipart requests can reuse the same login.
func sessionCookie(t *testing.T, srv *httptest.Server, c *client.Client) *http.Cookie {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	for _, ck := range c.Jar().Cookies(u) {
		if ck.Name == auth.SessionCookie {
			return ck
		}
	}
	t.Fatal("session cookie not found; did login succeed?")
	return nil
}
