// Package client is a Go client for the Blue+Me API, plus the polling loop
// the web UI runs: periodic conversation refresh, heartbeats and presence
// lookups. There is no push path; everything is pull.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	BaseURL string
	http    *http.Client
}

// New builds a client with a cookie jar, so the session cookie issued by
// login is carried on every later call.
func New(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}
}

// Jar exposes the cookie jar, mainly so callers can inspect or reuse the
// session cookie.
func (c *Client) Jar() http.CookieJar {
	return c.http.Jar
}

// User mirrors the API's public user shape.
type User struct {
	ID             string    `json:"id"`
	Phone          string    `json:"phone"`
	Name           string    `json:"name"`
	Status         string    `json:"status"`
	ProfilePicture string    `json:"profilePicture"`
	LastSeen       time.Time `json:"lastSeen"`
}

type Contact struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Status      string    `json:"status"`
	AddedAt     time.Time `json:"addedAt"`
	IsOnline    bool      `json:"isOnline"`
	LastSeen    time.Time `json:"lastSeen"`
	UnreadCount int       `json:"unreadCount"`
}

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

type Presence struct {
	UserID        string    `json:"userId"`
	IsOnline      bool      `json:"isOnline"`
	LastSeen      time.Time `json:"lastSeen"`
	LastSeenLabel string    `json:"lastSeenLabel"`
}

func (c *Client) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (HTTP %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: HTTP %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) Register(phone, password, name string) (*User, error) {
	var user User
	err := c.do(http.MethodPost, "/auth/register",
		map[string]string{"phone": phone, "password": password, "name": name}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates and stores the session cookie in the jar.
func (c *Client) Login(phone, password string) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	err := c.do(http.MethodPost, "/auth/login",
		map[string]string{"phone": phone, "password": password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) Contacts() ([]Contact, error) {
	var contacts []Contact
	if err := c.do(http.MethodGet, "/contacts", nil, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (c *Client) AddContactByID(contactID string) error {
	return c.do(http.MethodPost, "/contacts", map[string]string{"contactId": contactID}, nil)
}

func (c *Client) AddContactByPhone(phone, name string) error {
	return c.do(http.MethodPost, "/contacts", map[string]string{"phone": phone, "name": name}, nil)
}

// Conversation fetches the conversation with the given user. The server
// marks incoming messages read as a side effect.
func (c *Client) Conversation(userID string) ([]Message, error) {
	var messages []Message
	path := "/messages?userId=" + url.QueryEscape(userID)
	if err := c.do(http.MethodGet, path, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *Client) SendMessage(receiverID, content string) (*Message, error) {
	var msg Message
	err := c.do(http.MethodPost, "/messages",
		map[string]string{"receiverId": receiverID, "content": content}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) SearchUsers(query string) ([]User, error) {
	var users []User
	path := "/users/search?q=" + url.QueryEscape(query)
	if err := c.do(http.MethodGet, path, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) Profile() (*User, error) {
	var user User
	if err := c.do(http.MethodGet, "/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile sends only the non-nil fields.
func (c *Client) UpdateProfile(name, status, picture *string) (*User, error) {
	body := map[string]*string{}
	if name != nil {
		body["name"] = name
	}
	if status != nil {
		body["status"] = status
	}
	if picture != nil {
		body["profilePicture"] = picture
	}
	var user User
	if err := c.do(http.MethodPut, "/profile", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Heartbeat() error {
	return c.do(http.MethodPost, "/users/status", nil, nil)
}

func (c *Client) Status(userIDs []string) (map[string]Presence, error) {
	var statuses map[string]Presence
	path := "/users/status?userIds=" + url.QueryEscape(strings.Join(userIDs, ","))
	if err := c.do(http.MethodGet, path, nil, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}
