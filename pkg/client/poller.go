package client

import (
	"context"
	"log"
	"sync"
	"time"
)

// Poll intervals, matching the web UI's timer loop.
const (
	ConversationInterval = 2 * time.Second
	PresenceInterval     = 10 * time.Second
	HeartbeatInterval    = 30 * time.Second
)

// Poller drives the pull-based "real-time" loop: while a conversation is
// open it is re-fetched every 2 seconds, a heartbeat goes out every 30
// seconds, and presence for the visible contacts every 10 seconds. There
// is no backoff, jitter or request coalescing; a failed tick is simply
// retried on the next one.
type Poller struct {
	client *Client

	// OnMessages receives each conversation fetch result.
	OnMessages func(otherID string, messages []Message)
	// OnPresence receives each presence fetch result.
	OnPresence func(statuses map[string]Presence)

	mu           sync.Mutex
	conversation string
	watched      []string

	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(c *Client) *Poller {
	return &Poller{client: c}
}

// OpenConversation selects which conversation the 2-second loop fetches.
// An empty id pauses conversation polling.
func (p *Poller) OpenConversation(userID string) {
	p.mu.Lock()
	p.conversation = userID
	p.mu.Unlock()
}

// WatchPresence sets which users the presence loop resolves.
func (p *Poller) WatchPresence(userIDs []string) {
	p.mu.Lock()
	p.watched = append([]string(nil), userIDs...)
	p.mu.Unlock()
}

// Start launches the timer loops. Stop (or cancelling ctx) tears them all
// down, the equivalent of the UI view unmounting.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(3)

	go p.loop(ctx, &wg, ConversationInterval, p.pollConversation)
	go p.loop(ctx, &wg, PresenceInterval, p.pollPresence)
	go p.loop(ctx, &wg, HeartbeatInterval, p.sendHeartbeat)

	go func() {
		wg.Wait()
		close(p.done)
	}()
}

// Stop cancels every loop and waits for them to finish.
func (p *Poller) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
}

func (p *Poller) loop(ctx context.Context, wg *sync.WaitGroup, interval time.Duration, tick func()) {
	defer wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}

func (p *Poller) pollConversation() {
	p.mu.Lock()
	otherID := p.conversation
	p.mu.Unlock()
	if otherID == "" {
		return
	}
	messages, err := p.client.Conversation(otherID)
	if err != nil {
		log.Printf("Poller: conversation fetch failed: %v", err)
		return
	}
	if p.OnMessages != nil {
		p.OnMessages(otherID, messages)
	}
}

func (p *Poller) pollPresence() {
	p.mu.Lock()
	watched := p.watched
	p.mu.Unlock()
	if len(watched) == 0 {
		return
	}
	statuses, err := p.client.Status(watched)
	if err != nil {
		log.Printf("Poller: presence fetch failed: %v", err)
		return
	}
	if p.OnPresence != nil {
		p.OnPresence(statuses)
	}
}

func (p *Poller) sendHeartbeat() {
	if err := p.client.Heartbeat(); err != nil {
		log.Printf("Poller: heartbeat failed: %v", err)
	}
}
