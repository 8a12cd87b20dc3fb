// Package notifications provides real-time message delivery over websockets.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Max total connections
const maxTotalConns = 10000

// Hub is the presence registry: it maps each user to at most one live
// websocket session. A user connecting again displaces the earlier session.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uint]*Client
	shutdown chan struct{}
	done     chan struct{}
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[uint]*Client),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "presence hub" }

// Register binds a connection to a userID. If the user already has a live
// session the old one is displaced and closed; the newest connection wins.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	client := NewClient(h, conn, userID)

	h.mu.Lock()
	if len(h.sessions) >= maxTotalConns {
		h.mu.Unlock()
		return nil, errors.New("server connection limit reached")
	}
	displaced := h.sessions[userID]
	h.sessions[userID] = client
	h.mu.Unlock()

	// Close outside the lock: the displaced WritePump sends the close frame.
	if displaced != nil {
		displaced.Close()
	}

	return client, nil
}

// UnregisterClient removes a client's session. A stale client that was
// already displaced by a newer session is ignored, so the call is safe from
// any pump's deferred cleanup.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	current, ok := h.sessions[client.UserID]
	if ok && current.SessionID == client.SessionID {
		delete(h.sessions, client.UserID)
	}
	h.mu.Unlock()
}

// Lookup returns the user's live session, or nil when offline.
func (h *Hub) Lookup(userID uint) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[userID]
}

// IsOnline reports whether a user currently has a live websocket session.
func (h *Hub) IsOnline(userID uint) bool {
	return h.Lookup(userID) != nil
}

// OnlineIDs returns the IDs of all currently connected users in ascending
// order.
func (h *Hub) OnlineIDs() []uint {
	h.mu.RLock()
	ids := make([]uint, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Broadcast sends message to the user's session, if any.
func (h *Hub) Broadcast(userID uint, message string) {
	h.mu.RLock()
	client := h.sessions[userID]
	h.mu.RUnlock()

	if client != nil {
		client.TrySend([]byte(message))
	}
}

// BroadcastAll sends message to every connected websocket client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.sessions))
	for _, c := range h.sessions {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	data := []byte(message)
	for _, c := range clients {
		c.TrySend(data)
	}
}

// StartWiring connects the Notifier to this hub: it subscribes to the Redis
// patterns and forwards messages to the matching user session.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		if channel == broadcastChannel {
			h.BroadcastAll(payload)
			return
		}
		if !strings.HasPrefix(channel, userChannelPrefix) {
			log.Printf("invalid notification channel: %s", channel)
			return
		}
		// channel form: notifications:user:<id>
		var userID uint
		_, err := fmt.Sscanf(channel, userChannelPrefix+"%d", &userID)
		if err != nil {
			log.Printf("invalid notification channel: %s", channel)
			return
		}
		h.Broadcast(userID, payload)
	})
}

// Shutdown gracefully closes all websocket connections
func (h *Hub) Shutdown(_ context.Context) error {
	close(h.shutdown)

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.sessions))
	for _, client := range h.sessions {
		clients = append(clients, client)
	}
	h.sessions = make(map[uint]*Client)
	h.mu.Unlock()

	// WritePump is the only goroutine allowed to write on the conn, so the
	// close frame has to come from it. Closing the send channel triggers
	// that, the same way displacement does.
	for _, client := range clients {
		client.Close()
	}

	close(h.done)

	return nil
}
