// Package live delivers document change signals to live views.
//
// A change carries no document data. Subscribers re-read whatever they
// derive from the collection, so signals are coalesced: a subscriber that
// has not drained its last signal is not sent another.
package live

import (
	"sync"

	"go.uber.org/zap"
)

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

const (
	Users         = "users"
	Videos        = "videos"
	Notifications = "notifications"
)

type Change struct {
	Collection string `json:"collection"`
	DocID      string `json:"docId"`
	Op         Op     `json:"op"`
}

// Forwarder receives every locally published change, e.g. to relay it to
// other instances.
type Forwarder interface {
	Forward(Change)
}

type Hub struct {
	mu        sync.RWMutex
	subs      map[uint64]*Subscription
	next      uint64
	forwarder Forwarder
	logger    *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:   make(map[uint64]*Subscription),
		logger: logger,
	}
}

// SetForwarder installs f. Must be called before the hub is shared.
func (h *Hub) SetForwarder(f Forwarder) {
	h.forwarder = f
}

// Publish signals a local write.
func (h *Hub) Publish(c Change) {
	h.deliver(c)
	if h.forwarder != nil {
		h.forwarder.Forward(c)
	}
}

// deliver signals subscribers without forwarding; used for remote changes.
func (h *Hub) deliver(c Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.subs {
		if !s.wants(c.Collection) {
			continue
		}
		select {
		case s.ch <- c:
		default:
		}
	}
}

// Subscribe registers interest in the given collections. The caller owns
// the returned subscription and must Close it.
func (h *Hub) Subscribe(collections ...string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.next++
	s := &Subscription{
		id:          h.next,
		hub:         h,
		collections: collections,
		ch:          make(chan Change, 1),
	}
	h.subs[s.id] = s
	h.logger.Debug("live subscription opened", zap.Uint64("id", s.id), zap.Strings("collections", collections))
	return s
}

// Len reports the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[s.id]; !ok {
		return
	}
	delete(h.subs, s.id)
	close(s.ch)
	h.logger.Debug("live subscription closed", zap.Uint64("id", s.id))
}

type Subscription struct {
	id          uint64
	hub         *Hub
	collections []string
	ch          chan Change
	once        sync.Once
}

// Changes is closed once the subscription is closed.
func (s *Subscription) Changes() <-chan Change {
	return s.ch
}

// Close tears the subscription down. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}

func (s *Subscription) wants(collection string) bool {
	if len(s.collections) == 0 {
		return true
	}
	for _, c := range s.collections {
		if c == collection {
			return true
		}
	}
	return false
}
