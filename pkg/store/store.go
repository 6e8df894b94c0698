// Package store is the typed gateway to the users, videos and notifications
// collections. Each call is a single atomic write except
// SyncUploaderIdentity, which commits a batch in one transaction. Every
// successful write is announced on the live hub.
package store

import (
	"errors"
	"time"

	"github.com/jinzhu/gorm"

	"resham-cricketer/pkg/live"
)

var ErrNotFound = errors.New("document not found")

type Store struct {
	db  *gorm.DB
	hub *live.Hub
	now func() time.Time
}

type Option func(*Store)

// WithClock overrides the server timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(db *gorm.DB, hub *live.Hub, opts ...Option) *Store {
	s := &Store{
		db:  db,
		hub: hub,
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) stamp(t **time.Time) {
	if *t == nil {
		now := s.now()
		*t = &now
	}
}

func (s *Store) publish(collection, id string, op live.Op) {
	if s.hub != nil {
		s.hub.Publish(live.Change{Collection: collection, DocID: id, Op: op})
	}
}

func notFound(err error) bool {
	return gorm.IsRecordNotFoundError(err)
}
