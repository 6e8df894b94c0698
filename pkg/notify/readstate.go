package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"resham-cricketer/pkg/models"
)

// ErrNoKey is returned by KV.Get for an absent key.
var ErrNoKey = errors.New("key not found")

// KV is a string key-value store.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNoKey
	}
	return v, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoKey
	}
	return v, err
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

// ReadState keeps one watermark per user under notif_read_<uid>: the epoch
// millisecond at which the user last marked everything read.
type ReadState struct {
	kv KV
	mu sync.Mutex
}

func NewReadState(kv KV) *ReadState {
	return &ReadState{kv: kv}
}

func readKey(uid string) string {
	return "notif_read_" + uid
}

// LastRead returns the watermark, or ok=false if the user never marked
// notifications read.
func (r *ReadState) LastRead(ctx context.Context, uid string) (t time.Time, ok bool, err error) {
	raw, err := r.kv.Get(ctx, readKey(uid))
	if errors.Is(err, ErrNoKey) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read watermark %s: %w", uid, err)
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// an unparsable watermark reads as never acknowledged
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

// MarkAllRead moves the watermark to now. It never moves it backward, so
// repeated or out-of-order calls leave the later value in place.
func (r *ReadState) MarkAllRead(ctx context.Context, uid string, now time.Time) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok, err := r.LastRead(ctx, uid)
	if err != nil {
		return time.Time{}, err
	}
	mark := time.UnixMilli(now.UnixMilli())
	if ok && !mark.After(prev) {
		return prev, nil
	}
	if err := r.kv.Set(ctx, readKey(uid), strconv.FormatInt(mark.UnixMilli(), 10)); err != nil {
		return time.Time{}, fmt.Errorf("write watermark %s: %w", uid, err)
	}
	return mark, nil
}

// IsUnread reports whether n was created after the watermark. With no
// watermark everything is unread; without a timestamp n is read.
func IsUnread(n models.Notification, lastRead time.Time, hasWatermark bool) bool {
	if !hasWatermark {
		return true
	}
	if n.CreatedAt == nil {
		return false
	}
	return n.CreatedAt.After(lastRead)
}

func UnreadCount(list []models.Notification, lastRead time.Time, hasWatermark bool) int {
	count := 0
	for _, n := range list {
		if IsUnread(n, lastRead, hasWatermark) {
			count++
		}
	}
	return count
}
