// Package redis provides Redis-backed adapters for navguard.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/target/navguard/internal/domain/auth"
	"github.com/target/navguard/internal/ports"
)

// DefaultKeyPrefix namespaces session keys.
const DefaultKeyPrefix = "navguard:session:"

// ErrNotFound is returned when a session is missing or already expired.
var ErrNotFound = errors.New("session not found")

// SessionStore is a Redis-based session store. Keys expire with the session.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	// fallbackTTL applies to sessions saved without an expiry.
	fallbackTTL time.Duration
	now         func() time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStoreOptions configures a SessionStore.
type SessionStoreOptions struct {
	Prefix      string
	FallbackTTL time.Duration
}

// NewSessionStore creates a Redis session store.
func NewSessionStore(client redis.UniversalClient, opts SessionStoreOptions) *SessionStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	ttl := opts.FallbackTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionStore{client: client, prefix: prefix, fallbackTTL: ttl, now: time.Now}
}

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	if sess.ExpiresAt.IsZero() {
		sess.ExpiresAt = s.now().Add(s.fallbackTTL)
	}
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("session is expired")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+sess.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domainauth.Session{}, ErrNotFound
	}
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}

	// Key expiry has millisecond granularity; the stored deadline is authoritative.
	if s.now().After(sess.ExpiresAt) {
		if err := s.Delete(ctx, id); err != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", err)
		}
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+id).Err()
}

// scanBatch is the COUNT hint passed to SCAN.
const scanBatch = 200

// Each calls fn with every stored session. Keys that expire during the scan
// are skipped and fn may be called concurrently on cluster deployments.
func (s *SessionStore) Each(ctx context.Context, fn func(domainauth.Session) error) error {
	return s.scan(ctx, func(ctx context.Context, c redis.Cmdable, key string) error {
		data, err := c.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("redis get: %w", err)
		}
		var sess domainauth.Session
		if err := json.Unmarshal(data, &sess); err != nil {
			return fmt.Errorf("unmarshal session %s: %w", key, err)
		}
		return fn(sess)
	})
}

// Purge deletes every stored session and returns how many keys were removed.
func (s *SessionStore) Purge(ctx context.Context) (int, error) {
	var (
		mu      sync.Mutex
		removed int
	)
	err := s.scan(ctx, func(ctx context.Context, c redis.Cmdable, key string) error {
		n, err := c.Del(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
		mu.Lock()
		removed += int(n)
		mu.Unlock()
		return nil
	})
	return removed, err
}

func (s *SessionStore) scan(ctx context.Context, fn func(context.Context, redis.Cmdable, string) error) error {
	scanNode := func(ctx context.Context, c redis.Cmdable) error {
		iter := c.Scan(ctx, 0, s.prefix+"*", scanBatch).Iterator()
		for iter.Next(ctx) {
			if err := fn(ctx, c, iter.Val()); err != nil {
				return err
			}
		}
		return iter.Err()
	}

	if cluster, ok := s.client.(*redis.ClusterClient); ok {
		return cluster.ForEachMaster(ctx, func(ctx context.Context, c *redis.Client) error {
			return scanNode(ctx, c)
		})
	}
	return scanNode(ctx, s.client)
}
