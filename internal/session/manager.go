package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultIdleTTL is how long an untouched session context is kept.
const DefaultIdleTTL = 30 * time.Minute

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	IdleTTL time.Duration
	Now     func() time.Time
	Logger  *slog.Logger
}

// Manager owns the session contexts of all clients, keyed by token.
// Create one at startup and share it between the guard, the router and the HTTP handlers.
type Manager struct {
	mu       sync.Mutex
	contexts map[string]*Context
	idleTTL  time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewManager constructs a Manager.
func NewManager(opts ManagerOptions) *Manager {
	ttl := opts.IdleTTL
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		contexts: make(map[string]*Context),
		idleTTL:  ttl,
		now:      now,
		logger:   logger.With("component", "session_manager"),
	}
}

// Acquire returns the context for token, creating it if needed.
func (m *Manager) Acquire(token string) *Context {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contexts[token]
	if !ok {
		c = newContext(token, now)
		m.contexts[token] = c
	}
	c.touch(now)
	return c
}

// Lookup returns the context for token without creating one.
func (m *Manager) Lookup(token string) (*Context, bool) {
	if token == "" {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contexts[token]
	if ok {
		c.touch(m.now())
	}
	return c, ok
}

// Remove resets and forgets the context for token.
func (m *Manager) Remove(token string) {
	m.mu.Lock()
	c, ok := m.contexts[token]
	delete(m.contexts, token)
	m.mu.Unlock()
	if ok {
		c.Reset()
	}
}

// Len returns the number of live contexts.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.contexts)
}

// Sweep evicts contexts idle for longer than the TTL and returns how many were removed.
// Pinned contexts, such as those with a bootstrap in flight, are kept.
func (m *Manager) Sweep() int {
	now := m.now()
	m.mu.Lock()
	var evicted []*Context
	for token, c := range m.contexts {
		if c.pinned() || c.ReloginInProgress() || c.idleSince(now) < m.idleTTL {
			continue
		}
		delete(m.contexts, token)
		evicted = append(evicted, c)
	}
	m.mu.Unlock()
	for _, c := range evicted {
		c.Reset()
	}
	return len(evicted)
}

// Run sweeps idle contexts every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = m.idleTTL / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.DebugContext(ctx, "evicted idle session contexts", "count", n)
			}
		}
	}
}
