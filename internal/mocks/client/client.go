// Package client contains hand-written test doubles for the per-client navigation
// surfaces: token storage, progress, titles and notices.
package client

import (
	"context"
	"sync"

	"github.com/target/navguard/internal/domain/nav"
	"github.com/target/navguard/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.TokenStore = (*MemoryTokenStore)(nil)
	_ ports.Progress   = (*RecordingProgress)(nil)
	_ ports.TitleSink  = (*RecordingTitles)(nil)
	_ ports.Notifier   = (*RecordingNotifier)(nil)
)

// MemoryTokenStore keeps the token in memory.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
	// SetErr, when non-nil, is returned by Set.
	SetErr error
}

// NewMemoryTokenStore returns a store holding token ("" for none).
func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (s *MemoryTokenStore) Get(context.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

func (s *MemoryTokenStore) Set(_ context.Context, token string) error {
	if s.SetErr != nil {
		return s.SetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// Token returns the stored token.
func (s *MemoryTokenStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// RecordingProgress counts Start and Done calls.
type RecordingProgress struct {
	mu      sync.Mutex
	Starts  []nav.RouteRequest
	DoneCnt int
}

func (p *RecordingProgress) Start(_ context.Context, to nav.RouteRequest) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Starts = append(p.Starts, to)
}

func (p *RecordingProgress) Done(context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.DoneCnt++
}

// Dones returns the number of Done calls.
func (p *RecordingProgress) Dones() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.DoneCnt
}

// RecordingTitles records titles in order.
type RecordingTitles struct {
	mu     sync.Mutex
	Titles []string
}

func (t *RecordingTitles) SetTitle(_ context.Context, title string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Titles = append(t.Titles, title)
}

// Last returns the most recent title, or "".
func (t *RecordingTitles) Last() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.Titles) == 0 {
		return ""
	}
	return t.Titles[len(t.Titles)-1]
}

// RecordingNotifier records notices in order.
type RecordingNotifier struct {
	mu      sync.Mutex
	Notices []nav.Notice
}

func (n *RecordingNotifier) Notify(_ context.Context, notice nav.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Notices = append(n.Notices, notice)
}

// All returns a copy of the recorded notices.
func (n *RecordingNotifier) All() []nav.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]nav.Notice(nil), n.Notices...)
}

// Surfaces groups one of each double for a test.
type Surfaces struct {
	Tokens   *MemoryTokenStore
	Progress *RecordingProgress
	Titles   *RecordingTitles
	Notices  *RecordingNotifier
}

// NewSurfaces returns fresh doubles with the given initial token.
func NewSurfaces(token string) *Surfaces {
	return &Surfaces{
		Tokens:   NewMemoryTokenStore(token),
		Progress: &RecordingProgress{},
		Titles:   &RecordingTitles{},
		Notices:  &RecordingNotifier{},
	}
}
