// Package auth contains simple hand-written test doubles for auth and identity ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	domainauth "github.com/target/navguard/internal/domain/auth"
	"github.com/target/navguard/internal/domain/nav"
	"github.com/target/navguard/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider   = (*MockAuthProvider)(nil)
	_ ports.SessionStore   = (*MemorySessionStore)(nil)
	_ ports.RoleMapper     = (*StaticRoleMapper)(nil)
	_ ports.UserRepository = (*MemoryUserRepository)(nil)
	_ ports.MenuRepository = (*MemoryMenuRepository)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Principal, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Principal

	mu        sync.Mutex
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: defaultPrincipal(),
	}
}

func defaultPrincipal() domainauth.Principal {
	return domainauth.Principal{
		UserID:    "mock-user-1",
		FirstName: "Mock",
		LastName:  "User",
		Email:     "mock.user@example.com",
		Groups:    []string{"users"},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	authURL := cmp.Or(m.AuthURL, "https://mock-idp/auth")
	state := fmt.Sprintf("%s-%d", cmp.Or(m.StatePrefix, "state"), n)
	nonce := fmt.Sprintf("%s-%d", cmp.Or(m.NoncePrefix, "nonce"), n)
	return authURL, state, nonce, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Principal, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	// Return a copy of the default user with a fresh expiration time
	user := m.DefaultUser
	if user.UserID == "" {
		user = defaultPrincipal()
	}
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok || id == "" {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ErrNotFound is returned by mocks when an entity is not present.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}

// StaticRoleMapper maps groups by simple string membership rules.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	switch {
	case m.AdminGroup != "" && slices.Contains(groups, m.AdminGroup):
		return domainauth.RoleAdmin
	case m.UserGroup != "" && slices.Contains(groups, m.UserGroup):
		return domainauth.RoleUser
	default:
		return domainauth.RoleGuest
	}
}

// MemoryUserRepository keeps users, role keys and permissions in memory.
type MemoryUserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*domainauth.User
	roles  map[int64][]string
	perms  map[string][]string // by role key
	// Err, when non-nil, is returned by every method.
	Err error
}

// NewMemoryUserRepository creates an empty repository. perms maps role keys to permissions.
func NewMemoryUserRepository(perms map[string][]string) *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]*domainauth.User),
		roles: make(map[int64][]string),
		perms: perms,
	}
}

func (m *MemoryUserRepository) GetBySubject(_ context.Context, subject string) (*domainauth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[subject]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryUserRepository) ListRoleKeys(_ context.Context, userID int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return slices.Clone(m.roles[userID]), nil
}

func (m *MemoryUserRepository) ListPermissions(_ context.Context, userID int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []string
	for _, key := range m.roles[userID] {
		for _, p := range m.perms[key] {
			if !slices.Contains(out, p) {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (m *MemoryUserRepository) Upsert(_ context.Context, in ports.UpsertUserInput) (*domainauth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[in.Subject]
	if !ok {
		m.nextID++
		u = &domainauth.User{ID: m.nextID, Subject: in.Subject}
		m.users[in.Subject] = u
	}
	u.UserName = in.UserName
	u.NickName = in.NickName
	u.Email = in.Email
	if in.RoleKey != "" && !slices.Contains(m.roles[u.ID], in.RoleKey) {
		m.roles[u.ID] = append(m.roles[u.ID], in.RoleKey)
	}
	cp := *u
	return &cp, nil
}

// MemoryMenuRepository serves a fixed menu list. Role menus are keyed by user ID.
type MemoryMenuRepository struct {
	All    []nav.Menu
	ByUser map[int64][]nav.Menu
	Err    error
}

func (m *MemoryMenuRepository) ListAll(context.Context) ([]nav.Menu, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return slices.Clone(m.All), nil
}

func (m *MemoryMenuRepository) ListForUser(_ context.Context, userID int64) ([]nav.Menu, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return slices.Clone(m.ByUser[userID]), nil
}
