// Package mocks provides mock implementations of the navigation and identity ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	identities := mocks.NewMockIdentityStore(ctrl)
//	identities.EXPECT().FetchIdentity(gomock.Any(), "tok").Return(identity, nil)
package mocks

// Navigation collaborators used by the guard: IdentityStore, RouteGenerator, MenuRepository.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=nav_mock.go github.com/target/navguard/internal/ports IdentityStore,RouteGenerator,MenuRepository

// Persistence collaborators used by identity loading and login: UserRepository, SessionStore.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_repository_mock.go github.com/target/navguard/internal/ports UserRepository,SessionStore
