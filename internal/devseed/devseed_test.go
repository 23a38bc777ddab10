package devseed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/navguard/internal/domain/auth"
	mockauth "github.com/target/navguard/internal/mocks/auth"
	"github.com/target/navguard/internal/ports"
)

func TestRun_DefaultUsers(t *testing.T) {
	ctx := context.Background()
	repo := mockauth.NewMemoryUserRepository(nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, Run(ctx, repo, nil, logger))
	// idempotent
	require.NoError(t, Run(ctx, repo, nil, logger))

	admin, err := repo.GetBySubject(ctx, "admin")
	require.NoError(t, err)
	roles, err := repo.ListRoleKeys(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{domainauth.RoleKeyAdmin}, roles)

	ry, err := repo.GetBySubject(ctx, "ry")
	require.NoError(t, err)
	roles, err = repo.ListRoleKeys(ctx, ry.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{domainauth.RoleKeyCommon}, roles)
}

func TestRun_Failures(t *testing.T) {
	repo := mockauth.NewMemoryUserRepository(nil)
	repo.Err = errors.New("db down")

	err := Run(context.Background(), repo, []ports.UpsertUserInput{{Subject: "a"}, {Subject: "b"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 seed errors")

	require.Error(t, Run(context.Background(), nil, nil, nil))
}
