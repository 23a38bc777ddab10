// Package devseed creates development users so a fresh database can sign in
// through dev auth and see a populated route table.
package devseed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainauth "github.com/target/navguard/internal/domain/auth"
	"github.com/target/navguard/internal/ports"
)

// DefaultUsers are the development users. The admin subject matches the
// default DEV_AUTH_USER_ID.
func DefaultUsers() []ports.UpsertUserInput {
	return []ports.UpsertUserInput{
		{Subject: "admin", UserName: "admin", NickName: "Administrator", Email: "admin@example.com", RoleKey: domainauth.RoleKeyAdmin},
		{Subject: "ry", UserName: "ry", NickName: "Common user", Email: "ry@example.com", RoleKey: domainauth.RoleKeyCommon},
	}
}

// Run upserts users and reports how many failed. A nil users slice seeds DefaultUsers.
func Run(ctx context.Context, repo ports.UserRepository, users []ports.UpsertUserInput, logger *slog.Logger) error {
	if repo == nil {
		return errors.New("seed users: repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if users == nil {
		users = DefaultUsers()
	}

	failures := 0
	for _, in := range users {
		u, err := repo.Upsert(ctx, in)
		if err != nil {
			logger.ErrorContext(ctx, "failed to seed user", "subject", in.Subject, "error", err)
			failures++
			continue
		}
		logger.InfoContext(ctx, "seeded user", "subject", u.Subject, "user_id", u.ID, "role", in.RoleKey)
	}

	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}
