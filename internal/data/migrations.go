package data

import (
	"context"
	"database/sql"

	"github.com/target/navguard/internal/migrate"
)

// RunMigrations applies the sys_user and sys_menu schema and reports how many
// migrations were new.
func RunMigrations(ctx context.Context, db *sql.DB) (int, error) {
	return migrate.Run(ctx, db)
}
