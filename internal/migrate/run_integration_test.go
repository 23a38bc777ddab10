package migrate_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/navguard/internal/migrate"
	"github.com/target/navguard/internal/testutil"
)

func TestRunIsIdempotent(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		applied, err := migrate.Run(context.Background(), db)
		require.NoError(t, err)
		assert.Zero(t, applied)

		migrations, err := migrate.List()
		require.NoError(t, err)
		var recorded int
		require.NoError(t, db.QueryRow(`SELECT count(*) FROM schema_migrations`).Scan(&recorded))
		assert.Equal(t, len(migrations), recorded)
	})
}
