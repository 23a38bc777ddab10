package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/target/navguard/internal/data/pgxutil"
	domainauth "github.com/target/navguard/internal/domain/auth"
	apperrors "github.com/target/navguard/internal/errors"
	"github.com/target/navguard/internal/ports"
)

// UserRepo provides database operations for application users and their grants.
type UserRepo struct {
	DB *sql.DB
}

var _ ports.UserRepository = (*UserRepo)(nil)

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

type userRow struct {
	ID       int64  `db:"user_id"`
	Subject  string `db:"subject"`
	UserName string `db:"user_name"`
	NickName string `db:"nick_name"`
	Email    string `db:"email"`
	Avatar   string `db:"avatar"`
	DeptName string `db:"dept_name"`
}

func (r userRow) toDomain() *domainauth.User {
	return &domainauth.User{
		ID:       r.ID,
		Subject:  r.Subject,
		UserName: r.UserName,
		NickName: r.NickName,
		Email:    r.Email,
		Avatar:   r.Avatar,
		DeptName: r.DeptName,
	}
}

const userColumns = `user_id, subject, user_name, nick_name, email, avatar, dept_name`

// GetBySubject retrieves a user by IdP subject.
func (r *UserRepo) GetBySubject(ctx context.Context, subject string) (*domainauth.User, error) {
	var out userRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+userColumns+` FROM sys_user WHERE subject = $1`, subject)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[userRow])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get user by subject: %w", apperrors.MapDBError(err))
	}
	return out.toDomain(), nil
}

// ListRoleKeys returns the role keys granted to a user ordered by role sort.
func (r *UserRepo) ListRoleKeys(ctx context.Context, userID int64) ([]string, error) {
	return r.listStrings(ctx, "list role keys", `
		SELECT r.role_key
		FROM sys_role r
		JOIN sys_user_role ur ON ur.role_id = r.role_id
		WHERE ur.user_id = $1
		ORDER BY r.role_sort, r.role_key`, userID)
}

// ListPermissions returns the distinct permissions of the active menus granted
// to a user through any of its roles.
func (r *UserRepo) ListPermissions(ctx context.Context, userID int64) ([]string, error) {
	return r.listStrings(ctx, "list permissions", `
		SELECT DISTINCT m.perms
		FROM sys_menu m
		JOIN sys_role_menu rm ON rm.menu_id = m.menu_id
		JOIN sys_user_role ur ON ur.role_id = rm.role_id
		WHERE ur.user_id = $1 AND m.status AND m.perms <> ''
		ORDER BY m.perms`, userID)
}

func (r *UserRepo) listStrings(ctx context.Context, op, query string, args ...any) ([]string, error) {
	var out []string
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, apperrors.MapDBError(err))
	}
	return out, nil
}

// Upsert creates or refreshes the user identified by in.Subject and grants
// in.RoleKey when set. Existing grants are kept.
func (r *UserRepo) Upsert(ctx context.Context, in ports.UpsertUserInput) (*domainauth.User, error) {
	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		return nil, ErrSubjectRequired
	}
	userName := strings.TrimSpace(in.UserName)
	if userName == "" {
		userName = subject
	}

	var out userRow
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			INSERT INTO sys_user (subject, user_name, nick_name, email)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (subject) DO UPDATE SET
				user_name = EXCLUDED.user_name,
				nick_name = EXCLUDED.nick_name,
				email = EXCLUDED.email,
				updated_at = now()
			RETURNING `+userColumns,
			subject, userName, in.NickName, in.Email,
		)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[userRow])
		if err != nil {
			return err
		}

		if in.RoleKey == "" {
			return nil
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO sys_user_role (user_id, role_id)
			SELECT $1, role_id FROM sys_role WHERE role_key = $2
			ON CONFLICT DO NOTHING`, out.ID, in.RoleKey)
		return err
	}})
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", apperrors.MapDBError(err))
	}
	return out.toDomain(), nil
}
