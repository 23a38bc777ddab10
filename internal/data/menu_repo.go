package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/target/navguard/internal/data/pgxutil"
	"github.com/target/navguard/internal/domain/nav"
	apperrors "github.com/target/navguard/internal/errors"
	"github.com/target/navguard/internal/ports"
)

// MenuRepo loads the menu rows routes are generated from. Only active
// directory and page rows are returned; buttons carry permissions only.
type MenuRepo struct {
	DB *sql.DB
}

var _ ports.MenuRepository = (*MenuRepo)(nil)

// NewMenuRepo creates a new MenuRepo.
func NewMenuRepo(db *sql.DB) *MenuRepo {
	return &MenuRepo{DB: db}
}

type menuRow struct {
	ID        int64  `db:"menu_id"`
	ParentID  int64  `db:"parent_id"`
	Name      string `db:"menu_name"`
	OrderNum  int    `db:"order_num"`
	Path      string `db:"path"`
	Component string `db:"component"`
	Query     string `db:"query"`
	RouteName string `db:"route_name"`
	External  bool   `db:"is_external"`
	Cache     bool   `db:"is_cache"`
	Type      string `db:"menu_type"`
	Visible   bool   `db:"visible"`
	Perms     string `db:"perms"`
	Icon      string `db:"icon"`
}

func (r menuRow) toDomain() nav.Menu {
	return nav.Menu{
		ID:        r.ID,
		ParentID:  r.ParentID,
		Name:      r.Name,
		OrderNum:  r.OrderNum,
		Path:      r.Path,
		Component: r.Component,
		Query:     r.Query,
		RouteName: r.RouteName,
		External:  r.External,
		Cache:     r.Cache,
		Type:      nav.MenuType(r.Type),
		Visible:   r.Visible,
		Perms:     r.Perms,
		Icon:      r.Icon,
	}
}

const menuSelect = `
	SELECT DISTINCT m.menu_id, m.parent_id, m.menu_name, m.order_num, m.path, m.component,
		m.query, m.route_name, m.is_external, m.is_cache, m.menu_type, m.visible, m.perms, m.icon
	FROM sys_menu m`

const menuFilter = ` m.menu_type IN ('M', 'C') AND m.status
	ORDER BY m.parent_id, m.order_num, m.menu_id`

// ListAll returns every active menu.
func (r *MenuRepo) ListAll(ctx context.Context) ([]nav.Menu, error) {
	return r.list(ctx, menuSelect+` WHERE`+menuFilter)
}

// ListForUser returns the active menus granted to a user through its roles.
func (r *MenuRepo) ListForUser(ctx context.Context, userID int64) ([]nav.Menu, error) {
	return r.list(ctx, menuSelect+`
	JOIN sys_role_menu rm ON rm.menu_id = m.menu_id
	JOIN sys_user_role ur ON ur.role_id = rm.role_id
	WHERE ur.user_id = $1 AND`+menuFilter, userID)
}

func (r *MenuRepo) list(ctx context.Context, query string, args ...any) ([]nav.Menu, error) {
	var rows []menuRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		res, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		rows, err = pgx.CollectRows(res, pgx.RowToStructByName[menuRow])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list menus: %w", apperrors.MapDBError(err))
	}

	out := make([]nav.Menu, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}
