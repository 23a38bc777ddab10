package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// reKeyField extracts the columns of a unique violation: "Key (field)=(value) already exists.".
	reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)
	// reTable extracts the table named by a foreign key violation detail.
	reTable = regexp.MustCompile(`(?:referenced from|not present in) table "?([^"]+)"?`)
)

// tableNames maps menu and user tables to the names shown to users.
var tableNames = map[string]string{
	"sys_user":      "User",
	"sys_role":      "Role",
	"sys_menu":      "Menu",
	"sys_user_role": "User role",
	"sys_role_menu": "Role menu",
}

// MapDBError maps database errors to AppError instances.
//   - context deadline and cancellation map to Timeout and Canceled
//   - pgx.ErrNoRows maps to NotFound
//   - unique, foreign key, check and not-null violations map to Conflict, ForeignKey and Validation
//
// Unrecognized errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "Request timed out. Please try again.")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "Request was canceled.")
	case errors.Is(err, pgx.ErrNoRows):
		return Wrap(err, ErrCodeNotFound, "Resource not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}
	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		field := pgErr.ColumnName
		if field == "" {
			if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
				field = m[1]
			}
		}
		return &AppError{
			Code:    ErrCodeConflict,
			Message: "This value already exists. Please choose a different one.",
			Field:   field,
			Cause:   pgErr,
		}
	case pgerrcode.ForeignKeyViolation:
		table := pgErr.TableName
		if m := reTable.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			table = m[1]
		}
		msg := "Cannot complete operation because this item is in use."
		if table != "" {
			msg = "Cannot complete operation because this item is linked to a " + tableDisplayName(table) + "."
		}
		return &AppError{Code: ErrCodeForeignKey, Message: msg, Cause: pgErr}
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		return &AppError{
			Code:    ErrCodeValidation,
			Message: "Invalid data. Please check your input.",
			Field:   pgErr.ColumnName,
			Cause:   pgErr,
		}
	default:
		return &AppError{
			Code:    ErrCodeInternal,
			Message: "A database error occurred. Please try again.",
			Cause:   pgErr,
		}
	}
}

func tableDisplayName(table string) string {
	table = strings.ToLower(strings.TrimSpace(table))
	if name, ok := tableNames[table]; ok {
		return name
	}
	return strings.ReplaceAll(table, "_", " ")
}
