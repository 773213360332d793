package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const (
	constraintUsername    = "users_username_key"
	constraintSingleAdmin = "users_single_admin_idx"
)

// uniqueConstraint returns the name of the violated unique constraint, or ""
// when err is not a unique violation.
func uniqueConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName
	}
	return ""
}
