package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories react to
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Constraint names declared in migrations/
const (
	UsersEmailKey         = "users_email_lower_key"
	UsersProviderKey      = "users_provider_key"
	ApplicationsUniqueKey = "job_applications_job_id_user_id_key"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraintName
}

// IsForeignKeyViolation reports a reference to a missing parent row
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}
