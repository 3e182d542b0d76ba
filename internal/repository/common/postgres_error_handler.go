package common

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/lupinelegend/f1-radio-archive/internal/errors"
)

// HandlePostgreSQLError converts PostgreSQL-specific errors to appropriate AppError codes
func HandlePostgreSQLError(err error, operation string) *apperrors.AppError {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.Wrap(err, apperrors.CodeNotFound, operation)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return apperrors.Wrap(err, apperrors.CodeInternal, operation)
	}

	switch pgErr.Code {
	case "23505": // UNIQUE_VIOLATION
		return handleUniqueViolation(pgErr)

	case "23503": // FOREIGN_KEY_VIOLATION
		return handleForeignKeyViolation(pgErr)

	case "23502": // NOT_NULL_VIOLATION
		return apperrors.Wrap(err, apperrors.CodeInvalidArg, "required field is missing")

	case "23514": // CHECK_VIOLATION
		return apperrors.Wrap(err, apperrors.CodeInvalidArg, "data violates check constraint")

	case "22P02": // INVALID_TEXT_REPRESENTATION, e.g. malformed uuid
		return apperrors.Wrap(err, apperrors.CodeInvalidArg, "invalid identifier format")

	case "42P01": // UNDEFINED_TABLE
		return apperrors.Wrap(err, apperrors.CodeInternal, "database schema error: table not found (run 'f1radio db migrate up')")

	case "42703": // UNDEFINED_COLUMN
		return apperrors.Wrap(err, apperrors.CodeInternal, "database schema error: column not found")

	case "08000", "08003", "08006": // CONNECTION_EXCEPTION variants
		return apperrors.Wrap(err, apperrors.CodeInternal, "database connection error")

	case "53300": // TOO_MANY_CONNECTIONS
		return apperrors.Wrap(err, apperrors.CodeInternal, "database connection limit reached")

	default:
		return apperrors.Wrap(err, apperrors.CodeInternal, operation+" (PostgreSQL code: "+pgErr.Code+")")
	}
}

func handleUniqueViolation(pgErr *pgconn.PgError) *apperrors.AppError {
	constraintName := pgErr.ConstraintName

	switch {
	case strings.HasPrefix(constraintName, "clip_tags"):
		return apperrors.Wrap(pgErr, apperrors.CodeConflict, "clip already has this category")
	case strings.HasPrefix(constraintName, "drivers"):
		return apperrors.Wrap(pgErr, apperrors.CodeConflict, "driver with this number already exists")
	case strings.HasPrefix(constraintName, "races"):
		return apperrors.Wrap(pgErr, apperrors.CodeConflict, "race with this session key already exists")
	case strings.HasPrefix(constraintName, "categories"):
		return apperrors.Wrap(pgErr, apperrors.CodeConflict, "category with this name already exists")
	default:
		return apperrors.Wrap(pgErr, apperrors.CodeConflict, "resource already exists")
	}
}

func handleForeignKeyViolation(pgErr *pgconn.PgError) *apperrors.AppError {
	constraintName := pgErr.ConstraintName

	switch {
	case strings.Contains(constraintName, "driver_id"):
		return apperrors.Wrap(pgErr, apperrors.CodeDependency, "referenced driver does not exist")
	case strings.Contains(constraintName, "race_id"):
		return apperrors.Wrap(pgErr, apperrors.CodeDependency, "referenced race does not exist")
	case strings.Contains(constraintName, "clip_id"):
		return apperrors.Wrap(pgErr, apperrors.CodeDependency, "referenced clip does not exist")
	case strings.Contains(constraintName, "category_id"):
		return apperrors.Wrap(pgErr, apperrors.CodeDependency, "referenced category does not exist")
	default:
		return apperrors.Wrap(pgErr, apperrors.CodeDependency, "referenced resource does not exist")
	}
}
