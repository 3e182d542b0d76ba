package common

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/lupinelegend/f1-radio-archive/internal/errors"
)

func TestHandlePostgreSQLError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "clip tag duplicate",
			err:         &pgconn.PgError{Code: "23505", ConstraintName: "clip_tags_pkey"},
			wantCode:    apperrors.CodeConflict,
			wantMessage: "clip already has this category",
		},
		{
			name:        "category name duplicate",
			err:         &pgconn.PgError{Code: "23505", ConstraintName: "categories_name_key"},
			wantCode:    apperrors.CodeConflict,
			wantMessage: "category with this name already exists",
		},
		{
			name:        "unknown unique constraint",
			err:         &pgconn.PgError{Code: "23505", ConstraintName: "something_else"},
			wantCode:    apperrors.CodeConflict,
			wantMessage: "resource already exists",
		},
		{
			name:        "missing driver",
			err:         &pgconn.PgError{Code: "23503", ConstraintName: "clips_driver_id_fkey"},
			wantCode:    apperrors.CodeDependency,
			wantMessage: "referenced driver does not exist",
		},
		{
			name:        "missing category",
			err:         &pgconn.PgError{Code: "23503", ConstraintName: "clip_tags_category_id_fkey"},
			wantCode:    apperrors.CodeDependency,
			wantMessage: "referenced category does not exist",
		},
		{
			name:        "not null",
			err:         &pgconn.PgError{Code: "23502"},
			wantCode:    apperrors.CodeInvalidArg,
			wantMessage: "required field is missing",
		},
		{
			name:        "bad uuid",
			err:         &pgconn.PgError{Code: "22P02"},
			wantCode:    apperrors.CodeInvalidArg,
			wantMessage: "invalid identifier format",
		},
		{
			name:        "missing table",
			err:         &pgconn.PgError{Code: "42P01"},
			wantCode:    apperrors.CodeInternal,
			wantMessage: "database schema error: table not found (run 'f1radio db migrate up')",
		},
		{
			name:        "unknown postgres code",
			err:         &pgconn.PgError{Code: "XX000"},
			wantCode:    apperrors.CodeInternal,
			wantMessage: "failed to list clips (PostgreSQL code: XX000)",
		},
		{
			name:        "no rows",
			err:         fmt.Errorf("scan: %w", pgx.ErrNoRows),
			wantCode:    apperrors.CodeNotFound,
			wantMessage: "failed to list clips",
		},
		{
			name:        "plain error",
			err:         assert.AnError,
			wantCode:    apperrors.CodeInternal,
			wantMessage: "failed to list clips",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := HandlePostgreSQLError(tt.err, "failed to list clips")
			if assert.NotNil(t, appErr) {
				assert.Equal(t, tt.wantCode, appErr.Code)
				assert.Equal(t, tt.wantMessage, appErr.Message)
				assert.ErrorIs(t, appErr, tt.err)
			}
		})
	}
}

func TestHandlePostgreSQLError_Nil(t *testing.T) {
	assert.Nil(t, HandlePostgreSQLError(nil, "noop"))
}
