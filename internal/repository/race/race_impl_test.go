package race

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lupinelegend/f1-radio-archive/internal/errors"
	"github.com/lupinelegend/f1-radio-archive/internal/model"
)

func TestRaceRepository_Upsert(t *testing.T) {
	date := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		setup    func(mock pgxmock.PgxPoolIface)
		wantID   string
		wantCode string
	}{
		{
			name: "upsert by session key",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("INSERT INTO races (.+) ON CONFLICT \\(session_key\\) DO UPDATE").
					WithArgs(pgxmock.AnyArg(), "Sakhir - Race", "Sakhir", 2024, date, 9472, 1229).
					WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("race-1"))
			},
			wantID: "race-1",
		},
		{
			name: "not null violation",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("INSERT INTO races").
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(&pgconn.PgError{Code: "23502"})
			},
			wantCode: apperrors.CodeInvalidArg,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setup(mock)

			r := &model.Race{
				Name:       "Sakhir - Race",
				Location:   "Sakhir",
				Season:     2024,
				RaceDate:   date,
				SessionKey: 9472,
				MeetingKey: 1229,
			}
			err = NewRepository(mock).Upsert(context.Background(), r)

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, tt.wantCode))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, r.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRaceRepository_GetBySessionKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM races WHERE session_key").
		WithArgs(9472).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "location", "season", "race_date", "session_key", "meeting_key", "created_at",
		}).AddRow("race-1", "Sakhir - Race", "Sakhir", 2024, now, 9472, 1229, now))
	mock.ExpectQuery("SELECT (.+) FROM races WHERE session_key").
		WithArgs(1).
		WillReturnError(pgx.ErrNoRows)

	repo := NewRepository(mock)

	r, err := repo.GetBySessionKey(context.Background(), 9472)
	require.NoError(t, err)
	assert.Equal(t, "race-1", r.ID)
	assert.Equal(t, 1229, r.MeetingKey)

	_, err = repo.GetBySessionKey(context.Background(), 1)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	require.NoError(t, mock.ExpectationsWereMet())
}
