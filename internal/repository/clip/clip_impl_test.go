package clip

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lupinelegend/f1-radio-archive/internal/errors"
	"github.com/lupinelegend/f1-radio-archive/internal/model"
)

var clipRowColumns = []string{
	"id", "title", "audio_url", "driver_id", "race_id", "recorded_at", "duration", "transcript", "is_premium", "created_at",
}

func strPtr(s string) *string { return &s }

func TestClipRepository_FindCandidates(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		query   model.ClipQuery
		setup   func(mock pgxmock.PgxPoolIface)
		wantIDs []string
		wantErr bool
	}{
		{
			name:  "missing transcripts newest first",
			query: model.ClipQuery{Transcript: model.TranscriptMissing, NewestFirst: true, Limit: 2},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT (.+) FROM clips c WHERE \\(c.transcript IS NULL OR c.transcript = ''\\) ORDER BY c.created_at DESC").
					WithArgs(2).
					WillReturnRows(pgxmock.NewRows(clipRowColumns).
						AddRow("clip-2", "Race - Driver 1", "https://a/2.mp3", "driver-1", strPtr("race-1"), now, 0, nil, false, now).
						AddRow("clip-1", "Race - Driver 1", "https://a/1.mp3", "driver-1", nil, now, 0, strPtr(""), false, now.Add(-time.Minute)))
			},
			wantIDs: []string{"clip-2", "clip-1"},
		},
		{
			name:  "query error",
			query: model.ClipQuery{},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT (.+) FROM clips").WillReturnError(assert.AnError)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setup(mock)

			clips, err := NewRepository(mock).FindCandidates(context.Background(), tt.query)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				var ids []string
				for _, c := range clips {
					ids = append(ids, c.ID)
					assert.False(t, c.HasTranscript())
				}
				assert.Equal(t, tt.wantIDs, ids)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestClipRepository_Count(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM clips c WHERE \\(c.transcript IS NOT NULL").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(42))

	count, err := NewRepository(mock).Count(context.Background(), model.ClipQuery{Transcript: model.TranscriptPresent})
	require.NoError(t, err)
	assert.Equal(t, 42, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClipRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM clips c WHERE c.id = \\$1").
		WithArgs("clip-1").
		WillReturnRows(pgxmock.NewRows(clipRowColumns).
			AddRow("clip-1", "Race - Driver 16", "https://a/1.mp3", "driver-16", nil, now, 0, strPtr("box box"), true, now))
	mock.ExpectQuery("SELECT (.+) FROM clips c WHERE c.id = \\$1").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	repo := NewRepository(mock)

	c, err := repo.GetByID(context.Background(), "clip-1")
	require.NoError(t, err)
	assert.True(t, c.HasTranscript())
	assert.Equal(t, "box box", *c.Transcript)
	assert.True(t, c.IsPremium)

	_, err = repo.GetByID(context.Background(), "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClipRepository_InsertIfAbsent(t *testing.T) {
	recorded := time.Date(2024, 3, 2, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name         string
		setup        func(mock pgxmock.PgxPoolIface)
		wantInserted bool
		wantErr      bool
	}{
		{
			name: "new audio url",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("INSERT INTO clips (.+) WHERE NOT EXISTS").
					WithArgs(pgxmock.AnyArg(), "Race - Driver 1", "https://a/1.mp3", "driver-1", strPtr("race-1"), recorded, 0, strPtr("")).
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("clip-1", time.Now()))
			},
			wantInserted: true,
		},
		{
			name: "existing audio url keeps first write",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("INSERT INTO clips (.+) WHERE NOT EXISTS").
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(pgx.ErrNoRows)
			},
			wantInserted: false,
		},
		{
			name: "database error",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("INSERT INTO clips").
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(assert.AnError)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setup(mock)

			c := &model.Clip{
				Title:      "Race - Driver 1",
				AudioURL:   "https://a/1.mp3",
				DriverID:   "driver-1",
				RaceID:     strPtr("race-1"),
				RecordedAt: recorded,
				Transcript: strPtr(""),
			}
			inserted, err := NewRepository(mock).InsertIfAbsent(context.Background(), c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantInserted, inserted)
				if tt.wantInserted {
					assert.Equal(t, "clip-1", c.ID)
				}
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestClipRepository_ExistsByAudioURL(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("https://a/1.mp3").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := NewRepository(mock).ExistsByAudioURL(context.Background(), "https://a/1.mp3")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClipRepository_UpdateTranscript(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE clips SET transcript").
		WithArgs("clip-1", "Box this lap").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE clips SET transcript").
		WithArgs("gone", "text").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewRepository(mock)
	require.NoError(t, repo.UpdateTranscript(context.Background(), "clip-1", "Box this lap"))

	err = repo.UpdateTranscript(context.Background(), "gone", "text")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClipRepository_DeleteBatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ids := []string{"clip-1", "clip-2"}
	mock.ExpectExec("DELETE FROM clips WHERE id = ANY").
		WithArgs(ids).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	repo := NewRepository(mock)
	deleted, err := repo.DeleteBatch(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	// empty batch never reaches the database
	deleted, err = repo.DeleteBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	require.NoError(t, mock.ExpectationsWereMet())
}
