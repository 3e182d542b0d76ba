package race

import (
	"context"

	"github.com/google/uuid"

	"github.com/lupinelegend/f1-radio-archive/internal/model"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/common"
)

type raceRepository struct {
	pool common.Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool common.Pool) Repository {
	return &raceRepository{pool: pool}
}

func (r *raceRepository) Upsert(ctx context.Context, race *model.Race) error {
	sql := `INSERT INTO races
		(id, name, location, season, race_date, session_key, meeting_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_key) DO UPDATE SET
			name = EXCLUDED.name,
			location = EXCLUDED.location,
			season = EXCLUDED.season,
			race_date = EXCLUDED.race_date,
			meeting_key = EXCLUDED.meeting_key
		RETURNING id`

	err := r.pool.QueryRow(ctx, sql,
		uuid.NewString(),
		race.Name,
		race.Location,
		race.Season,
		race.RaceDate,
		race.SessionKey,
		race.MeetingKey,
	).Scan(&race.ID)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to upsert race")
	}
	return nil
}

func (r *raceRepository) GetBySessionKey(ctx context.Context, sessionKey int) (*model.Race, error) {
	sql := `SELECT id, name, location, season, race_date, session_key, meeting_key, created_at
		FROM races WHERE session_key = $1`

	var race model.Race
	err := r.pool.QueryRow(ctx, sql, sessionKey).Scan(
		&race.ID,
		&race.Name,
		&race.Location,
		&race.Season,
		&race.RaceDate,
		&race.SessionKey,
		&race.MeetingKey,
		&race.CreatedAt,
	)
	if err != nil {
		return nil, common.HandlePostgreSQLError(err, "race not found")
	}
	return &race, nil
}
