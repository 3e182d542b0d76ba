package driver

import (
	"context"

	"github.com/google/uuid"

	"github.com/lupinelegend/f1-radio-archive/internal/model"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/common"
)

type driverRepository struct {
	pool common.Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool common.Pool) Repository {
	return &driverRepository{pool: pool}
}

func (r *driverRepository) Upsert(ctx context.Context, d *model.Driver) error {
	sql := `INSERT INTO drivers
		(id, number, name, team, team_color, country_code, headshot_url, name_acronym)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (number) DO UPDATE SET
			name = EXCLUDED.name,
			team = EXCLUDED.team,
			team_color = EXCLUDED.team_color,
			country_code = EXCLUDED.country_code,
			headshot_url = EXCLUDED.headshot_url,
			name_acronym = EXCLUDED.name_acronym
		RETURNING id`

	err := r.pool.QueryRow(ctx, sql,
		uuid.NewString(),
		d.Number,
		d.Name,
		d.Team,
		d.TeamColor,
		d.CountryCode,
		d.HeadshotURL,
		d.NameAcronym,
	).Scan(&d.ID)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to upsert driver")
	}
	return nil
}

func (r *driverRepository) GetByNumber(ctx context.Context, number int) (*model.Driver, error) {
	sql := `SELECT id, number, name, team, team_color, country_code, headshot_url, name_acronym, created_at
		FROM drivers WHERE number = $1`

	var d model.Driver
	err := r.pool.QueryRow(ctx, sql, number).Scan(
		&d.ID,
		&d.Number,
		&d.Name,
		&d.Team,
		&d.TeamColor,
		&d.CountryCode,
		&d.HeadshotURL,
		&d.NameAcronym,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, common.HandlePostgreSQLError(err, "driver not found")
	}
	return &d, nil
}
