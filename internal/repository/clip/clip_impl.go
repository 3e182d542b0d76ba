package clip

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/lupinelegend/f1-radio-archive/internal/errors"
	"github.com/lupinelegend/f1-radio-archive/internal/model"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/common"
)

type clipRepository struct {
	pool common.Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool common.Pool) Repository {
	return &clipRepository{pool: pool}
}

func (r *clipRepository) FindCandidates(ctx context.Context, q model.ClipQuery) ([]*model.Clip, error) {
	sql, args := buildQuery(q, false)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to find clips")
	}
	defer rows.Close()

	var clips []*model.Clip
	for rows.Next() {
		c, err := scanClip(rows)
		if err != nil {
			return nil, common.HandlePostgreSQLError(err, "failed to scan clip")
		}
		clips = append(clips, c)
	}
	if err := rows.Err(); err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to find clips")
	}

	return clips, nil
}

func (r *clipRepository) Count(ctx context.Context, q model.ClipQuery) (int, error) {
	sql, args := buildQuery(q, true)

	var count int
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, common.HandlePostgreSQLError(err, "failed to count clips")
	}
	return count, nil
}

func (r *clipRepository) GetByID(ctx context.Context, id string) (*model.Clip, error) {
	sql, args := buildQuery(model.ClipQuery{ID: id}, false)

	c, err := scanClip(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, common.HandlePostgreSQLError(err, "clip not found")
	}
	return c, nil
}

func (r *clipRepository) ExistsByAudioURL(ctx context.Context, audioURL string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM clips WHERE audio_url = $1)`, audioURL).Scan(&exists)
	if err != nil {
		return false, common.HandlePostgreSQLError(err, "failed to check clip audio url")
	}
	return exists, nil
}

func (r *clipRepository) InsertIfAbsent(ctx context.Context, c *model.Clip) (bool, error) {
	sql := `INSERT INTO clips
		(id, title, audio_url, driver_id, race_id, recorded_at, duration, transcript)
		SELECT $1::uuid, $2::text, $3::text, $4::uuid, $5::uuid, $6::timestamptz, $7::int, $8::text
		WHERE NOT EXISTS (SELECT 1 FROM clips WHERE audio_url = $3::text)
		RETURNING id, created_at`

	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}

	err := r.pool.QueryRow(ctx, sql,
		id,
		c.Title,
		c.AudioURL,
		c.DriverID,
		c.RaceID,
		c.RecordedAt,
		c.Duration,
		c.Transcript,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, common.HandlePostgreSQLError(err, "failed to insert clip")
	}
	return true, nil
}

func (r *clipRepository) UpdateTranscript(ctx context.Context, id, transcript string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE clips SET transcript = $2 WHERE id = $1`, id, transcript)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to update transcript")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.CodeNotFound, "clip not found")
	}
	return nil
}

func (r *clipRepository) DeleteBatch(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM clips WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, common.HandlePostgreSQLError(err, "failed to delete clips")
	}
	return tag.RowsAffected(), nil
}

func scanClip(row pgx.Row) (*model.Clip, error) {
	var c model.Clip
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.AudioURL,
		&c.DriverID,
		&c.RaceID,
		&c.RecordedAt,
		&c.Duration,
		&c.Transcript,
		&c.IsPremium,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
