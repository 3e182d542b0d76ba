package cliptag

import (
	"context"

	"github.com/lupinelegend/f1-radio-archive/internal/model"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/common"
)

type clipTagRepository struct {
	pool common.Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool common.Pool) Repository {
	return &clipTagRepository{pool: pool}
}

func (r *clipTagRepository) CountByClipID(ctx context.Context, clipID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clip_tags WHERE clip_id = $1`, clipID).Scan(&count)
	if err != nil {
		return 0, common.HandlePostgreSQLError(err, "failed to count clip tags")
	}
	return count, nil
}

func (r *clipTagRepository) Create(ctx context.Context, tag *model.ClipTag) error {
	sql := `INSERT INTO clip_tags (clip_id, category_id) VALUES ($1, $2) RETURNING created_at`

	if err := r.pool.QueryRow(ctx, sql, tag.ClipID, tag.CategoryID).Scan(&tag.CreatedAt); err != nil {
		return common.HandlePostgreSQLError(err, "failed to create clip tag")
	}
	return nil
}

func (r *clipTagRepository) ListClipIDs(ctx context.Context, limit, offset int) ([]string, error) {
	sql := `SELECT clip_id FROM clip_tags ORDER BY clip_id, category_id LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to list clip tags")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, common.HandlePostgreSQLError(err, "failed to scan clip tag")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to list clip tags")
	}
	return ids, nil
}

func (r *clipTagRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clip_tags`)
	if err != nil {
		return 0, common.HandlePostgreSQLError(err, "failed to delete clip tags")
	}
	return tag.RowsAffected(), nil
}
