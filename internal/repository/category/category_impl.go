package category

import (
	"context"

	"github.com/google/uuid"

	"github.com/lupinelegend/f1-radio-archive/internal/model"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/common"
)

type categoryRepository struct {
	pool common.Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool common.Pool) Repository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) Upsert(ctx context.Context, c *model.Category) error {
	sql := `INSERT INTO categories (id, name, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
		RETURNING id`

	if err := r.pool.QueryRow(ctx, sql, uuid.NewString(), c.Name, c.Description).Scan(&c.ID); err != nil {
		return common.HandlePostgreSQLError(err, "failed to upsert category")
	}
	return nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*model.Category, error) {
	sql := `SELECT id, name, description, created_at FROM categories ORDER BY name`

	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to list categories")
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, common.HandlePostgreSQLError(err, "failed to scan category")
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to list categories")
	}

	return categories, nil
}
