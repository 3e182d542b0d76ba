package category

import (
	"context"

	"github.com/lupinelegend/f1-radio-archive/internal/model"
)

// Repository defines operations for Category persistence
type Repository interface {
	// Upsert inserts or updates the description by name and sets c.ID
	Upsert(ctx context.Context, c *model.Category) error
	List(ctx context.Context) ([]*model.Category, error)
}
