package driver

import (
	"context"

	"github.com/lupinelegend/f1-radio-archive/internal/model"
)

// Repository defines operations for Driver persistence
type Repository interface {
	// Upsert inserts or updates by car number (last write wins) and sets d.ID
	Upsert(ctx context.Context, d *model.Driver) error
	GetByNumber(ctx context.Context, number int) (*model.Driver, error)
}
