package race

import (
	"context"

	"github.com/lupinelegend/f1-radio-archive/internal/model"
)

// Repository defines operations for Race persistence
type Repository interface {
	// Upsert inserts or updates by session key (last write wins) and sets r.ID
	Upsert(ctx context.Context, r *model.Race) error
	GetBySessionKey(ctx context.Context, sessionKey int) (*model.Race, error)
}
