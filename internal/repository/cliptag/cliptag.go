package cliptag

import (
	"context"

	"github.com/lupinelegend/f1-radio-archive/internal/model"
)

// Repository defines operations for ClipTag persistence
type Repository interface {
	CountByClipID(ctx context.Context, clipID string) (int, error)
	// Create inserts one tag; an existing (clip, category) pair yields a CONFLICT AppError
	Create(ctx context.Context, tag *model.ClipTag) error
	// ListClipIDs pages through clip_tags in a stable order, one clip id per row
	ListClipIDs(ctx context.Context, limit, offset int) ([]string, error)
	DeleteAll(ctx context.Context) (int64, error)
}
