package clip

import (
	"context"

	"github.com/lupinelegend/f1-radio-archive/internal/model"
)

// Repository defines operations for Clip persistence
type Repository interface {
	// FindCandidates returns clips matching q
	FindCandidates(ctx context.Context, q model.ClipQuery) ([]*model.Clip, error)
	// Count ignores q's Limit, Offset and ordering
	Count(ctx context.Context, q model.ClipQuery) (int, error)
	GetByID(ctx context.Context, id string) (*model.Clip, error)
	ExistsByAudioURL(ctx context.Context, audioURL string) (bool, error)
	// InsertIfAbsent inserts c unless a clip with the same audio URL exists (first write wins)
	InsertIfAbsent(ctx context.Context, c *model.Clip) (bool, error)
	UpdateTranscript(ctx context.Context, id, transcript string) error
	DeleteBatch(ctx context.Context, ids []string) (int64, error)
}
