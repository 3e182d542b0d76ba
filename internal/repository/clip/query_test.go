package clip

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lupinelegend/f1-radio-archive/internal/model"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    model.ClipQuery
		count    bool
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "transcription candidates",
			query:    model.ClipQuery{Transcript: model.TranscriptMissing, NewestFirst: true, Limit: 10},
			wantSQL:  "SELECT " + clipColumns + " FROM clips c WHERE (c.transcript IS NULL OR c.transcript = '') ORDER BY c.created_at DESC, c.id LIMIT $1",
			wantArgs: []any{10},
		},
		{
			name:     "explicit id ignores other filters",
			query:    model.ClipQuery{ID: "clip-1", Transcript: model.TranscriptMissing, ExcludeTagged: true, NewestFirst: true, Limit: 10},
			wantSQL:  "SELECT " + clipColumns + " FROM clips c WHERE c.id = $1 ORDER BY c.created_at DESC, c.id LIMIT $2",
			wantArgs: []any{"clip-1", 10},
		},
		{
			name:  "tagging candidates page",
			query: model.ClipQuery{Transcript: model.TranscriptPresent, ExcludeTagged: true, NewestFirst: true, Limit: 1000, Offset: 1000},
			wantSQL: "SELECT " + clipColumns + " FROM clips c WHERE (c.transcript IS NOT NULL AND c.transcript <> '')" +
				" AND NOT EXISTS (SELECT 1 FROM clip_tags t WHERE t.clip_id = c.id) ORDER BY c.created_at DESC, c.id LIMIT $1 OFFSET $2",
			wantArgs: []any{1000, 1000},
		},
		{
			name:     "stable scan without limit",
			query:    model.ClipQuery{},
			wantSQL:  "SELECT " + clipColumns + " FROM clips c ORDER BY c.id",
			wantArgs: nil,
		},
		{
			name:     "count ignores paging",
			query:    model.ClipQuery{Transcript: model.TranscriptPresent, Limit: 5, Offset: 10, NewestFirst: true},
			count:    true,
			wantSQL:  "SELECT COUNT(*) FROM clips c WHERE (c.transcript IS NOT NULL AND c.transcript <> '')",
			wantArgs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := buildQuery(tt.query, tt.count)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
