package clip

import (
	"fmt"
	"strings"

	"github.com/lupinelegend/f1-radio-archive/internal/model"
)

const clipColumns = `c.id, c.title, c.audio_url, c.driver_id, c.race_id, c.recorded_at, c.duration, c.transcript, c.is_premium, c.created_at`

// buildQuery renders q into SQL and positional arguments
func buildQuery(q model.ClipQuery, count bool) (string, []any) {
	var (
		sb    strings.Builder
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if count {
		sb.WriteString("SELECT COUNT(*) FROM clips c")
	} else {
		sb.WriteString("SELECT " + clipColumns + " FROM clips c")
	}

	if q.ID != "" {
		where = append(where, "c.id = "+arg(q.ID))
	} else {
		switch q.Transcript {
		case model.TranscriptMissing:
			where = append(where, "(c.transcript IS NULL OR c.transcript = '')")
		case model.TranscriptPresent:
			where = append(where, "(c.transcript IS NOT NULL AND c.transcript <> '')")
		}
		if q.ExcludeTagged {
			where = append(where, "NOT EXISTS (SELECT 1 FROM clip_tags t WHERE t.clip_id = c.id)")
		}
	}

	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	if count {
		return sb.String(), args
	}

	if q.NewestFirst {
		sb.WriteString(" ORDER BY c.created_at DESC, c.id")
	} else {
		sb.WriteString(" ORDER BY c.id")
	}
	if q.Limit > 0 {
		sb.WriteString(" LIMIT " + arg(q.Limit))
	}
	if q.Offset > 0 {
		sb.WriteString(" OFFSET " + arg(q.Offset))
	}

	return sb.String(), args
}
