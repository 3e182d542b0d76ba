package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lupinelegend/f1-radio-archive/internal/model"
	"github.com/lupinelegend/f1-radio-archive/internal/service/maintenance"
	"github.com/lupinelegend/f1-radio-archive/internal/service/openf1"
	"github.com/lupinelegend/f1-radio-archive/internal/service/tagging"
	"github.com/lupinelegend/f1-radio-archive/internal/service/transcription"
)

// formatJSON renders any summary as indented JSON for --format json
func formatJSON(v any) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal output: %w", err)
	}
	return string(out) + "\n", nil
}

// FormatSyncSummary renders the result of one sync run
func FormatSyncSummary(s *openf1.SyncSummary) string {
	var output strings.Builder

	output.WriteString("Sync completed\n")
	output.WriteString(fmt.Sprintf("Sessions processed: %d", s.SessionsProcessed))
	if s.SessionsSkipped > 0 {
		output.WriteString(fmt.Sprintf(" (%d skipped)", s.SessionsSkipped))
	}
	output.WriteString("\n")
	output.WriteString(fmt.Sprintf("Radio messages: %d\n", s.TotalRadioMessages))
	output.WriteString(fmt.Sprintf("  New: %d\n", s.NewRadioMessages))
	output.WriteString(fmt.Sprintf("  Already synced: %d\n", s.DuplicateMessages))
	output.WriteString(fmt.Sprintf("  Unknown driver: %d\n", s.OrphanMessages))
	if s.FailedMessages > 0 {
		output.WriteString(fmt.Sprintf("  Failed: %d\n", s.FailedMessages))
	}

	return output.String()
}

// FormatSessions renders one line per session; stored sessions are starred
func FormatSessions(sessions []openf1.SessionStatus) string {
	if len(sessions) == 0 {
		return "No sessions found\n"
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("Sessions (%d):\n", len(sessions)))
	for _, s := range sessions {
		date := s.DateStart
		if len(date) >= 10 {
			date = date[:10]
		}
		marker := " "
		if s.Synced {
			marker = "*"
		}
		output.WriteString(fmt.Sprintf("%s %-6d %s  %s - %s\n", marker, s.SessionKey, date, s.Location, s.SessionName))
	}
	return output.String()
}

// FormatMeetings renders one line per race weekend
func FormatMeetings(meetings []openf1.Meeting) string {
	if len(meetings) == 0 {
		return "No meetings found\n"
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("Meetings (%d):\n", len(meetings)))
	for _, m := range meetings {
		date := m.DateStart
		if len(date) >= 10 {
			date = date[:10]
		}
		output.WriteString(fmt.Sprintf("  %-6d %s  %s (%s)\n", m.MeetingKey, date, m.MeetingName, m.Location))
	}
	return output.String()
}

// FormatTranscriptionSummary renders per-clip results followed by the totals
func FormatTranscriptionSummary(s *transcription.Summary) string {
	if s.Total == 0 {
		return "No clips found that need transcription\n"
	}

	var output strings.Builder
	for _, r := range s.Results {
		if r.Success {
			output.WriteString(fmt.Sprintf("✓ %s (%s)\n", r.Title, r.ClipID))
			if r.Transcript != "" {
				output.WriteString(fmt.Sprintf("    %q\n", r.Transcript))
			}
		} else {
			output.WriteString(fmt.Sprintf("✗ %s (%s): %s\n", r.Title, r.ClipID, r.Error))
		}
	}
	output.WriteString("\n")
	output.WriteString(fmt.Sprintf("Transcribed %d/%d clips (%d failed)\n", s.Successful, s.Total, s.Failed))
	return output.String()
}

// FormatTagSummary renders one AutoTag run
func FormatTagSummary(s *tagging.Summary) string {
	if s.Total == 0 {
		return "No clips need tagging\n"
	}

	var output strings.Builder
	for _, r := range s.Results {
		switch r.Status {
		case tagging.StatusTagged:
			output.WriteString(fmt.Sprintf("✓ %s: %s\n", r.ClipID, strings.Join(r.Categories, ", ")))
		case tagging.StatusFailed:
			output.WriteString(fmt.Sprintf("✗ %s: %s\n", r.ClipID, r.Error))
		case tagging.StatusNoMatch:
			output.WriteString(fmt.Sprintf("- %s: no matching categories\n", r.ClipID))
		}
	}
	output.WriteString("\n")
	output.WriteString(fmt.Sprintf("Processed %d clips: %d tagged, %d failed, %d already tagged, %d without a match\n",
		s.Total, s.Tagged, s.Failed, s.AlreadyTagged, s.NoMatch))
	return output.String()
}

// FormatTagAll renders the per-batch totals of a tag-all run
func FormatTagAll(batches []*tagging.Summary) string {
	var output strings.Builder
	tagged, failed := 0, 0
	for i, b := range batches {
		output.WriteString(fmt.Sprintf("Batch %d: %d tagged, %d failed, %d skipped\n",
			i+1, b.Tagged, b.Failed, b.AlreadyTagged+b.NoMatch))
		tagged += b.Tagged
		failed += b.Failed
	}
	output.WriteString(fmt.Sprintf("Done after %d batches: %d tagged, %d failed\n", len(batches), tagged, failed))
	return output.String()
}

// FormatTranscriptionReport renders the transcription progress
func FormatTranscriptionReport(r *maintenance.TranscriptionReport) string {
	var output strings.Builder
	output.WriteString(fmt.Sprintf("Total clips: %d\n", r.Total))
	output.WriteString(fmt.Sprintf("With transcript: %d\n", r.WithTranscript))
	output.WriteString(fmt.Sprintf("Without transcript: %d\n", r.WithoutTranscript))
	output.WriteString(fmt.Sprintf("Progress: %.1f%%\n", r.Progress))
	return output.String()
}

// FormatTagReport renders the tagging progress
func FormatTagReport(r *maintenance.TagReport) string {
	var output strings.Builder
	output.WriteString(fmt.Sprintf("Total clips with transcripts: %d\n", r.Total))
	output.WriteString(fmt.Sprintf("Tagged: %d\n", r.Tagged))
	output.WriteString(fmt.Sprintf("Untagged: %d\n", r.Untagged))
	output.WriteString(fmt.Sprintf("Progress: %.1f%%\n", r.Progress))
	if r.EstimatedBatches > 0 {
		output.WriteString(fmt.Sprintf("Estimated batches remaining: %d\n", r.EstimatedBatches))
	}
	return output.String()
}

// FormatCategories renders the taxonomy
func FormatCategories(categories []*model.Category) string {
	if len(categories) == 0 {
		return "No categories found. Run 'f1radio categories seed' first\n"
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("Categories (%d):\n", len(categories)))
	for _, c := range categories {
		output.WriteString(fmt.Sprintf("  %-22s %s\n", c.Name, c.Description))
	}
	return output.String()
}

// FormatSeedResults renders one line per taxonomy entry
func FormatSeedResults(results []maintenance.SeedResult) string {
	var output strings.Builder
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
			output.WriteString(fmt.Sprintf("✗ %s: %s\n", r.Name, r.Error))
			continue
		}
		output.WriteString(fmt.Sprintf("✓ %s\n", r.Name))
	}
	output.WriteString(fmt.Sprintf("Seeded %d/%d categories\n", len(results)-failed, len(results)))
	return output.String()
}

// FormatCleanupPlan renders the clips about to be deleted
func FormatCleanupPlan(p *maintenance.CleanupPlan) string {
	var output strings.Builder
	output.WriteString(fmt.Sprintf("Scanned %d clips with transcripts\n", p.Scanned))
	output.WriteString(fmt.Sprintf("Found %d clips with transcripts of one word or less\n", len(p.ClipIDs)))
	if len(p.Samples) > 0 {
		output.WriteString("Samples:\n")
		for _, s := range p.Samples {
			output.WriteString(fmt.Sprintf("  %q\n", s))
		}
	}
	return output.String()
}

// FormatCleanupResult renders what the cleanup deleted
func FormatCleanupResult(r *maintenance.CleanupResult) string {
	var output strings.Builder
	output.WriteString(fmt.Sprintf("Deleted %d/%d clips\n", r.Deleted, r.Requested))
	for _, e := range r.Errors {
		output.WriteString(fmt.Sprintf("  error: %s\n", e))
	}
	return output.String()
}
