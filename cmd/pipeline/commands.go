// Package pipeline holds the batch job commands. Each command resolves its services
// through a factory.Loader so tests can substitute fakes.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/lupinelegend/f1-radio-archive/cmd/factory"
	"github.com/lupinelegend/f1-radio-archive/internal/service/maintenance"
	"github.com/lupinelegend/f1-radio-archive/internal/service/openf1"
	"github.com/lupinelegend/f1-radio-archive/internal/service/tagging"
	"github.com/lupinelegend/f1-radio-archive/internal/service/transcription"
)

// now is replaced in tests that validate the year range
var now = time.Now

func write(cmd *cobra.Command, s string) {
	_, _ = io.WriteString(cmd.OutOrStdout(), s)
}

// writeFormatted prints either the JSON form of v or the text rendering
func writeFormatted(cmd *cobra.Command, v any, text func() string) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		out, err := formatJSON(v)
		if err != nil {
			return err
		}
		write(cmd, out)
	case "", "text":
		write(cmd, text())
	default:
		return fmt.Errorf("unknown format %q (expected text or json)", format)
	}
	return nil
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "text", "Output format: text, json")
}

// NewSyncCommand creates the sync command
func NewSyncCommand(load factory.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync sessions, drivers and team radio from OpenF1",
		Long: `Fetch sessions from OpenF1 and store their drivers, race records and new team
radio clips. Re-running is safe: clips are deduplicated by recording URL.

With --latest only the team radio of the last seven days is fetched, and only
sessions that published new recordings are synced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetInt("year")
			sessionKey, _ := cmd.Flags().GetInt("session-key")
			latest, _ := cmd.Flags().GetBool("latest")

			if !latest && sessionKey == 0 && year != 0 {
				if err := openf1.ValidateYear(year, now()); err != nil {
					return err
				}
			}

			svc, cleanup, err := load(cmd.Context(), factory.Options{})
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := svc.Sync.Sync(cmd.Context(), openf1.SyncFilter{SessionKey: sessionKey, Year: year, Latest: latest})
			if errors.Is(err, openf1.ErrNoSessionsFound) {
				if latest {
					write(cmd, "No team radio in the last seven days\n")
					return nil
				}
				write(cmd, "No sessions found\n")
				return nil
			}
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			return writeFormatted(cmd, summary, func() string { return FormatSyncSummary(summary) })
		},
	}

	cmd.Flags().Int("year", 0, "Only sync sessions from this season")
	cmd.Flags().Int("session-key", 0, "Only sync this session (wins over --year)")
	cmd.Flags().Bool("latest", false, "Only sync team radio from the last seven days")
	cmd.MarkFlagsMutuallyExclusive("latest", "year")
	cmd.MarkFlagsMutuallyExclusive("latest", "session-key")
	addFormatFlag(cmd)
	cmd.AddCommand(newSessionsCommand(load), newMeetingsCommand(load))

	return cmd
}

func newSessionsCommand(load factory.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List OpenF1 sessions without syncing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetInt("year")
			if year != 0 {
				if err := openf1.ValidateYear(year, now()); err != nil {
					return err
				}
			}

			svc, cleanup, err := load(cmd.Context(), factory.Options{})
			if err != nil {
				return err
			}
			defer cleanup()

			sessions, err := svc.Sync.ListSessions(cmd.Context(), year)
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}

			return writeFormatted(cmd, sessions, func() string { return FormatSessions(sessions) })
		},
	}

	cmd.Flags().Int("year", 0, "Season to list")
	addFormatFlag(cmd)

	return cmd
}

func newMeetingsCommand(load factory.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meetings",
		Short: "List OpenF1 race weekends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetInt("year")
			if year != 0 {
				if err := openf1.ValidateYear(year, now()); err != nil {
					return err
				}
			}

			svc, cleanup, err := load(cmd.Context(), factory.Options{})
			if err != nil {
				return err
			}
			defer cleanup()

			meetings, err := svc.Sync.ListMeetings(cmd.Context(), year)
			if err != nil {
				return fmt.Errorf("failed to list meetings: %w", err)
			}

			return writeFormatted(cmd, meetings, func() string { return FormatMeetings(meetings) })
		},
	}

	cmd.Flags().Int("year", 0, "Season to list")
	addFormatFlag(cmd)

	return cmd
}

// NewTranscribeCommand creates the transcribe command
func NewTranscribeCommand(load factory.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe",
		Short: "Transcribe clips that have no transcript yet",
		Long: `Download each clip's recording and transcribe it with Whisper. Each clip is
retried up to 3 times; a failed clip never stops the batch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clipID, _ := cmd.Flags().GetString("clip-id")
			limit, _ := cmd.Flags().GetInt("limit")
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}

			svc, cleanup, err := load(cmd.Context(), engineOptions(cmd, false))
			if err != nil {
				return err
			}
			defer cleanup()
			if svc.Transcription == nil {
				return fmt.Errorf("transcription is not configured: set openai_api_key or use --engine local")
			}

			summary, err := svc.Transcription.Transcribe(cmd.Context(), transcription.Selector{ClipID: clipID, Limit: limit})
			if err != nil {
				return fmt.Errorf("transcription failed: %w", err)
			}

			return writeFormatted(cmd, summary, func() string { return FormatTranscriptionSummary(summary) })
		},
	}

	cmd.Flags().String("clip-id", "", "Transcribe this clip even if it already has a transcript")
	cmd.Flags().Int("limit", transcription.DefaultLimit, "Maximum number of clips to transcribe")
	addEngineFlags(cmd)
	addFormatFlag(cmd)
	cmd.AddCommand(newTranscribeTestCommand(load))

	return cmd
}

func newTranscribeTestCommand(load factory.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test [AUDIO_URL]",
		Short: "Transcribe one recording without touching the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := load(cmd.Context(), engineOptions(cmd, true))
			if err != nil {
				return err
			}
			defer cleanup()
			if svc.Transcription == nil {
				return fmt.Errorf("transcription is not configured: set openai_api_key or use --engine local")
			}

			text, err := svc.Transcription.TranscribeURL(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("transcription failed: %w", err)
			}

			write(cmd, text+"\n")
			return nil
		},
	}

	addEngineFlags(cmd)

	return cmd
}

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().String("engine", transcription.EngineAPI, "Transcription engine: api, local")
	cmd.Flags().StringP("model", "m", "base", "Whisper model for the local engine: tiny, base, small, medium, large")
}

func engineOptions(cmd *cobra.Command, skipDatabase bool) factory.Options {
	engine, _ := cmd.Flags().GetString("engine")
	model, _ := cmd.Flags().GetString("model")
	return factory.Options{
		NeedOpenAI:   engine != transcription.EngineLocal,
		SkipDatabase: skipDatabase,
		Engine:       engine,
		WhisperModel: model,
	}
}

// NewTagCommand creates the tag command
func NewTagCommand(load factory.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Categorize transcribed clips with the language model",
	}

	cmd.AddCommand(newTagRunCommand(load))
	cmd.AddCommand(newTagAllCommand(load))
	cmd.AddCommand(newTagStatusCommand(load))
	cmd.AddCommand(newTagResetCommand(load))

	return cmd
}

func newTagRunCommand(load factory.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Tag transcribed clips that have no categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}

			svc, cleanup, err := load(cmd.Context(), factory.Options{NeedOpenAI: true})
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := svc.AutoTag.AutoTag(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("tagging failed: %w", err)
			}

			return writeFormatted(cmd, summary, func() string { return FormatTagSummary(summary) })
		},
	}

	cmd.Flags().Int("limit", tagging.DefaultLimit, "Maximum number of clips to examine")
	addFormatFlag(cmd)

	return cmd
}

func newTagAllCommand(load factory.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Tag in batches until every transcribed clip is tagged",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			batchSize, _ := cmd.Flags().GetInt("batch-size")
			pause, _ := cmd.Flags().GetDuration("pause")
			if batchSize <= 0 {
				return fmt.Errorf("--batch-size must be positive")
			}

			svc, cleanup, err := load(cmd.Context(), factory.Options{NeedOpenAI: true})
			if err != nil {
				return err
			}
			defer cleanup()

			batches, err := svc.AutoTag.TagAll(cmd.Context(), tagging.TagAllOptions{BatchSize: batchSize, Pause: pause})
			// completed batches are still worth printing when a later one fails
			if len(batches) > 0 {
				if ferr := writeFormatted(cmd, batches, func() string { return FormatTagAll(batches) }); ferr != nil {
					return ferr
				}
			}
			if err != nil {
				return fmt.Errorf("tagging failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().Int("batch-size", tagging.DefaultBatchSize, "Clips per batch")
	cmd.Flags().Duration("pause", tagging.DefaultBatchWait, "Pause between batches")
	addFormatFlag(cmd)

	return cmd
}

func newTagStatusCommand(load factory.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show how many transcribed clips are tagged",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := load(cmd.Context(), factory.Options{})
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := svc.Maintenance.TagStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read tag status: %w", err)
			}

			return writeFormatted(cmd, report, func() string { return FormatTagReport(report) })
		},
	}

	addFormatFlag(cmd)

	return cmd
}

func newTagResetCommand(load factory.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every clip tag so tagging can start over",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := load(cmd.Context(), factory.Options{})
			if err != nil {
				return err
			}
			defer cleanup()

			write(cmd, fmt.Sprintf("Deleting ALL clip tags in %s. Press Ctrl+C to abort.\n", maintenance.DefaultGracePeriod))

			deleted, err := svc.Maintenance.ResetTags(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to reset tags: %w", err)
			}

			write(cmd, fmt.Sprintf("Deleted %d clip tags\n", deleted))
			return nil
		},
	}

	return cmd
}

// NewCategoriesCommand creates the categories command
func NewCategoriesCommand(load factory.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage the category taxonomy",
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Create or update the built-in categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := load(cmd.Context(), factory.Options{})
			if err != nil {
				return err
			}
			defer cleanup()

			results, err := svc.Maintenance.SeedCategories(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to seed categories: %w", err)
			}

			write(cmd, FormatSeedResults(results))
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := load(cmd.Context(), factory.Options{})
			if err != nil {
				return err
			}
			defer cleanup()

			categories, err := svc.Maintenance.ListCategories(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			return writeFormatted(cmd, categories, func() string { return FormatCategories(categories) })
		},
	}
	addFormatFlag(listCmd)

	cmd.AddCommand(seedCmd)
	cmd.AddCommand(listCmd)

	return cmd
}

// NewStatusCommand creates the status command
func NewStatusCommand(load factory.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report pipeline progress",
	}

	transcriptsCmd := &cobra.Command{
		Use:   "transcripts",
		Short: "Show how many clips have a transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := load(cmd.Context(), factory.Options{})
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := svc.Maintenance.TranscriptionStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read transcription status: %w", err)
			}

			return writeFormatted(cmd, report, func() string { return FormatTranscriptionReport(report) })
		},
	}
	addFormatFlag(transcriptsCmd)

	cmd.AddCommand(transcriptsCmd)

	return cmd
}

// NewCleanupCommand creates the cleanup command
func NewCleanupCommand(load factory.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Destructive catalog cleanups",
	}

	shortCmd := &cobra.Command{
		Use:   "short-transcripts",
		Short: "Delete clips whose transcript is at most one word",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := load(cmd.Context(), factory.Options{})
			if err != nil {
				return err
			}
			defer cleanup()

			return runShortTranscriptCleanup(cmd, svc.Maintenance)
		},
	}

	cmd.AddCommand(shortCmd)

	return cmd
}

// runShortTranscriptCleanup always deletes; the grace period is the only chance to abort
func runShortTranscriptCleanup(cmd *cobra.Command, svc maintenance.Service) error {
	ctx := cmd.Context()

	plan, err := svc.PlanShortTranscriptCleanup(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan transcripts: %w", err)
	}

	write(cmd, FormatCleanupPlan(plan))
	if len(plan.ClipIDs) == 0 {
		write(cmd, "Nothing to delete\n")
		return nil
	}

	write(cmd, fmt.Sprintf("Deleting %d clips in %s. Press Ctrl+C to abort.\n", len(plan.ClipIDs), maintenance.DefaultGracePeriod))

	result, err := svc.ExecuteCleanup(ctx, plan)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	write(cmd, FormatCleanupResult(result))
	return nil
}
