// Package maintenance holds the operator one-shot jobs: seeding, status reports and destructive cleanups.
package maintenance

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lupinelegend/f1-radio-archive/internal/model"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/category"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/clip"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/cliptag"
	"github.com/lupinelegend/f1-radio-archive/internal/service/common"
)

const (
	DefaultGracePeriod = 5 * time.Second

	scanPageSize      = 1000
	deleteBatchSize   = 100
	cleanupSampleSize = 10
	// tagBatchSize matches the batch size of the repeated tagging run
	tagBatchSize = 100
)

// SeedResult reports one taxonomy entry
type SeedResult struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
}

// TranscriptionReport is the transcribed/total ratio
type TranscriptionReport struct {
	Total             int     `json:"total"`
	WithTranscript    int     `json:"with_transcript"`
	WithoutTranscript int     `json:"without_transcript"`
	Progress          float64 `json:"progress"`
}

// TagReport is the tagged/total ratio
type TagReport struct {
	Total            int     `json:"total"`
	Tagged           int     `json:"tagged"`
	Untagged         int     `json:"untagged"`
	Progress         float64 `json:"progress"`
	EstimatedBatches int     `json:"estimated_batches"`
}

// CleanupPlan lists clips whose transcript has at most one word
type CleanupPlan struct {
	Scanned int      `json:"scanned"`
	ClipIDs []string `json:"clip_ids"`
	Samples []string `json:"samples"`
}

// CleanupResult reports what ExecuteCleanup removed
type CleanupResult struct {
	Requested int      `json:"requested"`
	Deleted   int64    `json:"deleted"`
	Errors    []string `json:"errors,omitempty"`
}

// Service runs maintenance jobs against the catalog
type Service interface {
	SeedCategories(ctx context.Context) ([]SeedResult, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
	TranscriptionStatus(ctx context.Context) (*TranscriptionReport, error)
	TagStatus(ctx context.Context) (*TagReport, error)
	PlanShortTranscriptCleanup(ctx context.Context) (*CleanupPlan, error)
	// ExecuteCleanup waits out the grace period, then deletes the planned clips
	ExecuteCleanup(ctx context.Context, plan *CleanupPlan) (*CleanupResult, error)
	// ResetTags waits out the grace period, then deletes every clip tag
	ResetTags(ctx context.Context) (int64, error)
}

type service struct {
	clips      clip.Repository
	categories category.Repository
	tags       cliptag.Repository
	log        logrus.FieldLogger
	sleep      common.SleepFunc
	grace      time.Duration
}

// Option customizes the Service
type Option func(*service)

// WithSleep replaces the grace-period wait
func WithSleep(sleep common.SleepFunc) Option {
	return func(s *service) { s.sleep = sleep }
}

// WithGracePeriod overrides the wait before destructive jobs run
func WithGracePeriod(d time.Duration) Option {
	return func(s *service) { s.grace = d }
}

// NewService creates a new maintenance Service
func NewService(clips clip.Repository, categories category.Repository, tags cliptag.Repository, log logrus.FieldLogger, opts ...Option) Service {
	s := &service{
		clips:      clips,
		categories: categories,
		tags:       tags,
		log:        log,
		sleep:      common.Sleep,
		grace:      DefaultGracePeriod,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) SeedCategories(ctx context.Context) ([]SeedResult, error) {
	results := make([]SeedResult, 0, len(DefaultTaxonomy))
	for _, entry := range DefaultTaxonomy {
		c := entry
		result := SeedResult{Name: c.Name}
		if err := s.categories.Upsert(ctx, &c); err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			s.log.WithError(err).WithField("category", c.Name).Warn("failed to seed category")
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *service) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return s.categories.List(ctx)
}

func (s *service) TranscriptionStatus(ctx context.Context) (*TranscriptionReport, error) {
	total, err := s.clips.Count(ctx, model.ClipQuery{})
	if err != nil {
		return nil, err
	}
	without, err := s.clips.Count(ctx, model.ClipQuery{Transcript: model.TranscriptMissing})
	if err != nil {
		return nil, err
	}

	with := total - without
	return &TranscriptionReport{
		Total:             total,
		WithTranscript:    with,
		WithoutTranscript: without,
		Progress:          percent(with, total),
	}, nil
}

func (s *service) TagStatus(ctx context.Context) (*TagReport, error) {
	total, err := s.clips.Count(ctx, model.ClipQuery{})
	if err != nil {
		return nil, err
	}

	tagged := make(map[string]struct{})
	for offset := 0; ; offset += scanPageSize {
		ids, err := s.tags.ListClipIDs(ctx, scanPageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			tagged[id] = struct{}{}
		}
		if len(ids) < scanPageSize {
			break
		}
	}

	report := &TagReport{
		Total:    total,
		Tagged:   len(tagged),
		Untagged: total - len(tagged),
		Progress: percent(len(tagged), total),
	}
	if report.Untagged > 0 {
		report.EstimatedBatches = int(math.Ceil(float64(report.Untagged) / tagBatchSize))
	}
	return report, nil
}

// IsShortTranscript reports whether transcript has at most one whitespace-separated word
func IsShortTranscript(transcript string) bool {
	return len(strings.Fields(transcript)) <= 1
}

func (s *service) PlanShortTranscriptCleanup(ctx context.Context) (*CleanupPlan, error) {
	plan := &CleanupPlan{ClipIDs: []string{}, Samples: []string{}}

	for offset := 0; ; offset += scanPageSize {
		page, err := s.clips.FindCandidates(ctx, model.ClipQuery{
			Transcript: model.TranscriptPresent,
			Limit:      scanPageSize,
			Offset:     offset,
		})
		if err != nil {
			return nil, err
		}

		plan.Scanned += len(page)
		for _, c := range page {
			if c.Transcript == nil || !IsShortTranscript(*c.Transcript) {
				continue
			}
			plan.ClipIDs = append(plan.ClipIDs, c.ID)
			if len(plan.Samples) < cleanupSampleSize {
				plan.Samples = append(plan.Samples, *c.Transcript)
			}
		}

		s.log.WithField("scanned", plan.Scanned).Debug("scanning transcripts")
		if len(page) < scanPageSize {
			break
		}
	}

	return plan, nil
}

func (s *service) ExecuteCleanup(ctx context.Context, plan *CleanupPlan) (*CleanupResult, error) {
	result := &CleanupResult{Requested: len(plan.ClipIDs)}
	if len(plan.ClipIDs) == 0 {
		return result, nil
	}

	s.log.WithFields(logrus.Fields{
		"clips": len(plan.ClipIDs),
		"grace": s.grace,
	}).Warn("deleting clips with short transcripts after grace period")
	if err := s.sleep(ctx, s.grace); err != nil {
		return result, err
	}

	for start := 0; start < len(plan.ClipIDs); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(plan.ClipIDs))
		n, err := s.clips.DeleteBatch(ctx, plan.ClipIDs[start:end])
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			s.log.WithError(err).WithField("batch_start", start).Error("failed to delete batch")
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Deleted += n
		s.log.WithFields(logrus.Fields{
			"deleted": result.Deleted,
			"total":   len(plan.ClipIDs),
		}).Info("deleted batch")
	}

	return result, nil
}

func (s *service) ResetTags(ctx context.Context) (int64, error) {
	s.log.WithField("grace", s.grace).Warn("deleting ALL clip tags after grace period")
	if err := s.sleep(ctx, s.grace); err != nil {
		return 0, err
	}
	return s.tags.DeleteAll(ctx)
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
