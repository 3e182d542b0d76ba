package tagging

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lupinelegend/f1-radio-archive/internal/errors"
	"github.com/lupinelegend/f1-radio-archive/internal/metrics"
	"github.com/lupinelegend/f1-radio-archive/internal/model"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/category"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/clip"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/cliptag"
	"github.com/lupinelegend/f1-radio-archive/internal/service/common"
)

const (
	DefaultLimit     = 1000
	DefaultPace      = 500 * time.Millisecond
	DefaultBatchSize = 100
	DefaultBatchWait = 2 * time.Second

	candidatePageSize = 1000
)

// Per-clip outcomes
const (
	StatusTagged        = metrics.ResultTagged
	StatusFailed        = metrics.ResultFailed
	StatusAlreadyTagged = metrics.ResultAlreadyTagged
	StatusNoMatch       = metrics.ResultNoMatch
)

// ErrNoCategories means the taxonomy has not been seeded
var ErrNoCategories = errors.New(errors.CodeNotFound, "no categories found. Run 'f1radio categories seed' first")

// Result is the outcome for one clip
type Result struct {
	ClipID     string   `json:"clip_id"`
	Status     string   `json:"status"`
	Categories []string `json:"categories,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Summary aggregates one AutoTag run. Total counts candidates examined.
type Summary struct {
	Total         int      `json:"total"`
	Tagged        int      `json:"tagged"`
	Failed        int      `json:"failed"`
	AlreadyTagged int      `json:"already_tagged"`
	NoMatch       int      `json:"no_match"`
	Results       []Result `json:"results"`
}

// TagAllOptions controls the repeated batch run
type TagAllOptions struct {
	BatchSize int
	Pause     time.Duration
}

// AutoTagService assigns taxonomy categories to transcribed clips
type AutoTagService interface {
	AutoTag(ctx context.Context, limit int) (*Summary, error)
	// TagAll runs AutoTag batches until nothing is left or a batch tags nothing
	TagAll(ctx context.Context, opts TagAllOptions) ([]*Summary, error)
}

type autoTagService struct {
	clips      clip.Repository
	categories category.Repository
	tags       cliptag.Repository
	classifier Classifier
	log        logrus.FieldLogger
	metrics    *metrics.PipelineMetrics
	pacer      common.Pacer
	sleep      common.SleepFunc
}

// Option customizes an AutoTagService
type Option func(*autoTagService)

// WithPacer replaces the default gate between model calls
func WithPacer(p common.Pacer) Option {
	return func(s *autoTagService) { s.pacer = p }
}

// WithSleep replaces the wait between TagAll batches
func WithSleep(sleep common.SleepFunc) Option {
	return func(s *autoTagService) { s.sleep = sleep }
}

// WithMetrics records per-clip tagging outcomes
func WithMetrics(m *metrics.PipelineMetrics) Option {
	return func(s *autoTagService) { s.metrics = m }
}

// NewAutoTagService creates a new AutoTagService
func NewAutoTagService(clips clip.Repository, categories category.Repository, tags cliptag.Repository, classifier Classifier, log logrus.FieldLogger, opts ...Option) AutoTagService {
	s := &autoTagService{
		clips:      clips,
		categories: categories,
		tags:       tags,
		classifier: classifier,
		log:        log,
		pacer:      common.NewPacer(DefaultPace),
		sleep:      common.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *autoTagService) AutoTag(ctx context.Context, limit int) (*Summary, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}
	s.log.WithField("categories", len(categories)).Info("loaded taxonomy")

	if limit <= 0 {
		limit = DefaultLimit
	}
	clips, err := s.findCandidates(ctx, limit)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Total: len(clips), Results: make([]Result, 0, len(clips))}
	if len(clips) == 0 {
		s.log.Info("no clips to tag")
		return summary, nil
	}

	byName := make(map[string]string, len(categories))
	for _, c := range categories {
		byName[c.Name] = c.ID
	}

	for i, c := range clips {
		log := s.log.WithFields(logrus.Fields{
			"clip_id":  c.ID,
			"position": i + 1,
			"total":    len(clips),
		})

		result, err := s.tagClip(ctx, log, c, categories, byName)
		if err != nil {
			return summary, err
		}
		summary.Results = append(summary.Results, result)

		switch result.Status {
		case StatusTagged:
			summary.Tagged++
		case StatusFailed:
			summary.Failed++
		case StatusAlreadyTagged:
			summary.AlreadyTagged++
		case StatusNoMatch:
			summary.NoMatch++
		}
		s.metrics.RecordTagging(result.Status)
	}

	s.log.WithFields(logrus.Fields{
		"total":          summary.Total,
		"tagged":         summary.Tagged,
		"failed":         summary.Failed,
		"already_tagged": summary.AlreadyTagged,
		"no_match":       summary.NoMatch,
	}).Info("auto-tagging finished")

	return summary, nil
}

// findCandidates pages newest-first through untagged transcribed clips and trims to limit
func (s *autoTagService) findCandidates(ctx context.Context, limit int) ([]*model.Clip, error) {
	var clips []*model.Clip
	for offset := 0; offset < limit; offset += candidatePageSize {
		page, err := s.clips.FindCandidates(ctx, model.ClipQuery{
			Transcript:    model.TranscriptPresent,
			ExcludeTagged: true,
			NewestFirst:   true,
			Limit:         candidatePageSize,
			Offset:        offset,
		})
		if err != nil {
			return nil, err
		}
		clips = append(clips, page...)
		if len(page) < candidatePageSize {
			break
		}
	}

	if len(clips) > limit {
		clips = clips[:limit]
	}
	return clips, nil
}

// tagClip only returns an error when the run must stop
func (s *autoTagService) tagClip(ctx context.Context, log logrus.FieldLogger, c *model.Clip, categories []*model.Category, byName map[string]string) (Result, error) {
	result := Result{ClipID: c.ID}

	// the candidate list may be stale by now
	count, err := s.tags.CountByClipID(ctx, c.ID)
	if err != nil {
		log.WithError(err).Warn("failed to check existing tags")
		result.Status = StatusFailed
		result.Error = err.Error()
		return result, nil
	}
	if count > 0 {
		log.Debug("already tagged, skipping")
		result.Status = StatusAlreadyTagged
		return result, nil
	}

	if err := s.pacer.Wait(ctx); err != nil {
		return result, err
	}

	transcript := ""
	if c.Transcript != nil {
		transcript = *c.Transcript
	}

	names, err := s.classifier.Classify(ctx, transcript, categories)
	if err != nil {
		log.WithError(err).Warn("classification failed")
		result.Status = StatusFailed
		result.Error = err.Error()
		return result, nil
	}

	seen := make(map[string]bool, len(names))
	var matched []string
	for _, name := range names {
		if _, ok := byName[name]; !ok || seen[name] {
			continue
		}
		seen[name] = true
		matched = append(matched, name)
	}

	if len(matched) == 0 {
		log.WithField("response", names).Info("no valid categories found")
		result.Status = StatusNoMatch
		return result, nil
	}

	for _, name := range matched {
		err := s.tags.Create(ctx, &model.ClipTag{ClipID: c.ID, CategoryID: byName[name]})
		if err == nil {
			continue
		}
		if errors.HasCode(err, errors.CodeConflict) {
			log.WithField("category", name).Debug("tag already exists")
			continue
		}
		log.WithError(err).Warn("failed to save tags")
		result.Status = StatusFailed
		result.Error = err.Error()
		return result, nil
	}

	log.WithField("categories", matched).Info("clip tagged")
	result.Status = StatusTagged
	result.Categories = matched
	return result, nil
}

func (s *autoTagService) TagAll(ctx context.Context, opts TagAllOptions) ([]*Summary, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	var summaries []*Summary
	for batch := 1; ; batch++ {
		s.log.WithField("batch", batch).Info("running tagging batch")

		summary, err := s.AutoTag(ctx, opts.BatchSize)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, summary)

		if summary.Total == 0 {
			s.log.Info("all clips have been tagged")
			return summaries, nil
		}
		if summary.Tagged == 0 {
			s.log.WithField("batch", batch).Warn("batch tagged nothing, stopping")
			return summaries, nil
		}

		if err := s.sleep(ctx, opts.Pause); err != nil {
			return summaries, err
		}
	}
}
