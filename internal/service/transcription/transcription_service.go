package transcription

import (
	"context"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/lupinelegend/f1-radio-archive/internal/errors"
	"github.com/lupinelegend/f1-radio-archive/internal/metrics"
	"github.com/lupinelegend/f1-radio-archive/internal/model"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/clip"
	"github.com/lupinelegend/f1-radio-archive/internal/service/common"
)

const (
	DefaultLimit          = 10
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 2 * time.Second
	DefaultPace           = time.Second

	previewLength = 100
)

// Selector picks the clips to transcribe. ClipID wins over Limit.
type Selector struct {
	ClipID string `json:"clipId,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// Result is the outcome for one clip
type Result struct {
	ClipID     string `json:"id"`
	Title      string `json:"title"`
	Success    bool   `json:"success"`
	Transcript string `json:"transcript,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Summary aggregates one run
type Summary struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// TranscriptionService fills in missing clip transcripts
type TranscriptionService interface {
	Transcribe(ctx context.Context, sel Selector) (*Summary, error)
	// TranscribeURL downloads and transcribes one recording without touching the store
	TranscribeURL(ctx context.Context, audioURL string) (string, error)
}

type transcriptionService struct {
	clips      clip.Repository
	downloader AudioDownloadService
	whisper    WhisperService
	log        logrus.FieldLogger
	metrics    *metrics.PipelineMetrics

	pacer          common.Pacer
	timer          backoff.Timer
	language       string
	maxAttempts    int
	initialBackoff time.Duration
	tempDir        string
}

// Option customizes a TranscriptionService
type Option func(*transcriptionService)

// WithPacer replaces the default one-second gate between clips
func WithPacer(p common.Pacer) Option {
	return func(s *transcriptionService) { s.pacer = p }
}

// WithRetryTimer replaces the wall-clock timer used between attempts
func WithRetryTimer(t backoff.Timer) Option {
	return func(s *transcriptionService) { s.timer = t }
}

// WithMetrics records per-clip outcomes
func WithMetrics(m *metrics.PipelineMetrics) Option {
	return func(s *transcriptionService) { s.metrics = m }
}

// WithTempDir sets the parent of the per-attempt scratch directories
func WithTempDir(dir string) Option {
	return func(s *transcriptionService) { s.tempDir = dir }
}

// WithRetry overrides the attempt budget and the first backoff delay
func WithRetry(maxAttempts int, initial time.Duration) Option {
	return func(s *transcriptionService) {
		s.maxAttempts = maxAttempts
		s.initialBackoff = initial
	}
}

// NewTranscriptionService creates a new TranscriptionService
func NewTranscriptionService(clips clip.Repository, downloader AudioDownloadService, whisper WhisperService, log logrus.FieldLogger, opts ...Option) TranscriptionService {
	s := &transcriptionService{
		clips:          clips,
		downloader:     downloader,
		whisper:        whisper,
		log:            log,
		pacer:          common.NewPacer(DefaultPace),
		language:       DefaultLanguage,
		maxAttempts:    DefaultMaxAttempts,
		initialBackoff: DefaultInitialBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *transcriptionService) Transcribe(ctx context.Context, sel Selector) (*Summary, error) {
	clips, err := s.selectClips(ctx, sel)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Total: len(clips), Results: make([]Result, 0, len(clips))}
	if len(clips) == 0 {
		s.log.Info("no clips need transcription")
		return summary, nil
	}

	s.log.WithField("count", len(clips)).Info("transcribing clips")

	for i, c := range clips {
		if err := s.pacer.Wait(ctx); err != nil {
			return summary, err
		}

		log := s.log.WithFields(logrus.Fields{
			"clip_id":  c.ID,
			"title":    c.Title,
			"position": i + 1,
		})

		result := s.transcribeClip(ctx, log, c)
		summary.Results = append(summary.Results, result)
		if result.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}

	s.log.WithFields(logrus.Fields{
		"total":      summary.Total,
		"successful": summary.Successful,
		"failed":     summary.Failed,
	}).Info("transcription finished")

	return summary, nil
}

// selectClips returns the requested clip regardless of its transcript, or the
// newest clips still missing one. An unknown ClipID is a NOT_FOUND error.
func (s *transcriptionService) selectClips(ctx context.Context, sel Selector) ([]*model.Clip, error) {
	if sel.ClipID != "" {
		c, err := s.clips.GetByID(ctx, sel.ClipID)
		if err != nil {
			return nil, err
		}
		return []*model.Clip{c}, nil
	}

	limit := sel.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return s.clips.FindCandidates(ctx, model.ClipQuery{
		Transcript:  model.TranscriptMissing,
		NewestFirst: true,
		Limit:       limit,
	})
}

func (s *transcriptionService) transcribeClip(ctx context.Context, log logrus.FieldLogger, c *model.Clip) Result {
	start := time.Now()
	result := Result{ClipID: c.ID, Title: c.Title}

	text, err := s.transcribeWithRetry(ctx, log, c.AudioURL)
	if err == nil {
		err = s.clips.UpdateTranscript(ctx, c.ID, text)
	}
	if err != nil {
		log.WithError(err).Warn("failed to transcribe clip")
		result.Error = err.Error()
		s.metrics.RecordTranscription(metrics.ResultFailed, time.Since(start))
		return result
	}

	log.WithField("chars", len(text)).Info("transcript saved")
	result.Success = true
	result.Transcript = preview(text)
	s.metrics.RecordTranscription(metrics.ResultSuccess, time.Since(start))
	return result
}

func (s *transcriptionService) TranscribeURL(ctx context.Context, audioURL string) (string, error) {
	return s.transcribeWithRetry(ctx, s.log.WithField("audio_url", audioURL), audioURL)
}

// transcribeWithRetry runs download+transcribe with exponential backoff between attempts
func (s *transcriptionService) transcribeWithRetry(ctx context.Context, log logrus.FieldLogger, audioURL string) (string, error) {
	var text string
	attempt := 0

	operation := func() error {
		attempt++
		t, err := s.transcribeOnce(ctx, audioURL)
		if err != nil {
			if errors.HasCode(err, errors.CodeInvalidArg) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		text = t
		return nil
	}

	notify := func(err error, next time.Duration) {
		log.WithError(err).WithFields(logrus.Fields{
			"attempt":  attempt,
			"retry_in": next,
		}).Warn("transcription attempt failed, retrying")
		s.metrics.RecordTranscriptionRetry()
	}

	if err := backoff.RetryNotifyWithTimer(operation, s.newBackOff(ctx), notify, s.timer); err != nil {
		return "", err
	}
	return text, nil
}

func (s *transcriptionService) newBackOff(ctx context.Context) backoff.BackOffContext {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.initialBackoff
	exp.RandomizationFactor = 0
	exp.Multiplier = 2
	exp.MaxInterval = 60 * time.Second
	exp.MaxElapsedTime = 0

	retries := s.maxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}

// transcribeOnce is a single attempt; its scratch directory never outlives it
func (s *transcriptionService) transcribeOnce(ctx context.Context, audioURL string) (string, error) {
	dir, err := os.MkdirTemp(s.tempDir, "f1radio-audio-*")
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to create temp directory")
	}
	defer os.RemoveAll(dir)

	audioPath, err := s.downloader.DownloadAudio(ctx, audioURL, dir)
	if err != nil {
		return "", err
	}

	text, err := s.whisper.TranscribeAudio(ctx, audioPath, s.language)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", errors.New(errors.CodeExternal, "transcription returned no text")
	}
	return text, nil
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength])
}
