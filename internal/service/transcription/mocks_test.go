package transcription

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"

	"github.com/lupinelegend/f1-radio-archive/internal/model"
	"github.com/lupinelegend/f1-radio-archive/internal/service/openai"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockClipRepository for testing
type mockClipRepository struct {
	mock.Mock
}

func (m *mockClipRepository) FindCandidates(ctx context.Context, q model.ClipQuery) ([]*model.Clip, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Clip), args.Error(1)
}

func (m *mockClipRepository) Count(ctx context.Context, q model.ClipQuery) (int, error) {
	args := m.Called(ctx, q)
	return args.Int(0), args.Error(1)
}

func (m *mockClipRepository) GetByID(ctx context.Context, id string) (*model.Clip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Clip), args.Error(1)
}

func (m *mockClipRepository) ExistsByAudioURL(ctx context.Context, audioURL string) (bool, error) {
	args := m.Called(ctx, audioURL)
	return args.Bool(0), args.Error(1)
}

func (m *mockClipRepository) InsertIfAbsent(ctx context.Context, c *model.Clip) (bool, error) {
	args := m.Called(ctx, c)
	return args.Bool(0), args.Error(1)
}

func (m *mockClipRepository) UpdateTranscript(ctx context.Context, id, transcript string) error {
	args := m.Called(ctx, id, transcript)
	return args.Error(0)
}

func (m *mockClipRepository) DeleteBatch(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

// mockWhisperService for testing
type mockWhisperService struct {
	mock.Mock
}

func (m *mockWhisperService) TranscribeAudio(ctx context.Context, audioPath string, language string) (string, error) {
	args := m.Called(ctx, audioPath, language)
	return args.String(0), args.Error(1)
}

// mockAudioDownloadService for testing
type mockAudioDownloadService struct {
	mock.Mock
}

func (m *mockAudioDownloadService) DownloadAudio(ctx context.Context, audioURL string, outputDir string) (string, error) {
	args := m.Called(ctx, audioURL, outputDir)
	if fn, ok := args.Get(0).(func(context.Context, string, string) string); ok {
		return fn(ctx, audioURL, outputDir), args.Error(1)
	}
	return args.String(0), args.Error(1)
}

// mockOpenAIClient for testing
type mockOpenAIClient struct {
	mock.Mock
}

func (m *mockOpenAIClient) CreateChatCompletion(ctx context.Context, req openai.ChatRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockOpenAIClient) CreateTranscription(ctx context.Context, req openai.TranscriptionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockOpenAIClient) ListModels(ctx context.Context) ([]openai.Model, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]openai.Model), args.Error(1)
}

// fakeTimer fires immediately and remembers every requested delay
type fakeTimer struct {
	mu     sync.Mutex
	delays []time.Duration
	c      chan time.Time
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{c: make(chan time.Time, 1)}
}

func (t *fakeTimer) Start(d time.Duration) {
	t.mu.Lock()
	t.delays = append(t.delays, d)
	t.mu.Unlock()
	t.c <- time.Time{}
}

func (t *fakeTimer) Stop() {}

func (t *fakeTimer) C() <-chan time.Time {
	return t.c
}

func (t *fakeTimer) Delays() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.delays...)
}

// countingPacer never blocks
type countingPacer struct {
	waits int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}

// fakeCmdRunner records the invocation and runs an optional side effect
type fakeCmdRunner struct {
	name   string
	args   []string
	effect func(args []string) error
}

func (r *fakeCmdRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.name = name
	r.args = args
	if r.effect != nil {
		return nil, r.effect(args)
	}
	return nil, nil
}
