package tagging

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"

	"github.com/lupinelegend/f1-radio-archive/internal/errors"
	"github.com/lupinelegend/f1-radio-archive/internal/model"
	"github.com/lupinelegend/f1-radio-archive/internal/service/openai"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockClipRepository only serves candidate queries
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

// fakeCategories serves a fixed taxonomy
type fakeCategories struct {
	list []*model.Category
	err  error
}

func (f *fakeCategories) Upsert(ctx context.Context, c *model.Category) error {
	return nil
}

func (f *fakeCategories) List(ctx context.Context) ([]*model.Category, error) {
	return f.list, f.err
}

// memoryTags is an in-memory clip_tags table with a primary key on (clip, category)
type memoryTags struct {
	mu        sync.Mutex
	rows      []model.ClipTag
	createErr error
	// onCount runs before CountByClipID reads the table
	onCount func(clipID string)
}

func (m *memoryTags) CountByClipID(ctx context.Context, clipID string) (int, error) {
	if m.onCount != nil {
		m.onCount(clipID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.ClipID == clipID {
			n++
		}
	}
	return n, nil
}

func (m *memoryTags) Create(ctx context.Context, tag *model.ClipTag) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ClipID == tag.ClipID && r.CategoryID == tag.CategoryID {
			return errors.New(errors.CodeConflict, "clip already has this category")
		}
	}
	tag.CreatedAt = time.Now()
	m.rows = append(m.rows, *tag)
	return nil
}

func (m *memoryTags) ListClipIDs(ctx context.Context, limit, offset int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for i := offset; i < len(m.rows) && i < offset+limit; i++ {
		ids = append(ids, m.rows[i].ClipID)
	}
	return ids, nil
}

func (m *memoryTags) DeleteAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.rows))
	m.rows = nil
	return n, nil
}

func (m *memoryTags) add(clipID, categoryID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, model.ClipTag{ClipID: clipID, CategoryID: categoryID})
}

func (m *memoryTags) forClip(clipID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, r := range m.rows {
		if r.ClipID == clipID {
			ids = append(ids, r.CategoryID)
		}
	}
	return ids
}

// mockClassifier for testing
type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Classify(ctx context.Context, transcript string, categories []*model.Category) ([]string, error) {
	args := m.Called(ctx, transcript, categories)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
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

// countingPacer never blocks
type countingPacer struct {
	waits int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}
