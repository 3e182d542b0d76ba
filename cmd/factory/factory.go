package factory

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lupinelegend/f1-radio-archive/internal/config"
	"github.com/lupinelegend/f1-radio-archive/internal/logger"
	"github.com/lupinelegend/f1-radio-archive/internal/metrics"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/category"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/clip"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/cliptag"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/driver"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/race"
	"github.com/lupinelegend/f1-radio-archive/internal/service/common"
	"github.com/lupinelegend/f1-radio-archive/internal/service/maintenance"
	"github.com/lupinelegend/f1-radio-archive/internal/service/openai"
	"github.com/lupinelegend/f1-radio-archive/internal/service/openf1"
	"github.com/lupinelegend/f1-radio-archive/internal/service/tagging"
	"github.com/lupinelegend/f1-radio-archive/internal/service/transcription"
)

const openF1Timeout = 30 * time.Second

// Options selects which optional dependencies to build
type Options struct {
	// NeedOpenAI fails fast when the API key is missing
	NeedOpenAI bool
	// SkipDatabase builds only the database-free services
	SkipDatabase bool
	// Engine is the transcription engine: api (default) or local
	Engine string
	// WhisperModel overrides the model used by the local engine
	WhisperModel string
	// LogLevel and LogFormat override the configured values when set
	LogLevel  string
	LogFormat string
}

// Services bundles everything the commands use. Fields are nil when their
// dependencies were not requested.
type Services struct {
	Config        *config.Config
	Log           *logger.Logger
	Registry      *prometheus.Registry
	Metrics       *metrics.PipelineMetrics
	OpenAI        openai.Client
	Sync          openf1.SyncService
	Transcription transcription.TranscriptionService
	AutoTag       tagging.AutoTagService
	Maintenance   maintenance.Service
}

// Loader builds Services and a cleanup func
type Loader func(ctx context.Context, opts Options) (*Services, func(), error)

// ServiceFactory creates service instances from the loaded configuration
type ServiceFactory struct{}

// NewServiceFactory creates a new service factory
func NewServiceFactory() *ServiceFactory {
	return &ServiceFactory{}
}

// CreateServices loads configuration and wires every requested service
func (f *ServiceFactory) CreateServices(ctx context.Context, opts Options) (*Services, func(), error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.NeedOpenAI {
		if err := cfg.RequireOpenAI(); err != nil {
			return nil, nil, err
		}
	}

	level, format := cfg.LogLevel, cfg.LogFormat
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		format = opts.LogFormat
	}
	log := logger.New(logger.Options{Level: level, Format: format})

	registry := prometheus.NewRegistry()
	m, err := metrics.NewPipelineMetrics(registry)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	svc := &Services{
		Config:   cfg,
		Log:      log,
		Registry: registry,
		Metrics:  m,
	}

	if cfg.OpenAIAPIKey != "" {
		svc.OpenAI, err = openai.NewClient(openai.Options{
			BaseURL: cfg.OpenAIBaseURL,
			APIKey:  cfg.OpenAIAPIKey,
			Log:     log,
		})
		if err != nil {
			return nil, nil, err
		}
	}

	whisper, err := f.whisperService(cfg, svc.OpenAI, opts)
	if err != nil {
		return nil, nil, err
	}
	downloader := transcription.NewAudioDownloadService(nil)

	if opts.SkipDatabase {
		if whisper != nil {
			svc.Transcription = transcription.NewTranscriptionService(nil, downloader, whisper,
				log.WithField("service", "transcription"), transcription.WithMetrics(m))
		}
		return svc, func() {}, nil
	}

	dbPool, err := config.NewDatabasePool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	f.wireCatalog(svc, dbPool, whisper, downloader)

	cleanup := func() {
		config.CloseDatabasePool(dbPool)
	}
	return svc, cleanup, nil
}

func (f *ServiceFactory) whisperService(cfg *config.Config, client openai.Client, opts Options) (transcription.WhisperService, error) {
	if opts.Engine == transcription.EngineLocal {
		model := opts.WhisperModel
		if model == "" {
			model = "base"
		}
		return transcription.NewWhisperService(opts.Engine, nil, common.NewCmdRunner(), model)
	}
	if client == nil {
		// commands that never transcribe run without an API key
		return nil, nil
	}
	return transcription.NewWhisperService(opts.Engine, client, nil, cfg.TranscriptionModel)
}

func (f *ServiceFactory) wireCatalog(svc *Services, dbPool *pgxpool.Pool, whisper transcription.WhisperService, downloader transcription.AudioDownloadService) {
	log := svc.Log
	cfg := svc.Config

	drivers := driver.NewRepository(dbPool)
	races := race.NewRepository(dbPool)
	clips := clip.NewRepository(dbPool)
	categories := category.NewRepository(dbPool)
	tags := cliptag.NewRepository(dbPool)

	openF1 := openf1.NewClient(cfg.OpenF1BaseURL, &http.Client{Timeout: openF1Timeout})
	svc.Sync = openf1.NewSyncService(openF1, drivers, races, clips, log.WithField("service", "sync"), svc.Metrics)

	if whisper != nil {
		svc.Transcription = transcription.NewTranscriptionService(clips, downloader, whisper,
			log.WithField("service", "transcription"), transcription.WithMetrics(svc.Metrics))
	}

	if svc.OpenAI != nil {
		classifier := tagging.NewClassifier(svc.OpenAI, cfg.ChatModel)
		svc.AutoTag = tagging.NewAutoTagService(clips, categories, tags, classifier,
			log.WithField("service", "tagging"), tagging.WithMetrics(svc.Metrics))
	}

	svc.Maintenance = maintenance.NewService(clips, categories, tags, log.WithField("service", "maintenance"))
}
