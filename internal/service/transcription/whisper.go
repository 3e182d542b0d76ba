package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lupinelegend/f1-radio-archive/internal/errors"
	"github.com/lupinelegend/f1-radio-archive/internal/model"
	"github.com/lupinelegend/f1-radio-archive/internal/service/common"
	"github.com/lupinelegend/f1-radio-archive/internal/service/openai"
)

const (
	EngineAPI   = "api"
	EngineLocal = "local"

	// DefaultLanguage is the hint sent with every recording
	DefaultLanguage = "en"
)

// WhisperService defines operations for speech-to-text
type WhisperService interface {
	// TranscribeAudio returns the plain-text transcript of a local audio file
	TranscribeAudio(ctx context.Context, audioPath string, language string) (string, error)
}

// apiWhisperService sends audio to the hosted transcription endpoint
type apiWhisperService struct {
	client openai.Client
	model  string
}

// NewAPIWhisperService creates a WhisperService backed by the OpenAI API
func NewAPIWhisperService(client openai.Client, model string) WhisperService {
	return &apiWhisperService{client: client, model: model}
}

func (s *apiWhisperService) TranscribeAudio(ctx context.Context, audioPath string, language string) (string, error) {
	if audioPath == "" {
		return "", errors.New(errors.CodeInvalidArg, "audio path is required")
	}

	text, err := s.client.CreateTranscription(ctx, openai.TranscriptionRequest{
		FilePath:       audioPath,
		Model:          s.model,
		Language:       language,
		ResponseFormat: "text",
	})
	if err != nil {
		return "", errors.Wrap(err, errors.CodeExternal, fmt.Sprintf("transcription failed with model '%s'", s.model))
	}
	return strings.TrimSpace(text), nil
}

// localWhisperService runs the whisper CLI
type localWhisperService struct {
	cmdRunner common.CmdRunner
	model     string
}

// NewLocalWhisperService creates a WhisperService that shells out to the whisper CLI
func NewLocalWhisperService(cmdRunner common.CmdRunner, model string) WhisperService {
	if cmdRunner == nil {
		cmdRunner = common.NewCmdRunner()
	}
	return &localWhisperService{
		cmdRunner: cmdRunner,
		model:     model,
	}
}

// NewWhisperService picks the engine by name
func NewWhisperService(engine string, client openai.Client, cmdRunner common.CmdRunner, model string) (WhisperService, error) {
	switch engine {
	case "", EngineAPI:
		if client == nil {
			return nil, errors.New(errors.CodeConfig, "OpenAI client is required for the api engine")
		}
		return NewAPIWhisperService(client, model), nil
	case EngineLocal:
		return NewLocalWhisperService(cmdRunner, model), nil
	default:
		return nil, errors.New(errors.CodeInvalidArg, fmt.Sprintf("unknown engine '%s'. Use 'api' or 'local'", engine))
	}
}

func (s *localWhisperService) TranscribeAudio(ctx context.Context, audioPath string, language string) (string, error) {
	if audioPath == "" {
		return "", errors.New(errors.CodeInvalidArg, "audio path is required")
	}

	// whisper writes <basename>.json next to the other outputs; keep them beside the audio
	outputDir := filepath.Dir(audioPath)

	args := []string{
		audioPath,
		"--model", s.model,
		"--output_format", "json",
		"--output_dir", outputDir,
		"--temperature", "0",
	}
	if language != "" && language != "auto" {
		args = append(args, "--language", language)
	}

	if _, err := s.cmdRunner.Run(ctx, "whisper", args...); err != nil {
		return "", errors.Wrap(err, errors.CodeExternal, s.formatWhisperError(err, audioPath, language))
	}

	baseName := filepath.Base(audioPath)
	baseName = strings.TrimSuffix(baseName, filepath.Ext(baseName))
	jsonPath := filepath.Join(outputDir, baseName+".json")

	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to read whisper output")
	}

	var result model.WhisperResult
	if err := json.Unmarshal(jsonData, &result); err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to parse whisper output")
	}

	return strings.TrimSpace(result.Text), nil
}

// formatWhisperError turns common whisper CLI failures into actionable messages
func (s *localWhisperService) formatWhisperError(err error, audioPath, language string) string {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "executable file not found") ||
		(strings.Contains(errMsg, "No such file or directory") && strings.Contains(errMsg, "whisper")):
		return "Whisper is not installed. Please install OpenAI Whisper: pip install openai-whisper, or use --engine api"
	case strings.Contains(errMsg, "No module named"):
		return "Whisper dependencies missing. Please reinstall: pip install --upgrade openai-whisper"
	case strings.Contains(errMsg, "not enough memory") || strings.Contains(errMsg, "OutOfMemoryError"):
		return fmt.Sprintf("insufficient memory for model '%s'. Try a smaller model (tiny, base, small)", s.model)
	case strings.Contains(errMsg, "Invalid language"):
		return fmt.Sprintf("unsupported language '%s'", language)
	case strings.Contains(errMsg, "Invalid model"):
		return fmt.Sprintf("unsupported model '%s'. Available models: tiny, base, small, medium, large", s.model)
	case strings.Contains(errMsg, "Unsupported format") || strings.Contains(errMsg, "format not supported"):
		return fmt.Sprintf("unsupported audio format: %s", filepath.Ext(audioPath))
	default:
		return fmt.Sprintf("transcription failed with model '%s' - %s", s.model, errMsg)
	}
}
