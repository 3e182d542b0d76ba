package transcription

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/lupinelegend/f1-radio-archive/internal/errors"
)

const defaultDownloadTimeout = 60 * time.Second

// AudioDownloadService defines operations for fetching radio recordings
type AudioDownloadService interface {
	// DownloadAudio stores the recording at audioURL in outputDir and returns the file path
	DownloadAudio(ctx context.Context, audioURL string, outputDir string) (string, error)
}

// audioDownloadService implements AudioDownloadService over plain HTTP
type audioDownloadService struct {
	httpClient *http.Client
}

// NewAudioDownloadService creates a new AudioDownloadService. A nil client gets a default one.
func NewAudioDownloadService(httpClient *http.Client) AudioDownloadService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultDownloadTimeout}
	}
	return &audioDownloadService{httpClient: httpClient}
}

// DownloadAudio downloads the recording. Non-2xx responses and empty bodies are errors.
func (s *audioDownloadService) DownloadAudio(ctx context.Context, audioURL string, outputDir string) (string, error) {
	if audioURL == "" {
		return "", errors.New(errors.CodeInvalidArg, "audio URL is required")
	}
	if outputDir == "" {
		return "", errors.New(errors.CodeInvalidArg, "output directory is required")
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to create output directory")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInvalidArg, fmt.Sprintf("invalid audio URL: %s", audioURL))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeExternal, "failed to download audio")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.New(errors.CodeExternal,
			fmt.Sprintf("failed to download audio: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	audioPath := filepath.Join(outputDir, audioFileName(audioURL))
	f, err := os.Create(audioPath)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to create audio file")
	}

	n, err := io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", errors.Wrap(err, errors.CodeExternal, "failed to write audio file")
	}
	if n == 0 {
		return "", errors.New(errors.CodeExternal, "downloaded audio is empty")
	}

	return audioPath, nil
}

// audioFileName keeps the recording's own name so the transcription API can sniff the format
func audioFileName(audioURL string) string {
	u, err := url.Parse(audioURL)
	if err == nil {
		if name := path.Base(u.Path); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return "audio.mp3"
}
