package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://openai.test"

func setupClient(t *testing.T) Client {
	t.Helper()
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	log, _ := test.NewNullLogger()
	c, err := NewClient(Options{BaseURL: testBaseURL + "/", APIKey: "sk-test", HTTPClient: httpClient, Log: log})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(Options{APIKey: "  "})
	assert.Error(t, err)
}

func TestCreateChatCompletion(t *testing.T) {
	c := setupClient(t)

	var captured ChatRequest
	httpmock.RegisterResponder("POST", testBaseURL+"/v1/chat/completions",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
			if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
				return nil, err
			}
			return httpmock.NewJsonResponse(200, map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"role": "assistant", "content": "  [\"Overtake\"]\n"}},
				},
			})
		})

	out, err := c.CreateChatCompletion(context.Background(), ChatRequest{
		Model:       "gpt-4o-mini",
		Messages:    []Message{{Role: "system", Content: "sys"}, {Role: "user", Content: "usr"}},
		Temperature: 0.3,
		MaxTokens:   100,
	})
	require.NoError(t, err)
	assert.Equal(t, `["Overtake"]`, out)
	assert.Equal(t, 0.3, captured.Temperature)
	assert.Equal(t, 100, captured.MaxTokens)
	assert.Len(t, captured.Messages, 2)
}

func TestCreateChatCompletion_Errors(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		c := setupClient(t)
		httpmock.RegisterResponder("POST", testBaseURL+"/v1/chat/completions",
			httpmock.NewStringResponder(429, `{"error":"rate limited"}`))

		_, err := c.CreateChatCompletion(context.Background(), ChatRequest{Model: "m"})
		var httpErr *HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, 429, httpErr.HTTPStatusCode())
		assert.Contains(t, httpErr.Body, "rate limited")
	})

	t.Run("no choices", func(t *testing.T) {
		c := setupClient(t)
		httpmock.RegisterResponder("POST", testBaseURL+"/v1/chat/completions",
			httpmock.NewStringResponder(200, `{"choices":[]}`))

		_, err := c.CreateChatCompletion(context.Background(), ChatRequest{Model: "m"})
		assert.ErrorContains(t, err, "no choices")
	})
}

func TestCreateTranscription(t *testing.T) {
	c := setupClient(t)

	audioPath := filepath.Join(t.TempDir(), "radio.mp3")
	require.NoError(t, os.WriteFile(audioPath, []byte("ID3-fake-audio"), 0644))

	httpmock.RegisterResponder("POST", testBaseURL+"/v1/audio/transcriptions",
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, req.ParseMultipartForm(1<<20))
			assert.Equal(t, "whisper-1", req.FormValue("model"))
			assert.Equal(t, "en", req.FormValue("language"))
			assert.Equal(t, "text", req.FormValue("response_format"))

			file, header, err := req.FormFile("file")
			require.NoError(t, err)
			defer file.Close()
			data, _ := io.ReadAll(file)
			assert.Equal(t, "radio.mp3", header.Filename)
			assert.Equal(t, "ID3-fake-audio", string(data))

			return httpmock.NewStringResponse(200, "Box box, box box.\n"), nil
		})

	text, err := c.CreateTranscription(context.Background(), TranscriptionRequest{
		FilePath:       audioPath,
		Model:          "whisper-1",
		Language:       "en",
		ResponseFormat: "text",
	})
	require.NoError(t, err)
	assert.Equal(t, "Box box, box box.", text)
}

func TestCreateTranscription_JSONFormat(t *testing.T) {
	c := setupClient(t)

	audioPath := filepath.Join(t.TempDir(), "radio.mp3")
	require.NoError(t, os.WriteFile(audioPath, []byte("audio"), 0644))

	httpmock.RegisterResponder("POST", testBaseURL+"/v1/audio/transcriptions",
		httpmock.NewStringResponder(200, `{"text":" Copy. "}`))

	text, err := c.CreateTranscription(context.Background(), TranscriptionRequest{FilePath: audioPath, Model: "whisper-1"})
	require.NoError(t, err)
	assert.Equal(t, "Copy.", text)
}

func TestCreateTranscription_MissingFile(t *testing.T) {
	c := setupClient(t)

	_, err := c.CreateTranscription(context.Background(), TranscriptionRequest{FilePath: "/nonexistent/a.mp3"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "open audio file"))
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestListModels(t *testing.T) {
	c := setupClient(t)

	httpmock.RegisterResponder("GET", testBaseURL+"/v1/models",
		httpmock.NewStringResponder(200, `{"data":[{"id":"gpt-4o-mini","owned_by":"system"},{"id":"whisper-1","owned_by":"openai-internal"}]}`))

	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "gpt-4o-mini", models[0].ID)
}
