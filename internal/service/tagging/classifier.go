package tagging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lupinelegend/f1-radio-archive/internal/errors"
	"github.com/lupinelegend/f1-radio-archive/internal/model"
	"github.com/lupinelegend/f1-radio-archive/internal/service/openai"
)

const (
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 100
	MaxCategories      = 3
)

// ParseError reports a model response that is not a JSON array of strings
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON response: %s", e.Raw)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseCategoryNames accepts exactly a JSON array of strings
func ParseCategoryNames(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	if names == nil {
		// "null" decodes without error
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("expected a JSON array")}
	}
	return names, nil
}

// Classifier asks the chat model which categories fit a transcript
type Classifier interface {
	Classify(ctx context.Context, transcript string, categories []*model.Category) ([]string, error)
}

type classifier struct {
	client openai.Client
	model  string
}

// NewClassifier creates a Classifier using the given chat model
func NewClassifier(client openai.Client, chatModel string) Classifier {
	return &classifier{client: client, model: chatModel}
}

func (c *classifier) Classify(ctx context.Context, transcript string, categories []*model.Category) ([]string, error) {
	content, err := c.client.CreateChatCompletion(ctx, openai.ChatRequest{
		Model: c.model,
		Messages: []openai.Message{
			{Role: "system", Content: BuildSystemPrompt(categories)},
			{Role: "user", Content: BuildUserPrompt(transcript)},
		},
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExternal, "classification request failed")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New(errors.CodeExternal, "no response from AI")
	}
	return ParseCategoryNames(content)
}

// BuildSystemPrompt lists every category with its description
func BuildSystemPrompt(categories []*model.Category) string {
	var b strings.Builder
	b.WriteString("You are an F1 radio expert. Analyze radio transcripts and assign appropriate categories.\n\n")
	b.WriteString("Available categories:\n")
	for i, cat := range categories {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s: %s", cat.Name, cat.Description)
	}
	b.WriteString("\n\nReturn ONLY a JSON array of category names that apply. Example: [\"Rage\", \"Complaint\"]\n")
	fmt.Fprintf(&b, "Be selective - only choose categories that clearly apply. Maximum %d categories per clip.", MaxCategories)
	return b.String()
}

// BuildUserPrompt quotes the transcript verbatim
func BuildUserPrompt(transcript string) string {
	return fmt.Sprintf("Categorize this F1 radio message: \"%s\"", transcript)
}
