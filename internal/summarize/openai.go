// Package summarize turns raw scraped project records into structured
// summaries using an OpenAI-compatible chat model.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"hackmatch/internal/domain"
)

const promptTemplate = `Project Title: %s
Project Description: %s
Project Story: %s

Extract the main points in simple words (basically what the project does) and return the data in the following format:
{
    "title": str,
    "summary": str,
    "features": List[str]
}`

// Config configures the summarizer client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Summarizer asks a chat model for a JSON {title, summary, features}
// digest of one project.
type Summarizer struct {
	client *openai.Client
	model  string
}

func New(cfg Config) (*Summarizer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("summarizer api key is required")
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Summarizer{client: openai.NewClientWithConfig(clientConfig), model: model}, nil
}

// Summarize produces the structured summary for one raw project. Output
// that cannot be parsed into the expected shape is reported as
// domain.ErrMalformedSummary; callers keep the raw fields and move on.
func (s *Summarizer) Summarize(ctx context.Context, raw *domain.RawProject) (*domain.ProjectSummary, error) {
	prompt := fmt.Sprintf(promptTemplate, raw.Title, raw.Description, raw.Story)
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "summarizer chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.Wrap(domain.ErrMalformedSummary, "no choices in response")
	}
	return Parse(resp.Choices[0].Message.Content)
}

// Parse decodes the model's JSON reply, tolerating markdown code fences.
func Parse(content string) (*domain.ProjectSummary, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var sum domain.ProjectSummary
	if err := json.Unmarshal([]byte(content), &sum); err != nil {
		return nil, errors.Wrapf(domain.ErrMalformedSummary, "decode summary: %v", err)
	}
	if sum.Title == "" && sum.Summary == "" && len(sum.Features) == 0 {
		return nil, errors.Wrap(domain.ErrMalformedSummary, "summary has no usable fields")
	}
	return &sum, nil
}

var _ domain.Summarizer = (*Summarizer)(nil)
