package speech

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type WhisperClient struct {
	client *openai.Client
	model  string
}

// NewWhisperClient builds an OpenAI transcription client. baseURL may be empty.
func NewWhisperClient(apiKey, model, baseURL string) (*WhisperClient, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}
	if model == "" {
		model = openai.Whisper1
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &WhisperClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

func (c *WhisperClient) Transcribe(ctx context.Context, filePath, languageHint string) (Transcription, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: filePath,
		Language: languageHint,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return Transcription{}, fmt.Errorf("whisper status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return Transcription{}, fmt.Errorf("whisper request: %w", err)
	}

	lang := resp.Language
	if languageHint != "" {
		lang = languageHint
	}

	return Transcription{
		Text:     resp.Text,
		Language: lang,
		Duration: resp.Duration,
	}, nil
}
