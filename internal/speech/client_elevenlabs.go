package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/Vovarama1992/voxbridge/internal/languages"
)

const (
	elevenLabsURL = "https://api.elevenlabs.io/v1/text-to-speech"
	// flash v2.5 is the model family that honours language_code
	defaultElevenLabsModel = "eleven_flash_v2_5"
	// Rachel
	defaultElevenLabsVoice = "EXAVITQu4vr4xnSDxMaL"
)

type ElevenLabsClient struct {
	apiKey   string
	voiceID  string
	modelID  string
	endpoint string
	httpCli  *http.Client
}

func NewElevenLabsClient(apiKey, voiceID, modelID, endpoint string) (*ElevenLabsClient, error) {
	if apiKey == "" {
		return nil, errors.New("ELEVENLABS_API_KEY not set")
	}
	if voiceID == "" {
		voiceID = defaultElevenLabsVoice
	}
	if modelID == "" {
		modelID = defaultElevenLabsModel
	}
	if endpoint == "" {
		endpoint = elevenLabsURL
	}

	return &ElevenLabsClient{
		apiKey:   apiKey,
		voiceID:  voiceID,
		modelID:  modelID,
		endpoint: endpoint,
		httpCli:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// TEXT → SPEECH
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{
		"text":          text,
		"model_id":      c.modelID,
		"language_code": languages.BaseTag(language),
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s", c.endpoint, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("elevenlabs error: %s", string(b))
	}

	return io.ReadAll(resp.Body)
}
