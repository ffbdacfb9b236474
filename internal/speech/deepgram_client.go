package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
)

const deepgramURL = "https://api.deepgram.com/v1/listen"

type DeepgramClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewDeepgramClient(apiKey, endpoint string) (*DeepgramClient, error) {
	if apiKey == "" {
		return nil, errors.New("DEEPGRAM_API_KEY not set")
	}
	if endpoint == "" {
		endpoint = deepgramURL
	}

	return &DeepgramClient{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (c *DeepgramClient) Transcribe(ctx context.Context, filePath, languageHint string) (Transcription, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return Transcription{}, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	q := url.Values{}
	q.Set("model", "nova-2")
	q.Set("smart_format", "true")
	if languageHint != "" {
		q.Set("language", languageHint)
	} else {
		q.Set("detect_language", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?"+q.Encode(), f)
	if err != nil {
		return Transcription{}, err
	}

	contentType := mime.TypeByExtension(filepath.Ext(filePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return Transcription{}, fmt.Errorf("deepgram request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return Transcription{}, fmt.Errorf("deepgram error: %s", body)
	}

	var parsed struct {
		Metadata struct {
			Duration float64 `json:"duration"`
		} `json:"metadata"`
		Results struct {
			Channels []struct {
				DetectedLanguage string `json:"detected_language"`
				Alternatives     []struct {
					Transcript string `json:"transcript"`
				} `json:"alternatives"`
			} `json:"channels"`
		} `json:"results"`
	}

	if err := json.Unmarshal(body, &parsed); err != nil {
		return Transcription{}, fmt.Errorf("decode deepgram: %w", err)
	}

	if len(parsed.Results.Channels) == 0 ||
		len(parsed.Results.Channels[0].Alternatives) == 0 {
		return Transcription{}, ErrNoSpeech
	}

	ch := parsed.Results.Channels[0]
	lang := ch.DetectedLanguage
	if languageHint != "" {
		lang = languageHint
	}

	return Transcription{
		Text:     ch.Alternatives[0].Transcript,
		Language: lang,
		Duration: parsed.Metadata.Duration,
	}, nil
}
