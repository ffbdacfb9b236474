package translation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// DefaultModelURL is the NLLB-200 endpoint on the Hugging Face inference API.
const DefaultModelURL = "https://api-inference.huggingface.co/models/facebook/nllb-200-distilled-600M"

var ErrEmptyResponse = errors.New("translation response is empty")

type HFClient struct {
	token    string
	modelURL string
	client   *http.Client
}

func NewHFClient(token, modelURL string) (*HFClient, error) {
	if token == "" {
		return nil, errors.New("HF_API_TOKEN not set")
	}
	if modelURL == "" {
		modelURL = DefaultModelURL
	}

	return &HFClient{
		token:    token,
		modelURL: modelURL,
		// cold models can take minutes to load with wait_for_model
		client: &http.Client{Timeout: 180 * time.Second},
	}, nil
}

type hfRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		SrcLang string `json:"src_lang"`
		TgtLang string `json:"tgt_lang"`
	} `json:"parameters"`
	Options struct {
		WaitForModel bool `json:"wait_for_model"`
	} `json:"options"`
}

type hfTranslation struct {
	TranslationText string `json:"translation_text"`
}

func (c *HFClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	var reqBody hfRequest
	reqBody.Inputs = text
	reqBody.Parameters.SrcLang = sourceLang
	reqBody.Parameters.TgtLang = targetLang
	reqBody.Options.WaitForModel = true

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("hf request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("hf read: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("hf status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return "", fmt.Errorf("hf status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out []hfTranslation
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("unexpected response format from API: %w", err)
	}
	if len(out) == 0 || strings.TrimSpace(out[0].TranslationText) == "" {
		return "", ErrEmptyResponse
	}

	return out[0].TranslationText, nil
}
