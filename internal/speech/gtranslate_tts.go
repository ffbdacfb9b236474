package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	gTranslateURL = "https://translate.google.com/translate_tts"
	// translate_tts rejects longer queries
	gTranslateMaxChunk = 100
)

// GTranslateTTS speaks through the public translate_tts endpoint. Its language
// codes are the registry's synthesis codes as-is ("zh-CN").
type GTranslateTTS struct {
	endpoint string
	httpCli  *http.Client
}

func NewGTranslateTTS(endpoint string) *GTranslateTTS {
	if endpoint == "" {
		endpoint = gTranslateURL
	}
	return &GTranslateTTS{
		endpoint: endpoint,
		httpCli:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *GTranslateTTS) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	chunks := splitText(text, gTranslateMaxChunk)

	var out bytes.Buffer
	for i, chunk := range chunks {
		q := url.Values{}
		q.Set("ie", "UTF-8")
		q.Set("client", "tw-ob")
		q.Set("tl", language)
		q.Set("q", chunk)
		q.Set("total", strconv.Itoa(len(chunks)))
		q.Set("idx", strconv.Itoa(i))
		q.Set("textlen", strconv.Itoa(len([]rune(chunk))))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0")

		resp, err := t.httpCli.Do(req)
		if err != nil {
			return nil, fmt.Errorf("translate_tts request: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("translate_tts status %d: %s", resp.StatusCode, string(b))
		}

		// mp3 frames concatenate cleanly
		_, err = io.Copy(&out, resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("translate_tts read: %w", err)
		}
	}

	return out.Bytes(), nil
}

// splitText cuts text on word boundaries into pieces of at most max runes.
// A single word longer than max is cut mid-word.
func splitText(text string, max int) []string {
	var (
		chunks []string
		cur    []rune
	)
	flush := func() {
		if s := strings.TrimSpace(string(cur)); s != "" {
			chunks = append(chunks, s)
		}
		cur = cur[:0]
	}

	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > max {
			flush()
			chunks = append(chunks, string(w[:max]))
			w = w[max:]
		}
		if len(cur) > 0 && len(cur)+1+len(w) > max {
			flush()
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		cur = append(cur, w...)
	}
	flush()

	return chunks
}
