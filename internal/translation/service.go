package translation

import (
	"context"
	"log"
	"strings"
	"time"
)

// Engine is the remote translation capability.
type Engine interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// greetingContext is appended to bare greetings; NLLB mistranslates them alone.
const greetingContext = ", how are you?"

var greetings = map[string]bool{
	"hello": true,
	"hi":    true,
}

type Service struct {
	engine Engine
}

func NewService(engine Engine) *Service {
	return &Service{engine: engine}
}

// Translate sends text through the engine. A lone greeting is padded with
// context before the call and cut back to the greeting afterwards.
func (s *Service) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	input := strings.TrimSpace(text)
	greeting, isGreeting := bareGreeting(input)
	if isGreeting {
		input = greeting + greetingContext
	}

	start := time.Now()
	out, err := s.engine.Translate(ctx, input, sourceLang, targetLang)
	if err != nil {
		log.Printf("[translate][%.1fs] %s→%s err=%v", time.Since(start).Seconds(), sourceLang, targetLang, err)
		return "", err
	}

	out = strings.TrimSpace(out)
	if isGreeting {
		out = cutAtComma(out)
	}
	if out == "" {
		return "", ErrEmptyResponse
	}

	log.Printf("[translate][%.1fs] %s→%s %q → %q", time.Since(start).Seconds(), sourceLang, targetLang, input, out)
	return out, nil
}

// bareGreeting reports whether text is a single greeting word. Surrounding
// punctuation is ignored ("Hello." from a transcript still counts).
func bareGreeting(text string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) != 1 {
		return "", false
	}
	word := strings.Trim(fields[0], ".!?¡¿,;:")
	if !greetings[strings.ToLower(word)] {
		return "", false
	}
	return word, true
}

// cutAtComma keeps everything before the first comma, including the
// full-width and Arabic commas NLLB emits for those scripts.
func cutAtComma(s string) string {
	if i := strings.IndexAny(s, ",，、،"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
