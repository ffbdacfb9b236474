package speech

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dustin/go-humanize"
)

// Service is the stage boundary for both directions. It validates engine
// output so that every provider gets the same guarantees.
type Service struct {
	stt Transcriber
	tts Synthesizer
}

func NewService(stt Transcriber, tts Synthesizer) *Service {
	return &Service{
		stt: stt,
		tts: tts,
	}
}

func (s *Service) Transcribe(ctx context.Context, filePath, languageHint string) (Transcription, error) {
	res, err := s.stt.Transcribe(ctx, filePath, languageHint)
	if err != nil {
		return Transcription{}, err
	}

	res.Text = strings.TrimSpace(res.Text)
	if res.Text == "" {
		return Transcription{}, ErrNoSpeech
	}
	if res.Language == "" {
		res.Language = languageHint
	}

	log.Printf("[stt] transcribed lang=%s duration=%.1fs text=%q", res.Language, res.Duration, res.Text)
	return res, nil
}

func (s *Service) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("synthesize: empty text")
	}

	audio, err := s.tts.Synthesize(ctx, text, language)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, ErrEmptyAudio
	}

	log.Printf("[tts] synthesized lang=%s size=%s", language, humanize.Bytes(uint64(len(audio))))
	return audio, nil
}
