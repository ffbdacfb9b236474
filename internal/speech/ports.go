package speech

import (
	"context"
	"errors"
)

var (
	// ErrNoSpeech is returned when the engine decoded the audio but found no text.
	ErrNoSpeech = errors.New("no speech recognized")
	// ErrEmptyAudio is returned when synthesis produced zero bytes.
	ErrEmptyAudio = errors.New("synthesized audio is empty")
)

// Transcription is the result of one transcription call.
type Transcription struct {
	Text string
	// Language is the engine's language signal: the hint when one was given,
	// otherwise the detected language in the engine's own vocabulary.
	Language string
	Duration float64
}

// голос → текст
type Transcriber interface {
	Transcribe(ctx context.Context, filePath, languageHint string) (Transcription, error)
}

// текст → голос (mp3 bytes)
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}
