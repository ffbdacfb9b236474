package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindInput         Kind = "input_validation"
	KindTranscription Kind = "transcription"
	KindTranslation   Kind = "translation"
	KindSynthesis     Kind = "synthesis"
	KindStorage       Kind = "storage"
)

// ErrNoAudio is the input validation failure for a missing or empty upload.
var ErrNoAudio = errors.New("no audio file provided")

// Error is a stage-aware failure. Every error returned by Orchestrator is one.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Title is the human-readable summary for API responses.
func (e *Error) Title() string {
	switch e.Kind {
	case KindInput:
		return "Invalid input"
	case KindTranscription:
		return "Transcription failed"
	case KindTranslation:
		return "Translation failed"
	case KindSynthesis:
		return "Speech synthesis failed"
	case KindStorage:
		return "Audio storage failed"
	}
	return "Audio translation failed"
}

func fail(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// KindOf returns the failure kind of err, or "" when err is not a pipeline error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
