package speech

import (
	"context"
	"sync"
)

// LazyTranscriber builds the underlying engine on first use and shares it for
// the life of the process. Concurrent first callers wait for the single build.
// A failed build is not retried.
type LazyTranscriber struct {
	build func() (Transcriber, error)

	once sync.Once
	stt  Transcriber
	err  error
}

func NewLazyTranscriber(build func() (Transcriber, error)) *LazyTranscriber {
	return &LazyTranscriber{build: build}
}

func (l *LazyTranscriber) load() (Transcriber, error) {
	l.once.Do(func() {
		l.stt, l.err = l.build()
	})
	return l.stt, l.err
}

func (l *LazyTranscriber) Transcribe(ctx context.Context, filePath, languageHint string) (Transcription, error) {
	stt, err := l.load()
	if err != nil {
		return Transcription{}, err
	}
	return stt.Transcribe(ctx, filePath, languageHint)
}
