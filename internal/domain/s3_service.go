package domain

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/Vovarama1992/voxbridge/internal/ports"
)

// AudioMirror uploads synthesized audio to the bucket under <date>/<id>.mp3.
type AudioMirror struct {
	client ports.S3Client
	now    func() time.Time
}

func NewAudioMirror(client ports.S3Client) *AudioMirror {
	return &AudioMirror{client: client, now: time.Now}
}

// ObjectKey — путь в бакете
func (m *AudioMirror) ObjectKey(id, contentType string) string {
	date := m.now().Format("2006-01-02")
	return fmt.Sprintf("%s/%s%s", date, id, extFor(contentType))
}

func (m *AudioMirror) Upload(ctx context.Context, id string, data []byte, contentType string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("id required")
	}
	key := m.ObjectKey(id, contentType)
	return m.client.PutObject(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
}

func extFor(contentType string) string {
	switch contentType {
	case "audio/mpeg":
		return ".mp3"
	case "audio/wav":
		return ".wav"
	case "audio/ogg":
		return ".ogg"
	}
	return ""
}
