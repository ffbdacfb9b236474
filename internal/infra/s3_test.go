package infra

import "testing"

func TestBuildPublicURLEscapesSegments(t *testing.T) {
	s := &s3Client{host: "https://s3.example.com", bucket: "audio"}

	got := s.buildPublicURL("2026-10-14/a b.mp3")
	want := "https://s3.example.com/audio/2026-10-14/a%20b.mp3"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
