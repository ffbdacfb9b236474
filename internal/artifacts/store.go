package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

var (
	ErrNotFound = errors.New("artifact not found")
	// ErrFileMissing means the id is known but its file is gone.
	ErrFileMissing = fmt.Errorf("%w: backing file missing", ErrNotFound)
	ErrEmpty       = errors.New("artifact is empty")
)

// Artifact is a generated audio file awaiting retrieval.
type Artifact struct {
	ID        string
	Path      string
	MimeType  string
	Size      int64
	CreatedAt time.Time
	// RemoteURL is set when the artifact was mirrored to object storage.
	RemoteURL string
}

// Mirror copies artifacts to durable storage. Optional.
type Mirror interface {
	Upload(ctx context.Context, id string, data []byte, contentType string) (string, error)
}

// Store tracks generated audio on local disk. Entries live until CleanupAll
// or Sweep removes them.
type Store struct {
	dir    string
	mirror Mirror
	now    func() time.Time

	mu    sync.Mutex
	items map[string]Artifact
}

type Option func(*Store)

func WithMirror(m Mirror) Option {
	return func(s *Store) { s.mirror = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}

	s := &Store{
		dir:   dir,
		now:   time.Now,
		items: make(map[string]Artifact),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Dir() string { return s.dir }

// Register starts tracking an existing file and returns its new id.
func (s *Store) Register(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("register artifact: %w", err)
	}
	return s.register(uuid.NewString(), path, info.Size()).ID, nil
}

func (s *Store) register(id, path string, size int64) Artifact {
	a := Artifact{
		ID:        id,
		Path:      path,
		MimeType:  MimeType(path),
		Size:      size,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.items[id] = a
	s.mu.Unlock()
	return a
}

// Save writes data under a fresh id and registers it. The file goes to a
// staging name first and is renamed into place, so a failed save leaves
// nothing behind.
func (s *Store) Save(ctx context.Context, data []byte, ext string) (Artifact, error) {
	if len(data) == 0 {
		return Artifact{}, ErrEmpty
	}

	id := uuid.NewString()
	final := filepath.Join(s.dir, id+ext)
	staging := final + ".part"

	if err := os.WriteFile(staging, data, 0o644); err != nil {
		_ = os.Remove(staging)
		return Artifact{}, fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(staging, final); err != nil {
		_ = os.Remove(staging)
		return Artifact{}, fmt.Errorf("commit artifact: %w", err)
	}

	a := s.register(id, final, int64(len(data)))

	if s.mirror != nil {
		url, err := s.mirror.Upload(ctx, id, data, a.MimeType)
		if err != nil {
			log.Printf("[artifacts] mirror fail id=%s err=%v", id, err)
		} else {
			a.RemoteURL = url
			s.mu.Lock()
			if cur, ok := s.items[id]; ok {
				cur.RemoteURL = url
				s.items[id] = cur
			}
			s.mu.Unlock()
		}
	}

	log.Printf("[artifacts] stored id=%s size=%s", id, humanize.Bytes(uint64(a.Size)))
	return a, nil
}

func (s *Store) Get(id string) (Artifact, error) {
	s.mu.Lock()
	a, ok := s.items[id]
	s.mu.Unlock()
	if !ok {
		return Artifact{}, ErrNotFound
	}
	return a, nil
}

func (s *Store) Resolve(id string) (string, error) {
	a, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return a.Path, nil
}

// Serve reads the artifact's bytes.
func (s *Store) Serve(id string) ([]byte, string, error) {
	a, err := s.Get(id)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(a.Path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("[artifacts] integrity: id=%s tracked but %s is missing", id, a.Path)
		return nil, "", ErrFileMissing
	}
	if err != nil {
		return nil, "", fmt.Errorf("read artifact: %w", err)
	}
	return data, a.MimeType, nil
}

// Len returns the number of tracked artifacts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// CleanupAll drops every tracked artifact and returns how many files were
// actually deleted. Missing files are not errors. Artifacts stored while the
// sweep runs are left for the next one.
func (s *Store) CleanupAll() (int, error) {
	return s.sweep(func(Artifact) bool { return true })
}

// Sweep drops artifacts created more than maxAge ago.
func (s *Store) Sweep(maxAge time.Duration) (int, error) {
	cutoff := s.now().Add(-maxAge)
	return s.sweep(func(a Artifact) bool { return a.CreatedAt.Before(cutoff) })
}

func (s *Store) sweep(match func(Artifact) bool) (int, error) {
	s.mu.Lock()
	var victims []Artifact
	for id, a := range s.items {
		if match(a) {
			victims = append(victims, a)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()

	removed := 0
	var errs error
	for _, a := range victims {
		err := os.Remove(a.Path)
		switch {
		case err == nil:
			removed++
		case errors.Is(err, fs.ErrNotExist):
		default:
			errs = multierr.Append(errs, fmt.Errorf("remove %s: %w", a.ID, err))
		}
	}

	return removed, errs
}

// RunSweeper removes artifacts older than maxAge every interval until ctx is
// done.
func (s *Store) RunSweeper(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(maxAge)
			if err != nil {
				log.Printf("[artifacts-sweep] error: %v", err)
			}
			if n > 0 {
				log.Printf("[artifacts-sweep] removed %d expired audio files", n)
			}
		}
	}
}

// MimeType infers the content type from the file extension.
func MimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".ogg", ".oga":
		return "audio/ogg"
	case ".webm":
		return "audio/webm"
	case ".m4a":
		return "audio/mp4"
	}
	return "application/octet-stream"
}
