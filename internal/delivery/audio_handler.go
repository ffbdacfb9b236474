package delivery

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"

	"github.com/Vovarama1992/voxbridge/internal/artifacts"
)

type ArtifactStore interface {
	Serve(id string) ([]byte, string, error)
	CleanupAll() (int, error)
}

type AudioHandler struct {
	store ArtifactStore
	log   *logger.ZapLogger
}

func NewAudioHandler(store ArtifactStore, log *logger.ZapLogger) *AudioHandler {
	return &AudioHandler{store: store, log: log}
}

// GET /api/audio/{audioId}
func (h *AudioHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "audioId")

	data, mimeType, err := h.store.Serve(id)
	if errors.Is(err, artifacts.ErrNotFound) {
		if errors.Is(err, artifacts.ErrFileMissing) {
			h.log.Log(logger.LogEntry{Level: "warn", Message: "tracked audio file is missing: " + id, Error: err})
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Audio file not found"})
		return
	}
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "failed to read audio " + id, Error: err})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to read audio file"})
		return
	}

	w.Header().Set("Content-Type", mimeType)
	http.ServeContent(w, r, id, time.Time{}, bytes.NewReader(data))
}

// POST /api/cleanup
func (h *AudioHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.CleanupAll()
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "cleanup finished with errors", Error: err})
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Cleaned up %d audio files", n),
	})
}
