package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/voxbridge/internal/languages"
	"github.com/Vovarama1992/voxbridge/internal/pipeline"
)

type Pipeline interface {
	TranslateAudio(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	TranslateText(ctx context.Context, text, sourceLang, targetLang string, userID *int64) (string, error)
}

type TranslateHandler struct {
	pipeline      Pipeline
	log           *logger.ZapLogger
	timeout       time.Duration
	maxUpload     int64
	publicBaseURL string
}

func NewTranslateHandler(p Pipeline, log *logger.ZapLogger, timeout time.Duration, maxUpload int64, publicBaseURL string) *TranslateHandler {
	return &TranslateHandler{
		pipeline:      p,
		log:           log,
		timeout:       timeout,
		maxUpload:     maxUpload,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (h *TranslateHandler) audioURL(id string) string {
	return h.publicBaseURL + "/api/audio/" + id
}

type audioToAudioResponse struct {
	TranslatedText string `json:"translatedText"`
	OriginalText   string `json:"originalText"`
	AudioURL       string `json:"audioUrl"`
	DetectedLang   string `json:"detectedLang"`
	Status         string `json:"status"`
}

// POST /api/audio-to-audio
func (h *TranslateHandler) AudioToAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Audio file too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No audio file provided"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No audio file provided"})
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.pipeline.TranslateAudio(ctx, pipeline.Request{
		Audio:      file,
		Filename:   header.Filename,
		Size:       header.Size,
		SourceLang: formValue(r, "sourceLang", languages.DefaultSource),
		TargetLang: formValue(r, "targetLang", languages.DefaultTarget),
		UserID:     UserIDFrom(r.Context()),
		AudioURL:   h.audioURL,
	})
	if err != nil {
		h.writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, audioToAudioResponse{
		TranslatedText: res.TranslatedText,
		OriginalText:   res.OriginalText,
		AudioURL:       res.AudioURL,
		DetectedLang:   res.DetectedLang,
		Status:         "success",
	})
}

// POST /api/translate-text
func (h *TranslateHandler) TranslateText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text       string `json:"text"`
		SourceLang string `json:"sourceLang"`
		TargetLang string `json:"targetLang"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	out, err := h.pipeline.TranslateText(ctx, req.Text, req.SourceLang, req.TargetLang, UserIDFrom(r.Context()))
	if err != nil {
		if pipeline.KindOf(err) == pipeline.KindInput {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No text provided"})
			return
		}
		h.log.Log(logger.LogEntry{Level: "error", Message: "text translation failed", Error: err})
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Text translation failed",
			"details": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"translatedText": out})
}

// GET /api/languages
func (h *TranslateHandler) Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, languages.Supported())
}

func (h *TranslateHandler) writePipelineError(w http.ResponseWriter, err error) {
	var pe *pipeline.Error
	if !errors.As(err, &pe) {
		h.log.Log(logger.LogEntry{Level: "error", Message: "audio translation failed", Error: err})
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Audio translation failed",
			"details": err.Error(),
		})
		return
	}

	if pe.Kind == pipeline.KindInput {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No audio file provided"})
		return
	}

	h.log.Log(logger.LogEntry{Level: "error", Message: pe.Title(), Error: err})
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   pe.Title(),
		"details": err.Error(),
		"code":    string(pe.Kind),
	})
}

func formValue(r *http.Request, key, def string) string {
	if v := strings.TrimSpace(r.FormValue(key)); v != "" {
		return v
	}
	return def
}
