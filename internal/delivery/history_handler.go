package delivery

import (
	"net/http"
	"strconv"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/voxbridge/internal/ports"
)

type HistoryHandler struct {
	history ports.HistoryService
	log     *logger.ZapLogger
}

func NewHistoryHandler(history ports.HistoryService, log *logger.ZapLogger) *HistoryHandler {
	return &HistoryHandler{history: history, log: log}
}

// GET /api/history?limit=N
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.history.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "history is disabled"})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	userID := UserIDFrom(r.Context())
	records, err := h.history.History(r.Context(), *userID, limit)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "db error", Error: err})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "db error"})
		return
	}
	if records == nil {
		records = []ports.TranslationRecord{}
	}

	writeJSON(w, http.StatusOK, records)
}
