package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/avieira/tourbase-be/internal/services"
)

// EventHandler exposes the audit trail to administrators.
type EventHandler struct {
	audit services.AuditServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(audit services.AuditServiceProvider) *EventHandler {
	return &EventHandler{audit: audit}
}

// GetRecent returns the most recent audit events; ?limit= caps the count
// (default 50).
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	events, err := h.audit.GetRecent(limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch audit events")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": len(events),
		"data":    map[string]interface{}{"events": events},
	})
}
