package handler

import (
	"net/http"
	"time"

	"draftforge/internal/httputil"
)

// Health reports process liveness
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondData(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
