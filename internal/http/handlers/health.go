package handlers

import (
	"net/http"
	"time"
)

// Health reports liveness only. Readiness of the database and the generation
// backend surfaces through request errors, not here.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
