package handlers

import (
	"net/http"
	"time"

	applog "brewcost/internal/log"
)

type healthResponse struct {
	Status      string    `json:"status"`
	Time        time.Time `json:"time"`
	Ingredients int       `json:"ingredients"`
	Recipes     int       `json:"recipes"`
}

// Health is a simple readiness handler suitable for infrastructure probes.
// It reports the loaded catalog sizes so a probe can distinguish an empty
// deployment from a failed load.
func Health(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "health check requested", "method", r.Method)
	resp := healthResponse{
		Status: "ok",
		Time:   time.Now().UTC(),
	}
	if store != nil {
		resp.Ingredients = len(store.Ingredients())
		resp.Recipes = len(store.Recipes())
	}
	writeJSON(w, http.StatusOK, resp)
}
