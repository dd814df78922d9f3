package handlers

import (
	"net/http"
	"strconv"
	"strings"

	applog "brewcost/internal/log"
)

// POSStatus reports whether the point-of-sale integration is configured and
// reachable.
func POSStatus(w http.ResponseWriter, r *http.Request) {
	if posClient == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"configured": false,
			"message":    "POS integration not configured",
		})
		return
	}

	status := posClient.Status(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"configured": true,
		"connected":  status.Connected,
		"location":   status,
	})
}

// daysParam reads the trailing-window query parameter, defaulting to 30 and
// rejecting anything outside 1 to 365.
func daysParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("days"))
	if raw == "" {
		return 30, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > 365 {
		writeJSONError(w, http.StatusBadRequest, "days must be between 1 and 365")
		return 0, false
	}
	return days, true
}

// POSLabor reports worked hours and labor cost from the POS timecards.
func POSLabor(w http.ResponseWriter, r *http.Request) {
	if posClient == nil {
		writeJSONError(w, http.StatusBadRequest, "POS integration not configured")
		return
	}
	days, ok := daysParam(w, r)
	if !ok {
		return
	}

	report, err := posClient.LaborSummary(r.Context(), days)
	if err != nil {
		applog.Error(r.Context(), "labor summary failed", "error", err)
		writeJSONError(w, http.StatusBadGateway, "unable to load labor data")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// POSTeam lists active team members and job definitions from the POS.
func POSTeam(w http.ResponseWriter, r *http.Request) {
	if posClient == nil {
		writeJSONError(w, http.StatusBadRequest, "POS integration not configured")
		return
	}

	report, err := posClient.Team(r.Context())
	if err != nil {
		applog.Error(r.Context(), "team report failed", "error", err)
		writeJSONError(w, http.StatusBadGateway, "unable to load team data")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// POSProductMix reports item and category sales from POS orders.
func POSProductMix(w http.ResponseWriter, r *http.Request) {
	if posClient == nil {
		writeJSONError(w, http.StatusBadRequest, "POS integration not configured")
		return
	}
	days, ok := daysParam(w, r)
	if !ok {
		return
	}

	report, err := posClient.ProductMix(r.Context(), days)
	if err != nil {
		applog.Error(r.Context(), "product mix failed", "error", err)
		writeJSONError(w, http.StatusBadGateway, "unable to load product mix")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// POSSales reports revenue bucketed by day, week, or month.
func POSSales(w http.ResponseWriter, r *http.Request) {
	if posClient == nil {
		writeJSONError(w, http.StatusBadRequest, "POS integration not configured")
		return
	}
	days, ok := daysParam(w, r)
	if !ok {
		return
	}

	groupBy := strings.TrimSpace(r.URL.Query().Get("group_by"))
	if groupBy == "" {
		groupBy = "day"
	}
	switch groupBy {
	case "day", "week", "month":
	default:
		writeJSONError(w, http.StatusBadRequest, "group_by must be day, week, or month")
		return
	}

	report, err := posClient.SalesByPeriod(r.Context(), days, groupBy)
	if err != nil {
		applog.Error(r.Context(), "sales report failed", "error", err)
		writeJSONError(w, http.StatusBadGateway, "unable to load sales data")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
