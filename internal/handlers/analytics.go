package handlers

import (
	"net/http"
	"strconv"
	"time"

	"intern-pulse-bot/internal/services"
)

// AnalyticsHandler serves the admin analytics dashboard
type AnalyticsHandler struct {
	stats *services.StatsService
	now   func() time.Time
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(stats *services.StatsService) *AnalyticsHandler {
	return &AnalyticsHandler{stats: stats, now: time.Now}
}

// HandleAnalytics computes the daily series, per-intern stats and summary
// over the last N days (7, 30 or 90 on the dashboard selector)
func (h *AnalyticsHandler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 365 {
			http.Error(w, "Invalid days parameter", http.StatusBadRequest)
			return
		}
		days = n
	}

	end := h.now()
	start := end.AddDate(0, 0, -days)

	daily, err := h.stats.DailySeries(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	internStats, summary, err := h.stats.InternOverview(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"daily_attendance": daily,
		"intern_stats":     internStats,
		"summary":          summary,
	})
}

// HandleSnapshot serves the admin dashboard counter cards
func (h *AnalyticsHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.stats.AdminSnapshot(r.Context(), h.now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}
