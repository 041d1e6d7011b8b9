package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"intern-pulse-bot/internal/models"
	"intern-pulse-bot/internal/services"
)

func newAnalyticsHandler(records *mockRecords, profiles *mockProfiles) *AnalyticsHandler {
	stats := services.NewStatsService(records, &mockEntries{}, profiles)
	h := NewAnalyticsHandler(stats)
	h.now = func() time.Time { return time.Date(2026, 3, 6, 18, 0, 0, 0, time.UTC) }
	return h
}

func TestHandleAnalyticsDaysParam(t *testing.T) {
	h := newAnalyticsHandler(&mockRecords{}, &mockProfiles{})

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{name: "default", query: "", wantStatus: http.StatusOK},
		{name: "week selector", query: "?days=7", wantStatus: http.StatusOK},
		{name: "quarter selector", query: "?days=90", wantStatus: http.StatusOK},
		{name: "zero", query: "?days=0", wantStatus: http.StatusBadRequest},
		{name: "too large", query: "?days=400", wantStatus: http.StatusBadRequest},
		{name: "not a number", query: "?days=abc", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/admin/analytics"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.HandleAnalytics(rec, withProfile(req, adminProfile))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleAnalyticsPayload(t *testing.T) {
	records := &mockRecords{records: []models.AttendanceRecord{
		{UserID: "intern-1", SignInDate: "2026-03-02", TotalHours: 8},
		{UserID: "intern-1", SignInDate: "2026-03-03", TotalHours: 7.5},
		{UserID: "intern-2", SignInDate: "2026-03-02", TotalHours: 8},
	}}
	profiles := &mockProfiles{profiles: map[string]*models.Profile{
		"intern-1": {ID: "intern-1", FullName: "Ada", Role: models.RoleIntern},
	}}
	h := newAnalyticsHandler(records, profiles)

	req := httptest.NewRequest("GET", "/api/admin/analytics?days=7", nil)
	rec := httptest.NewRecorder()
	h.HandleAnalytics(rec, withProfile(req, adminProfile))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got struct {
		DailyAttendance []models.DailyCount  `json:"daily_attendance"`
		InternStats     []models.InternStats `json:"intern_stats"`
		Summary         models.StatsSummary  `json:"summary"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(got.DailyAttendance) != 2 {
		t.Errorf("daily series length = %d, want 2", len(got.DailyAttendance))
	}
	if got.Summary.TotalInterns != 1 {
		t.Errorf("TotalInterns = %d, want 1", got.Summary.TotalInterns)
	}
}

func TestHandleSnapshot(t *testing.T) {
	profiles := &mockProfiles{profiles: map[string]*models.Profile{
		"intern-1": {ID: "intern-1", Role: models.RoleIntern},
	}}
	h := newAnalyticsHandler(&mockRecords{}, profiles)

	req := httptest.NewRequest("GET", "/api/admin/snapshot", nil)
	rec := httptest.NewRecorder()
	h.HandleSnapshot(rec, withProfile(req, adminProfile))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got models.AdminSnapshot
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}
