package services

import (
	"context"
	"reflect"
	"testing"
	"time"

	"intern-pulse-bot/internal/models"
)

// mockProfileRepo is an in-memory ProfileRepository for testing
type mockProfileRepo struct {
	profiles []models.Profile
}

func (m *mockProfileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	for _, p := range m.profiles {
		if p.ID == id {
			copied := p
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *mockProfileRepo) ListByRole(ctx context.Context, role models.Role) ([]models.Profile, error) {
	var out []models.Profile
	for _, p := range m.profiles {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProfileRepo) CountByRole(ctx context.Context, role models.Role) (int, error) {
	list, _ := m.ListByRole(ctx, role)
	return len(list), nil
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func record(userID, date string) models.AttendanceRecord {
	return models.AttendanceRecord{
		UserID:     userID,
		SignInDate: date,
		TotalHours: 8,
	}
}

func TestExpectedWorkdays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{name: "single Monday", start: day(2026, 3, 2), end: day(2026, 3, 2), want: 1},
		{name: "full week Mon-Fri", start: day(2026, 3, 2), end: day(2026, 3, 6), want: 5},
		{name: "full week Mon-Sun", start: day(2026, 3, 2), end: day(2026, 3, 8), want: 5},
		{name: "weekend only", start: day(2026, 3, 7), end: day(2026, 3, 8), want: 0},
		{name: "four calendar weeks", start: day(2026, 3, 2), end: day(2026, 3, 29), want: 20},
		{name: "end before start", start: day(2026, 3, 6), end: day(2026, 3, 2), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpectedWorkdays(tt.start, tt.end)
			if got != tt.want {
				t.Errorf("ExpectedWorkdays() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name         string
		presentDays  int
		expectedDays int
		wantRate     int
		wantClass    string
	}{
		{name: "18 of 20 is good", presentDays: 18, expectedDays: 20, wantRate: 90, wantClass: ClassGood},
		{name: "19 of 20 is excellent", presentDays: 19, expectedDays: 20, wantRate: 95, wantClass: ClassExcellent},
		{name: "3 of 5 is at risk", presentDays: 3, expectedDays: 5, wantRate: 60, wantClass: ClassAtRisk},
		{name: "perfect month", presentDays: 20, expectedDays: 20, wantRate: 100, wantClass: ClassExcellent},
		{name: "no expected workdays", presentDays: 0, expectedDays: 0, wantRate: 0, wantClass: ClassAtRisk},
		{name: "rounds half up", presentDays: 19, expectedDays: 24, wantRate: 79, wantClass: ClassAtRisk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildStats(tt.presentDays, tt.expectedDays)
			if got.Rate != tt.wantRate {
				t.Errorf("Rate = %d, want %d", got.Rate, tt.wantRate)
			}
			if got.Classification != tt.wantClass {
				t.Errorf("Classification = %q, want %q", got.Classification, tt.wantClass)
			}
		})
	}
}

func TestUserStats(t *testing.T) {
	records := &mockRecordRepo{records: []models.AttendanceRecord{
		record("intern-1", "2026-03-02"),
		record("intern-1", "2026-03-03"),
		record("intern-1", "2026-03-05"),
		record("intern-2", "2026-03-02"),
		record("intern-1", "2026-02-27"), // before the window
	}}
	svc := NewStatsService(records, newMockPendingRepo(), &mockProfileRepo{})

	// Mon 2026-03-02 .. Fri 2026-03-06: 5 workdays, 3 present
	got, err := svc.UserStats(context.Background(), "intern-1", day(2026, 3, 2), day(2026, 3, 6))
	if err != nil {
		t.Fatalf("UserStats() error = %v, want nil", err)
	}

	want := models.AttendanceStats{
		PresentDays:      3,
		ExpectedWorkdays: 5,
		MissedDays:       2,
		Rate:             60,
		Classification:   ClassAtRisk,
	}
	if got != want {
		t.Errorf("UserStats() = %+v, want %+v", got, want)
	}

	// Recomputing over the same inputs yields the same result
	again, err := svc.UserStats(context.Background(), "intern-1", day(2026, 3, 2), day(2026, 3, 6))
	if err != nil {
		t.Fatalf("second UserStats() error = %v, want nil", err)
	}
	if again != got {
		t.Errorf("second UserStats() = %+v, want %+v", again, got)
	}
}

func TestUserStatsWeekendWindow(t *testing.T) {
	svc := NewStatsService(&mockRecordRepo{}, newMockPendingRepo(), &mockProfileRepo{})

	got, err := svc.UserStats(context.Background(), "intern-1", day(2026, 3, 7), day(2026, 3, 8))
	if err != nil {
		t.Fatalf("UserStats() error = %v, want nil", err)
	}
	if got.ExpectedWorkdays != 0 || got.Rate != 0 || got.MissedDays != 0 {
		t.Errorf("UserStats() over weekend = %+v, want all zeros", got)
	}
}

func TestInternOverview(t *testing.T) {
	profiles := &mockProfileRepo{profiles: []models.Profile{
		{ID: "intern-1", FullName: "Ada", Role: models.RoleIntern},
		{ID: "intern-2", FullName: "Bayo", Role: models.RoleIntern},
		{ID: "intern-3", FullName: "Chidi", Role: models.RoleIntern},
		{ID: "admin-1", FullName: "Boss", Role: models.RoleAdmin},
	}}
	records := &mockRecordRepo{records: []models.AttendanceRecord{
		// intern-1 attends all 5 workdays
		record("intern-1", "2026-03-02"),
		record("intern-1", "2026-03-03"),
		record("intern-1", "2026-03-04"),
		record("intern-1", "2026-03-05"),
		record("intern-1", "2026-03-06"),
		// intern-2 attends 4 of 5
		record("intern-2", "2026-03-02"),
		record("intern-2", "2026-03-03"),
		record("intern-2", "2026-03-04"),
		record("intern-2", "2026-03-05"),
		// intern-3 attends 2 of 5
		record("intern-3", "2026-03-02"),
		record("intern-3", "2026-03-06"),
	}}
	svc := NewStatsService(records, newMockPendingRepo(), profiles)

	stats, summary, err := svc.InternOverview(context.Background(), day(2026, 3, 2), day(2026, 3, 6))
	if err != nil {
		t.Fatalf("InternOverview() error = %v, want nil", err)
	}

	if len(stats) != 3 {
		t.Fatalf("len(stats) = %d, want 3 (admins excluded)", len(stats))
	}

	byUser := make(map[string]models.InternStats)
	for _, s := range stats {
		byUser[s.UserID] = s
	}
	if got := byUser["intern-1"].Rate; got != 100 {
		t.Errorf("intern-1 rate = %d, want 100", got)
	}
	if got := byUser["intern-2"].Classification; got != ClassGood {
		t.Errorf("intern-2 classification = %q, want %q", got, ClassGood)
	}
	if got := byUser["intern-3"].Classification; got != ClassAtRisk {
		t.Errorf("intern-3 classification = %q, want %q", got, ClassAtRisk)
	}

	// rates 100, 80, 40 -> average 73
	want := models.StatsSummary{
		TotalInterns: 3,
		AverageRate:  73,
		AtRiskCount:  1,
		PerfectCount: 1,
	}
	if summary != want {
		t.Errorf("summary = %+v, want %+v", summary, want)
	}
}

func TestInternOverviewEmpty(t *testing.T) {
	svc := NewStatsService(&mockRecordRepo{}, newMockPendingRepo(), &mockProfileRepo{})

	stats, summary, err := svc.InternOverview(context.Background(), day(2026, 3, 2), day(2026, 3, 6))
	if err != nil {
		t.Fatalf("InternOverview() error = %v, want nil", err)
	}
	if len(stats) != 0 {
		t.Errorf("len(stats) = %d, want 0", len(stats))
	}
	if summary != (models.StatsSummary{}) {
		t.Errorf("summary = %+v, want zero value", summary)
	}
}

func TestDailySeries(t *testing.T) {
	records := &mockRecordRepo{records: []models.AttendanceRecord{
		record("intern-2", "2026-03-04"),
		record("intern-1", "2026-03-02"),
		record("intern-2", "2026-03-02"),
		record("intern-1", "2026-03-04"),
		record("intern-3", "2026-03-04"),
		record("intern-1", "2026-03-03"),
	}}
	svc := NewStatsService(records, newMockPendingRepo(), &mockProfileRepo{})

	got, err := svc.DailySeries(context.Background(), day(2026, 3, 2), day(2026, 3, 6))
	if err != nil {
		t.Fatalf("DailySeries() error = %v, want nil", err)
	}

	want := []models.DailyCount{
		{Date: "2026-03-02", Count: 2},
		{Date: "2026-03-03", Count: 1},
		{Date: "2026-03-04", Count: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DailySeries() = %+v, want %+v", got, want)
	}
}

func TestAdminSnapshot(t *testing.T) {
	pending := newMockPendingRepo()
	ctx := context.Background()

	// Wednesday 2026-03-04; the week started Monday 2026-03-02
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	insert := func(userID, date string, status models.EntryStatus) {
		t0 := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
		pending.Insert(ctx, &models.PendingEntry{UserID: userID, SignInDate: date, SignInTime: t0, Status: status})
	}
	insert("intern-1", "2026-03-04", models.StatusPending)
	insert("intern-2", "2026-03-04", models.StatusApproved)
	insert("intern-1", "2026-03-03", models.StatusPending)
	insert("intern-1", "2026-02-27", models.StatusApproved) // last week

	profiles := &mockProfileRepo{profiles: []models.Profile{
		{ID: "intern-1", Role: models.RoleIntern},
		{ID: "intern-2", Role: models.RoleIntern},
		{ID: "admin-1", Role: models.RoleAdmin},
	}}
	svc := NewStatsService(&mockRecordRepo{}, pending, profiles)

	got, err := svc.AdminSnapshot(ctx, now)
	if err != nil {
		t.Fatalf("AdminSnapshot() error = %v, want nil", err)
	}

	want := models.AdminSnapshot{
		TotalInterns:       2,
		PendingReviews:     2,
		TodayAttendance:    2,
		ThisWeekAttendance: 3,
	}
	if got != want {
		t.Errorf("AdminSnapshot() = %+v, want %+v", got, want)
	}
}
