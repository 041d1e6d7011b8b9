package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"intern-pulse-bot/internal/models"
	"intern-pulse-bot/internal/repository"
)

// Attendance rate thresholds (policy constants)
const (
	RateExcellent = 95
	RateGood      = 80
)

// Classification buckets derived from the attendance rate
const (
	ClassExcellent = "excellent"
	ClassGood      = "good"
	ClassAtRisk    = "at_risk"
)

// StatsService computes attendance statistics from the finalized history.
// It performs no mutation; recomputing with the same inputs yields the
// same result.
type StatsService struct {
	recordRepo  repository.AttendanceRecordRepository
	pendingRepo repository.PendingEntryRepository
	profileRepo repository.ProfileRepository
}

// NewStatsService creates a new stats service
func NewStatsService(
	recordRepo repository.AttendanceRecordRepository,
	pendingRepo repository.PendingEntryRepository,
	profileRepo repository.ProfileRepository,
) *StatsService {
	return &StatsService{
		recordRepo:  recordRepo,
		pendingRepo: pendingRepo,
		profileRepo: profileRepo,
	}
}

// ExpectedWorkdays counts the Monday-Friday dates in [start, end] inclusive.
// Returns 0 when the window is empty or lies entirely on a weekend.
func ExpectedWorkdays(start, end time.Time) int {
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	count := 0
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if IsWorkday(d) {
			count++
		}
	}
	return count
}

// attendanceRate is the half-up integer percentage; 0 when no workdays
// are expected.
func attendanceRate(presentDays, expectedWorkdays int) int {
	if expectedWorkdays == 0 {
		return 0
	}
	return int(math.Round(float64(presentDays) / float64(expectedWorkdays) * 100))
}

func classifyRate(rate int) string {
	switch {
	case rate >= RateExcellent:
		return ClassExcellent
	case rate >= RateGood:
		return ClassGood
	default:
		return ClassAtRisk
	}
}

func buildStats(presentDays, expectedWorkdays int) models.AttendanceStats {
	missed := expectedWorkdays - presentDays
	if missed < 0 {
		missed = 0
	}
	rate := attendanceRate(presentDays, expectedWorkdays)
	return models.AttendanceStats{
		PresentDays:      presentDays,
		ExpectedWorkdays: expectedWorkdays,
		MissedDays:       missed,
		Rate:             rate,
		Classification:   classifyRate(rate),
	}
}

// UserStats computes one user's attendance over [start, end].
func (s *StatsService) UserStats(ctx context.Context, userID string, start, end time.Time) (models.AttendanceStats, error) {
	records, err := s.recordRepo.Query(ctx, userID,
		start.Format(models.DateLayout), end.Format(models.DateLayout))
	if err != nil {
		return models.AttendanceStats{}, fmt.Errorf("failed to query attendance records: %w", err)
	}
	return buildStats(len(records), ExpectedWorkdays(start, end)), nil
}

// InternOverview computes per-intern stats and the aggregate summary for
// the admin analytics dashboard.
func (s *StatsService) InternOverview(ctx context.Context, start, end time.Time) ([]models.InternStats, models.StatsSummary, error) {
	interns, err := s.profileRepo.ListByRole(ctx, models.RoleIntern)
	if err != nil {
		return nil, models.StatsSummary{}, fmt.Errorf("failed to list interns: %w", err)
	}

	records, err := s.recordRepo.Query(ctx, "",
		start.Format(models.DateLayout), end.Format(models.DateLayout))
	if err != nil {
		return nil, models.StatsSummary{}, fmt.Errorf("failed to query attendance records: %w", err)
	}

	presentByUser := make(map[string]int)
	for _, record := range records {
		presentByUser[record.UserID]++
	}

	expected := ExpectedWorkdays(start, end)
	stats := make([]models.InternStats, 0, len(interns))
	summary := models.StatsSummary{TotalInterns: len(interns)}
	rateSum := 0

	for _, intern := range interns {
		st := buildStats(presentByUser[intern.ID], expected)
		stats = append(stats, models.InternStats{
			UserID:          intern.ID,
			Name:            intern.FullName,
			AttendanceStats: st,
		})

		rateSum += st.Rate
		if st.Rate < RateGood {
			summary.AtRiskCount++
		}
		if st.Rate >= RateExcellent {
			summary.PerfectCount++
		}
	}

	if len(interns) > 0 {
		summary.AverageRate = int(math.Round(float64(rateSum) / float64(len(interns))))
	}
	return stats, summary, nil
}

// DailySeries counts finalized records per calendar date across all users,
// ordered by date ascending, for the daily attendance chart.
func (s *StatsService) DailySeries(ctx context.Context, start, end time.Time) ([]models.DailyCount, error) {
	records, err := s.recordRepo.Query(ctx, "",
		start.Format(models.DateLayout), end.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance records: %w", err)
	}

	countByDate := make(map[string]int)
	for _, record := range records {
		countByDate[record.SignInDate]++
	}

	series := make([]models.DailyCount, 0, len(countByDate))
	for date, count := range countByDate {
		series = append(series, models.DailyCount{Date: date, Count: count})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series, nil
}

// AdminSnapshot gathers the counters shown on the admin dashboard cards.
// The week starts on Monday.
func (s *StatsService) AdminSnapshot(ctx context.Context, now time.Time) (models.AdminSnapshot, error) {
	today := now.Format(models.DateLayout)
	weekStart := now.AddDate(0, 0, -(int(now.Weekday()) - 1)).Format(models.DateLayout)

	totalInterns, err := s.profileRepo.CountByRole(ctx, models.RoleIntern)
	if err != nil {
		return models.AdminSnapshot{}, fmt.Errorf("failed to count interns: %w", err)
	}

	pending, err := s.pendingRepo.Count(ctx, models.PendingEntryFilter{Status: models.StatusPending})
	if err != nil {
		return models.AdminSnapshot{}, fmt.Errorf("failed to count pending reviews: %w", err)
	}

	todayCount, err := s.pendingRepo.Count(ctx, models.PendingEntryFilter{Date: today})
	if err != nil {
		return models.AdminSnapshot{}, fmt.Errorf("failed to count today's entries: %w", err)
	}

	weekCount, err := s.pendingRepo.Count(ctx, models.PendingEntryFilter{DateFrom: weekStart})
	if err != nil {
		return models.AdminSnapshot{}, fmt.Errorf("failed to count this week's entries: %w", err)
	}

	return models.AdminSnapshot{
		TotalInterns:       totalInterns,
		PendingReviews:     pending,
		TodayAttendance:    todayCount,
		ThisWeekAttendance: weekCount,
	}, nil
}
