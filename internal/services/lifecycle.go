// Package services implements business logic for the application
package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"intern-pulse-bot/internal/models"
	"intern-pulse-bot/internal/repository"
)

// AttendanceManager drives the review lifecycle of daily sign-ins
type AttendanceManager interface {
	SignIn(ctx context.Context, userID, date string, now time.Time) (*models.PendingEntry, error)
	SignOut(ctx context.Context, entryID string, now time.Time) (*models.PendingEntry, error)
	Approve(ctx context.Context, entryID, adminID, notes string) (*models.PendingEntry, *models.AttendanceRecord, error)
	Reject(ctx context.Context, entryID, adminID, notes string) (*models.PendingEntry, error)
}

// LifecycleService handles the pending -> approved/rejected transitions and
// the promotion of approved days into the permanent attendance history.
// It holds no state of its own; both stores are injected at construction.
type LifecycleService struct {
	pendingRepo repository.PendingEntryRepository
	recordRepo  repository.AttendanceRecordRepository
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(
	pendingRepo repository.PendingEntryRepository,
	recordRepo repository.AttendanceRecordRepository,
) *LifecycleService {
	return &LifecycleService{
		pendingRepo: pendingRepo,
		recordRepo:  recordRepo,
	}
}

// IsWorkday reports whether the date falls on Monday through Friday.
func IsWorkday(date time.Time) bool {
	wd := date.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// roundHours rounds a duration in hours to 2 decimals.
func roundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}

// SignIn opens a new pending entry for the given calendar date.
func (s *LifecycleService) SignIn(ctx context.Context, userID, date string, now time.Time) (*models.PendingEntry, error) {
	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	if !IsWorkday(day) {
		return nil, models.ErrNonWorkday
	}

	entry := &models.PendingEntry{
		UserID:     userID,
		SignInDate: date,
		SignInTime: now,
		Status:     models.StatusPending,
	}
	if err := s.pendingRepo.Insert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// SignOut stamps the sign-out time on a still-open pending entry.
func (s *LifecycleService) SignOut(ctx context.Context, entryID string, now time.Time) (*models.PendingEntry, error) {
	entry, err := s.pendingRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != models.StatusPending {
		return nil, models.ErrInvalidState
	}
	if entry.SignOutTime != nil {
		return nil, models.ErrAlreadyClosed
	}
	if now.Before(entry.SignInTime) {
		// sign-out must not precede sign-in
		return nil, models.ErrInvalidState
	}

	return s.pendingRepo.Update(ctx, entryID, models.PendingEntryPatch{
		SignOutTime: &now,
	}, models.StatusPending)
}

// Approve marks a pending entry approved and, when the day is complete,
// appends the finalized record to the attendance history. An entry whose
// sign-out is still open is approved without producing a history record,
// so that day never counts toward statistics.
func (s *LifecycleService) Approve(ctx context.Context, entryID, adminID, notes string) (*models.PendingEntry, *models.AttendanceRecord, error) {
	status := models.StatusApproved
	updated, err := s.pendingRepo.Update(ctx, entryID, models.PendingEntryPatch{
		Status:     &status,
		ApprovedBy: &adminID,
		AdminNotes: &notes,
	}, models.StatusPending)
	if err != nil {
		return nil, nil, err
	}

	if updated.SignOutTime == nil {
		return updated, nil, nil
	}

	record := &models.AttendanceRecord{
		UserID:      updated.UserID,
		SignInDate:  updated.SignInDate,
		SignInTime:  updated.SignInTime,
		SignOutTime: *updated.SignOutTime,
		TotalHours:  roundHours(updated.SignOutTime.Sub(updated.SignInTime)),
	}
	if err := s.recordRepo.Create(ctx, record); err != nil {
		return updated, nil, fmt.Errorf("entry approved but history append failed: %w", err)
	}
	return updated, record, nil
}

// Reject marks a pending entry rejected. A reason is mandatory.
func (s *LifecycleService) Reject(ctx context.Context, entryID, adminID, notes string) (*models.PendingEntry, error) {
	if strings.TrimSpace(notes) == "" {
		return nil, models.ErrMissingReason
	}

	status := models.StatusRejected
	return s.pendingRepo.Update(ctx, entryID, models.PendingEntryPatch{
		Status:     &status,
		ApprovedBy: &adminID,
		AdminNotes: &notes,
	}, models.StatusPending)
}
