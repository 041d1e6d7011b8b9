// Package repository defines repository interfaces for data access
package repository

import (
	"context"

	"intern-pulse-bot/internal/models"
)

// PendingEntryRepository defines the interface for pending sign-in data access
type PendingEntryRepository interface {
	// Insert creates a new pending entry. Returns models.ErrDuplicateEntry
	// if an entry already exists for the same (user, date); the collection
	// carries a unique index on that pair, so concurrent double sign-ins
	// lose the race here rather than producing a second entry.
	Insert(ctx context.Context, entry *models.PendingEntry) error
	// GetByID retrieves an entry, models.ErrNotFound if missing
	GetByID(ctx context.Context, id string) (*models.PendingEntry, error)
	// Update applies patch to the entry only while its stored status still
	// equals expectedStatus. Returns models.ErrNotFound if the entry is
	// missing and models.ErrInvalidState if the status no longer matches.
	Update(ctx context.Context, id string, patch models.PendingEntryPatch, expectedStatus models.EntryStatus) (*models.PendingEntry, error)
	// List returns entries matching the filter, newest sign-in first
	List(ctx context.Context, filter models.PendingEntryFilter) ([]models.PendingEntry, error)
	// Count returns the number of entries matching the filter
	Count(ctx context.Context, filter models.PendingEntryFilter) (int, error)
}

// AttendanceRecordRepository defines the interface for finalized history access
type AttendanceRecordRepository interface {
	// Create appends a finalized record to the attendance history
	Create(ctx context.Context, record *models.AttendanceRecord) error
	// Query returns records within [startDate, endDate] inclusive,
	// for one user when userID is non-empty, for everyone otherwise
	Query(ctx context.Context, userID, startDate, endDate string) ([]models.AttendanceRecord, error)
}

// ProfileRepository defines the interface for account data access
type ProfileRepository interface {
	// GetByID retrieves a profile, models.ErrNotFound if missing
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	// ListByRole returns all profiles with the given role
	ListByRole(ctx context.Context, role models.Role) ([]models.Profile, error)
	// CountByRole returns the number of profiles with the given role
	CountByRole(ctx context.Context, role models.Role) (int, error)
}
