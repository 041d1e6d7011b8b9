// Package models contains data structures for the application
package models

import (
	"time"
)

// DateLayout is the calendar-day format used across the PocketBase collections.
const DateLayout = "2006-01-02"

// Role identifies the two kinds of accounts in the system
type Role string

const (
	RoleIntern Role = "intern"
	RoleAdmin  Role = "admin"
)

// EntryStatus is the review state of a pending sign-in
type EntryStatus string

const (
	StatusPending  EntryStatus = "pending"
	StatusApproved EntryStatus = "approved"
	StatusRejected EntryStatus = "rejected"
)

// Terminal reports whether the status can no longer change.
func (s EntryStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Profile represents a user account (intern or admin)
type Profile struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	InternID       string `json:"intern_id,omitempty"`
	Role           Role   `json:"role"`
	TelegramChatID int64  `json:"telegram_chat_id,omitempty"`
}

// PendingEntry is one day's sign-in/out submission awaiting admin review.
// Entries are never deleted; terminal entries remain as an audit trail.
type PendingEntry struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	SignInDate  string      `json:"sign_in_date"` // DateLayout, weekdays only
	SignInTime  time.Time   `json:"sign_in_time"`
	SignOutTime *time.Time  `json:"sign_out_time,omitempty"`
	Status      EntryStatus `json:"status"`
	ApprovedBy  string      `json:"approved_by,omitempty"`
	AdminNotes  string      `json:"admin_notes,omitempty"`
}

// PendingEntryPatch is a partial update applied to a pending entry.
// Nil fields are left untouched.
type PendingEntryPatch struct {
	SignOutTime *time.Time
	Status      *EntryStatus
	ApprovedBy  *string
	AdminNotes  *string
}

// PendingEntryFilter narrows a pending-entry listing
type PendingEntryFilter struct {
	Status   EntryStatus
	UserID   string
	Date     string
	DateFrom string
}

// AttendanceRecord is a finalized, approved day of attendance.
// Created only when an entry with both timestamps is approved; immutable.
type AttendanceRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	SignInDate  string    `json:"sign_in_date"`
	SignInTime  time.Time `json:"sign_in_time"`
	SignOutTime time.Time `json:"sign_out_time"`
	TotalHours  float64   `json:"total_hours"`
}

// SignInRequest is the sign-in payload from the web UI
type SignInRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// SignOutRequest closes an open sign-in
type SignOutRequest struct {
	EntryID string `json:"entry_id"`
}

// ReviewRequest carries the admin's decision notes
type ReviewRequest struct {
	Notes string `json:"notes"`
}

// AttendanceStats is the per-user view over a date window
type AttendanceStats struct {
	PresentDays      int    `json:"present_days"`
	ExpectedWorkdays int    `json:"expected_workdays"`
	MissedDays       int    `json:"missed_days"`
	Rate             int    `json:"rate"`
	Classification   string `json:"classification"`
}

// InternStats pairs a profile with its attendance stats for dashboards
type InternStats struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	AttendanceStats
}

// StatsSummary aggregates rates across the intern set
type StatsSummary struct {
	TotalInterns int `json:"total_interns"`
	AverageRate  int `json:"average_rate"`
	AtRiskCount  int `json:"at_risk_count"`
	PerfectCount int `json:"perfect_count"`
}

// DailyCount is one point of the daily attendance series
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// AdminSnapshot backs the admin dashboard cards
type AdminSnapshot struct {
	TotalInterns       int `json:"total_interns"`
	PendingReviews     int `json:"pending_reviews"`
	TodayAttendance    int `json:"today_attendance"`
	ThisWeekAttendance int `json:"this_week_attendance"`
}
