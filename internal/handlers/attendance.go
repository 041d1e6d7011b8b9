// Package handlers provides HTTP handlers for API endpoints
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"intern-pulse-bot/internal/models"
	"intern-pulse-bot/internal/repository"
	"intern-pulse-bot/internal/services"
)

// Notifier dispatches Telegram messages after successful transitions
type Notifier interface {
	SendNotification(message string)
	SendPersonalNotification(chatID int64, message string)
}

// AttendanceHandler handles sign-in/out and admin review requests
type AttendanceHandler struct {
	lifecycle   services.AttendanceManager
	pendingRepo repository.PendingEntryRepository
	recordRepo  repository.AttendanceRecordRepository
	profileRepo repository.ProfileRepository
	location    services.LocationPolicy
	notifier    Notifier
	now         func() time.Time
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(
	lifecycle services.AttendanceManager,
	pendingRepo repository.PendingEntryRepository,
	recordRepo repository.AttendanceRecordRepository,
	profileRepo repository.ProfileRepository,
	location services.LocationPolicy,
	notifier Notifier,
) *AttendanceHandler {
	return &AttendanceHandler{
		lifecycle:   lifecycle,
		pendingRepo: pendingRepo,
		recordRepo:  recordRepo,
		profileRepo: profileRepo,
		location:    location,
		notifier:    notifier,
		now:         time.Now,
	}
}

// HandleSignIn opens today's pending entry for the caller
func (h *AttendanceHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	profile := ProfileFromContext(r.Context())

	var req models.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Location is verified loosely: only coordinates that resolve outside
	// the office radius are refused, absent coordinates pass.
	if req.Latitude != nil && req.Longitude != nil {
		result := h.location.Check(*req.Latitude, *req.Longitude)
		if !result.Allowed {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": result.Message})
			return
		}
	}

	now := h.now()
	entry, err := h.lifecycle.SignIn(r.Context(), profile.ID, now.Format(models.DateLayout), now)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	log.Printf("✅ %s signed in at %s", profile.FullName, now.Format("15:04:05"))
	h.notifier.SendNotification(fmt.Sprintf(
		"🕐 *New sign-in*\n👤 %s\n📅 %s\n⏰ `%s`\n\nAwaiting review.",
		profile.FullName, entry.SignInDate, now.Format("15:04:05")))

	writeJSON(w, http.StatusCreated, entry)
}

// HandleSignOut closes the caller's open entry
func (h *AttendanceHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	profile := ProfileFromContext(r.Context())

	var req models.SignOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EntryID == "" {
		http.Error(w, "entry_id is required", http.StatusBadRequest)
		return
	}

	// Ownership is checked before the transition so that a foreign
	// entry is never touched
	current, err := h.pendingRepo.GetByID(r.Context(), req.EntryID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if current.UserID != profile.ID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	entry, err := h.lifecycle.SignOut(r.Context(), req.EntryID, h.now())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	log.Printf("👋 %s signed out (entry %s)", profile.FullName, entry.ID)
	writeJSON(w, http.StatusOK, entry)
}

// HandleToday returns the caller's entry for today, if any
func (h *AttendanceHandler) HandleToday(w http.ResponseWriter, r *http.Request) {
	profile := ProfileFromContext(r.Context())
	today := h.now().Format(models.DateLayout)

	entries, err := h.pendingRepo.List(r.Context(), models.PendingEntryFilter{
		UserID: profile.ID,
		Date:   today,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if len(entries) == 0 {
		writeJSON(w, http.StatusOK, map[string]interface{}{"entry": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entry": entries[0]})
}

// HandleHistory returns finalized records in a date window. Interns see
// their own history; admins may pass user_id to inspect anyone's.
func (h *AttendanceHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	profile := ProfileFromContext(r.Context())

	end := h.now()
	start := end.AddDate(0, 0, -30)
	if v := r.URL.Query().Get("start"); v != "" {
		t, err := time.Parse(models.DateLayout, v)
		if err != nil {
			http.Error(w, "Invalid start date", http.StatusBadRequest)
			return
		}
		start = t
	}
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := time.Parse(models.DateLayout, v)
		if err != nil {
			http.Error(w, "Invalid end date", http.StatusBadRequest)
			return
		}
		end = t
	}

	userID := profile.ID
	if v := r.URL.Query().Get("user_id"); v != "" && profile.Role == models.RoleAdmin {
		userID = v
	}

	records, err := h.recordRepo.Query(r.Context(), userID,
		start.Format(models.DateLayout), end.Format(models.DateLayout))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if records == nil {
		records = []models.AttendanceRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// HandlePending lists entries for admin review, with optional status and
// date filters
func (h *AttendanceHandler) HandlePending(w http.ResponseWriter, r *http.Request) {
	filter := models.PendingEntryFilter{Status: models.StatusPending}
	if v := r.URL.Query().Get("status"); v != "" {
		if v == "all" {
			filter.Status = ""
		} else {
			filter.Status = models.EntryStatus(v)
		}
	}
	filter.Date = r.URL.Query().Get("date")

	entries, err := h.pendingRepo.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if entries == nil {
		entries = []models.PendingEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleApprove transitions a pending entry to approved
func (h *AttendanceHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	admin := ProfileFromContext(r.Context())
	entryID := mux.Vars(r)["id"]

	// An empty body means no notes; a malformed one is refused
	var req models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entry, record, err := h.lifecycle.Approve(r.Context(), entryID, admin.ID, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	log.Printf("✅ Entry %s approved by %s", entry.ID, admin.FullName)
	h.notifyDecision(r, entry, "✅ Your attendance for %s was *approved*.")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entry":  entry,
		"record": record,
	})
}

// HandleReject transitions a pending entry to rejected
func (h *AttendanceHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	admin := ProfileFromContext(r.Context())
	entryID := mux.Vars(r)["id"]

	var req models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.lifecycle.Reject(r.Context(), entryID, admin.ID, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	log.Printf("🚫 Entry %s rejected by %s", entry.ID, admin.FullName)
	h.notifyDecision(r, entry, "🚫 Your attendance for %s was *rejected*.")

	writeJSON(w, http.StatusOK, map[string]interface{}{"entry": entry})
}

// notifyDecision pushes the review outcome to the intern's Telegram chat,
// including the admin's notes when present.
func (h *AttendanceHandler) notifyDecision(r *http.Request, entry *models.PendingEntry, format string) {
	intern, err := h.profileRepo.GetByID(r.Context(), entry.UserID)
	if err != nil || intern.TelegramChatID == 0 {
		return
	}

	message := fmt.Sprintf(format, entry.SignInDate)
	if entry.AdminNotes != "" {
		message += fmt.Sprintf("\n📝 %s", entry.AdminNotes)
	}
	h.notifier.SendPersonalNotification(intern.TelegramChatID, message)
}
