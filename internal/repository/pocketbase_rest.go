// Package repository provides PocketBase REST API implementations
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"intern-pulse-bot/internal/models"
)

// pbTimeLayout is the timestamp format PocketBase date fields come back in.
const pbTimeLayout = "2006-01-02 15:04:05.000Z"

func parsePBTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(pbTimeLayout, s)
}

// pendingEntryItem is the wire shape of a pending_sign_ins record
type pendingEntryItem struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	SignInDate  string `json:"sign_in_date"`
	SignInTime  string `json:"sign_in_time"`
	SignOutTime string `json:"sign_out_time"`
	Status      string `json:"status"`
	ApprovedBy  string `json:"approved_by"`
	AdminNotes  string `json:"admin_notes"`
}

func (it pendingEntryItem) toModel() (*models.PendingEntry, error) {
	signIn, err := parsePBTime(it.SignInTime)
	if err != nil {
		return nil, fmt.Errorf("bad sign_in_time %q: %w", it.SignInTime, err)
	}

	entry := &models.PendingEntry{
		ID:         it.ID,
		UserID:     it.UserID,
		SignInDate: it.SignInDate,
		SignInTime: signIn,
		Status:     models.EntryStatus(it.Status),
		ApprovedBy: it.ApprovedBy,
		AdminNotes: it.AdminNotes,
	}

	if it.SignOutTime != "" {
		signOut, err := parsePBTime(it.SignOutTime)
		if err != nil {
			return nil, fmt.Errorf("bad sign_out_time %q: %w", it.SignOutTime, err)
		}
		entry.SignOutTime = &signOut
	}

	return entry, nil
}

// PocketBaseRESTPendingEntryRepository implements PendingEntryRepository
type PocketBaseRESTPendingEntryRepository struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewPocketBaseRESTPendingEntryRepository creates repository
func NewPocketBaseRESTPendingEntryRepository(baseURL string) *PocketBaseRESTPendingEntryRepository {
	return &PocketBaseRESTPendingEntryRepository{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  os.Getenv("POCKETBASE_TOKEN"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *PocketBaseRESTPendingEntryRepository) addAuthHeader(req *http.Request) {
	if r.authToken != "" {
		req.Header.Set("Authorization", r.authToken)
	}
}

func (r *PocketBaseRESTPendingEntryRepository) Insert(ctx context.Context, entry *models.PendingEntry) error {
	apiURL := fmt.Sprintf("%s/api/collections/pending_sign_ins/records", r.baseURL)

	data := map[string]interface{}{
		"user_id":      entry.UserID,
		"sign_in_date": entry.SignInDate,
		"sign_in_time": entry.SignInTime.Format(time.RFC3339),
		"status":       string(entry.Status),
	}

	jsonData, _ := json.Marshal(data)
	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	r.addAuthHeader(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		// The unique index on (user_id, sign_in_date) rejects double
		// sign-ins; PocketBase reports it as a not-unique validation error.
		if resp.StatusCode == http.StatusBadRequest && strings.Contains(string(body), "validation_not_unique") {
			return models.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create pending entry: %s - %s", resp.Status, string(body))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}

	entry.ID = result.ID
	log.Printf("💾 Created pending entry %s for user %s on %s", entry.ID, entry.UserID, entry.SignInDate)
	return nil
}

func (r *PocketBaseRESTPendingEntryRepository) GetByID(ctx context.Context, id string) (*models.PendingEntry, error) {
	apiURL := fmt.Sprintf("%s/api/collections/pending_sign_ins/records/%s", r.baseURL, url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, err
	}
	r.addAuthHeader(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, models.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get pending entry: %s - %s", resp.Status, string(body))
	}

	var item pendingEntryItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, err
	}
	return item.toModel()
}

func (r *PocketBaseRESTPendingEntryRepository) Update(ctx context.Context, id string, patch models.PendingEntryPatch, expectedStatus models.EntryStatus) (*models.PendingEntry, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != expectedStatus {
		return nil, models.ErrInvalidState
	}

	data := map[string]interface{}{}
	if patch.SignOutTime != nil {
		data["sign_out_time"] = patch.SignOutTime.Format(time.RFC3339)
	}
	if patch.Status != nil {
		data["status"] = string(*patch.Status)
	}
	if patch.ApprovedBy != nil {
		data["approved_by"] = *patch.ApprovedBy
	}
	if patch.AdminNotes != nil {
		data["admin_notes"] = *patch.AdminNotes
	}

	apiURL := fmt.Sprintf("%s/api/collections/pending_sign_ins/records/%s", r.baseURL, url.PathEscape(id))
	jsonData, _ := json.Marshal(data)
	req, err := http.NewRequestWithContext(ctx, "PATCH", apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	r.addAuthHeader(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, models.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to update pending entry: %s - %s", resp.Status, string(body))
	}

	var item pendingEntryItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, err
	}
	return item.toModel()
}

func buildPendingFilter(filter models.PendingEntryFilter) string {
	var parts []string
	if filter.Status != "" {
		parts = append(parts, fmt.Sprintf("status='%s'", filter.Status))
	}
	if filter.UserID != "" {
		parts = append(parts, fmt.Sprintf("user_id='%s'", filter.UserID))
	}
	if filter.Date != "" {
		parts = append(parts, fmt.Sprintf("sign_in_date='%s'", filter.Date))
	}
	if filter.DateFrom != "" {
		parts = append(parts, fmt.Sprintf("sign_in_date>='%s'", filter.DateFrom))
	}
	return strings.Join(parts, " && ")
}

func (r *PocketBaseRESTPendingEntryRepository) List(ctx context.Context, filter models.PendingEntryFilter) ([]models.PendingEntry, error) {
	baseQuery := "sort=-sign_in_time&perPage=200"
	if f := buildPendingFilter(filter); f != "" {
		baseQuery += "&filter=" + url.QueryEscape(f)
	}

	// Entries are never deleted, so a large backlog spans multiple pages
	var entries []models.PendingEntry
	page := 1
	for {
		apiURL := fmt.Sprintf("%s/api/collections/pending_sign_ins/records?%s&page=%d",
			r.baseURL, baseQuery, page)

		req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
		if err != nil {
			return nil, err
		}
		r.addAuthHeader(req)

		resp, err := r.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("failed to list pending entries: %s - %s", resp.Status, string(body))
		}

		var result struct {
			Page       int                `json:"page"`
			TotalPages int                `json:"totalPages"`
			Items      []pendingEntryItem `json:"items"`
		}
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		for _, item := range result.Items {
			entry, err := item.toModel()
			if err != nil {
				return nil, err
			}
			entries = append(entries, *entry)
		}

		if result.Page >= result.TotalPages {
			break
		}
		page++
	}

	return entries, nil
}

func (r *PocketBaseRESTPendingEntryRepository) Count(ctx context.Context, filter models.PendingEntryFilter) (int, error) {
	apiURL := fmt.Sprintf("%s/api/collections/pending_sign_ins/records?perPage=1", r.baseURL)
	if f := buildPendingFilter(filter); f != "" {
		apiURL += "&filter=" + url.QueryEscape(f)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return 0, err
	}
	r.addAuthHeader(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("failed to count pending entries: %s - %s", resp.Status, string(body))
	}

	var result struct {
		TotalItems int `json:"totalItems"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, err
	}
	return result.TotalItems, nil
}

// attendanceRecordItem is the wire shape of an attendance_records record
type attendanceRecordItem struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	SignInDate  string  `json:"sign_in_date"`
	SignInTime  string  `json:"sign_in_time"`
	SignOutTime string  `json:"sign_out_time"`
	TotalHours  float64 `json:"total_hours"`
}

func (it attendanceRecordItem) toModel() (*models.AttendanceRecord, error) {
	signIn, err := parsePBTime(it.SignInTime)
	if err != nil {
		return nil, fmt.Errorf("bad sign_in_time %q: %w", it.SignInTime, err)
	}
	signOut, err := parsePBTime(it.SignOutTime)
	if err != nil {
		return nil, fmt.Errorf("bad sign_out_time %q: %w", it.SignOutTime, err)
	}

	return &models.AttendanceRecord{
		ID:          it.ID,
		UserID:      it.UserID,
		SignInDate:  it.SignInDate,
		SignInTime:  signIn,
		SignOutTime: signOut,
		TotalHours:  it.TotalHours,
	}, nil
}

// PocketBaseRESTAttendanceRecordRepository implements AttendanceRecordRepository
type PocketBaseRESTAttendanceRecordRepository struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

func NewPocketBaseRESTAttendanceRecordRepository(baseURL string) *PocketBaseRESTAttendanceRecordRepository {
	return &PocketBaseRESTAttendanceRecordRepository{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  os.Getenv("POCKETBASE_TOKEN"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *PocketBaseRESTAttendanceRecordRepository) addAuthHeader(req *http.Request) {
	if r.authToken != "" {
		req.Header.Set("Authorization", r.authToken)
	}
}

func (r *PocketBaseRESTAttendanceRecordRepository) Create(ctx context.Context, record *models.AttendanceRecord) error {
	apiURL := fmt.Sprintf("%s/api/collections/attendance_records/records", r.baseURL)

	data := map[string]interface{}{
		"user_id":       record.UserID,
		"sign_in_date":  record.SignInDate,
		"sign_in_time":  record.SignInTime.Format(time.RFC3339),
		"sign_out_time": record.SignOutTime.Format(time.RFC3339),
		"total_hours":   record.TotalHours,
	}

	jsonData, _ := json.Marshal(data)
	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	r.addAuthHeader(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to create attendance record: %s - %s", resp.Status, string(body))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}

	record.ID = result.ID
	log.Printf("💾 Appended attendance record %s for user %s (%s, %.2fh)",
		record.ID, record.UserID, record.SignInDate, record.TotalHours)
	return nil
}

func (r *PocketBaseRESTAttendanceRecordRepository) Query(ctx context.Context, userID, startDate, endDate string) ([]models.AttendanceRecord, error) {
	parts := []string{
		fmt.Sprintf("sign_in_date>='%s'", startDate),
		fmt.Sprintf("sign_in_date<='%s'", endDate),
	}
	if userID != "" {
		parts = append(parts, fmt.Sprintf("user_id='%s'", userID))
	}
	filter := url.QueryEscape(strings.Join(parts, " && "))

	var records []models.AttendanceRecord
	page := 1
	for {
		apiURL := fmt.Sprintf("%s/api/collections/attendance_records/records?filter=%s&sort=sign_in_date&perPage=500&page=%d",
			r.baseURL, filter, page)

		req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
		if err != nil {
			return nil, err
		}
		r.addAuthHeader(req)

		resp, err := r.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("failed to query attendance records: %s - %s", resp.Status, string(body))
		}

		var result struct {
			Page       int                    `json:"page"`
			TotalPages int                    `json:"totalPages"`
			Items      []attendanceRecordItem `json:"items"`
		}
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		for _, item := range result.Items {
			record, err := item.toModel()
			if err != nil {
				return nil, err
			}
			records = append(records, *record)
		}

		if result.Page >= result.TotalPages {
			break
		}
		page++
	}

	return records, nil
}

// PocketBaseRESTProfileRepository implements ProfileRepository
type PocketBaseRESTProfileRepository struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

func NewPocketBaseRESTProfileRepository(baseURL string) *PocketBaseRESTProfileRepository {
	return &PocketBaseRESTProfileRepository{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  os.Getenv("POCKETBASE_TOKEN"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *PocketBaseRESTProfileRepository) addAuthHeader(req *http.Request) {
	if r.authToken != "" {
		req.Header.Set("Authorization", r.authToken)
	}
}

type profileItem struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	PhoneNumber    string `json:"phone_number"`
	InternID       string `json:"intern_id"`
	Role           string `json:"role"`
	TelegramChatID int64  `json:"telegram_chat_id"`
}

func (it profileItem) toModel() *models.Profile {
	return &models.Profile{
		ID:             it.ID,
		Email:          it.Email,
		FullName:       it.FullName,
		PhoneNumber:    it.PhoneNumber,
		InternID:       it.InternID,
		Role:           models.Role(it.Role),
		TelegramChatID: it.TelegramChatID,
	}
}

func (r *PocketBaseRESTProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	apiURL := fmt.Sprintf("%s/api/collections/profiles/records/%s", r.baseURL, url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, err
	}
	r.addAuthHeader(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, models.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get profile: %s - %s", resp.Status, string(body))
	}

	var item profileItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, err
	}
	return item.toModel(), nil
}

func (r *PocketBaseRESTProfileRepository) ListByRole(ctx context.Context, role models.Role) ([]models.Profile, error) {
	filter := url.QueryEscape(fmt.Sprintf("role='%s'", role))
	apiURL := fmt.Sprintf("%s/api/collections/profiles/records?filter=%s&sort=full_name&perPage=500", r.baseURL, filter)

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, err
	}
	r.addAuthHeader(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to list profiles: %s - %s", resp.Status, string(body))
	}

	var result struct {
		Items []profileItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	profiles := make([]models.Profile, 0, len(result.Items))
	for _, item := range result.Items {
		profiles = append(profiles, *item.toModel())
	}
	return profiles, nil
}

func (r *PocketBaseRESTProfileRepository) CountByRole(ctx context.Context, role models.Role) (int, error) {
	filter := url.QueryEscape(fmt.Sprintf("role='%s'", role))
	apiURL := fmt.Sprintf("%s/api/collections/profiles/records?filter=%s&perPage=1", r.baseURL, filter)

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return 0, err
	}
	r.addAuthHeader(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("failed to count profiles: %s - %s", resp.Status, string(body))
	}

	var result struct {
		TotalItems int `json:"totalItems"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, err
	}
	return result.TotalItems, nil
}
