// Backfill tool: entries approved while their sign-out was still open never
// produced an attendance record, so those days are missing from history and
// statistics. Once an admin fixes the sign-out, this tool appends the
// missing records with recomputed total hours.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const defaultPocketBaseURL = "http://127.0.0.1:8090"

type pendingEntry struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	SignInDate  string `json:"sign_in_date"`
	SignInTime  string `json:"sign_in_time"`
	SignOutTime string `json:"sign_out_time"`
	Status      string `json:"status"`
}

type Backfiller struct {
	baseURL    string
	token      string
	httpClient *http.Client
	dryRun     bool
}

func NewBackfiller() *Backfiller {
	godotenv.Load()

	baseURL := os.Getenv("POCKETBASE_URL")
	if baseURL == "" {
		baseURL = defaultPocketBaseURL
	}

	token := os.Getenv("POCKETBASE_TOKEN")
	if token == "" {
		log.Fatal("❌ Error: POCKETBASE_TOKEN not found in environment variables")
	}

	dryRun := os.Getenv("DRY_RUN") == "1"

	return &Backfiller{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		dryRun:     dryRun,
	}
}

func main() {
	b := NewBackfiller()

	fmt.Println("🔧 Attendance history backfill")
	fmt.Printf("Target: %s (dry run: %v)\n\n", b.baseURL, b.dryRun)

	entries, err := b.fetchApprovedClosedEntries()
	if err != nil {
		log.Fatalf("❌ Failed to fetch approved entries: %v", err)
	}
	fmt.Printf("Found %d approved, closed entries\n", len(entries))

	created, skipped := 0, 0
	for _, entry := range entries {
		exists, err := b.recordExists(entry.UserID, entry.SignInDate)
		if err != nil {
			log.Fatalf("❌ Failed to check history for %s/%s: %v", entry.UserID, entry.SignInDate, err)
		}
		if exists {
			skipped++
			continue
		}

		if b.dryRun {
			fmt.Printf("would create: user %s, date %s\n", entry.UserID, entry.SignInDate)
			created++
			continue
		}

		if err := b.createRecord(entry); err != nil {
			log.Fatalf("❌ Failed to create record for %s/%s: %v", entry.UserID, entry.SignInDate, err)
		}
		fmt.Printf("created: user %s, date %s\n", entry.UserID, entry.SignInDate)
		created++
	}

	fmt.Printf("\n🎉 Done: %d created, %d already in history\n", created, skipped)
}

func (b *Backfiller) addAuthHeader(req *http.Request) {
	req.Header.Set("Authorization", b.token)
}

func (b *Backfiller) fetchApprovedClosedEntries() ([]pendingEntry, error) {
	filter := url.QueryEscape("status='approved' && sign_out_time!=''")

	var entries []pendingEntry
	page := 1
	for {
		apiURL := fmt.Sprintf("%s/api/collections/pending_sign_ins/records?filter=%s&perPage=500&page=%d",
			b.baseURL, filter, page)

		req, _ := http.NewRequest("GET", apiURL, nil)
		b.addAuthHeader(req)
		resp, err := b.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("%s: %s", resp.Status, string(body))
		}

		var result struct {
			Page       int            `json:"page"`
			TotalPages int            `json:"totalPages"`
			Items      []pendingEntry `json:"items"`
		}
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		entries = append(entries, result.Items...)
		if result.Page >= result.TotalPages {
			break
		}
		page++
	}

	return entries, nil
}

func (b *Backfiller) recordExists(userID, date string) (bool, error) {
	filter := url.QueryEscape(fmt.Sprintf("user_id='%s' && sign_in_date='%s'", userID, date))
	apiURL := fmt.Sprintf("%s/api/collections/attendance_records/records?filter=%s&perPage=1", b.baseURL, filter)

	req, _ := http.NewRequest("GET", apiURL, nil)
	b.addAuthHeader(req)
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var result struct {
		TotalItems int `json:"totalItems"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, err
	}
	return result.TotalItems > 0, nil
}

func (b *Backfiller) createRecord(entry pendingEntry) error {
	signIn, err := parseTime(entry.SignInTime)
	if err != nil {
		return fmt.Errorf("bad sign_in_time %q: %w", entry.SignInTime, err)
	}
	signOut, err := parseTime(entry.SignOutTime)
	if err != nil {
		return fmt.Errorf("bad sign_out_time %q: %w", entry.SignOutTime, err)
	}

	totalHours := math.Round(signOut.Sub(signIn).Hours()*100) / 100

	data := map[string]interface{}{
		"user_id":       entry.UserID,
		"sign_in_date":  entry.SignInDate,
		"sign_in_time":  signIn.Format(time.RFC3339),
		"sign_out_time": signOut.Format(time.RFC3339),
		"total_hours":   totalHours,
	}

	apiURL := fmt.Sprintf("%s/api/collections/attendance_records/records", b.baseURL)
	jsonData, _ := json.Marshal(data)
	req, _ := http.NewRequest("POST", apiURL, bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	b.addAuthHeader(req)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: %s", resp.Status, string(body))
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05.000Z", s)
}
