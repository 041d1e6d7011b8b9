package bot

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var (
	bot         *tgbotapi.BotAPI
	adminChatID int64
	pbURL       string
	pbToken     string
	httpClient  = &http.Client{Timeout: 10 * time.Second}
)

// SetPocketBaseURL sets the PocketBase REST API URL
func SetPocketBaseURL(url string) {
	pbURL = strings.TrimRight(url, "/")
}

// SetPocketBaseToken sets the PocketBase auth token
func SetPocketBaseToken(token string) {
	pbToken = token
}

// addAuthHeader adds authorization header if token exists
func addAuthHeader(req *http.Request) {
	if pbToken != "" {
		req.Header.Set("Authorization", pbToken)
	}
}

// Init initializes the Telegram Bot
func Init(token string, adminChatIDStr string) error {
	var err error
	bot, err = tgbotapi.NewBotAPI(token)
	if err != nil {
		return err
	}

	bot.Debug = false
	log.Printf("Authorized on account %s", bot.Self.UserName)

	if adminChatIDStr != "" {
		id, err := strconv.ParseInt(adminChatIDStr, 10, 64)
		if err == nil {
			adminChatID = id
		}
	}

	return nil
}

// StartPolling starts the update loop
func StartPolling() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)

	go func() {
		for update := range updates {
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
			msg.ParseMode = "Markdown"

			switch update.Message.Command() {
			case "start":
				msg.Text = "🏢 *Intern Attendance*\n\n" +
					"*Commands:*\n" +
					"/today - today's sign-in\n" +
					"/history - last 7 approved days\n" +
					"/pending - entries awaiting review (admin)\n" +
					"/getid - this chat's ID"

			case "getid":
				msg.Text = fmt.Sprintf("Chat ID: `%d`", update.Message.Chat.ID)

			case "today":
				handleToday(update.Message.Chat.ID, &msg)

			case "history":
				handleHistory(update.Message.Chat.ID, &msg)

			case "pending":
				handlePending(update.Message.Chat.ID, &msg)

			default:
				msg.Text = "Unknown command, use /start"
			}

			if _, err := bot.Send(msg); err != nil {
				log.Printf("Bot send error: %v", err)
			}
		}
	}()
}

func handleToday(chatID int64, msg *tgbotapi.MessageConfig) {
	profile, err := getProfileByChat(chatID)
	if err != nil {
		msg.Text = "❌ This chat is not linked to a profile"
		return
	}

	entry, err := getTodayEntry(profile.ID)
	if err != nil || entry == nil {
		msg.Text = "No sign-in today"
		return
	}

	text := fmt.Sprintf("📊 *Today*\nIn: %s\nStatus: %s", formatClock(entry.SignInTime), entry.Status)
	if entry.SignOutTime != "" {
		text += fmt.Sprintf("\nOut: %s", formatClock(entry.SignOutTime))
	}
	msg.Text = text
}

func handleHistory(chatID int64, msg *tgbotapi.MessageConfig) {
	profile, err := getProfileByChat(chatID)
	if err != nil {
		msg.Text = "❌ This chat is not linked to a profile"
		return
	}

	history, err := getAttendanceHistory(profile.ID, 7)
	if err != nil || len(history) == 0 {
		msg.Text = "No approved attendance yet"
		return
	}

	text := "📅 *History*\n\n"
	for _, h := range history {
		text += fmt.Sprintf("%s: %.2fh\n", h.SignInDate, h.TotalHours)
	}
	msg.Text = text
}

func handlePending(chatID int64, msg *tgbotapi.MessageConfig) {
	if chatID != adminChatID {
		msg.Text = "❌ Admin chat only"
		return
	}

	entries, err := getPendingEntries()
	if err != nil {
		msg.Text = fmt.Sprintf("Error: %v", err)
		return
	}
	if len(entries) == 0 {
		msg.Text = "Nothing awaiting review 🎉"
		return
	}

	text := fmt.Sprintf("⏳ *%d awaiting review*\n\n", len(entries))
	for _, e := range entries {
		out := "-"
		if e.SignOutTime != "" {
			out = formatClock(e.SignOutTime)
		}
		text += fmt.Sprintf("%s · in %s · out %s\n", e.SignInDate, formatClock(e.SignInTime), out)
	}
	msg.Text = text
}

// formatClock trims a stored timestamp down to HH:MM for display
func formatClock(raw string) string {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.000Z"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("15:04")
		}
	}
	return raw
}

// REST API functions

type profileRecord struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type pendingRecord struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	SignInDate  string `json:"sign_in_date"`
	SignInTime  string `json:"sign_in_time"`
	SignOutTime string `json:"sign_out_time"`
	Status      string `json:"status"`
}

type attendanceRecord struct {
	SignInDate string  `json:"sign_in_date"`
	TotalHours float64 `json:"total_hours"`
}

func getProfileByChat(chatID int64) (*profileRecord, error) {
	if pbURL == "" {
		return nil, fmt.Errorf("PocketBase URL not set")
	}

	filter := url.QueryEscape(fmt.Sprintf("telegram_chat_id=%d", chatID))
	apiURL := fmt.Sprintf("%s/api/collections/profiles/records?filter=%s&limit=1", pbURL, filter)

	req, _ := http.NewRequest("GET", apiURL, nil)
	addAuthHeader(req)
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		Items []profileRecord `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("not found")
	}
	return &result.Items[0], nil
}

func getTodayEntry(userID string) (*pendingRecord, error) {
	today := time.Now().Format("2006-01-02")
	filter := url.QueryEscape(fmt.Sprintf("user_id='%s' && sign_in_date='%s'", userID, today))
	apiURL := fmt.Sprintf("%s/api/collections/pending_sign_ins/records?filter=%s&limit=1", pbURL, filter)

	req, _ := http.NewRequest("GET", apiURL, nil)
	addAuthHeader(req)
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		Items []pendingRecord `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, nil
	}
	return &result.Items[0], nil
}

func getAttendanceHistory(userID string, days int) ([]attendanceRecord, error) {
	startDate := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	filter := url.QueryEscape(fmt.Sprintf("user_id='%s' && sign_in_date>='%s'", userID, startDate))
	apiURL := fmt.Sprintf("%s/api/collections/attendance_records/records?filter=%s&sort=-sign_in_date", pbURL, filter)

	req, _ := http.NewRequest("GET", apiURL, nil)
	addAuthHeader(req)
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		Items []attendanceRecord `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

func getPendingEntries() ([]pendingRecord, error) {
	if pbURL == "" {
		return nil, fmt.Errorf("PocketBase URL not set")
	}

	filter := url.QueryEscape("status='pending'")
	apiURL := fmt.Sprintf("%s/api/collections/pending_sign_ins/records?filter=%s&sort=-sign_in_time", pbURL, filter)

	req, _ := http.NewRequest("GET", apiURL, nil)
	addAuthHeader(req)
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		Items []pendingRecord `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// SendNotification sends message to the admin chat
func SendNotification(message string) {
	if bot == nil || adminChatID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(adminChatID, message)
	msg.ParseMode = "Markdown"
	if _, err := bot.Send(msg); err != nil {
		log.Printf("Failed to send: %v", err)
	}
}

// SendPersonalNotification sends to a specific user
func SendPersonalNotification(chatID int64, message string) {
	if bot == nil {
		return
	}
	msg := tgbotapi.NewMessage(chatID, message)
	msg.ParseMode = "Markdown"
	if _, err := bot.Send(msg); err != nil {
		log.Printf("Failed to send to %d: %v", chatID, err)
	}
}
