package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const pocketbaseURL = "http://127.0.0.1:8090"

var httpClient = &http.Client{Timeout: 10 * time.Second}

func main() {
	fmt.Println("🚀 PocketBase Collection Setup Script")
	fmt.Println("=====================================")

	godotenv.Load()

	url := getEnv("POCKETBASE_URL", pocketbaseURL)
	token := getEnv("POCKETBASE_TOKEN", "")

	fmt.Printf("Connecting to: %s\n", url)

	if err := checkHealth(url); err != nil {
		fmt.Printf("❌ Cannot connect to PocketBase: %v\n", err)
		fmt.Println("\nPlease check:")
		fmt.Println("1. Is PocketBase running at the specified URL?")
		fmt.Printf("2. Check with: curl %s/api/health\n", url)
		os.Exit(1)
	}

	if token == "" {
		fmt.Println("❌ POCKETBASE_TOKEN not set")
		fmt.Println("\nPlease set:")
		fmt.Println("  export POCKETBASE_TOKEN=your_token_here")
		os.Exit(1)
	}

	fmt.Println("✅ Using POCKETBASE_TOKEN from environment")

	if err := testAuth(url, token); err != nil {
		fmt.Printf("❌ Auth test failed: %v\n", err)
		os.Exit(1)
	}

	collections := []struct {
		name   string
		create func(string, string) error
	}{
		{"profiles", createProfilesCollection},
		{"pending_sign_ins", createPendingSignInsCollection},
		{"attendance_records", createAttendanceRecordsCollection},
	}

	for _, col := range collections {
		fmt.Printf("\n📦 Creating collection: %s\n", col.name)
		if err := col.create(url, token); err != nil {
			fmt.Printf("   ⚠️  %v\n", err)
		} else {
			fmt.Printf("   ✅ Created successfully\n")
		}
	}

	fmt.Println("\n🎉 Setup complete!")
	fmt.Printf("\nAccess Admin UI: %s/_/\n", url)
}

func testAuth(baseURL, token string) error {
	url := fmt.Sprintf("%s/api/collections", baseURL)
	req, _ := http.NewRequest("GET", url, nil)
	req.Header.Set("Authorization", token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	fmt.Println("✅ Authentication successful")
	return nil
}

func createCollection(baseURL, token, name string, fields []map[string]interface{}, indexes []string) error {
	createURL := fmt.Sprintf("%s/api/collections", baseURL)

	createData := map[string]interface{}{
		"name":   name,
		"type":   "base",
		"fields": fields,
	}
	if len(indexes) > 0 {
		createData["indexes"] = indexes
	}

	jsonData, _ := json.Marshal(createData)
	req, _ := http.NewRequest("POST", createURL, bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest && (bytes.Contains(body, []byte("already exists")) || bytes.Contains(body, []byte("must be unique"))) {
		fmt.Printf("   Collection already exists, skipping\n")
		return nil
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("create failed: %s - %s", resp.Status, string(body))
	}

	fmt.Printf("   Created with %d fields\n", len(fields))
	return nil
}

func createTextField(name string, required bool) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"type":        "text",
		"required":    required,
		"unique":      false,
		"hidden":      false,
		"presentable": false,
		"system":      false,
		"options": map[string]interface{}{
			"min": 0,
			"max": 0,
		},
	}
}

func createTextFieldWithPattern(name string, required bool, pattern string) map[string]interface{} {
	field := createTextField(name, required)
	field["options"] = map[string]interface{}{
		"min":     0,
		"max":     0,
		"pattern": pattern,
	}
	return field
}

func createSelectField(name string, required bool, values []string) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"type":        "select",
		"required":    required,
		"unique":      false,
		"hidden":      false,
		"presentable": false,
		"system":      false,
		"options": map[string]interface{}{
			"maxSelect": 1,
			"values":    values,
		},
	}
}

func createNumberField(name string, required bool) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"type":        "number",
		"required":    required,
		"unique":      false,
		"hidden":      false,
		"presentable": false,
		"system":      false,
		"options": map[string]interface{}{
			"min":       nil,
			"max":       nil,
			"noDecimal": false,
		},
	}
}

func createDateField(name string, required bool) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"type":        "date",
		"required":    required,
		"unique":      false,
		"hidden":      false,
		"presentable": false,
		"system":      false,
		"options": map[string]interface{}{
			"min": "",
			"max": "",
		},
	}
}

func createProfilesCollection(baseURL, token string) error {
	fields := []map[string]interface{}{
		createTextField("email", true),
		createTextField("full_name", true),
		createTextField("phone_number", false),
		createTextField("intern_id", false),
		createSelectField("role", true, []string{"intern", "admin"}),
		createNumberField("telegram_chat_id", false),
	}
	return createCollection(baseURL, token, "profiles", fields, nil)
}

func createPendingSignInsCollection(baseURL, token string) error {
	fields := []map[string]interface{}{
		createTextField("user_id", true),
		createTextFieldWithPattern("sign_in_date", true, `^\d{4}-\d{2}-\d{2}$`),
		createDateField("sign_in_time", true),
		createDateField("sign_out_time", false),
		createSelectField("status", true, []string{"pending", "approved", "rejected"}),
		createTextField("admin_notes", false),
		createTextField("approved_by", false),
	}
	// One entry per user per calendar day; concurrent double sign-ins
	// lose the race on this index
	indexes := []string{
		"CREATE UNIQUE INDEX idx_pending_user_date ON pending_sign_ins (user_id, sign_in_date)",
	}
	return createCollection(baseURL, token, "pending_sign_ins", fields, indexes)
}

func createAttendanceRecordsCollection(baseURL, token string) error {
	fields := []map[string]interface{}{
		createTextField("user_id", true),
		createTextFieldWithPattern("sign_in_date", true, `^\d{4}-\d{2}-\d{2}$`),
		createDateField("sign_in_time", true),
		createDateField("sign_out_time", true),
		createNumberField("total_hours", true),
	}
	return createCollection(baseURL, token, "attendance_records", fields, nil)
}

func checkHealth(baseURL string) error {
	resp, err := httpClient.Get(baseURL + "/api/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %s", resp.Status)
	}

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("✅ PocketBase is running: %s\n", string(body))
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
