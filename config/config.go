package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// PocketBase external server
	PocketBaseURL   string // PocketBase server URL (e.g., http://127.0.0.1:8090)
	PocketBaseToken string // Auth token for API access

	// HTTP server
	Port         string
	AllowOrigins []string

	// Telegram bot
	TelegramBotToken string
	AdminChatID      string

	// Office location policy
	OfficeLatitude    float64
	OfficeLongitude   float64
	MaxDistanceMeters float64
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("godotenv.Load() error: %v", err)
	}

	pbURL := os.Getenv("POCKETBASE_URL")
	if pbURL == "" {
		pbURL = "http://127.0.0.1:8090"
	}

	origins := []string{"*"}
	if o := os.Getenv("ALLOW_ORIGIN"); o != "" {
		origins = []string{o}
	}

	return &Config{
		PocketBaseURL:    pbURL,
		PocketBaseToken:  os.Getenv("POCKETBASE_TOKEN"),
		Port:             getEnv("PORT", "8080"),
		AllowOrigins:     origins,
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		AdminChatID:      os.Getenv("ADMIN_CHAT_ID"),

		// Default office: IIH campus, Lagos
		OfficeLatitude:    getEnvFloat("OFFICE_LATITUDE", 6.5244),
		OfficeLongitude:   getEnvFloat("OFFICE_LONGITUDE", 3.3792),
		MaxDistanceMeters: getEnvFloat("MAX_DISTANCE_METERS", 100),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return f
}
