package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	BotToken       string
	WebhookBaseURL string
	WebhookSecret  string
	ServerPort     string
	BotAPIKey      string

	ChatID   int64
	TopicID  int64
	AdminIDs []int64

	FraudDetection bool
}

func Load() *Config {
	return &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "pnlbot"),
		BotToken:       getEnv("BOT_TOKEN", ""),
		WebhookBaseURL: getEnv("WEBHOOK_BASE_URL", ""),
		WebhookSecret:  getEnv("WEBHOOK_SECRET", ""),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		BotAPIKey:      getEnv("BOT_API_KEY", "bot-api-key-change-me"),
		ChatID:         getEnvInt64("CHAT_ID", 0),
		TopicID:        getEnvInt64("TOPIC_ID", 0),
		AdminIDs:       parseIDList(getEnv("ADMIN_IDS", "")),
		FraudDetection: getEnv("FRAUD_DETECTION", "false") == "true",
	}
}

func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func parseIDList(s string) []int64 {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids = append(ids, n)
		}
	}
	return ids
}
