package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultDBPath    = "data/dinners.db"
	defaultExportDir = "."
	defaultPort      = "8080"
)

// Config holds the configuration for the application.
type Config struct {
	DBPath         string
	PlanConfigPath string
	ExportDir      string
	LogLevel       string

	GhostURL      string
	GhostAdminKey string

	GeminiAPIKey string
	GroqAPIKey   string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	Port                   string
}

// NewFromEnv creates a new Config object from environment variables.
// Only settings with no usable default are left empty; surfaces that need
// them check with RequireGhost or RequireTelegram.
func NewFromEnv() (*Config, error) {
	allowed, err := parseUserIDs(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, err
	}

	return &Config{
		DBPath:                 getEnv("DINNER_DB_PATH", defaultDBPath),
		PlanConfigPath:         os.Getenv("DINNER_PLAN_CONFIG"),
		ExportDir:              getEnv("DINNER_EXPORT_DIR", defaultExportDir),
		LogLevel:               os.Getenv("LOG_LEVEL"),
		GhostURL:               strings.TrimRight(os.Getenv("GHOST_API_URL"), "/"),
		GhostAdminKey:          os.Getenv("GHOST_ADMIN_API_KEY"),
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
		GroqAPIKey:             os.Getenv("GROQ_API_KEY"),
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowed,
		Port:                   getEnv("PORT", defaultPort),
	}, nil
}

// DataDir is the directory holding the database file.
func (c *Config) DataDir() string {
	return filepath.Dir(c.DBPath)
}

// RequireGhost checks the settings needed to publish plans.
func (c *Config) RequireGhost() error {
	if c.GhostURL == "" {
		return errors.New("GHOST_API_URL environment variable not set")
	}
	if c.GhostAdminKey == "" {
		return errors.New("GHOST_ADMIN_API_KEY environment variable not set")
	}
	return nil
}

// RequireTelegram checks the settings needed to run the bot.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return errors.New("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	if len(c.TelegramAllowedUserIDs) == 0 {
		return errors.New("TELEGRAM_ALLOWED_USER_IDS environment variable not set")
	}
	return nil
}

// IsAllowedUser reports whether the Telegram user may talk to the bot.
func (c *Config) IsAllowedUser(id int64) bool {
	for _, allowed := range c.TelegramAllowedUserIDs {
		if allowed == id {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the Telegram user is the first allowed user.
func (c *Config) IsAdmin(id int64) bool {
	return len(c.TelegramAllowedUserIDs) > 0 && c.TelegramAllowedUserIDs[0] == id
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseUserIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_ALLOWED_USER_IDS environment variable is invalid: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
