package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server struct {
		Host string
		Port int
	}
	Telegram struct {
		BotToken      string
		AdminIDs      []string
		ThreadID      int
		RatePerSecond int
	}
	DB struct {
		URL string
	}
	Static struct {
		Dir string
	}
	Logging struct {
		Dir string
	}
}

// Load reads an optional .env file and the process environment, applies
// defaults, and returns a Config. Values already present in the environment
// always win over the file. Missing Telegram credentials or DATABASE_URL are
// not load errors; the affected routes report them per request.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	cfg.Server.Host = getEnv("HOST", "127.0.0.1")
	rawPort := getEnv("PORT", "8000")
	port, err := strconv.Atoi(rawPort)
	if err != nil {
		return Config{}, fmt.Errorf("invalid PORT %q: %w", rawPort, err)
	}
	cfg.Server.Port = port

	cfg.Telegram.BotToken = strings.TrimSpace(os.Getenv("BOT_TOKEN"))
	cfg.Telegram.AdminIDs = ParseAdminIDs(os.Getenv("ADMIN_IDS"))
	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_THREAD_ID")); raw != "" {
		threadID, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TELEGRAM_THREAD_ID %q: %w", raw, err)
		}
		cfg.Telegram.ThreadID = threadID
	}
	if rps, err := strconv.Atoi(os.Getenv("TELEGRAM_RATE_LIMIT")); err == nil && rps > 0 {
		cfg.Telegram.RatePerSecond = rps
	} else {
		cfg.Telegram.RatePerSecond = 25
	}

	cfg.DB.URL = NormalizeDatabaseURL(os.Getenv("DATABASE_URL"))
	cfg.Static.Dir = getEnv("PUBLIC_DIR", "public")
	cfg.Logging.Dir = getEnv("LOG_DIR", "logs")

	return cfg, nil
}

// Addr returns the host:port pair the HTTP server listens on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ParseAdminIDs splits the comma-separated ADMIN_IDS value, keeping order and
// duplicates as configured and skipping blank entries.
func ParseAdminIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if value := strings.TrimSpace(part); value != "" {
			ids = append(ids, value)
		}
	}
	return ids
}

// NormalizeDatabaseURL rewrites both historical DSN scheme spellings to the
// canonical postgresql:// form.
func NormalizeDatabaseURL(value string) string {
	url := strings.TrimSpace(value)
	if rest, ok := strings.CutPrefix(url, "postgres://"); ok {
		return "postgresql://" + rest
	}
	if rest, ok := strings.CutPrefix(url, "postgresql+asyncpg://"); ok {
		return "postgresql://" + rest
	}
	return url
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
