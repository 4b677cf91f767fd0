// Package config reads service settings from the environment.
// main loads `.env` with godotenv before calling Load.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every runtime setting.
type Config struct {
	Port         string        // PORT
	LogLevel     string        // LOG_LEVEL
	ClientOrigin string        // CLIENT_ORIGIN, for credentialed CORS
	Production   bool          // APP_ENV=production
	SessionKey   []byte        // SESSION_SECRET, HS256 key for the session cookie
	SessionTTL   time.Duration // SESSION_TTL_HOURS
	AppURL       string        // APP_URL, encoded by the share QR code
	CatalogFile  string        // CATALOG_FILE; empty = embedded catalog
	Leaderboard  string        // LEADERBOARD_BACKEND: memory | sqlite
	DSN          string        // LEADERBOARD_DSN for the sqlite backend
	TopN         int           // LEADERBOARD_TOP
	ShuffleSeed  int64         // SHUFFLE_SEED; 0 = seeded from the clock
}

// Load reads the environment, applying defaults for anything unset.
func Load() Config {
	return Config{
		Port:         getEnv("PORT", "5175"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:   strings.EqualFold(os.Getenv("APP_ENV"), "production"),
		SessionKey:   []byte(getEnv("SESSION_SECRET", "dev_secret_change_me")),
		SessionTTL:   time.Duration(envInt("SESSION_TTL_HOURS", 12)) * time.Hour,
		AppURL:       getEnv("APP_URL", "http://localhost:5175"),
		CatalogFile:  os.Getenv("CATALOG_FILE"),
		Leaderboard:  strings.ToLower(getEnv("LEADERBOARD_BACKEND", "memory")),
		DSN:          os.Getenv("LEADERBOARD_DSN"),
		TopN:         envInt("LEADERBOARD_TOP", 10),
		ShuffleSeed:  int64(envInt("SHUFFLE_SEED", 0)),
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envInt parses k as an int, falling back to def when unset or malformed.
func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
