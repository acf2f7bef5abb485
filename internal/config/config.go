package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Env          string
	ListenAddr   string
	DatabaseURL  string
	RedisAddr    string
	MailRelayURL string
	DirectoryURL string

	SweepInterval     time.Duration
	PortfolioCacheTTL time.Duration

	InvitationExpiryDays int
	ReminderIntervalDays int
	MaxReminders         int
	ExtensionDays        int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var out int
		_, err := fmt.Sscanf(v, "%d", &out)
		if err == nil {
			return out
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func Load() Config {
	return Config{
		Env:          getenv("APP_ENV", "development"),
		ListenAddr:   getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		MailRelayURL: os.Getenv("MAIL_RELAY_URL"),
		DirectoryURL: os.Getenv("DIRECTORY_URL"),

		SweepInterval:     getenvDuration("SWEEP_INTERVAL", time.Hour),
		PortfolioCacheTTL: getenvDuration("PORTFOLIO_CACHE_TTL", 5*time.Minute),

		InvitationExpiryDays: getenvInt("INVITATION_EXPIRY_DAYS", 30),
		ReminderIntervalDays: getenvInt("REMINDER_INTERVAL_DAYS", 7),
		MaxReminders:         getenvInt("MAX_REMINDERS", 3),
		ExtensionDays:        getenvInt("EXTENSION_DAYS", 14),
	}
}
