// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Store backends selectable through APP_STORE.
const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env   string // application environment (e.g. "dev", "prod")
	Port  string // HTTP port to listen on
	Store string // StoreMySQL or StoreMemory

	DBUser string
	DBPass string // empty allowed
	DBHost string
	DBPort string
	DBName string

	JWTSecret string // shared with the auth service that issues access tokens
	Location  *time.Location

	AMQPURL        string // empty disables the comment notification pipeline
	CommentQueue   string
	ReminderCron   string // empty disables the reminder sweep
	ReminderWindow time.Duration

	FeedSettingsPath string
	PublicURL        string // base of links in calendar exports
}

// Load reads configuration values from the environment and returns a
// Config.  A .env file in the working directory is loaded first when it
// exists; real environment variables win over its entries.  Required
// variables are enforced by must() and missing values cause the program to
// exit with a fatal log message.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}

	cfg := Config{
		Env:              envStr("APP_ENV", "dev"),
		Port:             must("APP_PORT"),
		Store:            envStr("APP_STORE", StoreMySQL),
		JWTSecret:        must("JWT_SECRET"),
		Location:         loadLocation(envStr("APP_TIMEZONE", "UTC")),
		AMQPURL:          os.Getenv("AMQP_URL"),
		CommentQueue:     envStr("AMQP_COMMENT_QUEUE", "event_comments"),
		ReminderCron:     envStr("REMINDER_CRON", "*/15 * * * *"),
		ReminderWindow:   envDur("REMINDER_WINDOW", 24*time.Hour),
		FeedSettingsPath: envStr("FEED_SETTINGS_FILE", "feed.yaml"),
		PublicURL:        os.Getenv("APP_PUBLIC_URL"),
	}
	switch cfg.Store {
	case StoreMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case StoreMemory:
	default:
		log.Fatalf("invalid APP_STORE: %q", cfg.Store)
	}
	return cfg
}

// loadLocation resolves an IANA zone name.  An unknown zone is fatal since
// every status and date rendering depends on it.
func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatalf("invalid APP_TIMEZONE %q: %v", name, err)
	}
	return loc
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
