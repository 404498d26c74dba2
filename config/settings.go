package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings is the process configuration read from the environment (and .env when present).
// Business configuration such as control ledgers lives in the settings table instead.
type Settings struct {
	Port string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	RedisAddress  string
	RedisPassword string
	SettingsTTL   time.Duration

	// Notifier selects the post-commit event backend: "log", "pubsub" or "kafka".
	Notifier      string
	PubSubProject string
	PubSubTopic   string
	KafkaBrokers  []string
	KafkaTopic    string

	PostingLock    bool
	PostingLockTTL time.Duration
}

func init() {
	// Load env from .env
	godotenv.Load()
}

func LoadSettings() Settings {
	return Settings{
		Port: stringFromEnv("PORT", "8080"),

		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     stringFromEnv("DB_PORT", "3306"),
		DBName:     os.Getenv("DB_NAME"),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		SettingsTTL:   time.Duration(intFromEnv("SETTINGS_CACHE_SECONDS", 300)) * time.Second,

		Notifier:      strings.ToLower(stringFromEnv("NOTIFIER", "log")),
		PubSubProject: os.Getenv("PUBSUB_PROJECT_ID"),
		PubSubTopic:   stringFromEnv("PUBSUB_TOPIC", "bakery-transactions"),
		KafkaBrokers:  splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    stringFromEnv("KAFKA_TOPIC", "bakery-transactions"),

		PostingLock:    DebugEnabled("POSTING_LOCK"),
		PostingLockTTL: time.Duration(intFromEnv("POSTING_LOCK_SECONDS", 30)) * time.Second,
	}
}

func stringFromEnv(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
