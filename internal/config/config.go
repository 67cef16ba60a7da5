package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port              string
	StoreBackend      string
	StorePath         string
	RedisAddr         string
	DatabaseURL       string
	PollInterval      time.Duration
	DisplayNextDepth  int
	SkipReturnToQueue bool
	AnnouncerKind     string
	AnnouncerWebhook  string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	backend := os.Getenv("STORE_BACKEND")
	if backend == "" {
		backend = "file"
	}

	path := os.Getenv("STORE_PATH")
	if path == "" {
		path = "queueassist.json"
	}

	return Config{
		Port:              port,
		StoreBackend:      backend,
		StorePath:         path,
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		DatabaseURL:       os.Getenv("DB_DSN"),
		PollInterval:      readDurationSeconds("POLL_INTERVAL_SECONDS", 5),
		DisplayNextDepth:  readInt("DISPLAY_NEXT_DEPTH", 4),
		SkipReturnToQueue: readBool("SKIP_RETURN_TO_QUEUE", false),
		AnnouncerKind:     os.Getenv("ANNOUNCER"),
		AnnouncerWebhook:  os.Getenv("ANNOUNCER_WEBHOOK_URL"),
	}
}

func readDurationSeconds(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
