package config

import (
	"os"
	"strconv"
	"time"
)

const DefaultModelName = "cardiffnlp/twitter-roberta-base-sentiment-latest"

// Config collects the environment-managed settings the pipeline service
// needs. Everything has a usable default so a dev environment starts with
// just the database variables set.
type Config struct {
	HTTPPort string

	BatchSize        int
	PreserveHashtags bool
	PreserveMentions bool
	MinContentWords  int
	ModelName        string
	ModelDir         string

	ValkeyAddress  string
	ValkeyPassword string
	ValkeyTLS      bool
	ValkeyTTL      time.Duration

	BlueskyHandle      string
	BlueskyAppPassword string
}

func FromEnv() Config {
	return Config{
		HTTPPort:           getEnv("HTTP_PORT", "8000"),
		BatchSize:          getEnvInt("PIPELINE_BATCH_SIZE", 100),
		PreserveHashtags:   getEnvBool("PRESERVE_HASHTAGS", false),
		PreserveMentions:   getEnvBool("PRESERVE_MENTIONS", false),
		MinContentWords:    getEnvInt("MIN_CONTENT_WORDS", 3),
		ModelName:          getEnv("SENTIMENT_MODEL_NAME", DefaultModelName),
		ModelDir:           getEnv("SENTIMENT_MODEL_DIR", "./models"),
		ValkeyAddress:      os.Getenv("VALKEY_INIT_ADDRESS"),
		ValkeyPassword:     os.Getenv("VALKEY_PASSWORD"),
		ValkeyTLS:          getEnvBool("VALKEY_TLS", false),
		ValkeyTTL:          time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		BlueskyHandle:      os.Getenv("BLUESKY_HANDLE"),
		BlueskyAppPassword: os.Getenv("BLUESKY_APP_PASSWORD"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
