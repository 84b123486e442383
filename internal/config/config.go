package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	RedisAddr  string
	RedisPass  string
	ServerAddr string
	JWTSecret  string

	Mentions MentionConfig
}

// MentionConfig carries the tunables of the mention pipeline and its abuse limits.
type MentionConfig struct {
	MaxPerSubmission int
	Cooldown         time.Duration
	DailyCap         int
	RateLimit        int
	RateWindow       time.Duration
	FoldCase         bool
	ThrottleDisabled bool
}

func LoadConfig() *Config {
	godotenv.Load()
	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASS"),
		DBName:     os.Getenv("DB_NAME"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		RedisPass:  os.Getenv("REDIS_PASS"),
		ServerAddr: os.Getenv("PORT"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		Mentions: MentionConfig{
			MaxPerSubmission: envInt("MENTION_MAX_PER_POST", 10),
			Cooldown:         envDuration("MENTION_COOLDOWN", 30*time.Second),
			DailyCap:         envInt("MENTION_DAILY_CAP", 100),
			RateLimit:        envInt("TAG_RATE_LIMIT", 30),
			RateWindow:       envDuration("TAG_RATE_WINDOW", 15*time.Minute),
			FoldCase:         envBool("MENTION_FOLD_CASE", false),
			ThrottleDisabled: envBool("MENTION_THROTTLE_DISABLED", false),
		},
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
