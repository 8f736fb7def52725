package config

import (
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string
	LogLevel string

	// optional response cache; empty means run without redis
	RedisDSN string

	S3Endpoint string
	S3Bucket   string
	// raw secrets kept in-memory only; never log these
	S3KeysRaw string

	AIBaseURL string
	AIAPIKey  string
	AIModel   string

	EngagementTick time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	CORSOrigins []string
}

func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:   getenvDefault("HTTP_ADDR", ":8080"),
		LogLevel:   getenvDefault("LOG_LEVEL", "info"),
		RedisDSN:   os.Getenv("REDIS_DSN"),
		S3Endpoint: getenvDefault("S3_ENDPOINT", ""),
		S3Bucket:   getenvDefault("S3_BUCKET", ""),
		S3KeysRaw:  os.Getenv("S3_KEYS"),
		AIBaseURL:  getenvDefault("AI_BASE_URL", "https://generativelanguage.googleapis.com"),
		AIAPIKey:   os.Getenv("AI_API_KEY"),
		AIModel:    getenvDefault("AI_MODEL", ""),
	}

	// light validation: ensure bucket keys are valid json if set
	if cfg.S3KeysRaw != "" {
		var tmp any
		if err := json.Unmarshal([]byte(cfg.S3KeysRaw), &tmp); err != nil {
			return Config{}, errors.New("S3_KEYS must be valid json")
		}
	}

	tickSeconds, err := getenvInt("ENGAGEMENT_TICK_SECONDS", 10)
	if err != nil {
		return Config{}, errors.New("ENGAGEMENT_TICK_SECONDS must be an integer")
	}
	if tickSeconds < 1 {
		return Config{}, errors.New("ENGAGEMENT_TICK_SECONDS must be >= 1")
	}
	cfg.EngagementTick = time.Duration(tickSeconds) * time.Second

	rps, err := getenvInt("RATE_LIMIT_RPS", 20)
	if err != nil || rps < 1 {
		return Config{}, errors.New("RATE_LIMIT_RPS must be a positive integer")
	}
	cfg.RateLimitRPS = float64(rps)

	burst, err := getenvInt("RATE_LIMIT_BURST", 40)
	if err != nil || burst < 1 {
		return Config{}, errors.New("RATE_LIMIT_BURST must be a positive integer")
	}
	cfg.RateLimitBurst = burst

	corsOrigins := getenvDefault("CORS_ORIGINS", "")
	if corsOrigins != "" {
		cfg.CORSOrigins = strings.Split(corsOrigins, ",")
		for i := range cfg.CORSOrigins {
			cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
		}
	} else {
		cfg.CORSOrigins = []string{"http://localhost:3000"} // default
	}

	return cfg, nil
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(strings.TrimSpace(v))
}
