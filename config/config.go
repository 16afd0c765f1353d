package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"habit-battle-system/logger"
	"habit-battle-system/utils"

	"github.com/joho/godotenv"
)

const (
	DefaultPort                = "5200"
	DefaultAllowedOrigins      = "http://localhost:3000"
	DefaultBattleSweepInterval = time.Minute
	DefaultRepairInterval      = 10 * time.Minute
)

type Config struct {
	Port                string
	DatabaseURL         string
	ServiceToken        string
	AllowedOrigins      []string
	Log                 logger.Config
	BattleSweepInterval time.Duration
	RepairInterval      time.Duration
	R2                  utils.R2Config
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, reading environment variables directly")
	}
	return FromEnv()
}

// FromEnv builds a Config from the environment without touching .env.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:                getEnv("PORT", DefaultPort),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		ServiceToken:        os.Getenv("GAME_SERVICE_TOKEN"),
		AllowedOrigins:      splitList(getEnv("ALLOWED_ORIGINS", DefaultAllowedOrigins)),
		Log:                 logger.Config{Level: os.Getenv("LOG_LEVEL"), File: os.Getenv("LOG_FILE")},
		BattleSweepInterval: getEnvDuration("BATTLE_SWEEP_INTERVAL", DefaultBattleSweepInterval),
		RepairInterval:      getEnvDuration("REPAIR_INTERVAL", DefaultRepairInterval),
		R2: utils.R2Config{
			AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
			Bucket:          os.Getenv("R2_BUCKET_NAME"),
			CDNBaseURL:      strings.TrimRight(os.Getenv("CDN_BASE_URL"), "/"),
		},
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL environment variable not set")
	}
	if cfg.ServiceToken == "" {
		return cfg, errors.New("GAME_SERVICE_TOKEN environment variable not set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		logger.Warn("invalid duration, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
