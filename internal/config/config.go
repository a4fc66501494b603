package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL string

	RedisURL         string
	AsynqQueue       string
	AsynqConcurrency int

	CORSAllowAll bool
	CORSOrigins  []string

	EmailEnabled    bool
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	EmailFromName   string
	EmailFromAddr   string
	DigestRecipient string

	ArchiveEnabled  bool
	MinIOEndpoint   string
	MinIOAccessKey  string
	MinIOSecretKey  string
	MinIOUseSSL     bool
	ArchiveBucket   string

	GrantsFeedBaseURL string
	GrantsKeywords    []string
	GrantsFeedRPS     float64
	GrantsPageSize    int

	// LeadAlertWindowDays drives follow-up alerts, LeadUpcomingWindowDays the
	// dashboard "upcoming" summary. They are independent settings.
	LeadAlertWindowDays    int
	LeadUpcomingWindowDays int

	ScoringWeightsPath string

	IngestInterval    time.Duration
	AutoCloseInterval time.Duration
	DigestInterval    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "false"), "true")
	minioEndpoint := getEnv("MINIO_ENDPOINT", "")

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL:         getEnv("REDIS_URL", ""),
		AsynqQueue:       getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency: getEnvInt("ASYNQ_CONCURRENCY", 10),

		CORSAllowAll: corsAllowAll,
		CORSOrigins:  corsOrigins,

		EmailEnabled:    emailEnabled,
		SMTPHost:        getEnv("SMTP_HOST", ""),
		SMTPPort:        getEnvInt("SMTP_PORT", 587),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		EmailFromName:   getEnv("EMAIL_FROM_NAME", "DonorOps"),
		EmailFromAddr:   getEnv("EMAIL_FROM_ADDRESS", ""),
		DigestRecipient: getEnv("DIGEST_RECIPIENT", ""),

		ArchiveEnabled: minioEndpoint != "",
		MinIOEndpoint:  minioEndpoint,
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:    strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		ArchiveBucket:  getEnv("MINIO_BUCKET_INGEST_ARCHIVE", "ingest-archive"),

		GrantsFeedBaseURL: getEnv("GRANTS_FEED_BASE_URL", "https://api.grants.gov/v1/api"),
		GrantsKeywords:    splitCSV(getEnv("GRANTS_KEYWORDS", "digital equity,device donation,broadband adoption")),
		GrantsFeedRPS:     getEnvFloat("GRANTS_FEED_RPS", 2),
		GrantsPageSize:    getEnvInt("GRANTS_PAGE_SIZE", 25),

		LeadAlertWindowDays:    getEnvInt("LEAD_ALERT_WINDOW_DAYS", 2),
		LeadUpcomingWindowDays: getEnvInt("LEAD_UPCOMING_WINDOW_DAYS", 14),

		ScoringWeightsPath: getEnv("SCORING_WEIGHTS_PATH", ""),

		IngestInterval:    getEnvDuration("INGEST_INTERVAL", 6*time.Hour),
		AutoCloseInterval: getEnvDuration("AUTOCLOSE_INTERVAL", 24*time.Hour),
		DigestInterval:    getEnvDuration("DIGEST_INTERVAL", 24*time.Hour),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.EmailEnabled && (cfg.SMTPHost == "" || cfg.EmailFromAddr == "") {
		return nil, fmt.Errorf("SMTP_HOST and EMAIL_FROM_ADDRESS are required when EMAIL_ENABLED is true")
	}
	if cfg.ArchiveEnabled && (cfg.MinIOAccessKey == "" || cfg.MinIOSecretKey == "") {
		return nil, fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENDPOINT is set")
	}
	if cfg.LeadAlertWindowDays < 0 || cfg.LeadUpcomingWindowDays < 0 {
		return nil, fmt.Errorf("lead window days must not be negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(val))
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
