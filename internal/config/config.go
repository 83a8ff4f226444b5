package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string // ":memory:" keeps everything for the lifetime of the process only
	AppEnv       string
	PublicURL    string
	CORSOrigins  []string

	JWTSecret  string
	SessionTTL time.Duration

	// Simulated vote pipeline timings.
	ProofDelay          time.Duration
	CommitDelay         time.Duration
	SubmissionRetention time.Duration

	BruteForceThreshold int
	BruteForceWindow    time.Duration
	SecurityScanSpec    string
	SubmissionSweepSpec string
	StatsInterval       time.Duration
	AdminAlertEmail     string

	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	threshold, err := getInt("BRUTE_FORCE_THRESHOLD", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:          port,
		DatabasePath:        getEnv("DATABASE_PATH", ":memory:"),
		AppEnv:              getEnv("APP_ENV", "development"),
		PublicURL:           strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:8080"), "/"),
		CORSOrigins:         splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		JWTSecret:           getEnv("JWT_SECRET", "securevote-demo-secret"),
		BruteForceThreshold: threshold,
		SecurityScanSpec:    getEnv("SECURITY_SCAN_SPEC", "@every 1m"),
		SubmissionSweepSpec: getEnv("SUBMISSION_SWEEP_SPEC", "@every 10m"),
		AdminAlertEmail:     getEnv("ADMIN_ALERT_EMAIL", "security@securevote.com"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "console"),
	}

	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"SESSION_TTL", 30 * time.Minute, &cfg.SessionTTL},
		{"ZKP_PROOF_DELAY", 2 * time.Second, &cfg.ProofDelay},
		{"LEDGER_COMMIT_DELAY", time.Second, &cfg.CommitDelay},
		{"SUBMISSION_RETENTION", time.Hour, &cfg.SubmissionRetention},
		{"BRUTE_FORCE_WINDOW", 10 * time.Minute, &cfg.BruteForceWindow},
		{"STATS_INTERVAL", 15 * time.Second, &cfg.StatsInterval},
	}
	for _, d := range durations {
		v, err := getDuration(d.key, d.fallback)
		if err != nil {
			return nil, err
		}
		*d.dst = v
	}

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.BruteForceThreshold <= 0 {
		return nil, fmt.Errorf("BRUTE_FORCE_THRESHOLD must be positive, got %d", cfg.BruteForceThreshold)
	}

	return cfg, nil
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
