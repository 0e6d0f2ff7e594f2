package config

import (
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application.
type Config struct {
	Environment Environment

	AppPort   string
	MongoURI  string
	MongoDB   string
	JWTSecret string

	// EncryptionKey is the 32-byte AES-256 key used by service.EncryptionService
	// for at-rest secrets that are not fan identifiers; it encrypts
	// Agency.HashSaltHex before the agency record is stored.
	EncryptionKey []byte

	// Recognised analysis configuration (spec.md §6), read from the
	// environment and logged at startup. These values are not passed to the
	// analytics engines: when a Creator/Agency record carries no override,
	// the engines fall back to the package constants in internal/service
	// (DefaultBaselineLookbackDays, DefaultMinSubsForRecommendation,
	// DefaultMinSubsForConfident, DefaultWeeklyPlanCap) and to
	// model.DefaultTaxonomy.
	BaselineLookbackDays  int
	MinSubsRecommendation int
	MinSubsConfident      int
	CategoryTaxonomy      []string
	WeeklyPlanCap         int

	// AnalysisSoftDeadlineSeconds bounds how long a single analysis request
	// may run before it is aborted with apperr.WindowTooWide (spec.md §5).
	AnalysisSoftDeadlineSeconds int
}

// Load reads configuration from environment variables with sensible
// defaults. It loads the appropriate .env file based on APP_ENV:
//   - APP_ENV=local      -> .env.local (fallback: .env)
//   - APP_ENV=staging    -> .env.staging
//   - APP_ENV=production -> .env.production
func Load() *Config {
	env := LoadEnvFile()

	encKeyStr := getEnv("ENCRYPTION_KEY", "")
	var encKey []byte
	if encKeyStr != "" {
		var err error
		encKey, err = hex.DecodeString(encKeyStr)
		if err != nil || len(encKey) != 32 {
			log.Printf("Warning: ENCRYPTION_KEY invalid (should be 64 hex chars / 32 bytes). Encryption disabled.")
			encKey = nil
		}
	}

	baseDBName := getEnv("MONGO_DB_NAME", "rev_saas")
	mongoDB := GetMongoDBName(env, baseDBName)

	taxonomy := getEnvList("CATEGORY_TAXONOMY", nil)

	cfg := &Config{
		Environment: env,

		AppPort:   getEnv("APP_PORT", "8080"),
		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   mongoDB,
		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),

		EncryptionKey: encKey,

		BaselineLookbackDays:  getEnvInt("BASELINE_LOOKBACK_DAYS", 14),
		MinSubsRecommendation: getEnvInt("MIN_SUBS_RECOMMENDATION", 10),
		MinSubsConfident:      getEnvInt("MIN_SUBS_CONFIDENT", 25),
		CategoryTaxonomy:      taxonomy,
		WeeklyPlanCap:         getEnvInt("WEEKLY_PLAN_CAP", 14),

		AnalysisSoftDeadlineSeconds: getEnvInt("ANALYSIS_SOFT_DEADLINE_SECONDS", 10),
	}

	log.Printf("Config loaded: env=%s, port=%s, mongo_db=%s, baseline_lookback_days=%d",
		env, cfg.AppPort, cfg.MongoDB, cfg.BaselineLookbackDays)

	return cfg
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable, falling back on
// absence or an unparsable value.
func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: %s=%q is not a valid integer, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

// getEnvList retrieves a comma-separated environment variable as a slice,
// falling back to fallback when unset or empty.
func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
