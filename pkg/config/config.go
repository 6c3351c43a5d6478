// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration. It is built once at
// startup and passed explicitly into each component; no component reads
// ambient process state.
type Config struct {
	Paths    *PathsConfig
	AI       *AIConfig
	Dedupe   *DedupeConfig
	Postgres *PostgresConfig // optional audit ledger sink, nil when unset
}

// PathsConfig holds the work directory layout. Every pipeline stage reads
// and writes through these paths.
type PathsConfig struct {
	WorkDir          string // staging area for AI responses and the mapping
	MappingFile      string // persisted column mapping (JSON)
	ArchitectFile    string // raw architect response text
	CleanFilePrefix  string // per-column cleaner response prefix
	ReconciledFile   string // final reconciled CSV
	LedgerFile       string // change ledger (JSON)
	StatsFile        string // pre/post validation statistics (JSON)
}

// AIConfig holds AI service parameters and the rate-limit retry policy.
type AIConfig struct {
	APIKey        string
	Model         string
	SampleRows    int           // rows included in the architect sample
	TokenBudget   int           // approximate per-request budget for column batches
	RetryAttempts int           // retries on rate-limit responses only
	RetryBackoff  time.Duration // fixed backoff between rate-limit retries
	ColumnDelay   time.Duration // pause between per-column cleaner calls
}

// DedupeConfig holds near-duplicate grouping thresholds.
type DedupeConfig struct {
	SimilarityThreshold float64 // combined similarity above which rows group
}

// LoadConfig loads configuration from a .env file (if present) and the
// environment.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	workDir := getEnv("ROWMEND_WORK_DIR", "rowmend_work")

	cfg := &Config{
		Paths: &PathsConfig{
			WorkDir:         workDir,
			MappingFile:     getEnv("ROWMEND_MAPPING_FILE", "column_mapping.json"),
			ArchitectFile:   getEnv("ROWMEND_ARCHITECT_FILE", "architect_response.txt"),
			CleanFilePrefix: getEnv("ROWMEND_CLEAN_PREFIX", "clean_"),
			ReconciledFile:  getEnv("ROWMEND_OUTPUT_FILE", "reconciled.csv"),
			LedgerFile:      getEnv("ROWMEND_LEDGER_FILE", "change_ledger.json"),
			StatsFile:       getEnv("ROWMEND_STATS_FILE", "validation_stats.json"),
		},
		AI: &AIConfig{
			APIKey:        os.Getenv("ROWMEND_AI_API_KEY"),
			Model:         getEnv("ROWMEND_AI_MODEL", "gemini-2.0-flash"),
			SampleRows:    getEnvAsInt("ROWMEND_SAMPLE_ROWS", 50),
			TokenBudget:   getEnvAsInt("ROWMEND_TOKEN_BUDGET", 100000),
			RetryAttempts: getEnvAsInt("ROWMEND_RETRY_ATTEMPTS", 3),
			RetryBackoff:  time.Duration(getEnvAsInt("ROWMEND_RETRY_BACKOFF_SECONDS", 45)) * time.Second,
			ColumnDelay:   time.Duration(getEnvAsInt("ROWMEND_COLUMN_DELAY_SECONDS", 2)) * time.Second,
		},
		Dedupe: &DedupeConfig{
			SimilarityThreshold: getEnvAsFloat("ROWMEND_DEDUPE_THRESHOLD", 0.85),
		},
	}

	// The Postgres ledger sink is optional; only configure it when a
	// database name is present.
	if os.Getenv("POSTGRES_DB") != "" {
		pgCfg, err := LoadPostgresConfig()
		if err != nil {
			return nil, errors.New("failed to load PostgreSQL configuration: " + err.Error())
		}
		cfg.Postgres = pgCfg
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures the configuration is internally consistent. The AI API
// key is checked at the call site instead, so offline stages (apply,
// validate) work without credentials.
func (c *Config) Validate() error {
	if c.Paths == nil || c.Paths.WorkDir == "" {
		return errors.New("work directory is required")
	}

	if c.AI.SampleRows <= 0 {
		return errors.New("sample rows must be positive")
	}

	if c.AI.RetryAttempts < 0 {
		return errors.New("retry attempts cannot be negative")
	}

	if c.Dedupe.SimilarityThreshold < 0 || c.Dedupe.SimilarityThreshold > 1 {
		return errors.New("dedupe similarity threshold must be in [0,1]")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
