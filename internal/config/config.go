// Package config loads server settings from the environment and an optional .env file
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
)

// Config holds all runtime settings
type Config struct {
	Port string

	FormStore     constants.FormStoreKind
	FormStorePath string
	DB            DBConfig

	JWTSecret string

	RecomputeSchedule string
	PreviewSessionTTL time.Duration
	FormulaMaxNodes   uint
}

// DBConfig holds MySQL/TiDB connection settings
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// AuthEnabled reports whether bearer tokens are required
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// envPaths are tried in order; the first readable file wins
var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
}

// LoadDotEnv loads the first .env file found. Variables already set in the
// environment take precedence.
func LoadDotEnv(paths ...string) string {
	if len(paths) == 0 {
		paths = envPaths
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			log.Printf("⚠️  Failed to load %s: %v", p, err)
			continue
		}
		log.Printf("📁 Loaded .env from %s", p)
		return p
	}
	return ""
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", constants.DefaultPort),
		FormStore:         constants.FormStoreKind(strings.ToLower(getEnv("FORM_STORE", string(constants.FormStoreFile)))),
		FormStorePath:     getEnv("FORM_STORE_PATH", constants.DefaultFormStorePath),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		RecomputeSchedule: getEnv("RECOMPUTE_SCHEDULE", constants.DefaultRecomputeSchedule),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "127.0.0.1"),
			Port:     getEnv("DB_PORT", constants.DefaultDBPort),
			User:     getEnv("DB_USER", "root"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", constants.DefaultDBName),
		},
	}

	switch cfg.FormStore {
	case constants.FormStoreFile, constants.FormStoreBolt, constants.FormStoreMySQL:
	default:
		return nil, fmt.Errorf("FORM_STORE must be %q, %q or %q, got %q",
			constants.FormStoreFile, constants.FormStoreBolt, constants.FormStoreMySQL, cfg.FormStore)
	}

	ttl, err := time.ParseDuration(getEnv("PREVIEW_SESSION_TTL", fmt.Sprintf("%dh", constants.DefaultSessionTTLHours)))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("PREVIEW_SESSION_TTL must be a positive duration: %q", os.Getenv("PREVIEW_SESSION_TTL"))
	}
	cfg.PreviewSessionTTL = ttl

	maxNodes, err := strconv.ParseUint(getEnv("FORMULA_MAX_NODES", strconv.Itoa(constants.DefaultFormulaMaxNodes)), 10, 32)
	if err != nil || maxNodes == 0 {
		return nil, fmt.Errorf("FORMULA_MAX_NODES must be a positive integer: %q", os.Getenv("FORMULA_MAX_NODES"))
	}
	cfg.FormulaMaxNodes = uint(maxNodes)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
