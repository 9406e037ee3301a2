package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"ledger/internal/core"
)

// Mirror backends the ledger session can sync to.
const (
	MirrorNone   = "none"
	MirrorMemory = "memory"
	MirrorHTTP   = "http"
	MirrorSheets = "sheets"
)

var validMirrors = []string{MirrorNone, MirrorMemory, MirrorHTTP, MirrorSheets}

type Config struct {
	// Logging
	LogLevel  string
	LogFormat string

	// Web UI
	Port            string
	DefaultCurrency string

	// Remote mirror used by the ledger session
	MirrorBackend   string
	MirrorCreateURL string
	MirrorExportURL string
	MirrorToken     string
	MirrorTimeout   time.Duration

	// Collaborator API
	APIPort      string
	SQLiteDBPath string
	JWTSecret    string
	JWTTTL       time.Duration

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Worker
	SyncBatchSize int
	SyncInterval  time.Duration
}

func Load() *Config {
	return &Config{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		Port:            getEnv("PORT", "8081"),
		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "USD"),

		MirrorBackend:   getEnv("MIRROR_BACKEND", MirrorNone),
		MirrorCreateURL: getEnv("MIRROR_CREATE_URL", ""),
		MirrorExportURL: getEnv("MIRROR_EXPORT_URL", ""),
		MirrorToken:     getEnv("MIRROR_TOKEN", ""),
		MirrorTimeout:   getEnvDuration("MIRROR_TIMEOUT", 10*time.Second),

		APIPort:      getEnv("API_PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ledger.db"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTTTL:       getEnvDuration("JWT_TTL", 30*24*time.Hour),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transaction_recorded"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Transactions"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),

		SyncBatchSize: getEnvInt("SYNC_BATCH_SIZE", 10),
		SyncInterval:  getEnvDuration("SYNC_INTERVAL", 30*time.Second),
	}
}

// Validate checks the settings the ledger UI and CLI depend on.
func (c *Config) Validate() error {
	var errors []string

	errors = append(errors, validatePort("port", c.Port)...)

	if !core.ValidCurrency(strings.ToUpper(c.DefaultCurrency)) {
		errors = append(errors, fmt.Sprintf("invalid default currency '%s': must be an ISO 4217 code", c.DefaultCurrency))
	}

	if !slices.Contains(validMirrors, c.MirrorBackend) {
		errors = append(errors, fmt.Sprintf("invalid mirror backend '%s': must be one of %v", c.MirrorBackend, validMirrors))
	}

	if c.MirrorBackend == MirrorHTTP {
		endpoints := []struct{ name, raw string }{
			{"create", c.MirrorCreateURL},
			{"export", c.MirrorExportURL},
		}
		for _, e := range endpoints {
			name, raw := e.name, e.raw
			if raw == "" {
				errors = append(errors, fmt.Sprintf("mirror %s URL is required when using http mirror", name))
				continue
			}
			if u, err := url.Parse(raw); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				errors = append(errors, fmt.Sprintf("invalid mirror %s URL '%s': must be http or https", name, raw))
			}
		}
		if c.MirrorToken == "" {
			errors = append(errors, "mirror token is required when using http mirror")
		}
	}

	if c.MirrorBackend == MirrorSheets {
		errors = append(errors, c.validateSheets()...)
	}

	if c.MirrorTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid mirror timeout %v: must be positive", c.MirrorTimeout))
	} else if c.MirrorTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid mirror timeout %v: must be at most 5 minutes", c.MirrorTimeout))
	}

	return combine(errors)
}

// ValidateAPI checks the settings of the collaborator service.
func (c *Config) ValidateAPI() error {
	var errors []string

	errors = append(errors, validatePort("api port", c.APIPort)...)
	errors = append(errors, c.validateSQLite()...)

	if len(c.JWTSecret) < 16 {
		errors = append(errors, "JWT secret must be at least 16 characters")
	}
	if c.JWTTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid JWT TTL %v: must be positive", c.JWTTTL))
	}

	errors = append(errors, c.validateAMQP(false)...)

	return combine(errors)
}

// ValidateWorker checks the settings of the sheets worker.
func (c *Config) ValidateWorker() error {
	var errors []string

	errors = append(errors, c.validateSQLite()...)
	errors = append(errors, c.validateAMQP(true)...)
	errors = append(errors, c.validateSheets()...)

	if c.SyncBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at least 1", c.SyncBatchSize))
	} else if c.SyncBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at most 1000", c.SyncBatchSize))
	}

	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	return combine(errors)
}

func (c *Config) validateSQLite() []string {
	if c.SQLiteDBPath == "" {
		return []string{"SQLite database path cannot be empty"}
	}
	dir := filepath.Dir(c.SQLiteDBPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return []string{fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err)}
			}
		}
	}
	return nil
}

func (c *Config) validateAMQP(required bool) []string {
	if c.AMQPURL == "" {
		if required {
			return []string{"AMQP URL is required"}
		}
		return nil
	}
	var errors []string
	if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
	} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
		errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
	}
	if c.AMQPExchange == "" {
		errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
	}
	if c.AMQPQueue == "" {
		errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
	}
	return errors
}

func (c *Config) validateSheets() []string {
	var errors []string
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required when using sheets")
	}
	if c.GoogleSheetName == "" {
		errors = append(errors, "Google Sheet name is required when using sheets")
	}
	hasJSON := c.GoogleServiceAccountJSON != ""
	hasFile := c.GoogleServiceAccountFile != ""
	if !hasJSON && !hasFile {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets")
	}
	if !hasJSON && hasFile {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}
	return errors
}

func validatePort(name, value string) []string {
	port, err := strconv.Atoi(value)
	if err != nil {
		return []string{fmt.Sprintf("invalid %s '%s': must be a number", name, value)}
	}
	if port < 1 || port > 65535 {
		return []string{fmt.Sprintf("invalid %s %d: must be between 1 and 65535", name, port)}
	}
	return nil
}

func combine(errors []string) error {
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
