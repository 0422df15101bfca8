package conf

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/linecardbot/line-card-bot/internal/biz/domain"
	"github.com/linecardbot/line-card-bot/internal/biz/usecase"
)

// Ledger backends
const (
	LedgerSheets = "sheets"
	LedgerSQLite = "sqlite"
)

// Config represents application configuration
type Config struct {
	// Platform the bot listens on
	Platform domain.Platform

	LINE   LINEConfig
	Feishu FeishuConfig
	Google GoogleConfig
	Ledger LedgerConfig

	// Capture configuration
	Capture CaptureConfig

	// HTTP server
	Server ServerConfig

	// Logging
	Log LogConfig

	// Debug mode
	Debug bool

	// Variables that were set but could not be parsed
	malformed []string
}

// LINEConfig contains LINE Messaging API configuration
type LINEConfig struct {
	ChannelAccessToken string
	ChannelSecret      string
}

// FeishuConfig contains Feishu configuration
type FeishuConfig struct {
	AppID     string
	AppSecret string
}

// GoogleConfig contains Google service account configuration
type GoogleConfig struct {
	CredentialsBase64 string
	CredentialsPath   string
	SpreadsheetID     string
	PhotoFolderID     string
}

// LedgerConfig selects where ledger rows go
type LedgerConfig struct {
	Backend string // sheets or sqlite
	DBPath  string // sqlite only
}

// CaptureConfig contains trigger capture configuration
type CaptureConfig struct {
	ValidSeconds  int
	KeywordsPath  string
	Phrases       []string // Loaded from keywords.yaml or defaults
	SweepInterval time.Duration
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string
	Dir   string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	platform := domain.Platform(strings.ToLower(os.Getenv("PLATFORM")))
	if platform == "" {
		platform = domain.PlatformLINE
	}

	ledgerBackend := strings.ToLower(os.Getenv("LEDGER_BACKEND"))
	if ledgerBackend == "" {
		ledgerBackend = LedgerSheets
	}

	// Ledger DB path
	ledgerDBPath := os.Getenv("LEDGER_DB_PATH")
	if ledgerDBPath == "" {
		homeDir, _ := os.UserHomeDir()
		ledgerDBPath = filepath.Join(homeDir, ".line-card-bot", "ledger.db")
	}

	// Trigger phrases from YAML
	keywordsPath := os.Getenv("KEYWORDS_CONFIG_PATH")
	keywords, err := LoadKeywordsConfig(keywordsPath)
	if err != nil {
		fmt.Printf("[CONFIG] Failed to load keywords config, using defaults: %v\n", err)
		keywords = DefaultKeywordsConfig()
	}

	// Validity window, env overrides YAML
	var malformed []string

	validSeconds := keywords.ValidSeconds
	if val := os.Getenv("KEYWORD_VALID_SECONDS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			validSeconds = parsed
		} else {
			malformed = append(malformed, "KEYWORD_VALID_SECONDS="+val)
		}
	}

	sweepInterval := 10 * time.Minute
	if val := os.Getenv("SWEEP_INTERVAL"); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil && parsed >= 0 {
			sweepInterval = parsed
		} else {
			malformed = append(malformed, "SWEEP_INTERVAL="+val)
		}
	}

	port := 8000
	if val := os.Getenv("PORT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 && parsed <= 65535 {
			port = parsed
		} else {
			malformed = append(malformed, "PORT="+val)
		}
	}

	logDir, ok := os.LookupEnv("LOG_DIR")
	if !ok {
		logDir = "logs"
	}

	debug := os.Getenv("DEBUG") == "true"
	logLevel := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if debug {
		logLevel = "debug"
	}
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		Platform: platform,
		LINE: LINEConfig{
			ChannelAccessToken: os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),
			ChannelSecret:      os.Getenv("LINE_CHANNEL_SECRET"),
		},
		Feishu: FeishuConfig{
			AppID:     os.Getenv("FEISHU_APP_ID"),
			AppSecret: os.Getenv("FEISHU_APP_SECRET"),
		},
		Google: GoogleConfig{
			CredentialsBase64: os.Getenv("GOOGLE_CREDENTIALS_BASE64"),
			CredentialsPath:   os.Getenv("GOOGLE_CREDENTIALS_PATH"),
			SpreadsheetID:     os.Getenv("LINE_BOT_SPREADSHEET_ID"),
			PhotoFolderID:     os.Getenv("LINE_BOT_PHOTO_FOLDER_ID"),
		},
		Ledger: LedgerConfig{
			Backend: ledgerBackend,
			DBPath:  ledgerDBPath,
		},
		Capture: CaptureConfig{
			ValidSeconds:  validSeconds,
			KeywordsPath:  keywordsPath,
			Phrases:       keywords.TriggerPhrases,
			SweepInterval: sweepInterval,
		},
		Server: ServerConfig{
			Port: port,
		},
		Log: LogConfig{
			Level: logLevel,
			Dir:   logDir,
		},
		Debug:     debug,
		malformed: malformed,
	}
}

// ToCaptureConfig converts to usecase capture configuration
func (c *CaptureConfig) ToCaptureConfig() usecase.CaptureConfig {
	return usecase.CaptureConfig{
		Window: time.Duration(c.ValidSeconds) * time.Second,
	}
}

// Validate validates the configuration.
// All missing variables are reported at once.
func (c *Config) Validate() error {
	if len(c.malformed) > 0 {
		return &ConfigError{
			Field:   strings.Join(c.malformed, ", "),
			Message: "malformed environment variables",
		}
	}

	var missing []string
	require := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	switch c.Platform {
	case domain.PlatformLINE:
		require("LINE_CHANNEL_ACCESS_TOKEN", c.LINE.ChannelAccessToken)
		require("LINE_CHANNEL_SECRET", c.LINE.ChannelSecret)
	case domain.PlatformFeishu:
		require("FEISHU_APP_ID", c.Feishu.AppID)
		require("FEISHU_APP_SECRET", c.Feishu.AppSecret)
	default:
		return &ConfigError{Field: "PLATFORM", Message: fmt.Sprintf("unsupported platform %q", c.Platform)}
	}

	switch c.Ledger.Backend {
	case LedgerSheets:
		require("LINE_BOT_SPREADSHEET_ID", c.Google.SpreadsheetID)
	case LedgerSQLite:
		require("LEDGER_DB_PATH", c.Ledger.DBPath)
	default:
		return &ConfigError{Field: "LEDGER_BACKEND", Message: fmt.Sprintf("unsupported backend %q", c.Ledger.Backend)}
	}

	require("LINE_BOT_PHOTO_FOLDER_ID", c.Google.PhotoFolderID)
	if c.Google.CredentialsBase64 == "" && c.Google.CredentialsPath == "" {
		missing = append(missing, "GOOGLE_CREDENTIALS_BASE64/GOOGLE_CREDENTIALS_PATH")
	}

	if len(missing) > 0 {
		return &ConfigError{
			Field:   strings.Join(missing, ", "),
			Message: "missing environment variables",
		}
	}

	if c.Capture.ValidSeconds <= 0 {
		return &ConfigError{Field: "KEYWORD_VALID_SECONDS", Message: "must be positive"}
	}
	return nil
}

// GoogleCredentialsJSON returns the service account key, from base64 or from file
func (c *Config) GoogleCredentialsJSON() ([]byte, error) {
	if c.Google.CredentialsBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(c.Google.CredentialsBase64))
		if err != nil {
			return nil, &ConfigError{Field: "GOOGLE_CREDENTIALS_BASE64", Message: "invalid base64: " + err.Error()}
		}
		if !json.Valid(data) {
			return nil, &ConfigError{Field: "GOOGLE_CREDENTIALS_BASE64", Message: "decoded value is not JSON"}
		}
		return data, nil
	}

	data, err := os.ReadFile(c.Google.CredentialsPath)
	if err != nil {
		return nil, &ConfigError{Field: "GOOGLE_CREDENTIALS_PATH", Message: "credentials file is missing: " + err.Error()}
	}
	return data, nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message + ": " + e.Field
}
