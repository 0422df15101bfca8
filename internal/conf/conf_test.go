package conf

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/linecardbot/line-card-bot/internal/biz/domain"
)

func setLINEEnv(t *testing.T) {
	t.Setenv("PLATFORM", "")
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "token")
	t.Setenv("LINE_CHANNEL_SECRET", "secret")
	t.Setenv("LINE_BOT_SPREADSHEET_ID", "sheet-id")
	t.Setenv("LINE_BOT_PHOTO_FOLDER_ID", "folder-id")
	t.Setenv("GOOGLE_CREDENTIALS_BASE64", base64.StdEncoding.EncodeToString([]byte(`{"type":"service_account"}`)))
	t.Setenv("KEYWORDS_CONFIG_PATH", "")
	t.Setenv("KEYWORD_VALID_SECONDS", "")
	t.Setenv("LEDGER_BACKEND", "")
	t.Setenv("PORT", "")
	t.Setenv("SWEEP_INTERVAL", "")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setLINEEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("SWEEP_INTERVAL", "")

	cfg := LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}
	if cfg.Platform != domain.PlatformLINE {
		t.Errorf("Expected line platform, got %s", cfg.Platform)
	}
	if cfg.Ledger.Backend != LedgerSheets {
		t.Errorf("Expected sheets ledger, got %s", cfg.Ledger.Backend)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Expected port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Capture.SweepInterval != 10*time.Minute {
		t.Errorf("Expected 10m sweep interval, got %v", cfg.Capture.SweepInterval)
	}
	if got := cfg.Capture.ToCaptureConfig().Window; got != 120*time.Second {
		t.Errorf("Expected 120s window, got %v", got)
	}
	if len(cfg.Capture.Phrases) == 0 {
		t.Error("Expected default trigger phrases")
	}
}

func TestValidate_ReportsAllMissing(t *testing.T) {
	setLINEEnv(t)
	t.Setenv("LINE_CHANNEL_SECRET", "")
	t.Setenv("LINE_BOT_PHOTO_FOLDER_ID", "")

	err := LoadFromEnv().Validate()
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError, got %v", err)
	}
	if !strings.Contains(cfgErr.Field, "LINE_CHANNEL_SECRET") || !strings.Contains(cfgErr.Field, "LINE_BOT_PHOTO_FOLDER_ID") {
		t.Errorf("Expected both missing variables listed, got %q", cfgErr.Field)
	}
}

func TestValidate_FeishuPlatform(t *testing.T) {
	setLINEEnv(t)
	t.Setenv("PLATFORM", "feishu")
	t.Setenv("FEISHU_APP_ID", "")
	t.Setenv("FEISHU_APP_SECRET", "")

	err := LoadFromEnv().Validate()
	if err == nil || !strings.Contains(err.Error(), "FEISHU_APP_ID") {
		t.Errorf("Expected missing Feishu credentials, got %v", err)
	}

	t.Setenv("FEISHU_APP_ID", "cli_x")
	t.Setenv("FEISHU_APP_SECRET", "s")
	if err := LoadFromEnv().Validate(); err != nil {
		t.Errorf("Expected valid Feishu config, got %v", err)
	}
}

func TestValidate_UnknownPlatform(t *testing.T) {
	setLINEEnv(t)
	t.Setenv("PLATFORM", "telegram")
	if err := LoadFromEnv().Validate(); err == nil {
		t.Error("Expected error for unsupported platform")
	}
}

func TestValidate_SQLiteLedgerNeedsNoSpreadsheet(t *testing.T) {
	setLINEEnv(t)
	t.Setenv("LEDGER_BACKEND", "sqlite")
	t.Setenv("LINE_BOT_SPREADSHEET_ID", "")
	t.Setenv("LEDGER_DB_PATH", filepath.Join(t.TempDir(), "ledger.db"))

	if err := LoadFromEnv().Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestGoogleCredentialsJSON(t *testing.T) {
	setLINEEnv(t)
	cfg := LoadFromEnv()
	data, err := cfg.GoogleCredentialsJSON()
	if err != nil || !strings.Contains(string(data), "service_account") {
		t.Errorf("Expected decoded credentials, got %q / %v", data, err)
	}

	cfg.Google.CredentialsBase64 = "%%%not-base64"
	if _, err := cfg.GoogleCredentialsJSON(); err == nil {
		t.Error("Expected error for invalid base64")
	}

	cfg.Google.CredentialsBase64 = base64.StdEncoding.EncodeToString([]byte("not json"))
	if _, err := cfg.GoogleCredentialsJSON(); err == nil {
		t.Error("Expected error for non-JSON credentials")
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0600); err != nil {
		t.Fatal(err)
	}
	cfg.Google.CredentialsBase64 = ""
	cfg.Google.CredentialsPath = path
	if _, err := cfg.GoogleCredentialsJSON(); err != nil {
		t.Errorf("Expected credentials from file, got %v", err)
	}

	cfg.Google.CredentialsPath = filepath.Join(t.TempDir(), "missing.json")
	if _, err := cfg.GoogleCredentialsJSON(); err == nil {
		t.Error("Expected error for missing credentials file")
	}
}

func TestLoadKeywordsConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	content := "trigger_phrases:\n  - \"#card\"\n  - \"\"\n  - \"#c\"\nvalid_seconds: 30\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadKeywordsConfig(path)
	if err != nil {
		t.Fatalf("LoadKeywordsConfig: %v", err)
	}
	if len(cfg.TriggerPhrases) != 2 || cfg.TriggerPhrases[0] != "#card" || cfg.TriggerPhrases[1] != "#c" {
		t.Errorf("Unexpected phrases %v", cfg.TriggerPhrases)
	}
	if cfg.ValidSeconds != 30 {
		t.Errorf("Expected 30 seconds, got %d", cfg.ValidSeconds)
	}
}

func TestLoadKeywordsConfig_FillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	if err := os.WriteFile(path, []byte("valid_seconds: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadKeywordsConfig(path)
	if err != nil {
		t.Fatalf("LoadKeywordsConfig: %v", err)
	}
	if len(cfg.TriggerPhrases) != len(domain.DefaultTriggerPhrases) {
		t.Errorf("Expected default phrases, got %v", cfg.TriggerPhrases)
	}
	if cfg.ValidSeconds != 120 {
		t.Errorf("Expected default 120 seconds, got %d", cfg.ValidSeconds)
	}
}

func TestLoadKeywordsConfig_ExplicitPathMissing(t *testing.T) {
	if _, err := LoadKeywordsConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing explicit path")
	}
}

func TestLoadFromEnv_ValidSecondsOverride(t *testing.T) {
	setLINEEnv(t)
	t.Setenv("KEYWORD_VALID_SECONDS", "45")
	cfg := LoadFromEnv()
	if cfg.Capture.ValidSeconds != 45 {
		t.Errorf("Expected env override 45, got %d", cfg.Capture.ValidSeconds)
	}
}

func TestValidate_MalformedValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"valid seconds not a number", "KEYWORD_VALID_SECONDS", "two minutes"},
		{"valid seconds negative", "KEYWORD_VALID_SECONDS", "-5"},
		{"port not a number", "PORT", "80a"},
		{"port out of range", "PORT", "70000"},
		{"sweep interval without unit", "SWEEP_INTERVAL", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setLINEEnv(t)
			t.Setenv(tt.key, tt.value)

			err := LoadFromEnv().Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected ConfigError, got %v", err)
			}
			if !strings.Contains(cfgErr.Field, tt.key) {
				t.Errorf("Expected %s reported, got %q", tt.key, cfgErr.Field)
			}
		})
	}
}

func TestLoadFromEnv_SweepDisabled(t *testing.T) {
	setLINEEnv(t)
	t.Setenv("SWEEP_INTERVAL", "0")

	cfg := LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}
	if cfg.Capture.SweepInterval != 0 {
		t.Errorf("Expected sweeper disabled, got %v", cfg.Capture.SweepInterval)
	}
}
