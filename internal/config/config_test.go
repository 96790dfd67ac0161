package config

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFromEnvWithDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing-config.yaml"))
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TIMEZONE", "UTC")

	cfg := LoadConfig()

	if cfg.LLMProvider != "openai" {
		t.Fatalf("unexpected provider: %q", cfg.LLMProvider)
	}
	if cfg.CorpusPath != "./resolved_tickets.csv" {
		t.Fatalf("unexpected corpus path default: %q", cfg.CorpusPath)
	}
	if cfg.DBPath != "./ticketdraft.db" {
		t.Fatalf("unexpected db path default: %q", cfg.DBPath)
	}
	if cfg.ExternalHTTPTimeoutSeconds != int(defaultExternalHTTPTimeout/time.Second) {
		t.Fatalf("unexpected external HTTP timeout default: %d", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.SummaryMaxInputChars != 4000 {
		t.Fatalf("unexpected summary max input default: %d", cfg.SummaryMaxInputChars)
	}
	if cfg.DraftMaxRounds != 3 {
		t.Fatalf("unexpected draft max rounds default: %d", cfg.DraftMaxRounds)
	}
	if cfg.WatchSchedule != "*/5 * * * *" {
		t.Fatalf("unexpected watch schedule default: %q", cfg.WatchSchedule)
	}
	if cfg.Location == nil || cfg.Location.String() != "UTC" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
	if err := cfg.ValidateLLM(); err != nil {
		t.Fatalf("ValidateLLM failed: %v", err)
	}
}

func TestLoadConfigYAMLAndEnvOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
corpus_path: "/data/yaml.csv"
llm_provider: "anthropic"
anthropic_api_key: "yaml-anthropic"
summary_enabled: true
timezone: "America/Toronto"
db_path: "/tmp/yaml.db"
inbox_dir: "/tmp/yaml-inbox"
external_http_timeout_seconds: 75
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_PATH", cfgPath)
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("DB_PATH", "/tmp/env.db")
	t.Setenv("EXTERNAL_HTTP_TIMEOUT_SECONDS", "120")

	cfg := LoadConfig()

	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected provider from env override, got %q", cfg.LLMProvider)
	}
	if cfg.OpenAIAPIKey != "sk-env" {
		t.Fatalf("expected openai key from env override")
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Fatalf("expected db path from env override, got %q", cfg.DBPath)
	}
	if cfg.CorpusPath != "/data/yaml.csv" {
		t.Fatalf("expected corpus path from yaml, got %q", cfg.CorpusPath)
	}
	if cfg.InboxDir != "/tmp/yaml-inbox" {
		t.Fatalf("expected inbox dir from yaml, got %q", cfg.InboxDir)
	}
	if !cfg.SummaryEnabled {
		t.Fatal("expected summary_enabled from yaml")
	}
	if cfg.ExternalHTTPTimeoutSeconds != 120 {
		t.Fatalf("expected external HTTP timeout from env override, got %d", cfg.ExternalHTTPTimeoutSeconds)
	}
}

func TestValidateLLM(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic with key", Config{LLMProvider: "anthropic", AnthropicAPIKey: "k"}, false},
		{"anthropic without key", Config{LLMProvider: "anthropic"}, true},
		{"openai with key", Config{LLMProvider: "openai", OpenAIAPIKey: "k"}, false},
		{"openai without key", Config{LLMProvider: "openai", AnthropicAPIKey: "k"}, true},
		{"unknown provider", Config{LLMProvider: "local"}, true},
	}
	for _, tt := range tests {
		err := tt.cfg.ValidateLLM()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: ValidateLLM() err=%v, wantErr=%v", tt.name, err, tt.wantErr)
		}
	}
}

func TestSlackConfigured(t *testing.T) {
	if (Config{SlackBotToken: "xoxb"}).SlackConfigured() {
		t.Fatal("expected slack to need a channel")
	}
	if !(Config{SlackBotToken: "xoxb", SlackChannelID: "C123"}).SlackConfigured() {
		t.Fatal("expected slack to be configured")
	}
}

func TestEnvOverrideHelpers(t *testing.T) {
	s := "initial"
	t.Setenv("TD_TEST_STR", "value")
	envOverride(&s, "TD_TEST_STR")
	if s != "value" {
		t.Fatalf("envOverride failed, got %q", s)
	}

	e := "initial"
	t.Setenv("TD_TEST_EMPTY", "")
	envOverrideAllowEmpty(&e, "TD_TEST_EMPTY")
	if e != "" {
		t.Fatalf("envOverrideAllowEmpty failed, got %q", e)
	}

	i := 1
	t.Setenv("TD_TEST_INT", "42")
	envOverrideInt(&i, "TD_TEST_INT")
	if i != 42 {
		t.Fatalf("envOverrideInt failed, got %d", i)
	}

	b := false
	t.Setenv("TD_TEST_BOOL", "1")
	envOverrideBool(&b, "TD_TEST_BOOL")
	if !b {
		t.Fatalf("envOverrideBool failed, got %v", b)
	}
}

func TestValidateSchedule(t *testing.T) {
	if err := validateSchedule("0 9 * * 1-5"); err != nil {
		t.Fatalf("expected valid schedule, got %v", err)
	}
	if err := validateSchedule("every minute"); err == nil {
		t.Fatal("expected invalid schedule to fail")
	}
}

func TestValidateBoilerplatePath(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("literal_phrases:\n  - \"Sent from my iPad\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := validateBoilerplatePath(good); err != nil {
		t.Fatalf("expected valid boilerplate, got %v", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("regex_patterns:\n  - \"(unclosed\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := validateBoilerplatePath(bad); err == nil {
		t.Fatal("expected invalid regex to fail")
	}

	if err := validateBoilerplatePath(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected missing file to fail")
	}
}

func TestLoadConfigInvalidTimezoneFatal(t *testing.T) {
	if os.Getenv("TEST_INVALID_TZ_FATAL") == "1" {
		_ = os.Setenv("CONFIG_PATH", filepath.Join(os.TempDir(), "no-config.yaml"))
		_ = os.Setenv("LLM_PROVIDER", "openai")
		_ = os.Setenv("TIMEZONE", "Mars/Colony")
		LoadConfig()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestLoadConfigInvalidTimezoneFatal")
	cmd.Env = append(os.Environ(), "TEST_INVALID_TZ_FATAL=1")
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected subprocess to exit with failure")
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got: %v", err)
	}
}

func TestLoadConfigInvalidProviderFatal(t *testing.T) {
	if os.Getenv("TEST_INVALID_PROVIDER_FATAL") == "1" {
		_ = os.Setenv("CONFIG_PATH", filepath.Join(os.TempDir(), "no-config.yaml"))
		_ = os.Setenv("LLM_PROVIDER", "local-llama")
		LoadConfig()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestLoadConfigInvalidProviderFatal")
	cmd.Env = append(os.Environ(), "TEST_INVALID_PROVIDER_FATAL=1")
	err := cmd.Run()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got: %v", err)
	}
}
