package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"ticketdraft/internal/normalize"
)

const defaultExternalHTTPTimeout = 90 * time.Second
const defaultExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)

type Config struct {
	CorpusPath           string `yaml:"corpus_path"`
	CorpusReloadSchedule string `yaml:"corpus_reload_schedule"`
	BoilerplatePath      string `yaml:"boilerplate_path"`

	LLMProvider          string `yaml:"llm_provider"`
	LLMModel             string `yaml:"llm_model"`
	LLMMaxTokens         int    `yaml:"llm_max_tokens"`
	SummaryEnabled       bool   `yaml:"summary_enabled"`
	SummaryModel         string `yaml:"summary_model"`
	SummaryMaxInputChars int    `yaml:"summary_max_input_chars"`
	DraftMaxRounds       int    `yaml:"draft_max_rounds"`
	AnthropicAPIKey      string `yaml:"anthropic_api_key"`
	OpenAIAPIKey         string `yaml:"openai_api_key"`
	OpenAIBaseURL        string `yaml:"openai_base_url"`

	DBPath                     string `yaml:"db_path"`
	ExternalHTTPTimeoutSeconds int    `yaml:"external_http_timeout_seconds"`

	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`

	InboxDir      string `yaml:"inbox_dir"`
	WatchSchedule string `yaml:"watch_schedule"`
	Timezone      string `yaml:"timezone"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
}

func LoadConfig() Config {
	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	envOverride(&cfg.CorpusPath, "CORPUS_PATH")
	envOverrideAllowEmpty(&cfg.CorpusReloadSchedule, "CORPUS_RELOAD_SCHEDULE")
	envOverride(&cfg.BoilerplatePath, "BOILERPLATE_PATH")
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverrideInt(&cfg.LLMMaxTokens, "LLM_MAX_TOKENS")
	envOverrideBool(&cfg.SummaryEnabled, "SUMMARY_ENABLED")
	envOverride(&cfg.SummaryModel, "SUMMARY_MODEL")
	envOverrideInt(&cfg.SummaryMaxInputChars, "SUMMARY_MAX_INPUT_CHARS")
	envOverrideInt(&cfg.DraftMaxRounds, "DRAFT_MAX_ROUNDS")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.OpenAIBaseURL, "OPENAI_BASE_URL")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverride(&cfg.InboxDir, "INBOX_DIR")
	envOverride(&cfg.WatchSchedule, "WATCH_SCHEDULE")
	envOverride(&cfg.Timezone, "TIMEZONE")

	if cfg.CorpusPath == "" {
		cfg.CorpusPath = "./resolved_tickets.csv"
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "anthropic"
	}
	if cfg.LLMMaxTokens == 0 {
		cfg.LLMMaxTokens = 1024
	}
	if cfg.SummaryMaxInputChars == 0 {
		cfg.SummaryMaxInputChars = 4000
	}
	if cfg.DraftMaxRounds == 0 {
		cfg.DraftMaxRounds = 3
	}
	if cfg.OpenAIBaseURL == "" {
		cfg.OpenAIBaseURL = "https://api.openai.com/v1"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./ticketdraft.db"
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}
	if cfg.InboxDir == "" {
		cfg.InboxDir = "./inbox"
	}
	if cfg.WatchSchedule == "" {
		cfg.WatchSchedule = "*/5 * * * *"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	switch cfg.LLMProvider {
	case "anthropic", "openai":
	default:
		log.Fatalf("llm_provider must be 'anthropic' or 'openai', got '%s'", cfg.LLMProvider)
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	if cfg.LLMMaxTokens < 1 {
		log.Fatalf("invalid llm_max_tokens '%d': must be >= 1", cfg.LLMMaxTokens)
	}
	if cfg.SummaryMaxInputChars < 100 {
		log.Fatalf("invalid summary_max_input_chars '%d': must be >= 100", cfg.SummaryMaxInputChars)
	}
	if cfg.DraftMaxRounds < 1 {
		log.Fatalf("invalid draft_max_rounds '%d': must be >= 1", cfg.DraftMaxRounds)
	}
	if cfg.ExternalHTTPTimeoutSeconds < 5 {
		log.Fatalf("invalid external_http_timeout_seconds '%d': must be >= 5", cfg.ExternalHTTPTimeoutSeconds)
	}
	if err := validateSchedule(cfg.WatchSchedule); err != nil {
		log.Fatalf("invalid watch_schedule '%s': %v", cfg.WatchSchedule, err)
	}
	if strings.TrimSpace(cfg.CorpusReloadSchedule) != "" {
		if err := validateSchedule(cfg.CorpusReloadSchedule); err != nil {
			log.Fatalf("invalid corpus_reload_schedule '%s': %v", cfg.CorpusReloadSchedule, err)
		}
	}
	if cfg.BoilerplatePath != "" {
		if err := validateBoilerplatePath(cfg.BoilerplatePath); err != nil {
			log.Fatalf("invalid boilerplate_path '%s': %v", cfg.BoilerplatePath, err)
		}
	}

	return cfg
}

// ValidateLLM checks the credentials needed to reach the configured provider.
// Commands that never call a model skip it.
func (c Config) ValidateLLM() error {
	switch c.LLMProvider {
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("anthropic_api_key is required when llm_provider=anthropic")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("openai_api_key is required when llm_provider=openai")
		}
	default:
		return fmt.Errorf("llm_provider must be 'anthropic' or 'openai', got '%s'", c.LLMProvider)
	}
	return nil
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.SlackChannelID != ""
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideAllowEmpty(field *string, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = strings.EqualFold(val, "true") || val == "1"
	}
}

func validateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	return err
}

func validateBoilerplatePath(path string) error {
	b, err := normalize.LoadBoilerplate(path)
	if err != nil {
		return err
	}
	_, err = normalize.New(b)
	return err
}
