package app

import (
	"database/sql"
	"fmt"
	"log"

	"ticketdraft/internal/config"
	"ticketdraft/internal/drafting"
	"ticketdraft/internal/httpx"
	"ticketdraft/internal/integrations/llm"
	slackbot "ticketdraft/internal/integrations/slack"
	"ticketdraft/internal/normalize"
	"ticketdraft/internal/similarity"
	"ticketdraft/internal/storage/sqlite"
)

func loadConfig() config.Config {
	cfg := config.LoadConfig()
	appliedHTTPTimeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
	log.Printf(
		"Config loaded. Corpus=%s Provider=%s Model=%s Summary=%t MaxRounds=%d DB=%s Timezone=%s ExternalHTTPTimeout=%s",
		cfg.CorpusPath,
		cfg.LLMProvider,
		cfg.LLMModel,
		cfg.SummaryEnabled,
		cfg.DraftMaxRounds,
		cfg.DBPath,
		cfg.Timezone,
		appliedHTTPTimeout,
	)
	return cfg
}

// loadIndex publishes the corpus index once; the returned reloader can
// keep it fresh on a schedule.
func loadIndex(cfg config.Config) (*similarity.Holder, *similarity.Reloader, error) {
	holder := similarity.NewHolder(nil)
	reloader := similarity.NewReloader(cfg.CorpusPath, holder)
	if _, err := reloader.Reload(); err != nil {
		return nil, nil, err
	}
	return holder, reloader, nil
}

func newNormalizer(cfg config.Config) (*normalize.Normalizer, error) {
	b := normalize.DefaultBoilerplate()
	if cfg.BoilerplatePath != "" {
		loaded, err := normalize.LoadBoilerplate(cfg.BoilerplatePath)
		if err != nil {
			return nil, err
		}
		b = loaded
	}
	return normalize.New(b)
}

func apiKey(cfg config.Config) string {
	if cfg.LLMProvider == "openai" {
		return cfg.OpenAIAPIKey
	}
	return cfg.AnthropicAPIKey
}

func newInvokers(cfg config.Config) (generator, summarizer llm.Invoker, err error) {
	if err := cfg.ValidateLLM(); err != nil {
		return nil, nil, err
	}
	generator, err = llm.NewInvoker(llm.Options{
		Provider:  cfg.LLMProvider,
		APIKey:    apiKey(cfg),
		Model:     cfg.LLMModel,
		System:    drafting.GeneratorSystemPrompt,
		MaxTokens: cfg.LLMMaxTokens,
		BaseURL:   cfg.OpenAIBaseURL,
	})
	if err != nil {
		return nil, nil, err
	}
	if !cfg.SummaryEnabled {
		return generator, nil, nil
	}
	model := cfg.SummaryModel
	if model == "" {
		model = cfg.LLMModel
	}
	summarizer, err = llm.NewInvoker(llm.Options{
		Provider:  cfg.LLMProvider,
		APIKey:    apiKey(cfg),
		Model:     model,
		System:    drafting.SummarizerSystemPrompt,
		MaxTokens: cfg.LLMMaxTokens,
		BaseURL:   cfg.OpenAIBaseURL,
	})
	if err != nil {
		return nil, nil, err
	}
	return generator, summarizer, nil
}

func newNotifier(cfg config.Config) *slackbot.Notifier {
	if !cfg.SlackConfigured() {
		log.Println("Slack notifications disabled (slack_bot_token or slack_channel_id not set)")
		return nil
	}
	return slackbot.NewClientNotifier(cfg.SlackBotToken, cfg.SlackChannelID)
}

func openDB(cfg config.Config) (*sql.DB, error) {
	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("init database %s: %w", cfg.DBPath, err)
	}
	log.Printf("Database initialized at %s", cfg.DBPath)
	return db, nil
}

// newDrafter wires every collaborator the drafting commands share.
func newDrafter(cfg config.Config, db *sql.DB, holder *similarity.Holder) (*drafting.Drafter, *slackbot.Notifier, error) {
	n, err := newNormalizer(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("boilerplate: %w", err)
	}
	generator, summarizer, err := newInvokers(cfg)
	if err != nil {
		return nil, nil, err
	}
	d := &drafting.Drafter{
		Generator:            generator,
		Summarizer:           summarizer,
		Normalizer:           n,
		Index:                holder,
		Store:                sqlite.DraftStore{DB: db},
		Provider:             cfg.LLMProvider,
		SummaryMaxInputChars: cfg.SummaryMaxInputChars,
	}
	notifier := newNotifier(cfg)
	if notifier != nil {
		d.Notifier = notifier
	}
	return d, notifier, nil
}
