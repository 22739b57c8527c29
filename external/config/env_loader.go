package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/hingebot/hingebot/internal/config"
)

type envConfig struct {
	Env         string `env:"ENV" envDefault:"production"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	LLMAPIURL string `env:"LLM_API_URL" envDefault:"https://api.openai.com/v1"`
	LLMAPIKey string `env:"LLM_API_KEY,required"`
	LLMModel  string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`

	MoltbookAPIURL  string `env:"MOLTBOOK_API_URL" envDefault:"https://moltbook.com/api"`
	MoltbookAPIKey  string `env:"MOLTBOOK_API_KEY"`
	MoltbookJWKSURL string `env:"MOLTBOOK_JWKS_URL" envDefault:"https://moltbook.com/.well-known/jwks.json"`

	MaxMatchesPerRound      int `env:"MAX_MATCHES_PER_ROUND" envDefault:"20"`
	MatchingRoundTimeoutMin int `env:"MATCHING_ROUND_TIMEOUT_MIN" envDefault:"5"`
	ConversationBatchSize   int `env:"CONVERSATION_BATCH_SIZE" envDefault:"5"`
	ConversationWorkers     int `env:"CONVERSATION_WORKERS" envDefault:"2"`
	SessionRunTimeoutMin    int `env:"SESSION_RUN_TIMEOUT_MIN" envDefault:"10"`
	SessionRetryAttempts    int `env:"SESSION_RETRY_ATTEMPTS" envDefault:"3"`
	SessionRetryBackoffSec  int `env:"SESSION_RETRY_BACKOFF_SEC" envDefault:"30"`

	MatchingPeriodMin     int `env:"MATCHING_PERIOD_MIN" envDefault:"120"`
	ConversationPeriodMin int `env:"CONVERSATION_PERIOD_MIN" envDefault:"15"`
	ShowcasePeriodMin     int `env:"SHOWCASE_PERIOD_MIN" envDefault:"60"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                     raw.Env,
		DatabaseURL:             raw.DatabaseURL,
		LLMAPIURL:               raw.LLMAPIURL,
		LLMAPIKey:               raw.LLMAPIKey,
		LLMModel:                raw.LLMModel,
		MoltbookAPIURL:          raw.MoltbookAPIURL,
		MoltbookAPIKey:          raw.MoltbookAPIKey,
		MoltbookJWKSURL:         raw.MoltbookJWKSURL,
		MaxMatchesPerRound:      raw.MaxMatchesPerRound,
		MatchingRoundTimeoutMin: raw.MatchingRoundTimeoutMin,
		ConversationBatchSize:   raw.ConversationBatchSize,
		ConversationWorkers:     raw.ConversationWorkers,
		SessionRunTimeoutMin:    raw.SessionRunTimeoutMin,
		SessionRetryAttempts:    raw.SessionRetryAttempts,
		SessionRetryBackoffSec:  raw.SessionRetryBackoffSec,
		MatchingPeriodMin:       raw.MatchingPeriodMin,
		ConversationPeriodMin:   raw.ConversationPeriodMin,
		ShowcasePeriodMin:       raw.ShowcasePeriodMin,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
