package config

import "fmt"

type Config struct {
	Env         string
	DatabaseURL string

	LLMAPIURL string
	LLMAPIKey string
	LLMModel  string

	MoltbookAPIURL  string
	MoltbookAPIKey  string
	MoltbookJWKSURL string

	MaxMatchesPerRound      int
	MatchingRoundTimeoutMin int
	ConversationBatchSize   int
	ConversationWorkers     int
	SessionRunTimeoutMin    int
	SessionRetryAttempts    int
	SessionRetryBackoffSec  int

	MatchingPeriodMin     int
	ConversationPeriodMin int
	ShowcasePeriodMin     int
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	for _, pos := range c.positiveFieldChecks() {
		if pos.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", pos.name, pos.value)
		}
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "LLM_API_URL", value: c.LLMAPIURL},
		{name: "LLM_API_KEY", value: c.LLMAPIKey},
		{name: "LLM_MODEL", value: c.LLMModel},
		{name: "MOLTBOOK_API_URL", value: c.MoltbookAPIURL},
		{name: "MOLTBOOK_JWKS_URL", value: c.MoltbookJWKSURL},
	}
}

type positiveEnvField struct {
	name  string
	value int
}

func (c *Config) positiveFieldChecks() []positiveEnvField {
	return []positiveEnvField{
		{name: "MAX_MATCHES_PER_ROUND", value: c.MaxMatchesPerRound},
		{name: "MATCHING_ROUND_TIMEOUT_MIN", value: c.MatchingRoundTimeoutMin},
		{name: "CONVERSATION_BATCH_SIZE", value: c.ConversationBatchSize},
		{name: "CONVERSATION_WORKERS", value: c.ConversationWorkers},
		{name: "SESSION_RUN_TIMEOUT_MIN", value: c.SessionRunTimeoutMin},
		{name: "SESSION_RETRY_ATTEMPTS", value: c.SessionRetryAttempts},
		{name: "SESSION_RETRY_BACKOFF_SEC", value: c.SessionRetryBackoffSec},
		{name: "MATCHING_PERIOD_MIN", value: c.MatchingPeriodMin},
		{name: "CONVERSATION_PERIOD_MIN", value: c.ConversationPeriodMin},
		{name: "SHOWCASE_PERIOD_MIN", value: c.ShowcasePeriodMin},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
