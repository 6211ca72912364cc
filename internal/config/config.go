package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServiceName string
	HTTPAddr    string
	LogLevel    string

	GeminiAPIKey string
	GeminiModel  string
	GeminiRPS    float64
	GeminiBurst  int

	GenTemperature     float64
	GenMaxOutputTokens int

	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryMultiplier     float64

	BreakerFailureThreshold int
	BreakerCooldown         time.Duration

	CorpusDir           string
	CorpusSummariesPath string

	DirectoryPath    string
	DirectoryMaxRows int

	PromptTemplatePath string

	NATSURL           string
	NATSEventSubject  string
	NATSReloadSubject string
}

func Load() (Config, error) {
	cfg := Config{
		ServiceName: mustEnv("SERVICE_NAME", "derma-consult"),
		HTTPAddr:    mustEnv("HTTP_ADDR", ":8080"),
		LogLevel:    mustEnv("LOG_LEVEL", "info"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  mustEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiRPS:    mustEnvFloat("GEMINI_RPS", 0),
		GeminiBurst:  mustEnvInt("GEMINI_BURST", 1),

		GenTemperature:     mustEnvFloat("GEN_TEMPERATURE", 0.3),
		GenMaxOutputTokens: mustEnvInt("GEN_MAX_OUTPUT_TOKENS", 2048),

		RetryMaxAttempts:    mustEnvInt("RETRY_MAX_ATTEMPTS", 3),
		RetryInitialBackoff: mustEnvDuration("RETRY_INITIAL_BACKOFF", 2*time.Second),
		RetryMaxBackoff:     mustEnvDuration("RETRY_MAX_BACKOFF", 16*time.Second),
		RetryMultiplier:     mustEnvFloat("RETRY_MULTIPLIER", 2.0),

		BreakerFailureThreshold: mustEnvInt("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerCooldown:         mustEnvDuration("BREAKER_COOLDOWN", 30*time.Second),

		CorpusDir:           mustEnv("CORPUS_DIR", "data/textbook"),
		CorpusSummariesPath: mustEnv("CORPUS_SUMMARIES_PATH", ""),

		DirectoryPath:    mustEnv("DIRECTORY_PATH", "data/hospitals/gangnam_unni_final_aggressive.csv"),
		DirectoryMaxRows: mustEnvInt("DIRECTORY_MAX_ROWS", 5),

		PromptTemplatePath: mustEnv("PROMPT_TEMPLATE_PATH", ""),

		NATSURL:           mustEnv("NATS_URL", ""),
		NATSEventSubject:  mustEnv("NATS_EVENT_SUBJECT", "derma.consultation.completed"),
		NATSReloadSubject: mustEnv("NATS_RELOAD_SUBJECT", "derma.corpus.reload"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.RetryMaxAttempts)
	}
	if c.RetryMultiplier < 1 {
		return fmt.Errorf("RETRY_MULTIPLIER must be at least 1, got %g", c.RetryMultiplier)
	}
	if c.DirectoryMaxRows < 1 {
		return fmt.Errorf("DIRECTORY_MAX_ROWS must be at least 1, got %d", c.DirectoryMaxRows)
	}
	if c.GenTemperature < 0 || c.GenTemperature > 2 {
		return fmt.Errorf("GEN_TEMPERATURE must be in [0, 2], got %g", c.GenTemperature)
	}
	return nil
}

// Messaging reports whether the optional NATS integration is configured.
func (c Config) Messaging() bool {
	return c.NATSURL != ""
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
