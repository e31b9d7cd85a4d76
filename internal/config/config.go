package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Reference dataset override; empty means the embedded VIT-1 table.
	ReferenceTablePath string

	// Telegram front end.
	BotToken            string
	TelegramEnabled     bool
	TelegramPollTimeout int

	// Vision transcription (photo input).
	OpenAIAPIKey           string
	OpenAIBaseURL          string
	OpenAIModel            string
	OpenAITimeout          time.Duration
	OpenAIMaxRetries       int
	TranscriptionCacheSize int

	// Kafka readings pipeline.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// TranscriptionEnabled reports whether photo input can be served.
func (c *Config) TranscriptionEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	openAITimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("OPENAI_TIMEOUT", "30s"))
	if err != nil || openAITimeout <= 0 {
		return nil, errors.New("invalid OPENAI_TIMEOUT")
	}

	maxRetries, err := strconv.Atoi(sharedcfg.EnvOrDefault("OPENAI_MAX_RETRIES", "2"))
	if err != nil || maxRetries < 0 || maxRetries > 10 {
		return nil, errors.New("invalid OPENAI_MAX_RETRIES: must be 0-10")
	}

	pollTimeout, err := strconv.Atoi(sharedcfg.EnvOrDefault("TELEGRAM_POLL_TIMEOUT", "60"))
	if err != nil || pollTimeout <= 0 {
		return nil, errors.New("invalid TELEGRAM_POLL_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	botToken := os.Getenv("BOT_TOKEN")
	telegramEnabled := botToken != ""
	if v := os.Getenv("TELEGRAM_ENABLED"); v != "" {
		telegramEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ReferenceTablePath: os.Getenv("REFERENCE_TABLE_PATH"),

		BotToken:            botToken,
		TelegramEnabled:     telegramEnabled,
		TelegramPollTimeout: pollTimeout,

		OpenAIAPIKey:           os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:          sharedcfg.EnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:            sharedcfg.EnvOrDefault("OPENAI_MODEL", "gpt-4.1"),
		OpenAITimeout:          openAITimeout,
		OpenAIMaxRetries:       maxRetries,
		TranscriptionCacheSize: parseCacheSize(),

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "psychrometer-readings"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "humidity-observations"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "psychrometer"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if cfg.TelegramEnabled && cfg.BotToken == "" {
		return nil, errors.New("TELEGRAM_ENABLED is true but BOT_TOKEN is not set")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSourceTopic == "" || cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC and KAFKA_SINK_TOPIC are required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parseCacheSize() int {
	if s := os.Getenv("TRANSCRIPTION_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 256
}
