package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultBroker = "localhost:9092"
	testBotToken  = "123456:test-token"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.ReferenceTablePath)

	assert.False(t, cfg.TelegramEnabled)
	assert.Empty(t, cfg.BotToken)
	assert.Equal(t, 60, cfg.TelegramPollTimeout)

	assert.False(t, cfg.TranscriptionEnabled())
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, "gpt-4.1", cfg.OpenAIModel)
	assert.Equal(t, 30*time.Second, cfg.OpenAITimeout)
	assert.Equal(t, 2, cfg.OpenAIMaxRetries)
	assert.Equal(t, 256, cfg.TranscriptionCacheSize)

	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "psychrometer-readings", cfg.KafkaSourceTopic)
	assert.Equal(t, "humidity-observations", cfg.KafkaSinkTopic)
	assert.Equal(t, "psychrometer", cfg.KafkaGroupID)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("REFERENCE_TABLE_PATH", "/etc/psychrometer/vit2.csv")
	t.Setenv("BOT_TOKEN", testBotToken)
	t.Setenv("TELEGRAM_POLL_TIMEOUT", "30")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:4000/v1")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("OPENAI_TIMEOUT", "10s")
	t.Setenv("OPENAI_MAX_RETRIES", "0")
	t.Setenv("TRANSCRIPTION_CACHE_SIZE", "16")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/etc/psychrometer/vit2.csv", cfg.ReferenceTablePath)
	assert.True(t, cfg.TelegramEnabled)
	assert.Equal(t, testBotToken, cfg.BotToken)
	assert.Equal(t, 30, cfg.TelegramPollTimeout)
	assert.True(t, cfg.TranscriptionEnabled())
	assert.Equal(t, "http://localhost:4000/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, 10*time.Second, cfg.OpenAITimeout)
	assert.Equal(t, 0, cfg.OpenAIMaxRetries)
	assert.Equal(t, 16, cfg.TranscriptionCacheSize)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidOpenAITimeout(t *testing.T) {
	for _, v := range []string{"bad", "0s", "-5s"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("OPENAI_TIMEOUT", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "OPENAI_TIMEOUT")
		})
	}
}

func TestLoad_InvalidOpenAIMaxRetries(t *testing.T) {
	for _, v := range []string{"many", "-1", "11"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("OPENAI_MAX_RETRIES", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "OPENAI_MAX_RETRIES")
		})
	}
}

func TestLoad_InvalidPollTimeout(t *testing.T) {
	t.Setenv("TELEGRAM_POLL_TIMEOUT", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_POLL_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_TelegramEnabledWithoutToken(t *testing.T) {
	t.Setenv("TELEGRAM_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
}

func TestLoad_TokenImpliesTelegramEnabled(t *testing.T) {
	t.Setenv("BOT_TOKEN", testBotToken)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.TelegramEnabled)
}

func TestLoad_TelegramExplicitlyDisabled(t *testing.T) {
	t.Setenv("BOT_TOKEN", testBotToken)
	t.Setenv("TELEGRAM_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.TelegramEnabled)
}

func TestLoad_InvalidCacheSizeFallsBack(t *testing.T) {
	t.Setenv("TRANSCRIPTION_CACHE_SIZE", "-3")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.TranscriptionCacheSize)
}
