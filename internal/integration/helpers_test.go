//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/psychrometer-service/internal/domain"
)

const kafkaImage = "confluentinc/confluent-local:7.5.0"

// mockReading is one fixture row plus its original JSON, published as-is.
type mockReading struct {
	Station    string          `json:"station"`
	ObservedAt string          `json:"observed_at"`
	Expect     string          `json:"expect"`
	Payload    json.RawMessage `json:"-"`
}

// startKafka runs a single-node KRaft broker and returns its bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, kafkaImage, tckafka.WithClusterID("psychrometer-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "find controller")

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}), "create topic %s", topic)
}

func loadMockData(t *testing.T) []mockReading {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "..", "data", "mock", "station_readings.json"))
	require.NoError(t, err, "read mock data")

	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw), "decode mock data")

	rows := make([]mockReading, 0, len(raw))
	for _, r := range raw {
		var row mockReading
		require.NoError(t, json.Unmarshal(r, &row))
		row.Payload = r
		rows = append(rows, row)
	}
	return rows
}

func testCalculator(t *testing.T) *domain.Calculator {
	t.Helper()
	table, err := domain.DefaultTable()
	require.NoError(t, err)
	return domain.NewCalculator(table)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
