package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/psychrometer-service/internal/domain"
)

func TestMapMessageToRawReading(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("greenhouse-2"),
		Value:     []byte(`{"station":"greenhouse-2","t_dry":22,"t_wet":19}`),
		Topic:     "psychrometer-readings",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("logger-v3")},
		},
	}

	raw := mapMessageToRawReading(msg)

	assert.Equal(t, []byte("greenhouse-2"), raw.Key)
	assert.JSONEq(t, `{"station":"greenhouse-2","t_dry":22,"t_wet":19}`, string(raw.Value))
	assert.Equal(t, "psychrometer-readings", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "logger-v3", raw.Headers["source"])
	assert.Nil(t, raw.Commit)
}

func TestToMessage(t *testing.T) {
	event := domain.OutputEvent{
		Key:   []byte("obs-1"),
		Value: []byte(`{"id":"obs-1"}`),
		Headers: map[string]string{
			"processed_at": "2024-07-03T10:00:00Z",
			"outcome":      "ok",
			"dataset":      domain.DatasetVersion,
		},
	}

	msg := toMessage(event)

	assert.Equal(t, []byte("obs-1"), msg.Key)
	assert.JSONEq(t, `{"id":"obs-1"}`, string(msg.Value))
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "dataset", msg.Headers[0].Key)
	assert.Equal(t, "outcome", msg.Headers[1].Key)
	assert.Equal(t, []byte("ok"), msg.Headers[1].Value)
	assert.Equal(t, "processed_at", msg.Headers[2].Key)
	assert.Equal(t, []byte("2024-07-03T10:00:00Z"), msg.Headers[2].Value)
}

func TestToMessage_NoHeaders(t *testing.T) {
	msg := toMessage(domain.OutputEvent{Key: []byte("k"), Value: []byte("v")})
	assert.Empty(t, msg.Headers)
}
