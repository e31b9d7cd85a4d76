package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRawReading(t *testing.T) {
	msgTime := time.Date(2024, 7, 3, 9, 0, 0, 0, time.UTC)

	t.Run("full payload", func(t *testing.T) {
		data := []byte(`{"station":" greenhouse-2 ","t_dry":22.0,"t_wet":19.0,"observed_at":"2024-07-03T08:45:00+03:00"}`)
		obs, err := ParseRawReading(RawReading{Value: data, Timestamp: msgTime})
		require.NoError(t, err)

		assert.Equal(t, "greenhouse-2", obs.Station)
		assert.Equal(t, Reading{TDry: 22, TWet: 19}, obs.Reading)
		assert.Equal(t, time.Date(2024, 7, 3, 5, 45, 0, 0, time.UTC), obs.ObservedAt)
		assert.NotEmpty(t, obs.ID)
		assert.Equal(t, data, obs.RawPayload)
		assert.True(t, obs.ProcessedAt.IsZero())
	})

	t.Run("observed_at falls back to message time", func(t *testing.T) {
		obs, err := ParseRawReading(RawReading{Value: []byte(`{"t_dry":20,"t_wet":0}`), Timestamp: msgTime})
		require.NoError(t, err)
		assert.Equal(t, msgTime, obs.ObservedAt)
		assert.Equal(t, 0.0, obs.Reading.TWet)
	})

	t.Run("missing temperature", func(t *testing.T) {
		_, err := ParseRawReading(RawReading{Value: []byte(`{"t_dry":20}`)})
		require.ErrorIs(t, err, ErrInvalidInput)
		assert.Contains(t, err.Error(), "parse raw reading")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseRawReading(RawReading{Value: []byte("{invalid json")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse raw reading")
	})

	t.Run("deterministic ID", func(t *testing.T) {
		raw := RawReading{Value: []byte(`{"station":"s1","t_dry":21,"t_wet":17}`), Timestamp: msgTime}
		a, err := ParseRawReading(raw)
		require.NoError(t, err)
		b, err := ParseRawReading(raw)
		require.NoError(t, err)
		assert.Equal(t, a.ID, b.ID)

		other, err := ParseRawReading(RawReading{Value: []byte(`{"station":"s2","t_dry":21,"t_wet":17}`), Timestamp: msgTime})
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, other.ID)
	})
}

func TestEvaluate(t *testing.T) {
	frozen := time.Date(2024, 7, 3, 10, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { SetClock(nil) })

	calc := NewCalculator(defaultTable(t))

	obs := Evaluate(Observation{Reading: Reading{TDry: 22, TWet: 19}}, calc)
	assert.True(t, obs.Result.Success)
	assert.Equal(t, 77.0, obs.Result.Humidity)
	assert.Equal(t, DatasetVersion, obs.Dataset)
	assert.Equal(t, frozen, obs.ProcessedAt)

	failed := Evaluate(Observation{Reading: Reading{TDry: 15, TWet: 20}}, calc)
	assert.False(t, failed.Result.Success)
	assert.Equal(t, KindOrderingViolation, failed.Result.Kind)
	assert.Equal(t, frozen, failed.ProcessedAt)
}

func TestSerializeObservation(t *testing.T) {
	processed := time.Date(2024, 7, 3, 10, 0, 0, 0, time.UTC)
	obs := Observation{
		ID:          "obs-1",
		Station:     "greenhouse-2",
		Reading:     Reading{TDry: 15, TWet: 20},
		Result:      Result{Kind: KindOrderingViolation, Error: "wet-bulb 20.0 °C exceeds dry-bulb 15.0 °C"},
		Dataset:     DatasetVersion,
		ProcessedAt: processed,
	}

	out, err := SerializeObservation(obs)
	require.NoError(t, err)

	assert.Equal(t, []byte("obs-1"), out.Key)
	assert.Equal(t, "ordering_violation", out.Headers["outcome"])
	assert.Equal(t, "2024-07-03T10:00:00Z", out.Headers["processed_at"])
	assert.Equal(t, DatasetVersion, out.Headers["dataset"])
	assert.Contains(t, string(out.Value), `"kind":"ordering_violation"`)
	assert.Contains(t, string(out.Value), `"station":"greenhouse-2"`)
}
