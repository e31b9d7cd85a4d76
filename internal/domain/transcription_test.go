package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTranscription(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  Reading
	}{
		{"canonical reply", "СУХОЙ: 22.0\nВЛАЖНЫЙ: 19.0", Reading{TDry: 22, TWet: 19}},
		{"wet first", "ВЛАЖНЫЙ: 16.5\nСУХОЙ: 20.5", Reading{TDry: 20.5, TWet: 16.5}},
		{"surrounding chatter ignored", "Вот показания:\n  СУХОЙ: 24.5  \n\nВЛАЖНЫЙ: 18.0\nГотово.", Reading{TDry: 24.5, TWet: 18}},
		{"decimal comma", "СУХОЙ: 21,5\nВЛАЖНЫЙ: 17,0", Reading{TDry: 21.5, TWet: 17}},
		{"windows line endings", "СУХОЙ: 22.0\r\nВЛАЖНЫЙ: 19.0\r\n", Reading{TDry: 22, TWet: 19}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTranscription(tt.reply)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTranscription_Failures(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		sentinel error
	}{
		{"error marker", "ОШИБКА: Не удалось определить показания термометров", ErrInstrumentUnreadable},
		{"error marker after a reading", "СУХОЙ: 22.0\nОШИБКА: влажный термометр не виден", ErrInstrumentUnreadable},
		{"empty reply", "", ErrMalformedTranscription},
		{"missing wet", "СУХОЙ: 22.0", ErrMalformedTranscription},
		{"missing dry", "ВЛАЖНЫЙ: 19.0", ErrMalformedTranscription},
		{"unparseable value", "СУХОЙ: двадцать\nВЛАЖНЫЙ: 19.0", ErrMalformedTranscription},
		{"free text", "I cannot see any thermometers here.", ErrMalformedTranscription},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTranscription(tt.reply)
			require.ErrorIs(t, err, tt.sentinel)
			assert.ErrorIs(t, err, ErrUpstreamParse)
			assert.Equal(t, Reading{}, got)
		})
	}
}

func TestParseTranscription_ErrorCarriesReason(t *testing.T) {
	_, err := ParseTranscription("ОШИБКА: термометры не в фокусе")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "термометры не в фокусе")
}
