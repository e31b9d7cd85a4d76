package dialogue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name   string
		from   State
		event  Event
		to     State
		action Action
	}{
		{"start from idle", Idle, CommandStart, Idle, ShowWelcome},
		{"start abandons manual input", AwaitingManualInput, CommandStart, Idle, ShowWelcome},
		{"calculation shows menu", Idle, CommandCalculation, Idle, ShowModeMenu},
		{"calculation abandons photo wait", AwaitingPhoto, CommandCalculation, Idle, ShowModeMenu},
		{"choose manual", Idle, ChooseManual, AwaitingManualInput, PromptManual},
		{"choose photo", Idle, ChoosePhoto, AwaitingPhoto, PromptPhoto},
		{"switch manual to photo", AwaitingManualInput, ChoosePhoto, AwaitingPhoto, PromptPhoto},
		{"manual text evaluated", AwaitingManualInput, Text, Idle, EvaluateText},
		{"photo while awaiting manual", AwaitingManualInput, Photo, AwaitingManualInput, PromptManual},
		{"photo evaluated", AwaitingPhoto, Photo, Idle, EvaluatePhoto},
		{"text while awaiting photo", AwaitingPhoto, Text, AwaitingPhoto, PromptPhoto},
		{"idle text", Idle, Text, Idle, ShowHelp},
		{"idle photo", Idle, Photo, Idle, ShowHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			to, action := Transition(tt.from, tt.event)
			assert.Equal(t, tt.to, to, "state")
			assert.Equal(t, tt.action, action, "action")
		})
	}
}

func TestTransition_EveryEvaluationReturnsToIdle(t *testing.T) {
	for _, s := range []State{Idle, AwaitingManualInput, AwaitingPhoto} {
		for _, e := range []Event{CommandStart, CommandCalculation, ChooseManual, ChoosePhoto, Text, Photo} {
			to, action := Transition(s, e)
			if action == EvaluateText || action == EvaluatePhoto {
				assert.Equal(t, Idle, to, "%s + %s", s, e)
			}
		}
	}
}

func TestRetry(t *testing.T) {
	assert.Equal(t, AwaitingManualInput, Retry(EvaluateText))
	assert.Equal(t, Idle, Retry(EvaluatePhoto))
	assert.Equal(t, Idle, Retry(ShowHelp))
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "awaiting_photo", AwaitingPhoto.String())
	assert.Equal(t, "choose_manual", ChooseManual.String())
	assert.Equal(t, "evaluate_text", EvaluateText.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestSessions(t *testing.T) {
	s := NewSessions()

	assert.Equal(t, Idle, s.Get(1))

	s.Set(1, AwaitingPhoto)
	s.Set(2, AwaitingManualInput)
	assert.Equal(t, AwaitingPhoto, s.Get(1))
	assert.Equal(t, AwaitingManualInput, s.Get(2))
	assert.Equal(t, 2, s.Len())

	s.Reset(1)
	assert.Equal(t, Idle, s.Get(1))
	assert.Equal(t, 1, s.Len())

	s.Set(2, Idle)
	assert.Equal(t, 0, s.Len())
}

func TestSessions_Concurrent(t *testing.T) {
	s := NewSessions()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(chat int64) {
			defer wg.Done()
			s.Set(chat, AwaitingManualInput)
			_ = s.Get(chat)
			s.Reset(chat)
		}(int64(i))
	}
	wg.Wait()

	assert.Equal(t, 0, s.Len())
}
