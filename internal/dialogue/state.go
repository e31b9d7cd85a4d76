// Package dialogue models the chat conversation that collects readings: which
// input the bot is waiting for and what it should do with the next update.
// It knows nothing about Telegram or the humidity table.
package dialogue

import "sync"

// State is where a chat is in the conversation.
type State int

const (
	Idle State = iota
	AwaitingManualInput
	AwaitingPhoto
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingManualInput:
		return "awaiting_manual_input"
	case AwaitingPhoto:
		return "awaiting_photo"
	default:
		return "unknown"
	}
}

// Event is a user action that drives the conversation.
type Event int

const (
	CommandStart Event = iota
	CommandCalculation
	ChooseManual
	ChoosePhoto
	Text
	Photo
)

func (e Event) String() string {
	switch e {
	case CommandStart:
		return "command_start"
	case CommandCalculation:
		return "command_calculation"
	case ChooseManual:
		return "choose_manual"
	case ChoosePhoto:
		return "choose_photo"
	case Text:
		return "text"
	case Photo:
		return "photo"
	default:
		return "unknown"
	}
}

// Action is what the front end should do in response to an event.
type Action int

const (
	ShowWelcome Action = iota
	ShowModeMenu
	PromptManual
	PromptPhoto
	EvaluateText
	EvaluatePhoto
	ShowHelp
)

func (a Action) String() string {
	switch a {
	case ShowWelcome:
		return "show_welcome"
	case ShowModeMenu:
		return "show_mode_menu"
	case PromptManual:
		return "prompt_manual"
	case PromptPhoto:
		return "prompt_photo"
	case EvaluateText:
		return "evaluate_text"
	case EvaluatePhoto:
		return "evaluate_photo"
	case ShowHelp:
		return "show_help"
	default:
		return "unknown"
	}
}

// Transition returns the next state and the action for event in state s.
// Commands and mode choices work from any state. Evaluations return to Idle.
func Transition(s State, e Event) (State, Action) {
	switch e {
	case CommandStart:
		return Idle, ShowWelcome
	case CommandCalculation:
		return Idle, ShowModeMenu
	case ChooseManual:
		return AwaitingManualInput, PromptManual
	case ChoosePhoto:
		return AwaitingPhoto, PromptPhoto
	}

	switch s {
	case AwaitingManualInput:
		if e == Text {
			return Idle, EvaluateText
		}
		return AwaitingManualInput, PromptManual
	case AwaitingPhoto:
		if e == Photo {
			return Idle, EvaluatePhoto
		}
		return AwaitingPhoto, PromptPhoto
	default:
		return Idle, ShowHelp
	}
}

// Retry returns the state to restore when an evaluation failed on the user's
// input format rather than on the reading itself. Only typed input is retried.
func Retry(a Action) State {
	if a == EvaluateText {
		return AwaitingManualInput
	}
	return Idle
}

// Sessions stores the conversation state per chat. The zero value is not
// usable; call NewSessions.
type Sessions struct {
	mu     sync.RWMutex
	states map[int64]State
}

// NewSessions creates an empty session store.
func NewSessions() *Sessions {
	return &Sessions{states: make(map[int64]State)}
}

// Get returns the chat's state, Idle if unknown.
func (s *Sessions) Get(chatID int64) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[chatID]
}

// Set records the chat's state. Idle chats are dropped from the map.
func (s *Sessions) Set(chatID int64, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == Idle {
		delete(s.states, chatID)
		return
	}
	s.states[chatID] = state
}

// Reset returns the chat to Idle.
func (s *Sessions) Reset(chatID int64) {
	s.Set(chatID, Idle)
}

// Len reports how many chats are mid-conversation.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}
