package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/couchcryptid/psychrometer-service/internal/dialogue"
	"github.com/couchcryptid/psychrometer-service/internal/domain"
	"github.com/couchcryptid/psychrometer-service/internal/observability"
)

// Telegram bots may download files up to 20 MB.
const maxPhotoBytes = 20 << 20

// Messenger is the subset of the Bot API the front end uses. *tgbotapi.BotAPI satisfies it.
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Bot answers chat updates by driving the dialogue state machine.
type Bot struct {
	api         Messenger
	calc        *domain.Calculator
	transcriber domain.Transcriber
	sessions    *dialogue.Sessions
	httpClient  *http.Client
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewBot creates the chat front end. transcriber may be nil, in which case
// photo input is declined.
func NewBot(api Messenger, calc *domain.Calculator, transcriber domain.Transcriber, metrics *observability.Metrics, logger *slog.Logger) *Bot {
	return &Bot{
		api:         api,
		calc:        calc,
		transcriber: transcriber,
		sessions:    dialogue.NewSessions(),
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		metrics:     metrics,
		logger:      logger,
	}
}

// Run handles updates one at a time until ctx is cancelled or the channel closes.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	b.logger.Info("telegram bot started")
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("telegram bot stopping", "reason", ctx.Err())
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate processes a single update.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.metrics.BotUpdates.WithLabelValues("callback").Inc()
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	default:
		b.metrics.BotUpdates.WithLabelValues("other").Inc()
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	var event dialogue.Event
	switch {
	case msg.IsCommand():
		b.metrics.BotUpdates.WithLabelValues("command").Inc()
		switch msg.Command() {
		case "start":
			event = dialogue.CommandStart
		case "calculation":
			event = dialogue.CommandCalculation
		default:
			b.send(chatID, helpText, false)
			return
		}
	case len(msg.Photo) > 0:
		b.metrics.BotUpdates.WithLabelValues("photo").Inc()
		event = dialogue.Photo
	case msg.Text != "":
		b.metrics.BotUpdates.WithLabelValues("text").Inc()
		event = dialogue.Text
	default:
		b.metrics.BotUpdates.WithLabelValues("other").Inc()
		b.send(chatID, helpText, false)
		return
	}

	next, action := b.advance(chatID, event)
	b.logger.Debug("dialogue transition", "chat_id", chatID, "event", event, "state", next, "action", action)

	switch action {
	case dialogue.ShowWelcome:
		b.send(chatID, welcomeText, true)
	case dialogue.ShowModeMenu:
		b.sendModeMenu(chatID)
	case dialogue.PromptManual:
		b.send(chatID, manualPromptText, false)
	case dialogue.PromptPhoto:
		b.send(chatID, photoPromptText, false)
	case dialogue.EvaluateText:
		b.evaluateText(chatID, msg.Text)
	case dialogue.EvaluatePhoto:
		b.evaluatePhoto(ctx, chatID, msg.Photo)
	default:
		b.send(chatID, helpText, false)
	}
}

func (b *Bot) handleCallback(_ context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("answer callback failed", "error", err)
	}
	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	chatID, messageID := cb.Message.Chat.ID, cb.Message.MessageID

	var event dialogue.Event
	switch cb.Data {
	case callbackManual:
		event = dialogue.ChooseManual
	case callbackPhoto:
		if b.transcriber == nil {
			b.sessions.Reset(chatID)
			b.edit(chatID, messageID, photoUnavailableText)
			return
		}
		event = dialogue.ChoosePhoto
	default:
		b.logger.Warn("unknown callback data", "data", cb.Data)
		return
	}

	_, action := b.advance(chatID, event)
	if action == dialogue.PromptPhoto {
		b.edit(chatID, messageID, photoPromptText)
		return
	}
	b.edit(chatID, messageID, manualPromptText)
}

// advance applies the transition for event and stores the resulting state.
func (b *Bot) advance(chatID int64, event dialogue.Event) (dialogue.State, dialogue.Action) {
	next, action := dialogue.Transition(b.sessions.Get(chatID), event)
	b.sessions.Set(chatID, next)
	return next, action
}

func (b *Bot) evaluateText(chatID int64, text string) {
	reading, err := domain.ParseManualInput(text)
	switch {
	case errors.Is(err, domain.ErrManualFormat):
		b.sessions.Set(chatID, dialogue.Retry(dialogue.EvaluateText))
		b.send(chatID, manualFormatText, false)
		return
	case err != nil:
		b.sessions.Set(chatID, dialogue.Retry(dialogue.EvaluateText))
		b.send(chatID, manualNumberText, false)
		return
	}

	b.send(chatID, calculatingText, false)
	b.reply(chatID, b.calc.CalculateReading(reading))
}

func (b *Bot) evaluatePhoto(ctx context.Context, chatID int64, sizes []tgbotapi.PhotoSize) {
	if b.transcriber == nil {
		b.send(chatID, photoUnavailableText, false)
		return
	}

	b.send(chatID, analyzingPhotoText, false)

	// Sizes are ordered smallest first.
	image, err := b.download(ctx, sizes[len(sizes)-1].FileID)
	if err != nil {
		b.logger.Error("photo download failed", "chat_id", chatID, "error", err)
		b.send(chatID, photoFailedText, false)
		return
	}

	reading, err := b.transcriber.Transcribe(ctx, image)
	switch {
	case errors.Is(err, domain.ErrInstrumentUnreadable):
		b.metrics.Calculations.WithLabelValues("bot", string(domain.KindUpstreamParseFailure)).Inc()
		b.send(chatID, unreadablePhotoText, false)
		return
	case errors.Is(err, domain.ErrUpstreamParse):
		b.reply(chatID, domain.UpstreamFailure(err))
		return
	case err != nil:
		b.logger.Error("photo transcription failed", "chat_id", chatID, "error", err)
		b.send(chatID, photoFailedText, false)
		return
	}

	b.send(chatID, transcribedText(reading), true)
	b.reply(chatID, b.calc.CalculateReading(reading))
}

func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
}

func (b *Bot) reply(chatID int64, res domain.Result) {
	b.metrics.Calculations.WithLabelValues("bot", res.Outcome()).Inc()
	text, markdown := resultText(res)
	b.send(chatID, text, markdown)
}

func (b *Bot) sendModeMenu(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, modeMenuText)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(manualButton, callbackManual),
			tgbotapi.NewInlineKeyboardButtonData(photoButton, callbackPhoto),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("send failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) send(chatID int64, text string, markdown bool) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("send failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.logger.Warn("edit failed", "chat_id", chatID, "error", err)
	}
}
