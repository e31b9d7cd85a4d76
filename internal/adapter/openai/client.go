package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/couchcryptid/psychrometer-service/internal/config"
	"github.com/couchcryptid/psychrometer-service/internal/domain"
	"github.com/couchcryptid/psychrometer-service/internal/observability"
)

const maxTokens = 100

// readingPrompt asks the model to answer in the СУХОЙ/ВЛАЖНЫЙ/ОШИБКА line grammar.
const readingPrompt = `Проанализируй фотографию психрометра ВИТ-1 и определи показания термометров.

ВАЖНО: Ответь СТРОГО в формате:
СУХОЙ: XX.X
ВЛАЖНЫЙ: XX.X

Где XX.X - это температура в градусах Цельсия с точностью до 0.5°C.

Если не можешь определить показания, ответь:
ОШИБКА: Не удалось определить показания термометров`

// Client implements domain.Transcriber using the OpenAI Chat Completions API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	backoff    backoff
	circuit    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a vision transcription client from the service configuration.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  cfg.OpenAIAPIKey,
		model:   cfg.OpenAIModel,
		baseURL: strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.OpenAITimeout,
		},
		backoff: backoff{
			maxRetries: cfg.OpenAIMaxRetries,
			initial:    500 * time.Millisecond,
			max:        5 * time.Second,
		},
		circuit: newCircuitBreaker("openai"),
		metrics: metrics,
		logger:  logger,
	}
}

// Transcribe sends the photo to the vision model and parses its reply.
func (c *Client) Transcribe(ctx context.Context, image []byte) (domain.Reading, error) {
	if len(image) == 0 {
		return domain.Reading{}, errors.New("empty image")
	}

	payload, err := json.Marshal(c.newRequest(image))
	if err != nil {
		return domain.Reading{}, fmt.Errorf("encode request: %w", err)
	}

	reply, err := c.complete(ctx, payload)
	if err != nil {
		c.metrics.TranscriptionRequests.WithLabelValues("error").Inc()
		return domain.Reading{}, err
	}

	reading, err := domain.ParseTranscription(reply)
	switch {
	case errors.Is(err, domain.ErrInstrumentUnreadable):
		c.metrics.TranscriptionRequests.WithLabelValues("unreadable").Inc()
		c.logger.Info("instrument unreadable", "reply", reply)
		return domain.Reading{}, err
	case err != nil:
		c.metrics.TranscriptionRequests.WithLabelValues("malformed").Inc()
		c.logger.Warn("malformed transcription reply", "reply", reply)
		return domain.Reading{}, err
	}

	c.metrics.TranscriptionRequests.WithLabelValues("success").Inc()
	c.logger.Debug("photo transcribed", "t_dry", reading.TDry, "t_wet", reading.TWet)
	return reading, nil
}

func (c *Client) complete(ctx context.Context, payload []byte) (string, error) {
	start := time.Now()
	resp, err := do(ctx, c.httpClient, c.circuit, c.backoff, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	c.metrics.TranscriptionAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("vision request: %w", err)
	}
	defer resp.Body.Close()

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("%w: reply has no choices", domain.ErrMalformedTranscription)
	}
	return strings.TrimSpace(chat.Choices[0].Message.Content), nil
}

func (c *Client) newRequest(image []byte) chatRequest {
	return chatRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: readingPrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL(image)}},
			},
		}},
	}
}

// dataURL embeds the image as base64, defaulting to JPEG when the type is not sniffable.
func dataURL(image []byte) string {
	mime := http.DetectContentType(image)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image)
}

// Chat Completions API types.

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
