package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/psychrometer-service/internal/domain"
	"github.com/couchcryptid/psychrometer-service/internal/observability"
)

const (
	maxReadingBody = 1 << 10
	maxPhotoBody   = 10 << 20
)

var validate = validator.New()

// humidityRequest is the JSON body of POST /api/v1/humidity. Pointers let
// "required" tell a missing reading from a legitimate 0 °C.
type humidityRequest struct {
	TDry *float64 `json:"t_dry" validate:"required"`
	TWet *float64 `json:"t_wet" validate:"required"`
}

// Server exposes health, readiness, metrics and the humidity API.
type Server struct {
	httpServer  *http.Server
	calc        *domain.Calculator
	transcriber domain.Transcriber
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewServer creates an HTTP server with ops routes and the /api/v1 humidity routes.
// transcriber may be nil, in which case photo requests answer 503.
func NewServer(
	addr string,
	ready sharedobs.ReadinessChecker,
	calc *domain.Calculator,
	transcriber domain.Transcriber,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		calc:        calc,
		transcriber: transcriber,
		metrics:     metrics,
		logger:      logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /api/v1/humidity", s.handleHumidity)
	mux.HandleFunc("POST /api/v1/humidity/photo", s.handlePhoto)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHumidity(w http.ResponseWriter, r *http.Request) {
	var req humidityRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReadingBody)).Decode(&req); err != nil {
		s.respond(w, domain.InvalidInput(errors.New("request body must be a JSON object with numeric t_dry and t_wet")))
		return
	}
	if err := validate.Struct(req); err != nil {
		s.respond(w, domain.InvalidInput(errors.New("t_dry and t_wet are required")))
		return
	}

	s.respond(w, s.calc.Calculate(*req.TDry, *req.TWet))
}

func (s *Server) handlePhoto(w http.ResponseWriter, r *http.Request) {
	if s.transcriber == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "photo transcription is not configured"})
		return
	}

	image, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPhotoBody))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "photo exceeds 10 MiB"})
		return
	}
	if len(image) == 0 {
		s.respond(w, domain.InvalidInput(errors.New("request body must contain the photo")))
		return
	}

	reading, err := s.transcriber.Transcribe(r.Context(), image)
	switch {
	case errors.Is(err, domain.ErrUpstreamParse):
		s.respond(w, domain.UpstreamFailure(err))
		return
	case err != nil:
		s.logger.Error("photo transcription failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "photo transcription failed"})
		return
	}

	s.respond(w, s.calc.CalculateReading(reading))
}

// respond writes a Result with the status code for its outcome.
func (s *Server) respond(w http.ResponseWriter, res domain.Result) {
	s.metrics.Calculations.WithLabelValues("http", res.Outcome()).Inc()
	writeJSON(w, statusFor(res), res)
}

func statusFor(res domain.Result) int {
	switch {
	case res.Success:
		return http.StatusOK
	case res.Kind == domain.KindInvalidInput:
		return http.StatusBadRequest
	case res.Kind == domain.KindUpstreamParseFailure:
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
