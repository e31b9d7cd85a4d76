package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/psychrometer-service/internal/domain"
	"github.com/couchcryptid/psychrometer-service/internal/observability"
)

// ReadingTransformer implements Transformer by running each station reading
// through the humidity calculator. Failed calculations are still emitted; the
// outcome header tells consumers which kind of failure occurred.
type ReadingTransformer struct {
	calc    *domain.Calculator
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewTransformer creates a ReadingTransformer backed by calc.
func NewTransformer(calc *domain.Calculator, metrics *observability.Metrics, logger *slog.Logger) *ReadingTransformer {
	return &ReadingTransformer{
		calc:    calc,
		metrics: metrics,
		logger:  logger,
	}
}

func (t *ReadingTransformer) Transform(_ context.Context, raw domain.RawReading) (domain.OutputEvent, error) {
	obs, err := domain.ParseRawReading(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	obs = domain.Evaluate(obs, t.calc)
	t.metrics.Calculations.WithLabelValues("pipeline", obs.Result.Outcome()).Inc()
	if !obs.Result.Success {
		t.logger.Debug("reading produced no humidity",
			"station", obs.Station,
			"kind", obs.Result.Kind,
			"error", obs.Result.Error,
		)
	}

	return domain.SerializeObservation(obs)
}
