package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-report-service/internal/domain"
	"github.com/couchcryptid/quake-report-service/internal/observability"
)

// QuakeTransformer implements Transformer by decoding the source message,
// building the report and running it through the display formatter.
type QuakeTransformer struct {
	formatter *domain.Formatter
	tz        *time.Location
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewTransformer creates a QuakeTransformer. Date strings are interpreted in
// tz, which is also the zone the formatter renders in.
func NewTransformer(res domain.Resources, tz *time.Location, logger *slog.Logger, metrics *observability.Metrics) *QuakeTransformer {
	if tz == nil {
		tz = time.UTC
	}
	return &QuakeTransformer{
		formatter: domain.NewFormatter(res, tz),
		tz:        tz,
		logger:    logger,
		metrics:   metrics,
	}
}

func (t *QuakeTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.DisplayRow, error) {
	msg, err := domain.DecodeQuakeMessage(raw)
	if err != nil {
		return domain.DisplayRow{}, err
	}

	eq := msg.Earthquake(domain.WithTimeZone(t.tz), domain.WithLogger(t.logger))
	if msg.UsesDateString() && !eq.HasTime() {
		t.metrics.DateParseFailures.Inc()
	}

	return domain.NewDisplayRow(eq, t.formatter.Format(eq)), nil
}
