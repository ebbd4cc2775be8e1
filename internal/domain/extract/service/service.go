// Package service runs the extraction strategy cascade over an uploaded PDF.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/campuskit/timetable-api/internal/domain/extract/parser"
	"github.com/campuskit/timetable-api/internal/domain/extract/pdfsource"
	"github.com/campuskit/timetable-api/internal/domain/timetable"
	"github.com/campuskit/timetable-api/pkg/metrics"
)

// ErrNoEntriesFound means every strategy came back empty. It is terminal for
// the request; parsing is deterministic, so retrying cannot help.
var ErrNoEntriesFound = errors.New(
	"could not extract any timetable entries from the PDF: " +
		"ensure the file contains course codes, days, and time ranges")

var tracer = otel.Tracer("github.com/campuskit/timetable-api/internal/domain/extract")

// Extractor tries the three parsing strategies in fixed priority order and
// accepts the first non-empty result. Results across strategies are never
// merged. Extraction is a pure function of the input buffer: no shared state,
// identical bytes yield identical ordered output.
type Extractor struct {
	source pdfsource.Source
	logger *slog.Logger
}

func NewExtractor(source pdfsource.Source, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{source: source, logger: logger}
}

// Extract runs the cascade: line-based parse of the plain text, then the
// text-order grid parse, then the coordinate grid parse. Positioned tokens
// are only fetched from the source when the coordinate strategy runs.
// A PDF decode failure propagates as ErrUnreadableDocument; an
// exhausted cascade returns ErrNoEntriesFound.
func (e *Extractor) Extract(ctx context.Context, buf []byte) ([]timetable.Entry, error) {
	_, span := tracer.Start(ctx, "extract.cascade")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	}()

	text, err := e.source.ExtractText(buf)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	strategies := []struct {
		name string
		run  func() ([]timetable.Entry, error)
	}{
		{"line", func() ([]timetable.Entry, error) {
			return parser.ParseLines(text), nil
		}},
		{"grid-text", func() ([]timetable.Entry, error) {
			return parser.ParseTextGrid(text), nil
		}},
		{"grid-coord", func() ([]timetable.Entry, error) {
			tokens, err := e.source.ExtractTokens(buf)
			if err != nil {
				return nil, err
			}
			return parser.ParseCoordinateGrid(tokens), nil
		}},
	}

	for _, s := range strategies {
		entries, err := s.run()
		if err != nil {
			metrics.ExtractionsTotal.WithLabelValues(s.name, "error").Inc()
			span.RecordError(err)
			return nil, err
		}
		if len(entries) == 0 {
			metrics.ExtractionsTotal.WithLabelValues(s.name, "miss").Inc()
			continue
		}

		metrics.ExtractionsTotal.WithLabelValues(s.name, "hit").Inc()
		metrics.EntriesExtracted.Observe(float64(len(entries)))
		span.SetAttributes(
			attribute.String("extract.strategy", s.name),
			attribute.Int("extract.entries", len(entries)),
		)
		e.logger.Info("timetable extracted",
			slog.String("strategy", s.name),
			slog.Int("entries", len(entries)))
		return entries, nil
	}

	e.logger.Warn("all extraction strategies returned empty")
	return nil, ErrNoEntriesFound
}
