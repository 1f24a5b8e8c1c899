package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/threat-level-monitor/internal/adapter/web"
	"github.com/couchcryptid/threat-level-monitor/internal/domain"
	"github.com/couchcryptid/threat-level-monitor/internal/observability"
	"github.com/couchcryptid/threat-level-monitor/internal/parser"
)

// Fetcher retrieves the raw body of a source.
type Fetcher interface {
	Fetch(ctx context.Context, src domain.SourceDescriptor) (web.Response, error)
}

// Source pairs a fetch target with the parser that understands its body.
type Source struct {
	Descriptor domain.SourceDescriptor
	Parser     parser.Parser
}

// Pipeline runs update cycles over an ordered list of sources. It holds no
// mutable state, so concurrent cycles are safe.
type Pipeline struct {
	fetcher Fetcher
	sources []Source
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline that tries sources in the given order.
func New(f Fetcher, sources []Source, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		fetcher: f,
		sources: append([]Source(nil), sources...),
		logger:  logger,
		metrics: metrics,
	}
}

// SourcesFor pairs each descriptor with the parser for its kind.
func SourcesFor(descs []domain.SourceDescriptor, allowLoose bool) ([]Source, error) {
	sources := make([]Source, 0, len(descs))
	for _, d := range descs {
		p, ok := parser.ForKind(d.Kind, allowLoose)
		if !ok {
			return nil, fmt.Errorf("source %q: unsupported kind %q", d.Name, d.Kind)
		}
		sources = append(sources, Source{Descriptor: d, Parser: p})
	}
	return sources, nil
}

// RunCycle performs one update cycle: each source is fetched and parsed in
// order until one yields a canonical level. It performs no retries or sleeps.
// On failure the error is a *CycleError naming every exhausted source.
func (p *Pipeline) RunCycle(ctx context.Context) (domain.ThreatReading, error) {
	start := time.Now()
	defer func() {
		p.metrics.CycleDuration.Observe(time.Since(start).Seconds())
	}()

	cycleErr := &CycleError{}
	for i, src := range p.sources {
		reading, attemptErr := p.attempt(ctx, src)
		if attemptErr == nil {
			p.metrics.CyclesTotal.WithLabelValues("success").Inc()
			p.logger.Info("threat level updated",
				"level", reading.Level,
				"ordinal", reading.Ordinal,
				"source", src.Descriptor.Name,
				"match", reading.Match,
			)
			return reading, nil
		}

		cycleErr.Attempts = append(cycleErr.Attempts, attemptErr)
		if i < len(p.sources)-1 {
			p.metrics.SourceFallbacks.WithLabelValues(src.Descriptor.Name).Inc()
			p.logger.Warn("source exhausted, falling back",
				"source", src.Descriptor.Name,
				"stage", attemptErr.Stage,
				"next", p.sources[i+1].Descriptor.Name,
				"error", attemptErr.Err,
			)
		}
	}

	p.metrics.CyclesTotal.WithLabelValues("failure").Inc()
	return domain.ThreatReading{}, cycleErr
}

func (p *Pipeline) attempt(ctx context.Context, src Source) (domain.ThreatReading, *AttemptError) {
	resp, err := p.fetcher.Fetch(ctx, src.Descriptor)
	if err != nil {
		return domain.ThreatReading{}, &AttemptError{Source: src.Descriptor, Stage: StageFetch, Err: err}
	}

	res, ok := src.Parser.Parse(resp.Body)
	if !ok {
		return domain.ThreatReading{}, &AttemptError{Source: src.Descriptor, Stage: StageParse, Err: ErrNoLevel}
	}

	// A level outside the canonical set is treated exactly like "not found".
	reading, ok := domain.NewReading(res.Level, src.Descriptor, res.Match)
	if !ok {
		return domain.ThreatReading{}, &AttemptError{Source: src.Descriptor, Stage: StageParse, Err: ErrNoLevel}
	}

	if res.Match == domain.MatchLoose {
		p.logger.Warn("threat level taken from loose page scan",
			"source", src.Descriptor.Name, "level", reading.Level)
	}
	return reading, nil
}
