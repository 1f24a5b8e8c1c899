package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/threat-level-monitor/internal/domain"
	"github.com/couchcryptid/threat-level-monitor/internal/observability"
	"github.com/jonboulle/clockwork"
)

// DefaultInterval is the polling period between update cycles.
const DefaultInterval = 30 * time.Minute

// Cycler runs one update cycle.
type Cycler interface {
	RunCycle(ctx context.Context) (domain.ThreatReading, error)
}

// Sink receives every successful reading, e.g. a Kafka topic.
type Sink interface {
	Publish(ctx context.Context, r domain.ThreatReading) error
}

// Scheduler invokes a Cycler once at startup and then on a fixed interval,
// keeping the last known good reading for readers.
type Scheduler struct {
	cycler   Cycler
	interval time.Duration
	clock    clockwork.Clock
	sinks    []Sink
	logger   *slog.Logger
	metrics  *observability.Metrics
	cell     readingCell
}

// NewScheduler creates a Scheduler. A non-positive interval uses DefaultInterval
// and a nil clock uses the real clock.
func NewScheduler(c Cycler, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, sinks ...Sink) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		cycler:   c,
		interval: interval,
		clock:    clock,
		sinks:    sinks,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run executes one cycle immediately, then one per interval until ctx is cancelled.
// Cycles never overlap; ticks that arrive during a slow cycle are dropped.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)
	s.metrics.SchedulerRunning.Set(1)
	defer s.metrics.SchedulerRunning.Set(0)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	_, _ = s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			_, _ = s.RunOnce(ctx)
		}
	}
}

// RunOnce runs a single cycle, records its outcome and fans a success out to
// every sink. A failure leaves the previous reading in place.
func (s *Scheduler) RunOnce(ctx context.Context) (domain.ThreatReading, error) {
	reading, err := s.cycler.RunCycle(ctx)
	now := s.clock.Now()

	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			s.logger.Info("update cycle abandoned", "reason", ctx.Err())
			return domain.ThreatReading{}, err
		}
		s.cell.storeFailure(err, now)
		s.logger.Error("update cycle failed", "error", err, "stale", s.cell.load().Stale())
		return domain.ThreatReading{}, err
	}

	s.cell.storeReading(reading, now)
	s.exportGauges(reading, now)
	s.publish(ctx, reading)
	return reading, nil
}

// Snapshot returns the current state for readers.
func (s *Scheduler) Snapshot() Snapshot {
	return s.cell.load()
}

// CheckReadiness returns nil once at least one reading has been produced.
func (s *Scheduler) CheckReadiness(_ context.Context) error {
	snap := s.cell.load()
	if !snap.HasReading {
		if snap.LastError != "" {
			return errors.New("no threat level reading yet: " + snap.LastError)
		}
		return errors.New("no threat level reading yet")
	}
	return nil
}

func (s *Scheduler) exportGauges(r domain.ThreatReading, now time.Time) {
	s.metrics.CurrentOrdinal.Set(float64(r.Ordinal))
	s.metrics.LastSuccessSeconds.Set(float64(now.Unix()))
	s.metrics.ReadingInfo.Reset()
	s.metrics.ReadingInfo.WithLabelValues(r.Level.String(), r.Source, string(r.Match)).Set(1)
}

func (s *Scheduler) publish(ctx context.Context, r domain.ThreatReading) {
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, r); err != nil {
			s.metrics.PublishErrors.Inc()
			s.logger.Warn("publish reading failed", "error", err, "level", r.Level)
		}
	}
}
