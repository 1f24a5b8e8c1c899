package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/threat-level-monitor/internal/domain"
	"github.com/couchcryptid/threat-level-monitor/internal/observability"
	"github.com/couchcryptid/threat-level-monitor/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type scriptedCycler struct {
	mu      sync.Mutex
	results []cycleResult
	calls   atomic.Int64
}

type cycleResult struct {
	reading domain.ThreatReading
	err     error
}

func (c *scriptedCycler) RunCycle(_ context.Context) (domain.ThreatReading, error) {
	n := int(c.calls.Add(1)) - 1
	c.mu.Lock()
	defer c.mu.Unlock()
	if n >= len(c.results) {
		n = len(c.results) - 1
	}
	return c.results[n].reading, c.results[n].err
}

type recordingSink struct {
	mu       sync.Mutex
	readings []domain.ThreatReading
	err      error
}

func (s *recordingSink) Publish(_ context.Context, r domain.ThreatReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = append(s.readings, r)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.readings)
}

func reading(level domain.Level, source string) domain.ThreatReading {
	return domain.ThreatReading{Level: level, Ordinal: level.Ordinal(), Source: source, Match: domain.MatchFeed}
}

var errBothExhausted = errors.New("all sources exhausted: mi5-feed: boom; gov-uk-page: boom")

// --- tests ---

func TestScheduler_RunOnce_StoresReadingAndPublishes(t *testing.T) {
	cycler := &scriptedCycler{results: []cycleResult{{reading: reading(domain.LevelSevere, "feed")}}}
	sink := &recordingSink{}
	metrics := observability.NewMetricsForTesting()
	fakeClock := clockwork.NewFakeClockAt(time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC))

	s := pipeline.NewScheduler(cycler, time.Minute, fakeClock, discardLogger(), metrics, sink)

	require.Error(t, s.CheckReadiness(context.Background()))

	got, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.LevelSevere, got.Level)

	snap := s.Snapshot()
	assert.True(t, snap.HasReading)
	assert.False(t, snap.Stale())
	assert.Equal(t, fakeClock.Now(), snap.LastAttempt)
	assert.Equal(t, 1, sink.count())
	require.NoError(t, s.CheckReadiness(context.Background()))

	assert.InDelta(t, 4, testutil.ToFloat64(metrics.CurrentOrdinal), 0)
	assert.InDelta(t, float64(fakeClock.Now().Unix()), testutil.ToFloat64(metrics.LastSuccessSeconds), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ReadingInfo.WithLabelValues("SEVERE", "feed", "feed")), 0)
}

func TestScheduler_FailureKeepsLastGoodReading(t *testing.T) {
	cycler := &scriptedCycler{results: []cycleResult{
		{reading: reading(domain.LevelSubstantial, "feed")},
		{err: errBothExhausted},
		{reading: reading(domain.LevelModerate, "page")},
	}}
	sink := &recordingSink{}
	s := pipeline.NewScheduler(cycler, time.Minute, clockwork.NewFakeClock(), discardLogger(), observability.NewMetricsForTesting(), sink)

	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	_, err = s.RunOnce(context.Background())
	require.ErrorIs(t, err, errBothExhausted)

	snap := s.Snapshot()
	assert.True(t, snap.HasReading)
	assert.Equal(t, domain.LevelSubstantial, snap.Reading.Level, "failed cycle must not replace the reading")
	assert.Equal(t, errBothExhausted.Error(), snap.LastError)
	assert.True(t, snap.Stale())
	assert.Equal(t, 1, sink.count(), "failures are never published")

	_, err = s.RunOnce(context.Background())
	require.NoError(t, err)
	snap = s.Snapshot()
	assert.Equal(t, domain.LevelModerate, snap.Reading.Level)
	assert.Empty(t, snap.LastError)
	assert.False(t, snap.Stale())
}

func TestScheduler_FailureBeforeFirstReading(t *testing.T) {
	cycler := &scriptedCycler{results: []cycleResult{{err: errBothExhausted}}}
	s := pipeline.NewScheduler(cycler, time.Minute, clockwork.NewFakeClock(), discardLogger(), observability.NewMetricsForTesting())

	_, err := s.RunOnce(context.Background())
	require.Error(t, err)

	snap := s.Snapshot()
	assert.False(t, snap.HasReading)
	assert.False(t, snap.Stale())

	err = s.CheckReadiness(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all sources exhausted")
}

func TestScheduler_PublishErrorDoesNotFailCycle(t *testing.T) {
	cycler := &scriptedCycler{results: []cycleResult{{reading: reading(domain.LevelLow, "feed")}}}
	sink := &recordingSink{err: errors.New("broker unavailable")}
	metrics := observability.NewMetricsForTesting()
	s := pipeline.NewScheduler(cycler, time.Minute, clockwork.NewFakeClock(), discardLogger(), metrics, sink)

	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, s.Snapshot().HasReading)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.PublishErrors), 0)
}

func TestScheduler_Run_EagerThenInterval(t *testing.T) {
	cycler := &scriptedCycler{results: []cycleResult{{reading: reading(domain.LevelSubstantial, "feed")}}}
	metrics := observability.NewMetricsForTesting()
	fakeClock := clockwork.NewFakeClock()
	s := pipeline.NewScheduler(cycler, 30*time.Minute, fakeClock, discardLogger(), metrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return cycler.calls.Load() == 1 }, time.Second, 5*time.Millisecond,
		"first cycle runs immediately")

	blockCtx, blockCancel := context.WithTimeout(ctx, time.Second)
	defer blockCancel()
	require.NoError(t, fakeClock.BlockUntilContext(blockCtx, 1))

	fakeClock.Advance(29 * time.Minute)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(1), cycler.calls.Load(), "no cycle before the interval elapses")

	fakeClock.Advance(time.Minute)
	require.Eventually(t, func() bool { return cycler.calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SchedulerRunning), 0)

	cancel()
	require.NoError(t, <-done)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.SchedulerRunning), 0)
}

func TestNewScheduler_Defaults(t *testing.T) {
	cycler := &scriptedCycler{results: []cycleResult{{err: errBothExhausted}}}
	s := pipeline.NewScheduler(cycler, 0, nil, discardLogger(), observability.NewMetricsForTesting())
	require.NotNil(t, s)
	assert.Error(t, s.CheckReadiness(context.Background()))
}
