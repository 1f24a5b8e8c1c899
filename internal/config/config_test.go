package config

import (
	"testing"
	"time"

	"github.com/couchcryptid/threat-level-monitor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testFeedURL = "https://feeds.example.test/threat.xml"
	testPageURL = "https://pages.example.test/threat"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultFeedURL, cfg.FeedURL)
	assert.Equal(t, DefaultPageURL, cfg.PageURL)
	assert.Equal(t, 30*time.Minute, cfg.PollInterval)
	assert.Equal(t, 20*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.LoosePageMatch)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "uk-threat-level", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("FEED_URL", testFeedURL)
	t.Setenv("PAGE_URL", testPageURL)
	t.Setenv("POLL_INTERVAL", "5m")
	t.Setenv("FETCH_TIMEOUT", "7s")
	t.Setenv("LOOSE_PAGE_MATCH", "false")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "threat-readings")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testFeedURL, cfg.FeedURL)
	assert.Equal(t, testPageURL, cfg.PageURL)
	assert.Equal(t, 5*time.Minute, cfg.PollInterval)
	assert.Equal(t, 7*time.Second, cfg.FetchTimeout)
	assert.False(t, cfg.LoosePageMatch)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "threat-readings", cfg.KafkaTopic)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidPollInterval(t *testing.T) {
	for _, v := range []string{"soon", "0s", "-5m"} {
		t.Setenv("POLL_INTERVAL", v)
		_, err := Load()
		require.Error(t, err, v)
		assert.Contains(t, err.Error(), "POLL_INTERVAL")
	}
}

func TestLoad_InvalidFetchTimeout(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_TIMEOUT")
}

func TestLoad_InvalidLoosePageMatch(t *testing.T) {
	t.Setenv("LOOSE_PAGE_MATCH", "sometimes")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOOSE_PAGE_MATCH")
}

func TestLoad_InvalidSourceURLs(t *testing.T) {
	t.Setenv("FEED_URL", "ftp://mi5.gov.uk/feed.xml")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FEED_URL")

	t.Setenv("FEED_URL", testFeedURL)
	t.Setenv("PAGE_URL", "/relative/path")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAGE_URL")
}

func TestConfig_Sources(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	sources := cfg.Sources()
	require.Len(t, sources, 2)
	assert.Equal(t, domain.SourceStructuredFeed, sources[0].Kind)
	assert.Equal(t, DefaultFeedURL, sources[0].URL)
	assert.Equal(t, domain.SourceUnstructuredPage, sources[1].Kind)
	assert.Equal(t, DefaultPageURL, sources[1].URL)
}
