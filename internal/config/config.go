package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/couchcryptid/threat-level-monitor/internal/domain"
)

const (
	DefaultFeedURL = "https://www.mi5.gov.uk/UKThreatLevel/UKThreatLevel.xml"
	DefaultPageURL = "https://www.gov.uk/terrorism-national-emergency"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	FeedURL        string
	PageURL        string
	PollInterval   time.Duration
	FetchTimeout   time.Duration
	LoosePageMatch bool

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka publishing is disabled when no brokers are configured.
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	pollInterval, err := parsePositiveDuration("POLL_INTERVAL", "30m")
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "20s")
	if err != nil {
		return nil, err
	}

	loose := true
	if v := os.Getenv("LOOSE_PAGE_MATCH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("invalid LOOSE_PAGE_MATCH")
		}
		loose = b
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		FeedURL:         sharedcfg.EnvOrDefault("FEED_URL", DefaultFeedURL),
		PageURL:         sharedcfg.EnvOrDefault("PAGE_URL", DefaultPageURL),
		PollInterval:    pollInterval,
		FetchTimeout:    fetchTimeout,
		LoosePageMatch:  loose,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		KafkaBrokers:    brokers,
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "uk-threat-level"),
	}

	if !validURL(cfg.FeedURL) {
		return nil, errors.New("FEED_URL must be an absolute http(s) URL")
	}
	if !validURL(cfg.PageURL) {
		return nil, errors.New("PAGE_URL must be an absolute http(s) URL")
	}
	if cfg.KafkaEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether readings should be published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Sources returns the fetch targets in attempt order: the structured feed
// first, then the unstructured page.
func (c *Config) Sources() []domain.SourceDescriptor {
	return []domain.SourceDescriptor{
		{Name: "mi5-feed", URL: c.FeedURL, Kind: domain.SourceStructuredFeed},
		{Name: "gov-uk-page", URL: c.PageURL, Kind: domain.SourceUnstructuredPage},
	}
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
