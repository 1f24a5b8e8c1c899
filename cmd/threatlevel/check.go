package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/couchcryptid/threat-level-monitor/internal/config"
	"github.com/couchcryptid/threat-level-monitor/internal/domain"
	"github.com/couchcryptid/threat-level-monitor/internal/observability"
	"github.com/spf13/cobra"
)

type checkOutput struct {
	Reading *domain.ThreatReading `json:"reading,omitempty"`
	Sensors []domain.Sensor       `json:"sensors,omitempty"`
	Error   string                `json:"error,omitempty"`
}

func newCheckCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a single update cycle and print the reading as JSON",
		Long:  "check runs one fetch-parse cycle against the configured sources, prints the reading (or the failure) as JSON, and exits non-zero when no level could be determined.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger := observability.NewLoggerTo(os.Stderr, logLevel, "text")
			p, err := buildPipeline(cfg, logger, observability.NewUnregisteredMetrics())
			if err != nil {
				return err
			}

			out := checkOutput{}
			reading, cycleErr := p.RunCycle(cmd.Context())
			if cycleErr != nil {
				out.Error = cycleErr.Error()
			} else {
				out.Reading = &reading
				out.Sensors = domain.Sensors(reading)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}
			return cycleErr
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level written to stderr (debug, info, warn, error)")
	return cmd
}
