package main

import (
	"log/slog"

	"github.com/couchcryptid/threat-level-monitor/internal/adapter/web"
	"github.com/couchcryptid/threat-level-monitor/internal/config"
	"github.com/couchcryptid/threat-level-monitor/internal/observability"
	"github.com/couchcryptid/threat-level-monitor/internal/pipeline"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "threatlevel",
		Short:         "Monitor the UK national terrorism threat level",
		Long:          "threatlevel fetches the MI5 threat level feed, falls back to the GOV.UK page, and republishes the current level as text and as a 1-5 gauge.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newCheckCmd())
	return root
}

// buildPipeline wires the fetch client and ordered sources from cfg.
func buildPipeline(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*pipeline.Pipeline, error) {
	sources, err := pipeline.SourcesFor(cfg.Sources(), cfg.LoosePageMatch)
	if err != nil {
		return nil, err
	}
	client := web.NewClient(cfg.FetchTimeout, logger, metrics)
	return pipeline.New(client, sources, logger, metrics), nil
}
