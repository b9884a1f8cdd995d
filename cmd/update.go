// Package cmd defines and implements the CLI commands for the covid-geo-etl executable.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/outbreakmap/covid-geo-etl/internal/countries"
	"github.com/outbreakmap/covid-geo-etl/internal/dataset"
	"github.com/outbreakmap/covid-geo-etl/internal/geo"
	"github.com/outbreakmap/covid-geo-etl/internal/metrics"
	"github.com/outbreakmap/covid-geo-etl/internal/pipeline"
	"github.com/outbreakmap/covid-geo-etl/internal/source"
)

// newUpdateCmd creates and configures the 'update' subcommand. It runs one
// complete fetch-merge-publish pass and exits; scheduling is left to cron or
// the container orchestrator.
func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Runs one fetch-merge-publish pass",
		Long: `Fetches case counts from the configured upstream feeds, merges them by
country, joins population data, and publishes one localized GeoJSON
FeatureCollection per locale to the configured store.`,

		RunE: runUpdateCommand,
	}
	return cmd
}

func runUpdateCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	cfg := appInstance.GetConfig()
	log := appInstance.GetLogger()
	clock := appInstance.GetClock()
	start := clock.Now()

	worldMap, err := geo.LoadWorldMap(cfg.Geo.WorldMapPath)
	if err != nil {
		return fmt.Errorf("load world map: %w", err)
	}
	log.Info("world map loaded",
		zap.String("path", cfg.Geo.WorldMapPath),
		zap.Int("outlines", worldMap.Len()))

	registry := countries.NewClient(
		cfg.Sources.CountryListURL, cfg.Sources.SheetTimeout, cfg.Sources.UserAgent)

	feeds := func(reg *countries.Registry) pipeline.Feeds {
		f := pipeline.Feeds{
			Primary: source.NewArcGIS(
				cfg.Sources.ArcGISURL, cfg.Sources.ArcGISTimeout, cfg.Sources.UserAgent, reg, log),
			Daily: source.NewDailyReport(
				cfg.Sources.DailyReportBaseURL, cfg.Sources.DailyReportTimeout, cfg.Sources.UserAgent, reg, clock, log),
			Scraped: source.NewWorldometer(
				cfg.Sources.WorldometerURL, cfg.Sources.WorldometerTimeout, cfg.Sources.UserAgent, reg, clock, log),
			Population: source.NewPopulation(
				cfg.Sources.PopulationURL, cfg.Sources.SheetTimeout, cfg.Sources.UserAgent, reg, log),
		}
		if cfg.Sources.ManualURL != "" {
			f.Overrides = source.NewManual(
				cfg.Sources.ManualURL, cfg.Sources.SheetTimeout, cfg.Sources.UserAgent, reg, log)
		}
		return f
	}

	p := pipeline.New(registry, feeds, worldMap,
		appInstance.GetStorage(), appInstance.GetFallback(),
		pipeline.Options{
			Locales:   cfg.Output.Locales,
			KeyPrefix: cfg.Output.KeyPrefix,
			Merge:     dataset.MergeOptions{PreferredScrapeCodes: cfg.Merge.PreferredScrapeCodes},
			Validate: dataset.ValidateOptions{
				MinRecords:  cfg.Validate.MinRecords,
				ExemptCodes: cfg.Validate.ExemptCodes,
			},
		},
		clock, log)

	result, runErr := p.Run(cmd.Context())
	if runErr != nil {
		metrics.ObserveRun("failed", clock.Now().Sub(start))
		pushMetrics(appInstance)
		return fmt.Errorf("run update: %w", runErr)
	}

	metrics.ObserveRun(result.Status(), result.Elapsed)
	pushMetrics(appInstance)

	log.Info("update finished",
		zap.String("status", result.Status()),
		zap.Int("records", result.Records),
		zap.Any("artifact_bytes", result.Artifacts),
		zap.Duration("elapsed", result.Elapsed))
	return nil
}

// pushMetrics delivers the run's metrics to the Pushgateway when one is
// configured. A one-shot job has no scrapeable endpoint, so push is the only
// way these counters survive the process.
func pushMetrics(appInstance App) {
	cfg := appInstance.GetConfig()
	if err := metrics.Push(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
		appInstance.GetLogger().Warn("metrics push failed", zap.Error(err))
	}
}
