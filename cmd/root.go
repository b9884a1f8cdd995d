package cmd

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/outbreakmap/covid-geo-etl/internal/app"
	internalconfig "github.com/outbreakmap/covid-geo-etl/internal/config"
	"github.com/outbreakmap/covid-geo-etl/internal/logging"
	"github.com/outbreakmap/covid-geo-etl/internal/storage"
	"github.com/outbreakmap/covid-geo-etl/pkg/config"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application surface commands use. It lets tests inject a
// mock container.
type App interface {
	Close()
	GetLogger() *zap.Logger
	GetConfig() internalconfig.Config
	GetStorage() storage.Provider
	GetFallback() storage.Provider
	GetClock() clockwork.Clock
	GetRunID() string
}

// newApp is the application factory. It is a variable so tests can replace
// it with a mock factory.
var newApp = func(ctx context.Context, cfg internalconfig.Config) (App, error) {
	return app.NewApp(ctx, cfg)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "covid-geo-etl",
		Short: "Builds localized COVID-19 GeoJSON snapshots for the outbreak map.",
		Long: `covid-geo-etl fetches worldwide COVID-19 case counts from several
upstream feeds, merges them by country, joins population data, and publishes
one GeoJSON FeatureCollection per locale to Redis for the map frontend.`,

		// Runs after Viper has loaded configuration but before the
		// subcommand's RunE; builds and injects the service container.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := internalconfig.Load(viper.GetViper())
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logging.InitLogger(cfg.Logging.Development)

			appInstance, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		// Shuts services down after the subcommand returns.
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cobra.OnInitialize(config.InitConfig)

	cmd.PersistentFlags().StringVar(&config.CfgFile, "config", "", "config file (default searches ., /etc/covid-geo-etl, $HOME/.covid-geo-etl)")

	cmd.AddCommand(newUpdateCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	logging.InitLogger(false)

	if err := newRootCmd().Execute(); err != nil {
		logging.L.Fatal("Command execution failed", zap.Error(err))
	}
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return appInstance, nil
}
