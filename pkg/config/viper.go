// Package config is responsible for initializing the application's configuration.
// It uses the Viper library to read settings from a config file, environment
// variables, and command-line flags, providing a unified configuration system.
package config

import (
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/outbreakmap/covid-geo-etl/internal/logging"
)

// CfgFile, when set before InitConfig runs, points Viper at an explicit
// config file instead of the search paths. The root command binds its
// --config flag to it.
var CfgFile string

// InitConfig initializes the application's configuration using Viper.
// It sets up default values, defines configuration search paths, and enables
// reading from environment variables. This function is designed to be called
// once at application startup to ensure that configuration is loaded and
// available to all other packages.
func InitConfig() {
	// --- Set Search Paths ---
	if CfgFile != "" {
		viper.SetConfigFile(CfgFile)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")                   // Current working directory
		viper.AddConfigPath("/etc/covid-geo-etl/") // System-wide configuration
		viper.AddConfigPath("$HOME/.covid-geo-etl")
	}

	// --- Set Defaults ---
	// Upstream endpoints. The sheet URLs are the published-as-CSV exports the
	// map project maintains; the ArcGIS query asks for every country row with
	// geometry suppressed.
	viper.SetDefault("sources.country_list_url", "https://docs.google.com/spreadsheets/d/e/2PACX-1vQDTcss-EA85HJQrEZF-PinI9uF6qNpBLo-E4O1hJRNFE0xrqD0geF-DqsC1i4x5uG-0GJvxHG8pC67/pub?gid=0&single=true&output=csv")
	viper.SetDefault("sources.population_url", "https://docs.google.com/spreadsheets/d/e/2PACX-1vQH1zxL8a82N_e3RWag6V6X4RkpM6E7gN-o2XKjJ8cN1FWMTGen_lATkvm8kjyNvJayJsqVHz5h3hI_/pub?gid=0&single=true&output=csv")
	viper.SetDefault("sources.arcgis_url", "https://services1.arcgis.com/0MSEUqKaxRlEPj5g/arcgis/rest/services/ncov_cases/FeatureServer/2/query?f=json&where=1%3D1&returnGeometry=false&spatialRel=esriSpatialRelIntersects&outFields=*&orderByFields=OBJECTID%20ASC&outSR=102100&resultOffset=0&resultRecordCount=250&cacheHint=true&quantizationParameters=%7B%22mode%22%3A%22edit%22%7D")
	viper.SetDefault("sources.daily_report_base_url", "https://github.com/CSSEGISandData/COVID-19/raw/master/csse_covid_19_data/csse_covid_19_daily_reports")
	viper.SetDefault("sources.worldometer_url", "https://www.worldometers.info/coronavirus/")
	viper.SetDefault("sources.manual_url", "")
	viper.SetDefault("sources.user_agent", "CovidGeoETL/1.0 (+https://github.com/outbreakmap/covid-geo-etl)")

	// Per-source timeouts. ArcGIS is the slowest endpoint by far.
	viper.SetDefault("sources.arcgis_timeout", "120s")
	viper.SetDefault("sources.daily_report_timeout", "60s")
	viper.SetDefault("sources.worldometer_timeout", "40s")
	viper.SetDefault("sources.sheet_timeout", "40s")

	// Merge and validation behavior.
	viper.SetDefault("merge.preferred_scrape_codes", []string{"SRB", "KGZ", "KAZ", "RUS", "UKR", "MZX", "UZB"})
	viper.SetDefault("validate.min_records", 100)
	viper.SetDefault("validate.exempt_codes", []string{"TKM", "PRK"})

	// Output projection.
	viper.SetDefault("output.locales", []string{"ru", "en"})
	viper.SetDefault("output.key_prefix", "covid_data_")

	viper.SetDefault("geo.world_map_path", "data/world-map-geo.json")

	// Persistence.
	viper.SetDefault("storage.provider", "redis")
	viper.SetDefault("storage.fallback_dir", ".")
	viper.SetDefault("redis.sentinel_addrs", []string{"redis-sentinel:26379"})
	viper.SetDefault("redis.master_name", "mymaster")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.dial_timeout", "5s")
	viper.SetDefault("redis.write_timeout", "10s")

	// Metrics are pushed at the end of a run; an empty URL disables the push.
	viper.SetDefault("metrics.pushgateway_url", "")
	viper.SetDefault("metrics.job", "covid-geo-etl")

	viper.SetDefault("logging.development", false)

	// --- Environment Variables ---
	viper.SetEnvPrefix("COVIDETL") // e.g., COVIDETL_REDIS_MASTER_NAME=mymaster
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Legacy environment names kept from the cron deployments that predate
	// the COVIDETL_ prefix.
	_ = viper.BindEnv("sources.manual_url", "COVIDETL_SOURCES_MANUAL_URL", "MANUAL_DATA_SOURCE_URL")
	_ = viper.BindEnv("redis.master_name", "COVIDETL_REDIS_MASTER_NAME", "REDIS_MASTER")

	// --- Read Config File ---
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; this is not a fatal error if we can proceed
			// with defaults and environment variables.
			logging.L.Warn("Config file not found; using defaults and environment variables.")
		} else {
			logging.L.Error("Error reading config file", zap.Error(err))
		}
	} else {
		logging.L.Info("Using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}
