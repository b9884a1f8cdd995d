// Package config loads and validates typed configuration via Viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config captures every configuration knob that influences an ETL run.
// All values originate from Viper so the job can be configured via a file,
// env vars, or CLI flags.
type Config struct {
	Sources  SourcesConfig  `mapstructure:"sources"`
	Merge    MergeConfig    `mapstructure:"merge"`
	Validate ValidateConfig `mapstructure:"validate"`
	Output   OutputConfig   `mapstructure:"output"`
	Geo      GeoConfig      `mapstructure:"geo"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SourcesConfig holds the upstream endpoints and per-source timeouts.
type SourcesConfig struct {
	CountryListURL     string        `mapstructure:"country_list_url"`
	PopulationURL      string        `mapstructure:"population_url"`
	ArcGISURL          string        `mapstructure:"arcgis_url"`
	DailyReportBaseURL string        `mapstructure:"daily_report_base_url"`
	WorldometerURL     string        `mapstructure:"worldometer_url"`
	ManualURL          string        `mapstructure:"manual_url"`
	UserAgent          string        `mapstructure:"user_agent"`
	ArcGISTimeout      time.Duration `mapstructure:"arcgis_timeout"`
	DailyReportTimeout time.Duration `mapstructure:"daily_report_timeout"`
	WorldometerTimeout time.Duration `mapstructure:"worldometer_timeout"`
	SheetTimeout       time.Duration `mapstructure:"sheet_timeout"`
}

// MergeConfig governs source precedence during the merge step.
type MergeConfig struct {
	// PreferredScrapeCodes are country codes for which the scraped table
	// overrides data already present, not only fills gaps.
	PreferredScrapeCodes []string `mapstructure:"preferred_scrape_codes"`
}

// ValidateConfig bounds the merged record set before persistence.
type ValidateConfig struct {
	MinRecords  int      `mapstructure:"min_records"`
	ExemptCodes []string `mapstructure:"exempt_codes"`
}

// OutputConfig controls the per-locale projection.
type OutputConfig struct {
	Locales   []string `mapstructure:"locales"`
	KeyPrefix string   `mapstructure:"key_prefix"`
}

// GeoConfig locates the world map geometry file.
type GeoConfig struct {
	WorldMapPath string `mapstructure:"world_map_path"`
}

// StorageConfig selects the primary persistence backend.
type StorageConfig struct {
	Provider    string `mapstructure:"provider"`
	FallbackDir string `mapstructure:"fallback_dir"`
}

// RedisConfig holds Sentinel connection parameters.
type RedisConfig struct {
	SentinelAddrs []string      `mapstructure:"sentinel_addrs"`
	MasterName    string        `mapstructure:"master_name"`
	Password      string        `mapstructure:"password"`
	DialTimeout   time.Duration `mapstructure:"dial_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
}

// MetricsConfig configures the end-of-run Pushgateway push.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from the given Viper instance.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks for obviously bad configuration combinations.
func (c Config) validate() error {
	if c.Sources.CountryListURL == "" {
		return fmt.Errorf("sources.country_list_url must be set")
	}
	if c.Sources.PopulationURL == "" {
		return fmt.Errorf("sources.population_url must be set")
	}
	if c.Sources.ArcGISURL == "" {
		return fmt.Errorf("sources.arcgis_url must be set")
	}
	if c.Sources.DailyReportBaseURL == "" {
		return fmt.Errorf("sources.daily_report_base_url must be set")
	}
	if c.Sources.WorldometerURL == "" {
		return fmt.Errorf("sources.worldometer_url must be set")
	}
	if c.Sources.UserAgent == "" {
		return fmt.Errorf("sources.user_agent must be set")
	}
	if c.Sources.ArcGISTimeout <= 0 || c.Sources.DailyReportTimeout <= 0 ||
		c.Sources.WorldometerTimeout <= 0 || c.Sources.SheetTimeout <= 0 {
		return fmt.Errorf("source timeouts must be > 0")
	}
	if c.Validate.MinRecords < 0 {
		return fmt.Errorf("validate.min_records must be >= 0")
	}
	if len(c.Output.Locales) == 0 {
		return fmt.Errorf("output.locales must include at least one locale")
	}
	if c.Output.KeyPrefix == "" {
		return fmt.Errorf("output.key_prefix must be set")
	}
	if c.Geo.WorldMapPath == "" {
		return fmt.Errorf("geo.world_map_path must be set")
	}
	switch c.Storage.Provider {
	case "redis", "local", "noop":
	default:
		return fmt.Errorf("storage.provider must be one of redis, local, noop; got %q", c.Storage.Provider)
	}
	if c.Storage.Provider == "redis" {
		if len(c.Redis.SentinelAddrs) == 0 {
			return fmt.Errorf("redis.sentinel_addrs must include at least one address")
		}
		if c.Redis.MasterName == "" {
			return fmt.Errorf("redis.master_name must be set")
		}
	}
	if c.Storage.FallbackDir == "" {
		return fmt.Errorf("storage.fallback_dir must be set")
	}
	return nil
}
