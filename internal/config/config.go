// Package config loads application configuration from file and environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Dedupe      DedupeConfig      `yaml:"dedupe" mapstructure:"dedupe"`
	Scorer      ScorerConfig      `yaml:"scorer" mapstructure:"scorer"`
	Recalibrate RecalibrateConfig `yaml:"recalibrate" mapstructure:"recalibrate"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// DedupeConfig configures duplicate detection and resolution.
type DedupeConfig struct {
	// Similarity thresholds (percent). Short addresses get the stricter
	// bar because small edit distances swing the percentage hard.
	StrictThreshold int `yaml:"strict_threshold" mapstructure:"strict_threshold"`
	LooseThreshold  int `yaml:"loose_threshold" mapstructure:"loose_threshold"`
	ShortAddressLen int `yaml:"short_address_len" mapstructure:"short_address_len"`

	// Geographic proximity cutoff in meters.
	ProximityMeters float64 `yaml:"proximity_meters" mapstructure:"proximity_meters"`

	// Score bonus applied to a record that survives a merge.
	MergeBonus int `yaml:"merge_bonus" mapstructure:"merge_bonus"`

	// Worker count for the parallel pair scan; <=1 runs serially.
	Workers int `yaml:"workers" mapstructure:"workers"`

	// KnownCities restricts matching to the fixed municipality set.
	// Empty means no restriction.
	KnownCities []string `yaml:"known_cities" mapstructure:"known_cities"`
}

// ScorerConfig configures the composite lead score.
type ScorerConfig struct {
	ValuationWeight  float64 `yaml:"valuation_weight" mapstructure:"valuation_weight"`
	ConfidenceWeight float64 `yaml:"confidence_weight" mapstructure:"confidence_weight"`
	RecencyWeight    float64 `yaml:"recency_weight" mapstructure:"recency_weight"`
	EnrichmentBonus  float64 `yaml:"enrichment_bonus" mapstructure:"enrichment_bonus"`

	// ValuationCeiling is the valuation at which the valuation component
	// saturates.
	ValuationCeiling float64 `yaml:"valuation_ceiling" mapstructure:"valuation_ceiling"`

	// RecencyThresholdDays is the age at which the recency component
	// reaches zero.
	RecencyThresholdDays int `yaml:"recency_threshold_days" mapstructure:"recency_threshold_days"`
}

// RecalibrateConfig configures confidence recalibration.
type RecalibrateConfig struct {
	SignalPenalty      int     `yaml:"signal_penalty" mapstructure:"signal_penalty"`
	TradeBonus         int     `yaml:"trade_bonus" mapstructure:"trade_bonus"`
	LowValuation       float64 `yaml:"low_valuation" mapstructure:"low_valuation"`
	LowValuationCap    int     `yaml:"low_valuation_cap" mapstructure:"low_valuation_cap"`
	MidValuation       float64 `yaml:"mid_valuation" mapstructure:"mid_valuation"`
	MidValuationBonus  int     `yaml:"mid_valuation_bonus" mapstructure:"mid_valuation_bonus"`
	HighValuation      float64 `yaml:"high_valuation" mapstructure:"high_valuation"`
	HighValuationBonus int     `yaml:"high_valuation_bonus" mapstructure:"high_valuation_bonus"`
	MaintenanceCap     int     `yaml:"maintenance_cap" mapstructure:"maintenance_cap"`
	TriggerFloor       int     `yaml:"trigger_floor" mapstructure:"trigger_floor"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PERMITLEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "permitleads.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("dedupe.strict_threshold", 90)
	v.SetDefault("dedupe.loose_threshold", 85)
	v.SetDefault("dedupe.short_address_len", 20)
	v.SetDefault("dedupe.proximity_meters", 50)
	v.SetDefault("dedupe.merge_bonus", 15)
	v.SetDefault("dedupe.workers", 1)
	v.SetDefault("scorer.valuation_weight", 40)
	v.SetDefault("scorer.confidence_weight", 40)
	v.SetDefault("scorer.recency_weight", 15)
	v.SetDefault("scorer.enrichment_bonus", 5)
	v.SetDefault("scorer.valuation_ceiling", 1_000_000)
	v.SetDefault("scorer.recency_threshold_days", 90)
	v.SetDefault("recalibrate.signal_penalty", 12)
	v.SetDefault("recalibrate.trade_bonus", 5)
	v.SetDefault("recalibrate.low_valuation", 5_000)
	v.SetDefault("recalibrate.low_valuation_cap", 40)
	v.SetDefault("recalibrate.mid_valuation", 50_000)
	v.SetDefault("recalibrate.mid_valuation_bonus", 5)
	v.SetDefault("recalibrate.high_valuation", 100_000)
	v.SetDefault("recalibrate.high_valuation_bonus", 12)
	v.SetDefault("recalibrate.maintenance_cap", 30)
	v.SetDefault("recalibrate.trigger_floor", 35)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
