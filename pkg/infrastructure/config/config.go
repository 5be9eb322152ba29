package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Environment names
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all configuration for a simulation run
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Demand     DemandConfig     `mapstructure:"demand"`
	Alerts     AlertConfig      `mapstructure:"alerts"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Export     ExportConfig     `mapstructure:"export"`
	Log        LogConfig        `mapstructure:"log"`
}

// SimulationConfig holds the run parameters
type SimulationConfig struct {
	Days            int    `mapstructure:"days" validate:"gte=1,lte=3650"`
	PickingCapacity int64  `mapstructure:"picking_capacity" validate:"gt=0"`
	Scenario        string `mapstructure:"scenario" validate:"oneof=normal slow_supplier seasonal_demand economic_lot"`
	Seed            uint64 `mapstructure:"seed"`
}

// DemandConfig bounds the demand generator's draws
type DemandConfig struct {
	MinOrders   int `mapstructure:"min_orders" validate:"gte=0"`
	MaxOrders   int `mapstructure:"max_orders" validate:"gtefield=MinOrders"`
	MinQuantity int `mapstructure:"min_quantity" validate:"gte=1"`
	MaxQuantity int `mapstructure:"max_quantity" validate:"gtefield=MinQuantity"`
	MaxLines    int `mapstructure:"max_lines" validate:"gte=1"`
}

// AlertConfig holds the service level thresholds
type AlertConfig struct {
	OTIFPct     float64 `mapstructure:"otif_pct" validate:"gte=0,lte=100"`
	FillRatePct float64 `mapstructure:"fill_rate_pct" validate:"gte=0,lte=100"`
}

// CatalogConfig selects the master data source. An empty Dir uses the
// built-in catalog.
type CatalogConfig struct {
	Dir string `mapstructure:"dir"`
}

// ExportConfig selects where run tables are written. Empty paths disable
// the corresponding export.
type ExportConfig struct {
	CSVDir      string `mapstructure:"csv_dir"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	MetricsPath string `mapstructure:"metrics_path"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level       string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Environment string `mapstructure:"environment" validate:"oneof=development production"`
}

// Load reads configuration from defaults, an optional yaml file and
// SUPPLYSIM_ environment variables, in increasing precedence. When path is
// empty a supplysim.yaml in ./config or the working directory is used if present.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SUPPLYSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("supplysim")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration produced by defaults alone
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("default config does not unmarshal: %v", err))
	}
	return &cfg
}

// Validate checks every field against its range
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("invalid config: %w", err)
		}
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("simulation.days", 30)
	v.SetDefault("simulation.picking_capacity", 2000)
	v.SetDefault("simulation.scenario", "normal")
	v.SetDefault("simulation.seed", 42)

	v.SetDefault("demand.min_orders", 10)
	v.SetDefault("demand.max_orders", 15)
	v.SetDefault("demand.min_quantity", 5)
	v.SetDefault("demand.max_quantity", 50)
	v.SetDefault("demand.max_lines", 3)

	v.SetDefault("alerts.otif_pct", 90.0)
	v.SetDefault("alerts.fill_rate_pct", 95.0)

	v.SetDefault("catalog.dir", "")

	v.SetDefault("export.csv_dir", "")
	v.SetDefault("export.sqlite_path", "")
	v.SetDefault("export.metrics_path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.environment", EnvDevelopment)
}
