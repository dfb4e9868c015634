package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"parking-gates/internal/logging"
	"parking-gates/internal/parking"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	OTel    OTelConfig    `mapstructure:"otel"`
	Parking ParkingConfig `mapstructure:"parking"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	LogLevel    string `mapstructure:"log_level"`   // empty: debug in development, info otherwise
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type OTelConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"exporter_otlp_endpoint"`
}

// ParkingConfig describes the facility layout in compact string form:
//
//	PARKING_SPOTS=1:two-wheeler,2:four-wheeler
//	PARKING_ENTRANCES=Entrance-1,Entrance-2
//	PARKING_EXITS=Exit-1:per-minute,Exit-2:per-hour
type ParkingConfig struct {
	Spots             string `mapstructure:"spots"`
	Entrances         string `mapstructure:"entrances"`
	Exits             string `mapstructure:"exits"`
	RatePerMinuteCent int64  `mapstructure:"rate_per_minute_cents"`
	RatePerHourCent   int64  `mapstructure:"rate_per_hour_cents"`
}

// Load reads an optional .env file in the working directory, then the
// environment.
func Load() (*Config, error) {
	return load(".env", false)
}

// LoadWithPath loads configuration from a specific .env file
func LoadWithPath(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, required bool) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil && required {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	if err := bindConfig(v, cfg); err != nil {
		return nil, fmt.Errorf("failed to bind config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "parking-gates")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "")

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "60s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("OTEL_SERVICE_NAME", "parking-gates")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318")

	v.SetDefault("PARKING_SPOTS", "1:two-wheeler,2:four-wheeler,3:four-wheeler,4:two-wheeler")
	v.SetDefault("PARKING_ENTRANCES", "Entrance-1,Entrance-2")
	v.SetDefault("PARKING_EXITS", "Exit-1:per-minute,Exit-2:per-hour")
	v.SetDefault("PARKING_RATE_PER_MINUTE_CENTS", int64(parking.DefaultRatePerMinute))
	v.SetDefault("PARKING_RATE_PER_HOUR_CENTS", int64(parking.DefaultRatePerHour))
}

// bindConfig reads flat env-style keys into the nested struct.
func bindConfig(v *viper.Viper, cfg *Config) error {
	cfg.App = AppConfig{
		Name:        v.GetString("APP_NAME"),
		Environment: v.GetString("APP_ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
	}

	cfg.Server = ServerConfig{
		Port:            v.GetString("SERVER_PORT"),
		ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
		WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
		IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
		ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
	}

	cfg.OTel = OTelConfig{
		ServiceName:  v.GetString("OTEL_SERVICE_NAME"),
		OTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	cfg.Parking = ParkingConfig{
		Spots:             v.GetString("PARKING_SPOTS"),
		Entrances:         v.GetString("PARKING_ENTRANCES"),
		Exits:             v.GetString("PARKING_EXITS"),
		RatePerMinuteCent: v.GetInt64("PARKING_RATE_PER_MINUTE_CENTS"),
		RatePerHourCent:   v.GetInt64("PARKING_RATE_PER_HOUR_CENTS"),
	}

	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("SERVER_PORT is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("SERVER_PORT must be numeric: %w", err)
	}
	if _, err := logging.ParseLevel(c.App.LogLevel, c.App.Environment); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.Parking.RatePerMinuteCent < 0 || c.Parking.RatePerHourCent < 0 {
		return errors.New("parking rates must not be negative")
	}
	if _, err := c.Layout(); err != nil {
		return err
	}
	return nil
}

func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		ServiceName: c.OTel.ServiceName,
		Environment: c.App.Environment,
		Level:       c.App.LogLevel,
	}
}

func (c *Config) TelemetryConfig() parking.TelemetryConfig {
	return parking.TelemetryConfig{
		ServiceName:  c.OTel.ServiceName,
		Environment:  c.App.Environment,
		OTLPEndpoint: c.OTel.OTLPEndpoint,
	}
}

// Layout converts the parking settings into a facility layout.
func (c *Config) Layout() (parking.Layout, error) {
	var layout parking.Layout

	for _, item := range splitList(c.Parking.Spots) {
		idStr, categoryStr, ok := strings.Cut(item, ":")
		if !ok {
			return layout, fmt.Errorf("PARKING_SPOTS: %q is not id:category", item)
		}
		id, err := strconv.Atoi(strings.TrimSpace(idStr))
		if err != nil {
			return layout, fmt.Errorf("PARKING_SPOTS: bad spot id %q: %w", idStr, err)
		}
		category, err := parking.ParseCategory(categoryStr)
		if err != nil {
			return layout, fmt.Errorf("PARKING_SPOTS: %w", err)
		}
		layout.Spots = append(layout.Spots, parking.SpotDef{ID: id, Category: category})
	}
	if len(layout.Spots) == 0 {
		return layout, errors.New("PARKING_SPOTS must define at least one spot")
	}

	layout.Entrances = splitList(c.Parking.Entrances)
	if len(layout.Entrances) == 0 {
		return layout, errors.New("PARKING_ENTRANCES must define at least one gate")
	}

	for _, item := range splitList(c.Parking.Exits) {
		id, policyName, ok := strings.Cut(item, ":")
		if !ok {
			return layout, fmt.Errorf("PARKING_EXITS: %q is not gate:policy", item)
		}
		policy, err := parking.NewPolicy(policyName, c.rateFor(policyName))
		if err != nil {
			return layout, fmt.Errorf("PARKING_EXITS: %w", err)
		}
		layout.Exits = append(layout.Exits, parking.ExitDef{ID: strings.TrimSpace(id), Policy: policy})
	}
	if len(layout.Exits) == 0 {
		return layout, errors.New("PARKING_EXITS must define at least one gate")
	}

	return layout, nil
}

func (c *Config) rateFor(policyName string) parking.Money {
	switch strings.ToLower(strings.TrimSpace(policyName)) {
	case parking.PolicyPerHour, "hourly", "hour":
		return parking.Money(c.Parking.RatePerHourCent)
	default:
		return parking.Money(c.Parking.RatePerMinuteCent)
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
