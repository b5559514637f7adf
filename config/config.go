// Package config loads service settings with viper from a YAML file and
// CHECKIN_ prefixed environment variables, e.g. CHECKIN_DYNAMO_TABLE_NAME.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/International-Combat-Archery-Alliance/event-checkin/validate"
	"github.com/spf13/viper"
)

const EnvPrefix = "CHECKIN"

type Config struct {
	Env      string        `mapstructure:"env"`
	LogLevel string        `mapstructure:"log_level"`
	Server   ServerConfig  `mapstructure:"server"`
	Dynamo   DynamoConfig  `mapstructure:"dynamo"`
	Email    EmailConfig   `mapstructure:"email"`
	Catalog  CatalogConfig `mapstructure:"catalog"`

	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DynamoConfig struct {
	TableName string `mapstructure:"table_name"`
	// Endpoint points the client at dynamodb-local. Empty uses AWS.
	Endpoint    string `mapstructure:"endpoint"`
	CreateTable bool   `mapstructure:"create_table"`
}

type EmailConfig struct {
	FromAddress string `mapstructure:"from_address"`
}

// CatalogConfig selects the confirmation messages. An SSM parameter wins over
// inline messages, and with neither the built-in catalog is used.
type CatalogConfig struct {
	SSMParameter string            `mapstructure:"ssm_parameter"`
	Messages     map[string]string `mapstructure:"messages"`
}

// TelemetryConfig controls trace export over OTLP/gRPC. Disabled tracing still
// creates spans but drops them.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Endpoint is host:port of the collector. Empty falls back to
	// OTEL_EXPORTER_OTLP_ENDPOINT and then localhost:4317.
	Endpoint    string `mapstructure:"endpoint"`
	Insecure    bool   `mapstructure:"insecure"`
	ServiceName string `mapstructure:"service_name"`
}

const (
	EnvLocal = "LOCAL"
	EnvProd  = "PROD"
)

// NewViper returns a viper instance with defaults and env binding set up.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("env", EnvLocal)
	v.SetDefault("log_level", "info")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"https://icaa.world"})
	v.SetDefault("dynamo.table_name", "EventCheckIn")
	v.SetDefault("dynamo.endpoint", "")
	v.SetDefault("dynamo.create_table", false)
	v.SetDefault("email.from_address", "info@icaa.world")
	v.SetDefault("catalog.ssm_parameter", "")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.insecure", false)
	v.SetDefault("telemetry.service_name", "event-checkin")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// ReadFile reads path into v. A missing path is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	return nil
}

func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Env = strings.ToUpper(cfg.Env)

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c Config) validate() error {
	var errs []error

	if c.Env != EnvLocal && c.Env != EnvProd {
		errs = append(errs, fmt.Errorf("env must be %s or %s, got %q", EnvLocal, EnvProd, c.Env))
	}
	if !validate.IsRequired(c.Server.Port) {
		errs = append(errs, errors.New("server.port is required"))
	}
	if !validate.IsRequired(c.Dynamo.TableName) {
		errs = append(errs, errors.New("dynamo.table_name is required"))
	}
	if c.Dynamo.Endpoint != "" && !validate.IsValidURL(c.Dynamo.Endpoint) {
		errs = append(errs, fmt.Errorf("dynamo.endpoint %q is not a URL", c.Dynamo.Endpoint))
	}
	if !validate.IsValidEmail(c.Email.FromAddress) {
		errs = append(errs, fmt.Errorf("email.from_address %q is not an email address", c.Email.FromAddress))
	}
	if c.Telemetry.Enabled && !validate.IsRequired(c.Telemetry.ServiceName) {
		errs = append(errs, errors.New("telemetry.service_name is required when telemetry is enabled"))
	}
	for _, origin := range c.Server.AllowedOrigins {
		if !validate.IsValidURL(origin) {
			errs = append(errs, fmt.Errorf("server.allowed_origins: %q is not a URL", origin))
		}
	}

	return errors.Join(errs...)
}
