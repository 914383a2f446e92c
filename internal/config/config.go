package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rpggio/dynamic-activities/internal/platform"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Platform  PlatformConfig  `yaml:"platform"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"gte=1,lte=65535"`
}

type TransportConfig struct {
	Mode string `yaml:"mode" validate:"oneof=stdio http"`
}

type DBConfig struct {
	Path string `yaml:"path" validate:"required"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	// Path, when set, sends logs to a size-capped file instead of the console.
	Path string `yaml:"path"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
	// Tokens maps client name to bearer token.
	Tokens map[string]string `yaml:"tokens" validate:"required_if=Enabled true,dive,required"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace" validate:"required_if=Enabled true"`
}

// PlatformConfig describes the simulated device.
type PlatformConfig struct {
	OS                string `yaml:"os" validate:"oneof=ios android"`
	Version           string `yaml:"version" validate:"osversion"`
	ActivitiesEnabled bool   `yaml:"activities_enabled"`
	Entitled          bool   `yaml:"entitled"`
	Foreground        bool   `yaml:"foreground"`
	MaxPerApp         int    `yaml:"max_per_app" validate:"gte=0"`
	MaxGlobal         int    `yaml:"max_global" validate:"gte=0"`
	OtherActivities   int    `yaml:"other_activities" validate:"gte=0"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		DB: DBConfig{
			Path: "dynact.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "dynact",
		},
		Platform: PlatformConfig{
			OS:                string(platform.OSiOS),
			Version:           "18.2",
			ActivitiesEnabled: true,
			Entitled:          true,
			Foreground:        true,
			MaxPerApp:         5,
			MaxGlobal:         10,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("DYNACT_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("DYNACT_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("DYNACT_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid DYNACT_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("DYNACT_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if dbPath := os.Getenv("DYNACT_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("DYNACT_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("DYNACT_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if err := envBool("DYNACT_AUTH_ENABLED", &cfg.Auth.Enabled); err != nil {
		return err
	}
	if tokens := os.Getenv("DYNACT_AUTH_TOKENS"); tokens != "" {
		parsed, err := parseTokens(tokens)
		if err != nil {
			return fmt.Errorf("invalid DYNACT_AUTH_TOKENS: %w", err)
		}
		cfg.Auth.Tokens = parsed
	}
	if osName := os.Getenv("DYNACT_PLATFORM_OS"); osName != "" {
		cfg.Platform.OS = osName
	}
	if version := os.Getenv("DYNACT_PLATFORM_VERSION"); version != "" {
		cfg.Platform.Version = version
	}
	return envBool("DYNACT_PLATFORM_ENABLED", &cfg.Platform.ActivitiesEnabled)
}

func envBool(name string, dst *bool) error {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = v
	return nil
}

// parseTokens reads "client=token,client=token".
func parseTokens(raw string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		client, token, ok := strings.Cut(pair, "=")
		if !ok || client == "" || token == "" {
			return nil, fmt.Errorf("expected client=token, got %q", pair)
		}
		out[client] = token
	}
	return out, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("osversion", func(fl validator.FieldLevel) bool {
		_, err := platform.ParseVersion(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// TokenTable maps bearer token to client name.
func (a AuthConfig) TokenTable() map[string]string {
	out := make(map[string]string, len(a.Tokens))
	for client, token := range a.Tokens {
		out[token] = client
	}
	return out
}

// Info is the platform identity the simulator reports.
func (p PlatformConfig) Info() platform.Info {
	return platform.Info{
		OS:      platform.OS(p.OS),
		Version: platform.MustParseVersion(p.Version),
	}
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
