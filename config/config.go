package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const DefaultConfigPath = "config/config.yaml"

type Config struct {
	App     AppConfig     `yaml:"app"`
	Server  ServerConfig  `yaml:"server"`
	Backend BackendConfig `yaml:"backend"`
	Auth    AuthConfig    `yaml:"auth"`
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
	Sentry  SentryConfig  `yaml:"sentry"`
}

type AppConfig struct {
	Name    string `yaml:"name" validate:"required"`
	Version string `yaml:"version" validate:"required"`
	Env     string `yaml:"env" validate:"required,oneof=development staging production"`
}

type ServerConfig struct {
	Host         string `yaml:"host" validate:"required"`
	Port         string `yaml:"port" validate:"required,numeric"`
	ReadTimeout  int    `yaml:"read_timeout" split_words:"true" validate:"gte=1"`
	WriteTimeout int    `yaml:"write_timeout" split_words:"true" validate:"gte=1"`
	IdleTimeout  int    `yaml:"idle_timeout" split_words:"true" validate:"gte=1"`
	AllowOrigins string `yaml:"allow_origins" split_words:"true"`
	// PublicURL is the externally visible origin, used for OIDC redirects.
	PublicURL string `yaml:"public_url" split_words:"true" validate:"omitempty,url"`
}

// BackendConfig points at the weather backend serving /api/weather/*.
type BackendConfig struct {
	// BaseURL overrides the backend origin; empty means same-origin.
	BaseURL        string `yaml:"base_url" envconfig:"API_BASE" validate:"omitempty,url"`
	Timeout        int    `yaml:"timeout" validate:"gte=1"`
	MaxConcurrency int    `yaml:"max_concurrency" split_words:"true" validate:"gte=0"`
}

type AuthConfig struct {
	Mode         string   `yaml:"mode" validate:"oneof=none static client_credentials oidc"`
	StaticToken  string   `yaml:"static_token" split_words:"true" validate:"required_if=Mode static"`
	Issuer       string   `yaml:"issuer" validate:"required_if=Mode oidc,required_if=Mode client_credentials,omitempty,url"`
	ClientID     string   `yaml:"client_id" split_words:"true" validate:"required_if=Mode oidc,required_if=Mode client_credentials"`
	ClientSecret string   `yaml:"client_secret" split_words:"true"`
	Audience     string   `yaml:"audience"`
	Scopes       []string `yaml:"scopes"`
}

type CacheConfig struct {
	Driver     string        `yaml:"driver" validate:"oneof=memory redis"`
	TTL        time.Duration `yaml:"ttl" validate:"gt=0"`
	SessionTTL time.Duration `yaml:"session_ttl" split_words:"true" validate:"gt=0"`
	Redis      RedisConfig   `yaml:"redis"`
}

type RedisConfig struct {
	Address  string `yaml:"address" validate:"required_if=Enabled true"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	Enabled  bool   `yaml:"-" ignored:"true"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json"`
}

type SentryConfig struct {
	DSN string `yaml:"dsn"`
}

// ConfigProvider loads and validates configuration from a source.
type ConfigProvider interface {
	Load() (*Config, error)
	Validate(config *Config) error
}

type FileConfigProvider struct {
	path     string
	validate *validator.Validate
}

func NewFileConfigProvider(path string) *FileConfigProvider {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	return &FileConfigProvider{
		path:     path,
		validate: v,
	}
}

// NewConfig loads the configuration from the default YAML path and the environment.
func NewConfig() (*Config, error) {
	return NewConfigWithProvider(NewFileConfigProvider(DefaultConfigPath))
}

func NewConfigWithProvider(provider ConfigProvider) (*Config, error) {
	cnf, err := provider.Load()
	if err != nil {
		return nil, err
	}

	if err := provider.Validate(cnf); err != nil {
		return nil, err
	}

	return cnf, nil
}

// Load applies defaults, then the YAML file, then environment variables.
func (p *FileConfigProvider) Load() (*Config, error) {
	cnf := defaults()

	if err := p.loadFromFile(cnf); err != nil {
		return nil, err
	}

	if err := envconfig.Process("", cnf); err != nil {
		return nil, fmt.Errorf("error environment variable parsing: %w", err)
	}

	cnf.Cache.Redis.Enabled = cnf.Cache.Driver == "redis"

	return cnf, nil
}

func (p *FileConfigProvider) loadFromFile(cnf *Config) error {
	yamlData, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", p.path, err)
	}

	if err := yaml.Unmarshal(yamlData, cnf); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return nil
}

func (p *FileConfigProvider) Validate(cnf *Config) error {
	err := p.validate.Struct(cnf)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		msgs = append(msgs, describe(fe))
	}

	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "url":
		return field + " must be a valid URL"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			Name:    "weather-dashboard",
			Version: "1.0.0",
			Env:     "development",
		},
		Server: ServerConfig{
			Host:         "localhost",
			Port:         "3000",
			ReadTimeout:  10,
			WriteTimeout: 10,
			IdleTimeout:  120,
		},
		Backend: BackendConfig{
			Timeout: 30,
		},
		Auth: AuthConfig{
			Mode:   "none",
			Scopes: []string{"openid", "profile", "email"},
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        5 * time.Minute,
			SessionTTL: 24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Addr is the listen address of the dashboard host.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// PublicBaseURL is the origin browsers use to reach the dashboard.
func (c *Config) PublicBaseURL() string {
	if c.Server.PublicURL != "" {
		return strings.TrimRight(c.Server.PublicURL, "/")
	}
	return "http://" + c.Server.Host + ":" + c.Server.Port
}
