package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Qualify/internal/scoring"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Report   ReportConfig   `yaml:"report"`
	Client   ClientConfig   `yaml:"client"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port               int      `yaml:"port" validate:"min=1,max=65535"`
	MetricsPort        int      `yaml:"metrics_port" validate:"min=1,max=65535,nefield=Port"`
	AdminToken         string   `yaml:"admin_token"`
	RequestTimeoutMs   int      `yaml:"request_timeout_ms" validate:"min=1"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute" validate:"min=0"`
	CORSOrigins        []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite postgres none"`
	URL    string `yaml:"url" validate:"required_if=Driver postgres"`
}

// HermesConfig enables event publishing when URL is set.
type HermesConfig struct {
	URL string `yaml:"url" validate:"omitempty,url"`
}

type ScoringConfig struct {
	MinTeachingYears int                          `yaml:"min_teaching_years" validate:"min=0"`
	MinTotalPoints   int                          `yaml:"min_total_points" validate:"min=0"`
	Language         string                       `yaml:"language" validate:"oneof=ar en"`
	Rules            map[string]scoring.PointRule `yaml:"rules"`
}

type ReportConfig struct {
	Application       string   `yaml:"application"`
	Version           string   `yaml:"version"`
	LegalBase         string   `yaml:"legal_base"`
	MinistryDecisions []string `yaml:"ministry_decisions"`
}

// ClientConfig configures the remote scoring client used by the CLI.
type ClientConfig struct {
	URL          string   `yaml:"url" validate:"required,url"`
	FallbackURLs []string `yaml:"fallback_urls" validate:"dive,url"`
	TimeoutMs    int      `yaml:"timeout_ms" validate:"min=1"`
	MaxRetries   int      `yaml:"max_retries" validate:"min=1,max=10"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutMs) * time.Millisecond
}

func (c *Config) ClientTimeout() time.Duration {
	return time.Duration(c.Client.TimeoutMs) * time.Millisecond
}

// Thresholds returns the configured eligibility minimums.
func (c *Config) Thresholds() scoring.Thresholds {
	return scoring.Thresholds{
		MinTeachingYears: c.Scoring.MinTeachingYears,
		MinTotalPoints:   c.Scoring.MinTotalPoints,
	}
}

func (c *Config) Language() scoring.Language {
	return scoring.ParseLanguage(c.Scoring.Language)
}

// PointTable returns the regulation table with configured rule overrides applied.
func (c *Config) PointTable() (scoring.PointTable, error) {
	return scoring.DefaultPointTable().WithOverrides(c.Scoring.Rules)
}

// Engine builds the scoring engine described by the configuration.
func (c *Config) Engine() (*scoring.Engine, error) {
	table, err := c.PointTable()
	if err != nil {
		return nil, err
	}
	return scoring.NewEngine(table, c.Thresholds(), c.Language()), nil
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               8700,
			MetricsPort:        8701,
			RequestTimeoutMs:   10000,
			RateLimitPerMinute: 120,
			CORSOrigins:        []string{"*"},
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
		},
		Scoring: ScoringConfig{
			MinTeachingYears: 3,
			MinTotalPoints:   350,
			Language:         "ar",
		},
		Report: ReportConfig{
			Application:       "تطبيق حساب نقاط التأهيل الجامعي للأستاذ الباحث",
			Version:           "1.0.0",
			LegalBase:         "شبكة التقييم الخاصة بالأستاذ الباحث",
			MinistryDecisions: []string{"804/2021", "493/2022"},
		},
		Client: ClientConfig{
			URL:        "http://localhost:8700",
			TimeoutMs:  10000,
			MaxRetries: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and that rule overrides name known rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.PointTable(); err != nil {
		return fmt.Errorf("invalid config: scoring.rules: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("QUALIFY_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("QUALIFY_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("QUALIFY_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("QUALIFY_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("QUALIFY_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("QUALIFY_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("QUALIFY_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("QUALIFY_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("QUALIFY_LANGUAGE"); v != "" {
		cfg.Scoring.Language = v
	}
	if v := os.Getenv("QUALIFY_MIN_TEACHING_YEARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.MinTeachingYears = n
		}
	}
	if v := os.Getenv("QUALIFY_MIN_TOTAL_POINTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.MinTotalPoints = n
		}
	}
	if v := os.Getenv("QUALIFY_CLIENT_URL"); v != "" {
		cfg.Client.URL = v
	}
	if v := os.Getenv("QUALIFY_CLIENT_FALLBACK_URLS"); v != "" {
		cfg.Client.FallbackURLs = splitList(v)
	}
	if v := os.Getenv("QUALIFY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("QUALIFY_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NewLogger builds the process logger from the logging section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch c.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Logging.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
