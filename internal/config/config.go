// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/prerna1001/pharma-press-tracker/internal/press"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"db"`
	Elastic   ElasticConfig   `mapstructure:"elastic"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	Query     QueryConfig     `mapstructure:"query"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Publisher PublisherConfig `mapstructure:"publisher"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// DBConfig controls access to the relational record store.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// ElasticConfig points at the search engine.
type ElasticConfig struct {
	Addresses     []string `mapstructure:"addresses"`
	Username      string   `mapstructure:"username"`
	Password      string   `mapstructure:"password"`
	Index         string   `mapstructure:"index"`
	ConfigIndex   string   `mapstructure:"config_index"`
	SkipTLSVerify bool     `mapstructure:"skip_tls_verify"`
}

// ScraperConfig governs the per-site scraping pipeline.
type ScraperConfig struct {
	CutoffDate      string        `mapstructure:"cutoff_date"`
	MaxRecords      int           `mapstructure:"max_records_per_site"`
	UserAgent       string        `mapstructure:"user_agent"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	RenderTimeout   time.Duration `mapstructure:"render_timeout"`
	RenderDomainQPS float64       `mapstructure:"render_domain_qps"`
}

// QueryConfig bounds the search API.
type QueryConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// ArchiveConfig selects where rendered pages are archived.
type ArchiveConfig struct {
	Provider  string `mapstructure:"provider"` // fs | gcs | noop
	Dir       string `mapstructure:"dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// PublisherConfig selects how refresh-completed events are published.
type PublisherConfig struct {
	Provider  string `mapstructure:"provider"` // pubsub | noop
	ProjectID string `mapstructure:"project_id"`
	TopicID   string `mapstructure:"topic_id"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PRESSTRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.timeout_seconds", 60)
	v.SetDefault("db.table", "press_releases")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("elastic.addresses", []string{"https://localhost:9200"})
	v.SetDefault("elastic.index", "press_releases")
	v.SetDefault("elastic.config_index", "press_releases_config")
	v.SetDefault("elastic.skip_tls_verify", true)
	v.SetDefault("scraper.cutoff_date", "2026-01-01")
	v.SetDefault("scraper.max_records_per_site", 100)
	v.SetDefault("scraper.user_agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0 Safari/537.36")
	v.SetDefault("scraper.request_timeout", 30*time.Second)
	v.SetDefault("scraper.render_timeout", 30*time.Second)
	v.SetDefault("scraper.render_domain_qps", 1.0)
	v.SetDefault("query.default_limit", 20)
	v.SetDefault("query.max_limit", 100)
	v.SetDefault("archive.provider", "noop")
	v.SetDefault("archive.dir", "pages")
	v.SetDefault("archive.prefix", "pages")
	v.SetDefault("publisher.provider", "noop")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Scraper.MaxRecords <= 0 {
		return fmt.Errorf("scraper.max_records_per_site must be > 0")
	}
	if c.Scraper.RequestTimeout <= 0 {
		return fmt.Errorf("scraper.request_timeout must be > 0")
	}
	if c.Scraper.RenderTimeout <= 0 {
		return fmt.Errorf("scraper.render_timeout must be > 0")
	}
	if _, err := press.ParseISODate(c.Scraper.CutoffDate); err != nil {
		return fmt.Errorf("scraper.cutoff_date: %w", err)
	}
	if c.Query.DefaultLimit <= 0 || c.Query.MaxLimit < c.Query.DefaultLimit {
		return fmt.Errorf("query limits must satisfy 0 < default_limit <= max_limit")
	}
	if c.Archive.Provider == "gcs" && c.Archive.GCSBucket == "" {
		return fmt.Errorf("archive.gcs_bucket must be set when archive.provider is gcs")
	}
	if c.Publisher.Provider == "pubsub" && (c.Publisher.ProjectID == "" || c.Publisher.TopicID == "") {
		return fmt.Errorf("publisher.project_id and publisher.topic_id must be set when publisher.provider is pubsub")
	}
	return nil
}

// Cutoff returns the parsed cutoff date. Validate guarantees it parses.
func (c Config) Cutoff() press.Date {
	d, _ := press.ParseISODate(c.Scraper.CutoffDate)
	return d
}
