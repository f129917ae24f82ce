package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env            string
	ServiceName    string
	ServiceVersion string

	// FrontendOrigin is the single origin allowed by CORS. "*" means any.
	FrontendOrigin string

	// CookieFile is an optional pre-provisioned cookies.txt consumed by
	// yt-dlp. The file is treated as read-only and copied into each job
	// directory before use.
	CookieFile string

	OtelExporterOTLPEndpoint string
	SentryDSN                string

	Port string

	Extractor ExtractorConfig
}

// ExtractorConfig tunes the yt-dlp invocation. Loaded from config.yaml
// when present.
type ExtractorConfig struct {
	Binary          string `yaml:"binary"`
	AudioFormat     string `yaml:"audio_format"`
	AudioQuality    string `yaml:"audio_quality"`
	ThumbnailFormat string `yaml:"thumbnail_format"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

// Timeout returns the per-URL bound on the external process.
func (e ExtractorConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                      os.Getenv("ENV"),
		ServiceName:              os.Getenv("SERVICE_NAME"),
		ServiceVersion:           os.Getenv("SERVICE_VERSION"),
		FrontendOrigin:           os.Getenv("FRONTEND_ORIGIN"),
		CookieFile:               os.Getenv("COOKIE_FILE"),
		OtelExporterOTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		SentryDSN:                os.Getenv("SENTRY_DSN"),
		Port:                     os.Getenv("PORT"),
	}

	// Load from YAML file if available
	if err := cfg.LoadFromYAML("config.yaml"); err != nil {
		return nil, fmt.Errorf("failed to load YAML config: %w", err)
	}

	// Set defaults
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "tuneport-ferry"
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "1.0.0"
	}
	if cfg.FrontendOrigin == "" {
		cfg.FrontendOrigin = "*"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	cfg.SetExtractorDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func (c *Config) LoadFromYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File not found is not an error
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlConfig struct {
		Extractor ExtractorConfig `yaml:"extractor"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlConfig.Extractor.Binary != "" {
		c.Extractor.Binary = yamlConfig.Extractor.Binary
	}
	if yamlConfig.Extractor.AudioFormat != "" {
		c.Extractor.AudioFormat = yamlConfig.Extractor.AudioFormat
	}
	if yamlConfig.Extractor.AudioQuality != "" {
		c.Extractor.AudioQuality = yamlConfig.Extractor.AudioQuality
	}
	if yamlConfig.Extractor.ThumbnailFormat != "" {
		c.Extractor.ThumbnailFormat = yamlConfig.Extractor.ThumbnailFormat
	}
	if yamlConfig.Extractor.TimeoutSeconds > 0 {
		c.Extractor.TimeoutSeconds = yamlConfig.Extractor.TimeoutSeconds
	}

	return nil
}

func (c *Config) SetExtractorDefaults() {
	if c.Extractor.Binary == "" {
		c.Extractor.Binary = "yt-dlp"
	}
	if c.Extractor.AudioFormat == "" {
		c.Extractor.AudioFormat = "mp3"
	}
	if c.Extractor.AudioQuality == "" {
		c.Extractor.AudioQuality = "192"
	}
	if c.Extractor.ThumbnailFormat == "" {
		c.Extractor.ThumbnailFormat = "jpg"
	}
	if c.Extractor.TimeoutSeconds <= 0 {
		c.Extractor.TimeoutSeconds = 600
	}
}

// CookieFileAvailable reports whether the configured cookie file exists
// and is readable. Used by the health endpoint.
func (c *Config) CookieFileAvailable() bool {
	if c.CookieFile == "" {
		return false
	}
	info, err := os.Stat(c.CookieFile)
	return err == nil && !info.IsDir()
}

func (c *Config) validate() error {
	if c.Extractor.Binary == "" {
		return fmt.Errorf("extractor binary must not be empty")
	}
	if c.CookieFile != "" {
		if _, err := os.Stat(c.CookieFile); err != nil {
			return fmt.Errorf("COOKIE_FILE %q is not readable: %w", c.CookieFile, err)
		}
	}
	return nil
}
