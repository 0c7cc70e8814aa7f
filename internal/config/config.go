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
	Directory  DirectoryConfig  `yaml:"directory" mapstructure:"directory"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Firecrawl  FirecrawlConfig  `yaml:"firecrawl" mapstructure:"firecrawl"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Coresignal CoresignalConfig `yaml:"coresignal" mapstructure:"coresignal"`
	LinkedIn   LinkedInConfig   `yaml:"linkedin" mapstructure:"linkedin"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// DirectoryConfig configures the company directory site.
type DirectoryConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// JinaConfig holds Jina AI Reader settings (rendered listing-page content).
type JinaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FirecrawlConfig holds Firecrawl API settings (fallback only).
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// CoresignalConfig holds job-count lookup API settings.
type CoresignalConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// LinkedInConfig configures the authenticated browser session.
type LinkedInConfig struct {
	SessionCookie   string `yaml:"session_cookie" mapstructure:"session_cookie"`
	BaseURL         string `yaml:"base_url" mapstructure:"base_url"`
	Headless        bool   `yaml:"headless" mapstructure:"headless"`
	LoginWaitSecs   int    `yaml:"login_wait_secs" mapstructure:"login_wait_secs"`
	ElementWaitSecs int    `yaml:"element_wait_secs" mapstructure:"element_wait_secs"`
}

// PipelineConfig configures run behavior.
type PipelineConfig struct {
	FetchConcurrency   int    `yaml:"fetch_concurrency" mapstructure:"fetch_concurrency"`
	ExtractConcurrency int    `yaml:"extract_concurrency" mapstructure:"extract_concurrency"`
	ResolveConcurrency int    `yaml:"resolve_concurrency" mapstructure:"resolve_concurrency"`
	EnrichConcurrency  int    `yaml:"enrich_concurrency" mapstructure:"enrich_concurrency"`
	Source             string `yaml:"source" mapstructure:"source"` // "api" or "browser"
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
	v.SetEnvPrefix("LEADSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Secret keys default to empty so env-only operation works
	// without a config file.
	v.SetDefault("jina.key", "")
	v.SetDefault("firecrawl.key", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("coresignal.key", "")
	v.SetDefault("linkedin.session_cookie", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("directory.base_url", "https://www.cience.com")
	v.SetDefault("directory.timeout_secs", 30)
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v2")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("coresignal.base_url", "https://api.coresignal.com")
	v.SetDefault("coresignal.requests_per_second", 2.0)
	v.SetDefault("linkedin.base_url", "https://www.linkedin.com")
	v.SetDefault("linkedin.headless", true)
	v.SetDefault("linkedin.login_wait_secs", 10)
	v.SetDefault("linkedin.element_wait_secs", 5)
	v.SetDefault("pipeline.fetch_concurrency", 10)
	v.SetDefault("pipeline.extract_concurrency", 4)
	v.SetDefault("pipeline.resolve_concurrency", 10)
	v.SetDefault("pipeline.enrich_concurrency", 5)
	v.SetDefault("pipeline.source", "browser")

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
