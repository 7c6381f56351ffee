package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/ZaguanLabs/i18nbackend"
	"github.com/ZaguanLabs/i18nbackend/cache"
	"github.com/ZaguanLabs/i18nbackend/processor"
	"github.com/ZaguanLabs/i18nbackend/provider"
)

// Config is read from I18N_* environment variables (and a .env file when
// present); command-line flags override it.
type Config struct {
	APIKey          string        `env:"I18N_API_KEY"`
	APIURL          string        `env:"I18N_API_URL"           envDefault:"https://api.tlai.dev/v1"`
	BaseURL         string        `env:"I18N_BASE_URL"`
	LoadPath        string        `env:"I18N_LOAD_PATH"         envDefault:"/locales/{{lng}}/{{ns}}.json"`
	LocalesDir      string        `env:"I18N_LOCALES_DIR"`
	SourceLanguage  string        `env:"I18N_SOURCE_LANGUAGE"   envDefault:"en"`
	RequestTimeout  time.Duration `env:"I18N_REQUEST_TIMEOUT"   envDefault:"10s"`
	TranslateOnLoad bool          `env:"I18N_TRANSLATE_ON_LOAD" envDefault:"true"`
	CacheEnabled    bool          `env:"I18N_CACHE_ENABLED"     envDefault:"true"`
	CacheTTL        time.Duration `env:"I18N_CACHE_TTL"         envDefault:"1h"`
	RedisURL        string        `env:"I18N_REDIS_URL"`
	Format          string        `env:"I18N_FORMAT"            envDefault:"json"`
	Provider        string        `env:"I18N_PROVIDER"          envDefault:"api"`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	OpenAIModel     string        `env:"I18N_OPENAI_MODEL"      envDefault:"gpt-4o-mini"`
	TranslateRPM    int           `env:"I18N_TRANSLATE_RPM"`
	LogLevel        string        `env:"I18N_LOG_LEVEL"         envDefault:"info"`
	LogColored      bool          `env:"I18N_LOG_COLORED"       envDefault:"true"`
}

// loadConfig reads .env (if any) and the environment.
func loadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// bindFlags registers the flags shared by every subcommand, defaulting to cfg.
func (c *Config) bindFlags(set *flag.FlagSet) {
	set.StringVar(&c.APIKey, "api-key", c.APIKey, "Translation API key (env I18N_API_KEY)")
	set.StringVar(&c.APIURL, "api-url", c.APIURL, "Translation API base URL")
	set.StringVar(&c.BaseURL, "base-url", c.BaseURL, "Base URL for relative load paths")
	set.StringVar(&c.LoadPath, "load-path", c.LoadPath, "Load path template with {{lng}} and {{ns}}")
	set.StringVar(&c.LocalesDir, "locales-dir", c.LocalesDir, "Serve load paths from this directory instead of HTTP")
	set.StringVar(&c.SourceLanguage, "source", c.SourceLanguage, "Source language code")
	set.DurationVar(&c.RequestTimeout, "timeout", c.RequestTimeout, "Request timeout")
	set.BoolVar(&c.TranslateOnLoad, "translate", c.TranslateOnLoad, "Translate missing namespaces on load")
	set.StringVar(&c.RedisURL, "redis", c.RedisURL, "Redis URL for the namespace cache")
	set.StringVar(&c.Format, "format", c.Format, "Resource format: json or yaml")
	set.StringVar(&c.Provider, "provider", c.Provider, "Translator: api or openai")
	set.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug, info, warn, error")
}

func newLogger(w io.Writer, level string, colored bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
		NoColor:    !colored,
	}))
}

// backendOptions translates cfg into Backend options. The returned cleanup
// releases resources the options hold and is never nil.
func backendOptions(cfg Config, logger *slog.Logger) ([]i18nbackend.Option, func(), error) {
	opts := []i18nbackend.Option{
		i18nbackend.WithLogger(logger),
		i18nbackend.WithAPIKey(cfg.APIKey),
		i18nbackend.WithAPIURL(cfg.APIURL),
		i18nbackend.WithBaseURL(cfg.BaseURL),
		i18nbackend.WithLoadPath(cfg.LoadPath),
		i18nbackend.WithSourceLanguage(cfg.SourceLanguage),
		i18nbackend.WithRequestTimeout(cfg.RequestTimeout),
		i18nbackend.WithTranslateOnLoad(cfg.TranslateOnLoad),
		i18nbackend.WithCacheEnabled(cfg.CacheEnabled),
		i18nbackend.WithCacheTTL(cfg.CacheTTL),
	}

	if cfg.LocalesDir != "" {
		opts = append(opts, i18nbackend.WithFileSystem(os.DirFS(cfg.LocalesDir)))
		if cfg.BaseURL == "" {
			opts = append(opts, i18nbackend.WithBaseURL("file:///"))
		}
	}

	switch strings.ToLower(cfg.Format) {
	case "", "json":
	case "yaml", "yml":
		opts = append(opts, i18nbackend.WithParser(processor.ParseYAML))
	default:
		return nil, nil, fmt.Errorf("unknown format %q (want json or yaml)", cfg.Format)
	}

	switch strings.ToLower(cfg.Provider) {
	case "", "api":
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, nil, fmt.Errorf("OpenAI API key required (OPENAI_API_KEY env)")
		}
		opts = append(opts, i18nbackend.WithTranslator(provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
		})))
	default:
		return nil, nil, fmt.Errorf("unknown provider %q (want api or openai)", cfg.Provider)
	}

	if cfg.TranslateRPM > 0 {
		opts = append(opts, i18nbackend.WithTranslateRateLimit(i18nbackend.RateLimitConfig{
			RequestsPerMinute: cfg.TranslateRPM,
		}))
	}

	cleanup := func() {}
	if cfg.RedisURL != "" && cfg.CacheEnabled {
		store, err := cache.NewRedisCache(cache.RedisConfig{URL: cfg.RedisURL, TTL: cfg.CacheTTL})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		opts = append(opts, i18nbackend.WithCache(store.WithLogger(logger)))
		cleanup = func() { _ = store.Close() }
	}

	return opts, cleanup, nil
}
