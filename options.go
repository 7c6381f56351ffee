package i18nbackend

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/ZaguanLabs/i18nbackend/cache"
)

// Defaults applied by DefaultOptions.
const (
	DefaultAPIURL         = "https://api.tlai.dev/v1"
	DefaultLoadPath       = "/locales/{{lng}}/{{ns}}.json"
	DefaultSourceLanguage = "en"
	DefaultRequestTimeout = 10 * time.Second
	DefaultCacheTTL       = time.Hour
	DefaultWorkers        = 16
)

// Options holds the backend configuration. User options are applied over
// DefaultOptions.
type Options struct {
	APIKey         string        // Enables on-demand translation and missing-key reporting
	APIURL         string        // Root of the translate and missing-keys endpoints
	SourceLanguage string        // Origin language for on-demand translation
	LoadPath       string        // Template with {{lng}} and {{ns}} placeholders
	LoadPathFunc   LoadPathFunc  // Overrides LoadPath when set
	BaseURL        string        // Resolves relative load paths
	RequestTimeout time.Duration // Upper bound for every outbound request
	Headers        map[string]string

	TranslateOnLoad bool
	CacheEnabled    bool
	CacheTTL        time.Duration

	Parser             ResponseParser
	OnMissingKeysSaved MissingKeysSavedFunc
	OnLoadError        LoadErrorFunc

	Logger             *slog.Logger
	HTTPClient         *http.Client
	FileSystem         fs.FS         // Serves file:// load paths
	Cache              cache.Store   // Default: in-memory with CacheTTL
	Translator         Translator    // Default: the remote API client
	FlushDelay         time.Duration // Missing-key debounce window
	TranslateRateLimit *RateLimitConfig
	Metrics            *Metrics
	Workers            int // Size of the ReadAsync worker pool
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		APIURL:          DefaultAPIURL,
		SourceLanguage:  DefaultSourceLanguage,
		LoadPath:        DefaultLoadPath,
		RequestTimeout:  DefaultRequestTimeout,
		TranslateOnLoad: true,
		CacheEnabled:    true,
		CacheTTL:        DefaultCacheTTL,
		Parser:          ParseJSON,
		FlushDelay:      DefaultFlushDelay,
		Workers:         DefaultWorkers,
	}
}

// Option is a functional option for configuring the Backend.
type Option func(*Options)

// WithOptions replaces the whole configuration with o, so boolean switches
// such as TranslateOnLoad and CacheEnabled take o's values. Empty URLs,
// source language, load path, parser, flush delay and worker count fall back
// to their defaults.
func WithOptions(o Options) Option {
	return func(dst *Options) {
		*dst = o
	}
}

// WithAPIKey sets the translation API key.
func WithAPIKey(key string) Option {
	return func(o *Options) {
		o.APIKey = key
	}
}

// WithAPIURL sets the translation API base URL.
func WithAPIURL(url string) Option {
	return func(o *Options) {
		o.APIURL = url
	}
}

// WithSourceLanguage sets the origin language for on-demand translation.
func WithSourceLanguage(lang string) Option {
	return func(o *Options) {
		o.SourceLanguage = lang
	}
}

// WithLoadPath sets the load path template.
func WithLoadPath(template string) Option {
	return func(o *Options) {
		o.LoadPath = template
	}
}

// WithLoadPathFunc sets a resolver that overrides the load path template.
func WithLoadPathFunc(fn LoadPathFunc) Option {
	return func(o *Options) {
		o.LoadPathFunc = fn
	}
}

// WithBaseURL sets the URL relative load paths are resolved against.
func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

// WithRequestTimeout bounds every outbound request.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.RequestTimeout = d
	}
}

// WithHeaders sets headers merged into every outbound request.
func WithHeaders(headers map[string]string) Option {
	return func(o *Options) {
		o.Headers = headers
	}
}

// WithTranslateOnLoad toggles the on-demand translation fallback.
func WithTranslateOnLoad(enabled bool) Option {
	return func(o *Options) {
		o.TranslateOnLoad = enabled
	}
}

// WithCacheEnabled toggles namespace caching.
func WithCacheEnabled(enabled bool) Option {
	return func(o *Options) {
		o.CacheEnabled = enabled
	}
}

// WithCacheTTL sets how long cached namespaces stay valid.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *Options) {
		o.CacheTTL = ttl
	}
}

// WithParser overrides JSON decoding of fetched namespaces.
func WithParser(parser ResponseParser) Option {
	return func(o *Options) {
		o.Parser = parser
	}
}

// WithOnMissingKeysSaved sets the hook invoked after a batch was delivered.
func WithOnMissingKeysSaved(fn MissingKeysSavedFunc) Option {
	return func(o *Options) {
		o.OnMissingKeysSaved = fn
	}
}

// WithOnLoadError sets the hook invoked when a load fails.
func WithOnLoadError(fn LoadErrorFunc) Option {
	return func(o *Options) {
		o.OnLoadError = fn
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithHTTPClient sets the HTTP client used for all requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = client
	}
}

// WithFileSystem serves file:// load paths from fsys.
func WithFileSystem(fsys fs.FS) Option {
	return func(o *Options) {
		o.FileSystem = fsys
	}
}

// WithCache sets the namespace store.
func WithCache(store cache.Store) Option {
	return func(o *Options) {
		o.Cache = store
	}
}

// WithTranslator replaces the remote API as the on-demand translator.
func WithTranslator(t Translator) Option {
	return func(o *Options) {
		o.Translator = t
	}
}

// WithFlushDelay sets the missing-key debounce window.
func WithFlushDelay(d time.Duration) Option {
	return func(o *Options) {
		o.FlushDelay = d
	}
}

// WithTranslateRateLimit limits on-demand translation requests.
func WithTranslateRateLimit(cfg RateLimitConfig) Option {
	return func(o *Options) {
		o.TranslateRateLimit = &cfg
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// WithWorkers sets the size of the ReadAsync worker pool.
func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

// normalize fills in fields whose zero value is unusable.
func (o *Options) normalize() {
	if o.APIURL == "" {
		o.APIURL = DefaultAPIURL
	}
	if o.SourceLanguage == "" {
		o.SourceLanguage = DefaultSourceLanguage
	}
	if o.LoadPath == "" {
		o.LoadPath = DefaultLoadPath
	}
	if o.Parser == nil {
		o.Parser = ParseJSON
	}
	if o.FlushDelay <= 0 {
		o.FlushDelay = DefaultFlushDelay
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}
