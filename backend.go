package i18nbackend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/ZaguanLabs/i18nbackend/cache"
)

// Read sources reported to metrics.
const (
	sourceCache      = "cache"
	sourceLocal      = "local"
	sourceTranslated = "translated"
	sourceEmpty      = "empty"
)

// ReadCallback receives the outcome of ReadAsync.
type ReadCallback func(res Resource, err error)

// Backend supplies translation namespaces to a localization framework.
//
// A read is answered from the cache, then from the local load path, then by
// translating the source-language namespace on demand. Load failures never
// surface as errors: they are passed to the load-error hook and the read
// completes with an empty Resource.
type Backend struct {
	opts       Options
	logger     *slog.Logger
	fetcher    *Fetcher
	api        *APIClient
	translator Translator
	cache      cache.Store
	batcher    *MissingKeyBatcher
	pool       *ants.Pool
	metrics    *Metrics
}

// New creates a Backend, applying opts over DefaultOptions.
// A missing API key is not an error: it is announced once as a warning and
// disables on-demand translation and missing-key reporting.
func New(opts ...Option) (*Backend, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.normalize()

	client := o.HTTPClient
	if o.FileSystem != nil {
		client = newFileClient(client, o.FileSystem)
	}
	fetcher := NewFetcher(client, o.RequestTimeout, o.Headers, o.Logger)

	b := &Backend{
		opts:    o,
		logger:  o.Logger,
		fetcher: fetcher,
		metrics: o.Metrics,
	}

	if o.APIKey != "" {
		b.api = NewAPIClient(fetcher, o.APIURL, o.APIKey)
	} else {
		b.logger.Warn("no API key configured: on-demand translation and missing-key reporting are disabled")
	}

	b.translator = o.Translator
	if b.translator == nil && b.api != nil {
		b.translator = b.api
	}
	if b.translator != nil && o.TranslateRateLimit != nil {
		b.translator = NewRateLimitedTranslator(b.translator, *o.TranslateRateLimit)
	}

	if o.CacheEnabled {
		b.cache = o.Cache
		if b.cache == nil {
			b.cache = cache.NewInMemoryCache(o.CacheTTL)
		}
	}

	var send MissingKeySender
	if b.api != nil {
		send = b.api.SaveMissingKeys
	}
	b.batcher = NewMissingKeyBatcher(BatcherConfig{
		Send:    send,
		Delay:   o.FlushDelay,
		OnSaved: o.OnMissingKeysSaved,
		Logger:  o.Logger,
		Metrics: o.Metrics,
	})

	pool, err := ants.NewPool(o.Workers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	b.pool = pool

	return b, nil
}

// Read returns the namespace for a language. The error is non-nil only when
// ctx ends before the read completes; every other failure yields an empty
// Resource and a call to the load-error hook.
func (b *Backend) Read(ctx context.Context, language, namespace string) (Resource, error) {
	start := time.Now()
	res, source, err := b.read(ctx, language, namespace)
	if err != nil {
		return nil, err
	}
	b.metrics.read(source, time.Since(start))
	return res, nil
}

// ReadAsync runs Read on the worker pool and invokes cb exactly once.
func (b *Backend) ReadAsync(language, namespace string, cb ReadCallback) {
	err := b.pool.Submit(func() {
		cb(b.Read(context.Background(), language, namespace))
	})
	if err != nil {
		cb(nil, fmt.Errorf("scheduling read of %s/%s: %w", language, namespace, err))
	}
}

func (b *Backend) read(ctx context.Context, language, namespace string) (Resource, string, error) {
	if b.cache != nil {
		if cached, ok := b.cache.Get(Fingerprint(language, namespace)); ok {
			b.metrics.cacheLookup(true)
			return cached, sourceCache, nil
		}
		b.metrics.cacheLookup(false)
	}

	res, err := b.loadLocal(ctx, language, namespace)
	switch {
	case err == nil:
		return res, sourceLocal, nil
	case ctx.Err() != nil:
		return nil, "", ctx.Err()
	case !IsNotFound(err):
		b.loadFailed(err, language, namespace)
		return Resource{}, sourceEmpty, nil
	}

	if !b.canTranslate(language) {
		return Resource{}, sourceEmpty, nil
	}

	source, err := b.loadLocal(ctx, b.opts.SourceLanguage, namespace)
	switch {
	case ctx.Err() != nil:
		return nil, "", ctx.Err()
	case err != nil && !IsNotFound(err):
		b.loadFailed(err, b.opts.SourceLanguage, namespace)
		return Resource{}, sourceEmpty, nil
	case len(source) == 0:
		return Resource{}, sourceEmpty, nil
	}

	translated, err := b.translator.Translate(ctx, TranslateRequest{
		Resource:   source,
		SourceLang: b.opts.SourceLanguage,
		TargetLang: language,
		Namespace:  namespace,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		b.loadFailed(err, language, namespace)
		return Resource{}, sourceEmpty, nil
	}

	b.store(language, namespace, translated)
	return translated, sourceTranslated, nil
}

// loadLocal fetches and parses the namespace from the load path and caches it.
// A missing resource is reported as an error matching ErrNotFound.
func (b *Backend) loadLocal(ctx context.Context, language, namespace string) (Resource, error) {
	url, err := b.resolveLoadPath(language, namespace)
	if err != nil {
		return nil, err
	}

	resp, err := b.fetcher.Fetch(ctx, FetchRequest{Method: http.MethodGet, URL: url})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &HTTPError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	res, err := b.opts.Parser(resp.Body)
	if err != nil {
		return nil, &ParseError{URL: url, Cause: err}
	}
	if res == nil {
		res = Resource{}
	}

	b.store(language, namespace, res)
	return res, nil
}

func (b *Backend) resolveLoadPath(language, namespace string) (string, error) {
	var path string
	if b.opts.LoadPathFunc != nil {
		path = b.opts.LoadPathFunc(language, namespace)
	} else {
		path = InterpolateLoadPath(b.opts.LoadPath, language, namespace)
	}
	return resolveURL(b.opts.BaseURL, path)
}

func (b *Backend) canTranslate(language string) bool {
	return b.opts.TranslateOnLoad && b.translator != nil && !SameLanguage(language, b.opts.SourceLanguage)
}

func (b *Backend) store(language, namespace string, res Resource) {
	if b.cache == nil {
		return
	}
	if err := b.cache.Set(Fingerprint(language, namespace), res); err != nil {
		b.logger.Warn("caching namespace failed", "language", language, "namespace", namespace, "error", err)
	}
}

func (b *Backend) loadFailed(err error, language, namespace string) {
	b.logger.Warn("loading namespace failed", "language", language, "namespace", namespace, "error", err)
	if b.opts.OnLoadError != nil {
		b.opts.OnLoadError(err, language, namespace)
	}
}

// Create reports a key the framework could not resolve in any of languages.
func (b *Backend) Create(languages []string, namespace, key, fallbackValue string) {
	b.batcher.Report(languages, namespace, key, fallbackValue)
}

// Flush delivers pending missing keys immediately.
func (b *Backend) Flush(ctx context.Context) error {
	return b.batcher.Flush(ctx)
}

// PendingMissingKeys returns the missing keys waiting for the next flush.
func (b *Backend) PendingMissingKeys() []MissingKey {
	return b.batcher.Pending()
}

// ClearCache removes every cached namespace.
func (b *Backend) ClearCache() {
	if b.cache != nil {
		b.cache.Clear()
	}
}

// ClearCacheFor removes one namespace of a language, or every namespace of
// the language when namespace is empty.
func (b *Backend) ClearCacheFor(language, namespace string) {
	if b.cache == nil {
		return
	}
	if namespace == "" {
		b.cache.DeletePrefix(LanguagePrefix(language))
		return
	}
	b.cache.Delete(Fingerprint(language, namespace))
}

// Options returns the effective configuration.
func (b *Backend) Options() Options {
	return b.opts
}

// Close cancels the pending flush, makes a final delivery attempt and
// releases the worker pool.
func (b *Backend) Close(ctx context.Context) error {
	b.batcher.Stop()
	err := b.batcher.Flush(ctx)
	b.pool.Release()
	return err
}
