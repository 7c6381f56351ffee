package i18nbackend

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"time"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 32 << 20

// FetchRequest describes a single outbound request.
type FetchRequest struct {
	Method  string
	URL     string
	Body    []byte
	Headers map[string]string
}

// FetchResponse carries the real status and the full body of a response.
type FetchResponse struct {
	StatusCode int
	Status     string
	Body       []byte
}

// OK reports whether the status is in the 2xx class.
func (r *FetchResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Fetcher issues bounded-time requests with the configured headers merged in.
// It never interprets status codes; a 404 is returned like any other response.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	headers map[string]string
	logger  *slog.Logger
}

// NewFetcher creates a Fetcher. A nil client uses a fresh http.Client and a
// timeout of zero disables the deadline.
func NewFetcher(client *http.Client, timeout time.Duration, headers map[string]string, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:  client,
		timeout: timeout,
		headers: headers,
		logger:  logger,
	}
}

// Fetch performs the request. It fails with *TimeoutError when the configured
// timeout fires first and with *NetworkError on transport failures.
func (f *Fetcher) Fetch(ctx context.Context, req FetchRequest) (*FetchResponse, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	reqCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, method, req.URL, body)
	if err != nil {
		return nil, &ConfigError{Message: "invalid request URL " + req.URL, Cause: err}
	}

	httpReq.Header.Set("User-Agent", UserAgent())
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range f.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	f.logger.Debug("fetching", "method", method, "url", req.URL)

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, f.classify(ctx, reqCtx, req.URL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, f.classify(ctx, reqCtx, req.URL, err)
	}

	return &FetchResponse{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       data,
	}, nil
}

// classify maps a transport error to TimeoutError when our own deadline fired,
// to the caller's context error when the caller gave up, and to NetworkError otherwise.
func (f *Fetcher) classify(parent, reqCtx context.Context, url string, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{URL: url, Timeout: f.timeout}
	}
	return &NetworkError{URL: url, Cause: err}
}

// newFileClient returns a copy of base that also serves file:// URLs from
// fsys. Missing files answer 404 like any other server. Other schemes go
// through base's transport.
func newFileClient(base *http.Client, fsys fs.FS) *http.Client {
	client := &http.Client{}
	if base != nil {
		*client = *base
	}

	next := client.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	client.Transport = &fileTransport{
		file: http.NewFileTransportFS(fsys),
		next: next,
	}
	return client
}

// fileTransport routes file:// requests to file and everything else to next.
type fileTransport struct {
	file http.RoundTripper
	next http.RoundTripper
}

func (t *fileTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme == "file" {
		return t.file.RoundTrip(req)
	}
	return t.next.RoundTrip(req)
}
