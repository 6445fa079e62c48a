package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTimeout bounds each individual download.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxBodyBytes caps a single CSV download.
	DefaultMaxBodyBytes int64 = 10 << 20
	// DefaultConcurrency is the number of downloads in flight per request.
	DefaultConcurrency = 4
	// UserAgent identifies the report generator to CSV hosts.
	UserAgent = "Mozilla/5.0 (compatible; ReportGenerator/1.0)"
)

// ErrEmptyBody marks a download that returned only whitespace.
var ErrEmptyBody = errors.New("empty body")

// FetchError records why a single URL could not be used.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SourceDocument is the raw text downloaded for one input URL, or the reason it
// could not be downloaded.
type SourceDocument struct {
	URL      string
	Filename string
	Body     string
	Err      *FetchError
	Cached   bool
}

// OK reports whether the document has usable content.
func (d SourceDocument) OK() bool {
	return d.Err == nil
}

// Observer receives one outcome per URL ("ok", "cached", "status", "error", "empty").
type Observer interface {
	ObserveFetch(outcome string)
}

// Options tunes the Fetcher.
type Options struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	Concurrency  int
	Cache        *Cache
	Observer     Observer
	Logger       *slog.Logger
}

// Fetcher downloads CSV sources, tolerating per-URL failures.
type Fetcher struct {
	client   *http.Client
	timeout  time.Duration
	maxBody  int64
	limit    int
	cache    *Cache
	observer Observer
	logger   *slog.Logger
}

// NewFetcher constructs a Fetcher. A nil client uses a dedicated http.Client.
func NewFetcher(client *http.Client, opts Options) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	f := &Fetcher{
		client:   client,
		timeout:  opts.Timeout,
		maxBody:  opts.MaxBodyBytes,
		limit:    opts.Concurrency,
		cache:    opts.Cache,
		observer: opts.Observer,
		logger:   opts.Logger,
	}
	if f.timeout <= 0 {
		f.timeout = DefaultTimeout
	}
	if f.maxBody <= 0 {
		f.maxBody = DefaultMaxBodyBytes
	}
	if f.limit <= 0 {
		f.limit = DefaultConcurrency
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Fetch downloads every URL with bounded parallelism. The result has one entry
// per input URL in input order. Individual failures are recorded on the
// document; an error is returned only when ctx is cancelled.
func (f *Fetcher) Fetch(ctx context.Context, urls []string, refresh bool) ([]SourceDocument, error) {
	docs := make([]SourceDocument, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.limit)
	for i, u := range urls {
		g.Go(func() error {
			docs[i] = f.fetchOne(gctx, u, refresh)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if doc.Err != nil {
			f.logger.Warn("csv fetch failed", slog.String("url", doc.URL), slog.Any("error", doc.Err))
		}
	}
	return docs, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, rawURL string, refresh bool) SourceDocument {
	doc := SourceDocument{URL: rawURL, Filename: filenameOf(rawURL)}
	load := func(ctx context.Context) (string, error) {
		return f.download(ctx, rawURL)
	}

	var (
		body   string
		cached bool
		err    error
	)
	if f.cache != nil {
		body, cached, err = f.cache.Load(ctx, rawURL, refresh, load)
	} else {
		body, err = load(ctx)
	}

	switch {
	case err != nil:
		var fe *FetchError
		if !errors.As(err, &fe) {
			fe = &FetchError{URL: rawURL, Err: err}
		}
		doc.Err = fe
		f.observe(outcomeOf(fe))
	case cached:
		doc.Body = body
		doc.Cached = true
		f.observe("cached")
	default:
		doc.Body = body
		f.observe("ok")
	}
	return doc
}

func (f *Fetcher) download(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/csv, text/plain, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return "", &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	if int64(len(data)) > f.maxBody {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("body exceeds %d bytes", f.maxBody)}
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", &FetchError{URL: rawURL, Err: ErrEmptyBody}
	}
	return string(data), nil
}

func (f *Fetcher) observe(outcome string) {
	if f.observer != nil {
		f.observer.ObserveFetch(outcome)
	}
}

func outcomeOf(fe *FetchError) string {
	switch {
	case fe.StatusCode != 0:
		return "status"
	case errors.Is(fe.Err, ErrEmptyBody):
		return "empty"
	default:
		return "error"
	}
}

// filenameOf returns the last path segment of the URL, or "unknown.csv".
func filenameOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "unknown.csv"
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "unknown.csv"
	}
	return name
}
