// Package timeanddate looks up locations and 14-day forecasts on
// timeanddate.com by fetching and parsing its HTML pages.
package timeanddate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultBaseURL is the production site.
	DefaultBaseURL = "https://www.timeanddate.com"

	defaultTimeout   = 10 * time.Second
	defaultRetries   = 3
	defaultBackoff   = time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Options tunes the HTTP behaviour of a Client. Zero values fall back to
// defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Retries is the total number of attempts per page.
	Retries int
	// Delay is the minimum gap between two requests from the same Client.
	Delay time.Duration
	// Backoff is multiplied by attempt² before each retry.
	Backoff   time.Duration
	UserAgent string
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Retries <= 0 {
		o.Retries = defaultRetries
	}
	if o.Backoff <= 0 {
		o.Backoff = defaultBackoff
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	return o
}

// StatusError is returned when the site answers with a non-200 status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s returned status %d", e.URL, e.Code)
}

func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// Client fetches search and forecast pages.
type Client struct {
	opts   Options
	client *http.Client
	pacer  *pacer
	now    func() time.Time
	log    *slog.Logger
}

// NewClient constructs a Client. A nil logger uses slog.Default().
func NewClient(opts Options, log *slog.Logger) *Client {
	opts = opts.withDefaults()
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		pacer:  &pacer{delay: opts.Delay},
		now:    time.Now,
		log:    log,
	}
}

// NewClientWithURL constructs a Client pointing at a custom base URL with
// fast retries and a fixed clock (for tests).
func NewClientWithURL(baseURL string, now time.Time) *Client {
	c := NewClient(Options{BaseURL: baseURL, Retries: 2, Backoff: time.Millisecond}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.now = func() time.Time { return now }
	return c
}

// document GETs rawURL and parses the body, retrying transport errors and
// retryable statuses with quadratic backoff.
func (c *Client) document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	var lastErr error
	for attempt := 0; attempt < c.opts.Retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * c.opts.Backoff
			c.log.Warn("retrying page fetch", "url", rawURL, "attempt", attempt+1, "backoff", backoff)
			if err := sleep(ctx, backoff); err != nil {
				return nil, err
			}
		}

		if err := c.pacer.wait(ctx); err != nil {
			return nil, err
		}

		doc, err := c.get(ctx, rawURL)
		if err == nil {
			return doc, nil
		}
		lastErr = err

		var se *StatusError
		if errors.As(err, &se) && !se.retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("all %d attempts failed: %w", c.opts.Retries, lastErr)
}

func (c *Client) get(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML from %s: %w", rawURL, err)
	}
	return doc, nil
}

// pacer enforces a minimum delay between consecutive requests.
type pacer struct {
	mu       sync.Mutex
	lastCall time.Time
	delay    time.Duration
}

func (p *pacer) wait(ctx context.Context) error {
	if p.delay <= 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if elapsed := time.Since(p.lastCall); elapsed < p.delay {
		if err := sleep(ctx, p.delay-elapsed); err != nil {
			return err
		}
	}
	p.lastCall = time.Now()
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
