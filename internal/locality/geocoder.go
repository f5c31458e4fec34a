package locality

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"procuration/pkg/platform/circuit"
)

// ErrUnavailable is returned without calling the API while the breaker is
// open and no retry is due.
var ErrUnavailable = errors.New("geocoder unavailable")

const defaultRetryInterval = 10 * time.Second

// BANClient searches the national address database
// (https://api-adresse.data.gouv.fr) for municipalities.
//
// While the breaker is open, code queries are answered from saved metadata
// and everything else fails fast, except for one retry per interval that
// reaches the API so the breaker can close again.
type BANClient struct {
	baseURL       string
	httpClient    *http.Client
	breaker       *circuit.Breaker
	fallback      MetadataFinder
	logger        *slog.Logger
	retryInterval time.Duration
	now           func() time.Time

	mu        sync.Mutex
	nextRetry time.Time
}

// MetadataFinder answers code queries from previously saved metadata while
// the address API is failing.
type MetadataFinder interface {
	Find(ctx context.Context, code string) (*Metadata, error)
}

type Option func(*BANClient)

func WithHTTPClient(c *http.Client) Option {
	return func(b *BANClient) {
		b.httpClient = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *BANClient) {
		b.logger = logger
	}
}

// WithFallback serves code queries from saved metadata when the API fails
// or the breaker is open.
func WithFallback(f MetadataFinder) Option {
	return func(b *BANClient) {
		b.fallback = f
	}
}

func WithBreaker(breaker *circuit.Breaker) Option {
	return func(b *BANClient) {
		b.breaker = breaker
	}
}

// WithRetryInterval sets how often a request may reach the API while the
// breaker is open.
func WithRetryInterval(d time.Duration) Option {
	return func(b *BANClient) {
		if d > 0 {
			b.retryInterval = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *BANClient) {
		b.now = now
	}
}

// NewBANClient builds a client for baseURL with a per-request timeout.
func NewBANClient(baseURL string, timeout time.Duration, opts ...Option) *BANClient {
	c := &BANClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: timeout},
		breaker:       circuit.New("geocoder"),
		retryInterval: defaultRetryInterval,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type banResponse struct {
	Features []struct {
		Properties struct {
			CityCode string `json:"citycode"`
			City     string `json:"city"`
			Context  string `json:"context"`
			Postcode string `json:"postcode"`
		} `json:"properties"`
	} `json:"features"`
}

// Search returns municipalities matching query in API order. An empty result
// is not an error.
func (c *BANClient) Search(ctx context.Context, query string) ([]Candidate, error) {
	if c.breaker.IsOpen() {
		if cands, ok := c.fromFallback(ctx, query); ok {
			return cands, nil
		}
		if !c.retryDue() {
			return nil, ErrUnavailable
		}
	}

	cands, err := c.search(ctx, query)
	if err != nil {
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.scheduleRetry()
			if c.logger != nil {
				c.logger.WarnContext(ctx, "geocoder circuit opened", "error", err)
			}
		}
		if fb, ok := c.fromFallback(ctx, query); ok {
			return fb, nil
		}
		return nil, err
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed && c.logger != nil {
		c.logger.InfoContext(ctx, "geocoder circuit closed")
	}
	return cands, nil
}

// retryDue reports whether this call may reach the API while the breaker is
// open, and if so pushes the next retry out by one interval.
func (c *BANClient) retryDue() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if now.Before(c.nextRetry) {
		return false
	}
	c.nextRetry = now.Add(c.retryInterval)
	return true
}

func (c *BANClient) scheduleRetry() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextRetry = c.now().Add(c.retryInterval)
}

func (c *BANClient) search(ctx context.Context, query string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "municipality")
	if LooksLikeCode(query) {
		params.Set("citycode", strings.ToUpper(query))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build geocoder request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoder request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var body banResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode geocoder response: %w", err)
	}

	cands := make([]Candidate, 0, len(body.Features))
	for _, f := range body.Features {
		cands = append(cands, Candidate{
			Code:       f.Properties.CityCode,
			Name:       f.Properties.City,
			Context:    f.Properties.Context,
			PostalCode: f.Properties.Postcode,
		})
	}
	return cands, nil
}

// fromFallback rebuilds candidates from saved metadata. Only code queries can
// be answered; a free-text query has no key to look up.
func (c *BANClient) fromFallback(ctx context.Context, query string) ([]Candidate, bool) {
	if c.fallback == nil || !LooksLikeCode(query) {
		return nil, false
	}
	code := strings.ToUpper(query)
	meta, err := c.fallback.Find(ctx, code)
	if err != nil {
		if !errors.Is(err, ErrUnknown) && c.logger != nil {
			c.logger.WarnContext(ctx, "geocoder fallback lookup failed", "code", code, "error", err)
		}
		return nil, false
	}
	if c.logger != nil {
		c.logger.InfoContext(ctx, "geocoder answered from saved metadata", "code", code)
	}
	postalCodes := meta.PostalCodes
	if len(postalCodes) == 0 {
		postalCodes = []string{""}
	}
	cands := make([]Candidate, 0, len(postalCodes))
	for _, pc := range postalCodes {
		cands = append(cands, Candidate{Code: code, Name: meta.Name, Context: meta.Context, PostalCode: pc})
	}
	return cands, true
}
