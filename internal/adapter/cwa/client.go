package cwa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/couchcryptid/cwa-proxy-service/internal/config"
	"github.com/couchcryptid/cwa-proxy-service/internal/domain"
	"github.com/couchcryptid/cwa-proxy-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/samber/oops"
)

// Upstream names, used as metric labels and error context.
const (
	UpstreamCyclone  = "cyclone"
	UpstreamWarnings = "warnings"
)

const authParam = "Authorization"

// Client fetches cyclone data and the warnings feed from the CWA.
type Client struct {
	apiKey     string
	baseURL    string
	dataset    string
	feedURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewClient creates a CWA client from the service configuration.
// A zero CWATimeout leaves the http.Client without a timeout.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  cfg.CWAAPIKey,
		baseURL: cfg.CWABaseURL,
		dataset: cfg.CWATyphoonDataset,
		feedURL: cfg.CWAWarningsFeedURL,
		httpClient: &http.Client{
			Timeout: cfg.CWATimeout,
		},
		metrics: metrics,
		clock:   domain.Clock(),
		logger:  logger,
	}
}

// FetchCyclone returns the tropical cyclone document for the configured dataset.
// The body must be valid JSON; it is returned unchanged.
func (c *Client) FetchCyclone(ctx context.Context) (domain.CycloneData, error) {
	u := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(c.dataset), url.Values{
		authParam: {c.apiKey},
	}.Encode())

	resp, err := c.get(ctx, UpstreamCyclone, u)
	if err != nil {
		return nil, err
	}

	var doc json.RawMessage
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return nil, c.fail(&domain.UpstreamError{
			Kind:     domain.KindDecode,
			Upstream: UpstreamCyclone,
			Err:      oops.In("cwa").With("upstream", UpstreamCyclone, "status", resp.Status).Wrapf(err, "decode cyclone response"),
			Response: resp,
		})
	}

	c.observe(UpstreamCyclone, "success")
	return domain.CycloneData(doc), nil
}

// FetchWarnings returns every item of the warnings feed, unfiltered and in feed order.
func (c *Client) FetchWarnings(ctx context.Context) ([]domain.WarningItem, error) {
	resp, err := c.get(ctx, UpstreamWarnings, c.feedURL)
	if err != nil {
		return nil, err
	}

	items, err := ParseWarnings(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, c.fail(&domain.UpstreamError{
			Kind:     domain.KindDecode,
			Upstream: UpstreamWarnings,
			Err:      oops.In("cwa").With("upstream", UpstreamWarnings, "status", resp.Status).Wrapf(err, "parse warnings feed"),
			Response: resp,
		})
	}

	c.metrics.WarningsFetched.Add(float64(len(items)))
	c.observe(UpstreamWarnings, "success")
	return items, nil
}

// get performs one GET and reads the full body. Non-2xx statuses are
// transport errors that keep the response for reporting.
func (c *Client) get(ctx context.Context, upstream, rawURL string) (*domain.UpstreamResponse, error) {
	start := c.clock.Now()
	defer func() {
		c.metrics.UpstreamDuration.WithLabelValues(upstream).Observe(c.clock.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, c.fail(&domain.UpstreamError{
			Kind:     domain.KindInternal,
			Upstream: upstream,
			Err:      fmt.Errorf("create request: %w", redact(err)),
		})
	}

	c.logger.DebugContext(ctx, "cwa request", "upstream", upstream, "url", redactURL(rawURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(&domain.UpstreamError{
			Kind:     domain.KindTransport,
			Upstream: upstream,
			Err:      oops.In("cwa").With("upstream", upstream).Wrapf(redact(err), "%s request", upstream),
		})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(&domain.UpstreamError{
			Kind:     domain.KindTransport,
			Upstream: upstream,
			Err:      oops.In("cwa").With("upstream", upstream, "status", resp.StatusCode).Wrapf(err, "read %s response", upstream),
			Response: &domain.UpstreamResponse{Status: resp.StatusCode},
		})
	}

	result := &domain.UpstreamResponse{Status: resp.StatusCode, Body: body}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(&domain.UpstreamError{
			Kind:     domain.KindTransport,
			Upstream: upstream,
			Err:      oops.In("cwa").With("upstream", upstream, "status", resp.StatusCode).Errorf("cwa API error: status %s", resp.Status),
			Response: result,
		})
	}

	return result, nil
}

// fail records the failure outcome and returns ue.
func (c *Client) fail(ue *domain.UpstreamError) error {
	c.observe(ue.Upstream, string(ue.Kind)+"_error")
	return ue
}

func (c *Client) observe(upstream, outcome string) {
	c.metrics.UpstreamRequests.WithLabelValues(upstream, outcome).Inc()
}

// redact strips the API key from the URL carried by a *url.Error.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = redactURL(urlErr.URL)
	}
	return err
}

func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		// Unparseable URLs are dropped entirely.
		return "<invalid url>"
	}
	q := u.Query()
	if q.Has(authParam) {
		q.Set(authParam, "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
