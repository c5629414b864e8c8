package policeuk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
	"github.com/mathieuadams/ukcrimerepository/internal/pkg/metrics"
)

const (
	// DefaultBaseURL is the public police.uk data API.
	DefaultBaseURL = "https://data.police.uk/api"
	// DefaultUserAgent identifies us on crime lookups.
	DefaultUserAgent = "UKCrimeMap/1.0 (+https://github.com/mathieuadams/ukcrimerepository)"

	endpointDates  = "crimes-street-dates"
	endpointCrimes = "crimes-street/all-crime"
	endpointForces = "forces"

	maxErrorBody = 512
)

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config tunes the client. Zero values fall back to defaults.
type Config struct {
	BaseURL       string
	UserAgent     string
	DatesTimeout  time.Duration
	CrimesTimeout time.Duration
	ForcesTimeout time.Duration
}

// Client implements ports.CrimeSource against data.police.uk.
// It never retries; a failed call surfaces immediately.
type Client struct {
	http    HTTPClient
	baseURL string
	ua      string

	datesTimeout  time.Duration
	crimesTimeout time.Duration
	forcesTimeout time.Duration
}

// New creates a client using a plain http.Client. Timeouts are applied per
// call through the request context.
func New(cfg Config) *Client {
	return NewWithClient(&http.Client{}, cfg)
}

// NewWithClient creates a client with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewWithClient(client HTTPClient, cfg Config) *Client {
	c := &Client{
		http:          client,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		ua:            cfg.UserAgent,
		datesTimeout:  cfg.DatesTimeout,
		crimesTimeout: cfg.CrimesTimeout,
		forcesTimeout: cfg.ForcesTimeout,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.ua == "" {
		c.ua = DefaultUserAgent
	}
	if c.datesTimeout <= 0 {
		c.datesTimeout = 10 * time.Second
	}
	if c.crimesTimeout <= 0 {
		c.crimesTimeout = 15 * time.Second
	}
	if c.forcesTimeout <= 0 {
		c.forcesTimeout = 10 * time.Second
	}
	return c
}

// FetchDates lists the months with street-level data, most recent first.
func (c *Client) FetchDates(ctx context.Context) ([]domain.AvailableDate, error) {
	var dates []domain.AvailableDate
	if err := c.get(ctx, endpointDates, nil, c.datesTimeout, false, &dates); err != nil {
		return nil, err
	}
	return dates, nil
}

// FetchCrimes returns street-level crimes within a mile of the point.
func (c *Client) FetchCrimes(ctx context.Context, lat, lng float64, date domain.ReportingDate) ([]domain.CrimeRecord, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	if date != "" {
		q.Set("date", date)
	}

	var crimes []domain.CrimeRecord
	if err := c.get(ctx, endpointCrimes, q, c.crimesTimeout, true, &crimes); err != nil {
		return nil, err
	}
	return crimes, nil
}

// FetchForces lists every police force.
func (c *Client) FetchForces(ctx context.Context) ([]domain.ForceRecord, error) {
	var forces []domain.ForceRecord
	if err := c.get(ctx, endpointForces, nil, c.forcesTimeout, false, &forces); err != nil {
		return nil, err
	}
	return forces, nil
}

// get performs one GET and decodes a JSON body into out.
func (c *Client) get(ctx context.Context, endpoint string, q url.Values, timeout time.Duration, withUA bool, out any) (err error) {
	ctx, span := otel.Tracer("policeuk").Start(ctx, "policeuk."+endpoint)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqURL := c.baseURL + "/" + endpoint
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if withUA {
		req.Header.Set("User-Agent", c.ua)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveUpstream(endpoint, 0, time.Since(start))
		slog.WarnContext(ctx, "upstream request failed", "endpoint", endpoint, "error", err)
		return &domain.UpstreamError{Endpoint: endpoint, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	metrics.ObserveUpstream(endpoint, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		slog.WarnContext(ctx, "upstream returned error status",
			"endpoint", endpoint, "status", resp.StatusCode, "body", string(body))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &domain.UpstreamError{Endpoint: endpoint, Status: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// a deadline hitting mid-body surfaces here rather than from Do
		return &domain.UpstreamError{Endpoint: endpoint, Message: "decode response", Err: err}
	}
	return nil
}
