// Package mesonet provides a client for the mesonet station and measurement API.
package mesonet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/mesonet-exporter/internal/constants"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.hcdp.ikewai.org/mesonet/db"
	DefaultTimeout = 5 * time.Second

	EndpointStations     = "stations"
	EndpointMeasurements = "measurements"

	// maxErrorBody caps how much of a non-2xx body is kept for logging
	maxErrorBody = 512
)

// Observer receives one callback per completed request
type Observer interface {
	ObserveRequest(endpoint string, kind ResultKind, elapsed time.Duration)
}

// API is the subset of the mesonet API used by the exporter
type API interface {
	Stations(ctx context.Context) ([]Station, error)
	Measurements(ctx context.Context, q Query) Result
}

// Client talks to the mesonet HTTP API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	observer   Observer
	logger     *zap.SugaredLogger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRequestInterval spaces requests at least d apart across all callers.
// A zero interval disables spacing.
func WithRequestInterval(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithObserver registers a request observer
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a new mesonet API client
func NewClient(baseURL, token string, logger *zap.SugaredLogger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stations fetches the station directory. Callers are expected to treat an
// error as "no stations" and carry on.
func (c *Client) Stations(ctx context.Context) ([]Station, error) {
	var stations []Station
	res := c.getJSON(ctx, EndpointStations, nil, &stations)
	if res.Kind != ResultOK {
		return nil, res.Err
	}
	return stations, nil
}

// Query selects measurements for the measurements endpoint
type Query struct {
	StationIDs []string
	Variables  []string
	Limit      int
	StartDate  time.Time
}

func (q Query) values() url.Values {
	v := url.Values{}
	v.Set("station_ids", strings.Join(q.StationIDs, ","))
	v.Set("var_ids", strings.Join(q.Variables, ","))
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if !q.StartDate.IsZero() {
		v.Set("start_date", q.StartDate.UTC().Format("2006-01-02T15:04:05Z"))
	}
	return v
}

func (q Query) String() string {
	return fmt.Sprintf("station=%s vars=%s limit=%d", strings.Join(q.StationIDs, ","), strings.Join(q.Variables, ","), q.Limit)
}

// Measurements runs one measurements query. The outcome is always reported
// through the returned Result; this method does not fail in any other way.
func (c *Client) Measurements(ctx context.Context, q Query) Result {
	var samples []Sample
	res := c.getJSON(ctx, EndpointMeasurements, q.values(), &samples)
	if res.Kind == ResultOK {
		res.Samples = samples
	}
	return res
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, target any) (res Result) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveRequest(endpoint, res.Kind, time.Since(start))
		}
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return transportResult(fmt.Errorf("waiting for request slot: %w", err))
		}
	}

	reqURL := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return transportResult(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", constants.UserAgent)

	if c.logger != nil {
		c.logger.Debugw("mesonet request", "url", reqURL)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return Result{Kind: ResultTimeout, Err: fmt.Errorf("%s request timed out: %w", endpoint, err)}
		}
		return transportResult(fmt.Errorf("%s request failed: %w", endpoint, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Result{Kind: ResultUpstreamError, Err: &UpstreamError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		if isTimeout(err) {
			return Result{Kind: ResultTimeout, Err: fmt.Errorf("%s response timed out: %w", endpoint, err)}
		}
		return Result{Kind: ResultDataShapeError, Err: fmt.Errorf("failed to decode %s response: %w", endpoint, err)}
	}

	return Result{Kind: ResultOK}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

var _ API = (*Client)(nil)
