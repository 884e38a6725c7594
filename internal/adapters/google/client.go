// Package google implements the routing and geocoding ports against the
// Google Maps Platform REST APIs.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/KRVIMAL/routeye-sub001/internal/pkg/logging"
)

// Options configures a Client.
type Options struct {
	APIKey     string
	RoutesURL  string
	GeocodeURL string
	QPS        float64
	Burst      int
	Timeout    time.Duration
	Language   string
	Region     string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is shared by Router and Geocoder so both draw from one request budget.
type Client struct {
	apiKey     string
	routesURL  string
	geocodeURL string
	language   string
	region     string
	http       *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient builds a client. A non-positive QPS disables rate limiting.
func NewClient(opts Options) *Client {
	if opts.RoutesURL == "" {
		opts.RoutesURL = "https://routes.googleapis.com"
	}
	if opts.GeocodeURL == "" {
		opts.GeocodeURL = "https://maps.googleapis.com"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	limit := rate.Inf
	if opts.QPS > 0 {
		limit = rate.Limit(opts.QPS)
	}
	burst := max(opts.Burst, 1)
	return &Client{
		apiKey:     opts.APIKey,
		routesURL:  opts.RoutesURL,
		geocodeURL: opts.GeocodeURL,
		language:   opts.Language,
		region:     opts.Region,
		http:       hc,
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logging.Component(opts.Logger, "google"),
	}
}

// apiError is the error body shared by the Google REST APIs.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// do waits for the limiter, sends req and decodes a 200 response into out.
func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	start := time.Now()
	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%s request failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("google api call", "path", req.URL.Path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var ae apiError
		if json.Unmarshal(body, &ae) == nil && ae.Error.Message != "" {
			return fmt.Errorf("google returned status %d: %s: %s", resp.StatusCode, ae.Error.Status, ae.Error.Message)
		}
		return fmt.Errorf("google returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
