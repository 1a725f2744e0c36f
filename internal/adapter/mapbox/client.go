package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/couchcryptid/weather-prep/internal/domain"
	"github.com/couchcryptid/weather-prep/internal/observability"
)

const defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// Client implements domain.Geocoder using the Mapbox Geocoding API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox geocoding client. Requests that fail with a
// transport error, 429 or 5xx are retried with backoff. The access token is
// redacted from retry logs and returned errors.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient.Timeout = timeout
	rc.RetryMax = 2
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = redactingLogger{logger: logger.With("component", "mapbox"), redact: redactor{token: token}}
	// The last response is returned as is, so a final 5xx surfaces as a status error.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		token:      token,
		httpClient: rc.StandardClient(),
		baseURL:    defaultBaseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// ForwardGeocode converts a station name to coordinates. A two-letter region
// is sent as an ISO 3166 country filter; anything longer is appended to the
// query text.
func (c *Client) ForwardGeocode(ctx context.Context, name, region string) (domain.GeocodingResult, error) {
	query := name
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
		"types":        {"place,locality"},
	}
	switch {
	case len(region) == 2:
		params.Set("country", region)
	case region != "":
		query = fmt.Sprintf("%s, %s", name, region)
	}

	u := fmt.Sprintf("%s/%s.json?%s", c.baseURL, url.PathEscape(query), params.Encode())
	start := time.Now()
	result, err := c.doRequest(ctx, u)
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
	case !result.Found():
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
		c.logger.Debug("no geocoding match", "query", query, "region", region)
	default:
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}
	return result, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.GeocodingResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("forward geocode request: %w", redactor{token: c.token}.wrap(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.GeocodingResult{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var mapboxResp response
	if err := json.NewDecoder(resp.Body).Decode(&mapboxResp); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode response: %w", err)
	}

	if len(mapboxResp.Features) == 0 {
		return domain.GeocodingResult{}, nil
	}

	f := mapboxResp.Features[0]
	result := domain.GeocodingResult{
		FormattedAddress: f.PlaceName,
		PlaceName:        f.Text,
		Confidence:       f.Relevance,
	}
	if len(f.Center) == 2 {
		result.Lon = f.Center[0]
		result.Lat = f.Center[1]
	}
	return result, nil
}

// redactor replaces the access token, raw or query-escaped, with a placeholder.
type redactor struct {
	token string
}

const redacted = "REDACTED"

func (r redactor) text(s string) string {
	if r.token == "" {
		return s
	}
	s = strings.ReplaceAll(s, url.QueryEscape(r.token), redacted)
	return strings.ReplaceAll(s, r.token, redacted)
}

func (r redactor) wrap(err error) error {
	msg := r.text(err.Error())
	if msg == err.Error() {
		return err
	}
	return &redactedError{msg: msg, err: err}
}

func (r redactor) args(kv []any) []any {
	out := make([]any, len(kv))
	for i, v := range kv {
		switch x := v.(type) {
		case string:
			out[i] = r.text(x)
		case error:
			out[i] = r.text(x.Error())
		case fmt.Stringer:
			out[i] = r.text(x.String())
		default:
			out[i] = v
		}
	}
	return out
}

// redactedError keeps the wrapped chain for errors.Is while hiding the token
// in its message.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// redactingLogger adapts slog to retryablehttp.LeveledLogger.
type redactingLogger struct {
	logger *slog.Logger
	redact redactor
}

func (l redactingLogger) Error(msg string, kv ...any) { l.logger.Error(msg, l.redact.args(kv)...) }
func (l redactingLogger) Info(msg string, kv ...any)  { l.logger.Info(msg, l.redact.args(kv)...) }
func (l redactingLogger) Debug(msg string, kv ...any) { l.logger.Debug(msg, l.redact.args(kv)...) }
func (l redactingLogger) Warn(msg string, kv ...any)  { l.logger.Warn(msg, l.redact.args(kv)...) }

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Center    []float64 `json:"center"` // [lon, lat]
	PlaceName string    `json:"place_name"`
	Text      string    `json:"text"`
	Relevance float64   `json:"relevance"`
}
