// Package api provides a typed client for the SENTINEL REST API. All
// console data comes through it: the client owns request construction,
// auth headers, error mapping, and optional response caching; the view
// models own everything after the JSON is decoded.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lvonguyen/sentinel-console/internal/metrics"
)

const apiPrefix = "/api/v1"

// APIError is a non-2xx response from the platform. Status codes are not
// distinguished beyond the message: the backend's "detail" field is used
// when present, otherwise a generic status line.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("API error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsAPIError reports whether err wraps an *APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// Config holds client settings.
type Config struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// DefaultConfig returns sensible client defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "http://localhost:8000",
		Timeout:   30 * time.Second,
		UserAgent: "sentinel-console/1.0",
	}
}

// Client talks to the SENTINEL API.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
	cache      *Cache // nil disables caching

	tokenFn func() string // returns the current bearer token, "" for anonymous
}

// NewClient creates a client. tokenFn supplies the current auth token per
// request so the client never holds session state itself; pass nil for an
// unauthenticated client.
func NewClient(config Config, logger *zap.Logger, tokenFn func() string) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if tokenFn == nil {
		tokenFn = func() string { return "" }
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
		tokenFn:    tokenFn,
	}
}

// WithCache attaches a read-through cache for idempotent GETs.
func (c *Client) WithCache(cache *Cache) *Client {
	c.cache = cache
	return c
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	fullURL := strings.TrimSuffix(c.config.BaseURL, "/") + apiPrefix + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if token := c.tokenFn(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

// do executes a request and decodes the JSON response into out. Non-2xx
// responses become *APIError with the backend's detail message when the
// body carries one.
func (c *Client) do(req *http.Request, out any) error {
	endpoint := req.Method + " " + req.URL.Path

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.APIRequests.WithLabelValues(endpoint, "transport_error").Inc()
		return fmt.Errorf("calling %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.APIRequests.WithLabelValues(endpoint, "api_error").Inc()
		apiErr := &APIError{StatusCode: resp.StatusCode}

		var body struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Detail != "" {
			apiErr.Detail = body.Detail
		}

		c.logger.Debug("API request failed",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return apiErr
	}

	metrics.APIRequests.WithLabelValues(endpoint, "ok").Inc()

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	return nil
}

// getJSON is the common GET path, with optional cache read-through.
func getJSON[T any](ctx context.Context, c *Client, path string, cacheTTL time.Duration) (T, error) {
	var out T

	if c.cache != nil && cacheTTL > 0 {
		if ok, err := c.cache.Get(ctx, path, &out); err == nil && ok {
			return out, nil
		}
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return out, err
	}
	if err := c.do(req, &out); err != nil {
		return out, err
	}

	if c.cache != nil && cacheTTL > 0 {
		// Best effort: a cache write failure never fails the read.
		if err := c.cache.Set(ctx, path, out, cacheTTL); err != nil {
			c.logger.Debug("cache write failed", zap.String("key", path), zap.Error(err))
		}
	}
	return out, nil
}

func postJSON[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return out, err
	}
	err = c.do(req, &out)
	return out, err
}

// Dashboard

func (c *Client) DashboardStats(ctx context.Context) (DashboardStats, error) {
	return getJSON[DashboardStats](ctx, c, "/dashboard/stats", 30*time.Second)
}

func (c *Client) DashboardTimeline(ctx context.Context, limit int) ([]TimelineEntry, error) {
	return getJSON[[]TimelineEntry](ctx, c, fmt.Sprintf("/dashboard/timeline?limit=%d", limit), 0)
}

func (c *Client) TopThreats(ctx context.Context, limit int) ([]TopThreat, error) {
	return getJSON[[]TopThreat](ctx, c, fmt.Sprintf("/dashboard/top-threats?limit=%d", limit), 0)
}

func (c *Client) FeedHealth(ctx context.Context) ([]FeedHealth, error) {
	return getJSON[[]FeedHealth](ctx, c, "/dashboard/feed-health", 0)
}

func (c *Client) GeoDistribution(ctx context.Context) ([]GeoPoint, error) {
	return getJSON[[]GeoPoint](ctx, c, "/dashboard/geo", 0)
}

func (c *Client) Trends(ctx context.Context, days int) ([]TrendPoint, error) {
	return getJSON[[]TrendPoint](ctx, c, fmt.Sprintf("/dashboard/trends?days=%d", days), 0)
}

func (c *Client) Notifications(ctx context.Context, limit int) ([]Notification, error) {
	return getJSON[[]Notification](ctx, c, fmt.Sprintf("/dashboard/notifications?limit=%d", limit), 0)
}

// IOCs

func (c *Client) GetIOC(ctx context.Context, id string) (IOCDetail, error) {
	return getJSON[IOCDetail](ctx, c, "/iocs/"+url.PathEscape(id), 0)
}

func (c *Client) SearchIOCs(ctx context.Context, filters SearchFilters) (Page[IOC], error) {
	return postJSON[Page[IOC]](ctx, c, "/iocs/search", filters)
}

func (c *Client) BulkLookup(ctx context.Context, values []string) ([]IOC, error) {
	return postJSON[[]IOC](ctx, c, "/iocs/bulk", map[string][]string{"values": values})
}

func (c *Client) UpdateIOCTags(ctx context.Context, id string, tags []string) (IOC, error) {
	var out IOC
	req, err := c.newRequest(ctx, http.MethodPut, "/iocs/"+url.PathEscape(id)+"/tags", map[string][]string{"tags": tags})
	if err != nil {
		return out, err
	}
	err = c.do(req, &out)
	return out, err
}

func (c *Client) GetIOCEnrichment(ctx context.Context, id string) ([]EnrichmentData, error) {
	return getJSON[[]EnrichmentData](ctx, c, "/iocs/"+url.PathEscape(id)+"/enrichment", 0)
}

func (c *Client) TriggerEnrichment(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/iocs/"+url.PathEscape(id)+"/enrich", nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) GetIOCRelationships(ctx context.Context, id string) ([]IOCRelationship, error) {
	return getJSON[[]IOCRelationship](ctx, c, "/iocs/"+url.PathEscape(id)+"/relationships", 0)
}

// Feeds

func (c *Client) ListFeeds(ctx context.Context) ([]FeedSource, error) {
	return getJSON[[]FeedSource](ctx, c, "/feeds", 0)
}

func (c *Client) CreateFeed(ctx context.Context, feed FeedCreate) (FeedSource, error) {
	return postJSON[FeedSource](ctx, c, "/feeds", feed)
}

func (c *Client) UpdateFeed(ctx context.Context, id string, update FeedUpdate) (FeedSource, error) {
	var out FeedSource
	req, err := c.newRequest(ctx, http.MethodPut, "/feeds/"+url.PathEscape(id), update)
	if err != nil {
		return out, err
	}
	err = c.do(req, &out)
	return out, err
}

func (c *Client) DeleteFeed(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/feeds/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) TriggerFeedSync(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/feeds/"+url.PathEscape(id)+"/sync", nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) FeedLogs(ctx context.Context, id string) (FeedLogs, error) {
	return getJSON[FeedLogs](ctx, c, "/feeds/"+url.PathEscape(id)+"/logs", 0)
}

// ATT&CK

func (c *Client) AttackHeatmap(ctx context.Context, minScore int) ([]HeatmapEntry, error) {
	return getJSON[[]HeatmapEntry](ctx, c, fmt.Sprintf("/attack/heatmap?min_score=%d", minScore), time.Minute)
}

func (c *Client) AttackMatrix(ctx context.Context) (AttackMatrix, error) {
	return getJSON[AttackMatrix](ctx, c, "/attack/matrix", time.Minute)
}

func (c *Client) AttackTechnique(ctx context.Context, id string) (TechniqueDetail, error) {
	return getJSON[TechniqueDetail](ctx, c, "/attack/techniques/"+url.PathEscape(id), 0)
}

// Reports

func (c *Client) ListReports(ctx context.Context) (Page[Report], error) {
	return getJSON[Page[Report]](ctx, c, "/reports", 0)
}

func (c *Client) GenerateReport(ctx context.Context, params map[string]any) (Report, error) {
	return postJSON[Report](ctx, c, "/reports/generate", params)
}

func (c *Client) DailyBrief(ctx context.Context) (Report, error) {
	return getJSON[Report](ctx, c, "/reports/daily-brief", 0)
}

// DownloadReport returns the rendered report body as text.
func (c *Client) DownloadReport(ctx context.Context, id string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/reports/"+url.PathEscape(id)+"/download", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading report %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// Users & auth

func (c *Client) Register(ctx context.Context, req RegisterRequest) (TokenResponse, error) {
	return postJSON[TokenResponse](ctx, c, "/users/register", req)
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	return postJSON[TokenResponse](ctx, c, "/users/login", req)
}

// Me validates a token against the who-am-I endpoint. The token argument
// overrides the client's session token, so it can probe a stored token
// before a session exists.
func (c *Client) Me(ctx context.Context, token string) (UserProfile, error) {
	var out UserProfile
	req, err := c.newRequest(ctx, http.MethodGet, "/users/me", nil)
	if err != nil {
		return out, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	err = c.do(req, &out)
	return out, err
}

func (c *Client) UpdateUser(ctx context.Context, id string, fields map[string]string) (UserProfile, error) {
	var out UserProfile
	req, err := c.newRequest(ctx, http.MethodPut, "/users/"+url.PathEscape(id), fields)
	if err != nil {
		return out, err
	}
	err = c.do(req, &out)
	return out, err
}

// AI

func (c *Client) Chat(ctx context.Context, messages []ChatMessage, chatContext string) (ChatResponse, error) {
	body := map[string]any{"messages": messages}
	if chatContext != "" {
		body["context"] = chatContext
	}
	return postJSON[ChatResponse](ctx, c, "/ai/chat", body)
}

func (c *Client) AnalyzeIOC(ctx context.Context, iocID string) (AIAnalysis, error) {
	return postJSON[AIAnalysis](ctx, c, "/ai/analyze/"+url.PathEscape(iocID), nil)
}

func (c *Client) AIReport(ctx context.Context) (Report, error) {
	return postJSON[Report](ctx, c, "/ai/report", nil)
}

func (c *Client) AIStatus(ctx context.Context) (AIStatus, error) {
	return getJSON[AIStatus](ctx, c, "/ai/status", 0)
}

// Health

func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	return c.do(req, &out)
}
