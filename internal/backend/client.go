// Package backend is the HTTP client of the prompt evaluation backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/AI2HU/promptpulse/internal/config"
	"github.com/AI2HU/promptpulse/internal/logger"
	"github.com/AI2HU/promptpulse/internal/models"
	"github.com/AI2HU/promptpulse/internal/normalize"
)

const (
	testPromptPath   = "/api/brands/test-prompt"
	gradeContentPath = "/api/brands/grade-content"
	mentionsPath     = "/api/brands/realtime-mentions"
	brandsPath       = "/api/brands/"

	// maxErrorBody bounds how much of a failed response is kept in errors
	maxErrorBody = 512
)

// ErrEmptyPrompt is returned when a prompt is empty
var ErrEmptyPrompt = errors.New("prompt cannot be empty")

// ProviderRequestError reports a failed call to the evaluation backend for one prompt
type ProviderRequestError struct {
	Prompt     string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *ProviderRequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("test prompt %q: status %d: %v", e.Prompt, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("test prompt %q: %v", e.Prompt, e.Err)
}

func (e *ProviderRequestError) Unwrap() error {
	return e.Err
}

// Client calls the evaluation backend
type Client struct {
	baseURL            string
	defaultBrand       string
	defaultCompetitors []string
	timeout            time.Duration
	httpClient         *http.Client
	limiter            *rate.Limiter
	log                *logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a client for the backend described by cfg
func New(cfg config.BackendConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:            strings.TrimRight(cfg.BaseURL, "/"),
		defaultBrand:       cfg.DefaultBrand,
		defaultCompetitors: append([]string(nil), cfg.DefaultCompetitors...),
		timeout:            cfg.RequestTimeout,
		httpClient:         &http.Client{},
	}
	if c.baseURL == "" {
		c.baseURL = config.DefaultBaseURL
	}
	if c.defaultBrand == "" {
		c.defaultBrand = config.DefaultBrand
	}
	if len(c.defaultCompetitors) == 0 {
		c.defaultCompetitors = append([]string(nil), config.DefaultCompetitors...)
	}
	if c.timeout <= 0 {
		c.timeout = config.DefaultRequestTimeout
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.GetLogger().Named("backend")
	}
	return c
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// TestPrompt asks the backend to evaluate prompt across its provider panel.
// An empty brandName or competitor list is replaced by the configured defaults.
// Exactly one request is made; failures are returned as *ProviderRequestError.
func (c *Client) TestPrompt(ctx context.Context, prompt, brandName string, competitors []string) (*models.PromptTestOutcome, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if brandName == "" {
		brandName = c.defaultBrand
	}
	if len(competitors) == 0 {
		competitors = c.defaultCompetitors
	}

	request := normalize.TestPromptRequest{
		Prompt:      prompt,
		BrandName:   brandName,
		Competitors: competitors,
	}

	var wire normalize.TestPromptResponse
	if status, err := c.postJSON(ctx, testPromptPath, request, &wire); err != nil {
		return nil, &ProviderRequestError{Prompt: prompt, StatusCode: status, Err: err}
	}

	c.log.Debug("prompt %q tested by %d providers", prompt, len(wire.DetailedResults))
	return normalize.Outcome(prompt, brandName, &wire), nil
}

// GradeContent asks the backend to grade content written for prompt
func (c *Client) GradeContent(ctx context.Context, prompt, content, brandName string) (*models.ContentGrade, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("content cannot be empty")
	}
	if brandName == "" {
		brandName = c.defaultBrand
	}

	request := normalize.GradeContentRequest{
		Prompt:    prompt,
		Content:   content,
		BrandName: brandName,
	}

	var wire normalize.GradeResponse
	if status, err := c.postJSON(ctx, gradeContentPath, request, &wire); err != nil {
		return nil, &ProviderRequestError{Prompt: prompt, StatusCode: status, Err: err}
	}

	return normalize.Grade(prompt, brandName, &wire), nil
}

// Analyze grades content for prompt on behalf of the default brand
func (c *Client) Analyze(ctx context.Context, content, prompt string) (*models.ContentGrade, error) {
	return c.GradeContent(ctx, prompt, content, "")
}

// RealtimeMentions asks the backend what its panel says about brandName and
// how visible the brand is. Empty prompts let the backend choose its search
// prompts; limit caps the mentions listed, not the totals.
func (c *Client) RealtimeMentions(ctx context.Context, brandName string, keywords, prompts []string, limit int) (*models.VisibilityReport, error) {
	if brandName == "" {
		brandName = c.defaultBrand
	}

	query := url.Values{}
	query.Set("brand_name", brandName)
	for _, kw := range keywords {
		query.Add("keywords", kw)
	}
	for _, p := range prompts {
		query.Add("prompts", p)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var wire normalize.MentionsResponse
	if status, err := c.doJSON(ctx, http.MethodGet, mentionsPath+"?"+query.Encode(), nil, &wire); err != nil {
		if status != 0 {
			return nil, fmt.Errorf("realtime mentions for %s: status %d: %w", brandName, status, err)
		}
		return nil, fmt.Errorf("realtime mentions for %s: %w", brandName, err)
	}

	c.log.Debug("%s: %d mentions, visibility %.1f", brandName, wire.Summary.TotalMentions, wire.VisibilityScore)
	return normalize.Visibility(&wire), nil
}

// Ping reports whether the backend answers on its brands endpoint
func (c *Client) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+brandsPath, nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("backend ping failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// postJSON posts body to path and decodes a 2xx response into out. It returns
// the response status code, or 0 when no response was received.
func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) (int, error) {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

// doJSON sends a request with an optional JSON body and decodes a 2xx response into out
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("backend error: %s", truncate(strings.TrimSpace(string(data)), maxErrorBody))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}

	return resp.StatusCode, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
