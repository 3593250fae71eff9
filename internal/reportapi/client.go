// Package reportapi is the typed client for the report backend (/api/*).
package reportapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/seuros/vidpulse/internal/httpx"
)

// Backend paths.
const (
	PathPlatforms          = "/api/platforms"
	PathCountries          = "/api/countries"
	PathYearMonths         = "/api/year-months"
	PathGlobalAnalysis     = "/api/global-analysis"
	PathHashtagReport      = "/api/hashtag-report"
	PathTrendReport        = "/api/trend-report"
	PathPublishTiming      = "/api/publish-timing-analysis"
	PathCreatorPerformance = "/api/creator-performance"
	PathRegionAdReco       = "/api/region-ad-reco"
	PathPlatformDominance  = "/api/platform-dominance-extended"
)

// ErrDecode marks a response body that is not the expected JSON document.
var ErrDecode = errors.New("decode response")

// RequestError wraps transport and decode failures with the call that failed.
type RequestError struct {
	Op   string
	Path string
	Err  error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("reportapi: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// API is the backend surface the panels and loaders depend on.
type API interface {
	Platforms(ctx context.Context) ([]string, error)
	Countries(ctx context.Context) ([]Country, error)
	YearMonths(ctx context.Context) ([]YearMonth, error)
	GlobalAnalysis(ctx context.Context, req GlobalRequest) (*GlobalResponse, error)
	HashtagReport(ctx context.Context, req HashtagRequest) (*HashtagResponse, error)
	TrendReport(ctx context.Context, req TrendRequest) (*TrendResponse, error)
	PublishTiming(ctx context.Context, req TimingRequest) (*TimingResponse, error)
	CreatorPerformance(ctx context.Context, req CreatorRequest) (*CreatorResponse, error)
	RegionAdReco(ctx context.Context, req RegionRequest) (*RegionResponse, error)
	PlatformDominance(ctx context.Context, req DominanceRequest) (*DominanceResponse, error)
}

// Client talks to the backend over fasthttp. Requests are never retried.
type Client struct {
	baseURL string
	timeout time.Duration
	doer    httpx.Doer
}

// Option customises a Client.
type Option func(*Client)

// WithDoer replaces the underlying fasthttp client.
func WithDoer(d httpx.Doer) Option {
	return func(c *Client) {
		c.doer = d
	}
}

// NewClient builds a client for baseURL. A zero timeout leaves requests
// bounded only by the caller's context.
func NewClient(baseURL string, timeout time.Duration, options ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		timeout: timeout,
		doer: &fasthttp.Client{
			Name:                "vidpulse",
			MaxIdleConnDuration: 30 * time.Second,
		},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Platforms(ctx context.Context) ([]string, error) {
	var out []string
	return out, c.get(ctx, PathPlatforms, &out)
}

func (c *Client) Countries(ctx context.Context) ([]Country, error) {
	var out []Country
	return out, c.get(ctx, PathCountries, &out)
}

func (c *Client) YearMonths(ctx context.Context) ([]YearMonth, error) {
	var out []YearMonth
	return out, c.get(ctx, PathYearMonths, &out)
}

func (c *Client) GlobalAnalysis(ctx context.Context, req GlobalRequest) (*GlobalResponse, error) {
	return post[GlobalResponse](ctx, c, PathGlobalAnalysis, req)
}

func (c *Client) HashtagReport(ctx context.Context, req HashtagRequest) (*HashtagResponse, error) {
	return post[HashtagResponse](ctx, c, PathHashtagReport, req)
}

func (c *Client) TrendReport(ctx context.Context, req TrendRequest) (*TrendResponse, error) {
	return post[TrendResponse](ctx, c, PathTrendReport, req)
}

func (c *Client) PublishTiming(ctx context.Context, req TimingRequest) (*TimingResponse, error) {
	return post[TimingResponse](ctx, c, PathPublishTiming, req)
}

func (c *Client) CreatorPerformance(ctx context.Context, req CreatorRequest) (*CreatorResponse, error) {
	return post[CreatorResponse](ctx, c, PathCreatorPerformance, req)
}

func (c *Client) RegionAdReco(ctx context.Context, req RegionRequest) (*RegionResponse, error) {
	return post[RegionResponse](ctx, c, PathRegionAdReco, req)
}

func (c *Client) PlatformDominance(ctx context.Context, req DominanceRequest) (*DominanceResponse, error) {
	return post[DominanceResponse](ctx, c, PathPlatformDominance, req)
}

// get fetches a reference list. Any status is accepted as long as the body
// decodes.
func (c *Client) get(ctx context.Context, path string, dst any) error {
	_, body, err := httpx.Exchange(ctx, c.doer, fasthttp.MethodGet, c.baseURL+path, nil, c.timeout)
	if err != nil {
		return &RequestError{Op: "GET", Path: path, Err: err}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &RequestError{Op: "GET", Path: path, Err: fmt.Errorf("%w: %v", ErrDecode, err)}
	}
	return nil
}

// post sends one JSON body. The backend reports failures in-band through the
// envelope, so non-2xx answers that decode are returned as responses.
func post[T any](ctx context.Context, c *Client, path string, payload any) (*T, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, &RequestError{Op: "POST", Path: path, Err: err}
	}

	_, body, err := httpx.Exchange(ctx, c.doer, fasthttp.MethodPost, c.baseURL+path, raw, c.timeout)
	if err != nil {
		return nil, &RequestError{Op: "POST", Path: path, Err: err}
	}

	out := new(T)
	if err := json.Unmarshal(body, out); err != nil {
		return nil, &RequestError{Op: "POST", Path: path, Err: fmt.Errorf("%w: %v", ErrDecode, err)}
	}
	return out, nil
}

var _ API = (*Client)(nil)
