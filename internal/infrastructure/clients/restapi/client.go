package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/zatekoja/mediflow-admin/internal/domain/providers"
	"github.com/zatekoja/mediflow-admin/internal/infrastructure/observability"
	"github.com/zatekoja/mediflow-admin/pkg/config"
	apperrors "github.com/zatekoja/mediflow-admin/pkg/errors"
)

// HTTPClient talks JSON to the dashboard backend on behalf of one session
type HTTPClient struct {
	baseURL        string
	httpClient     *http.Client
	credentials    providers.CredentialProvider
	metrics        *observability.Metrics
	onUnauthorized func(ctx context.Context)
}

// Option configures an HTTPClient
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// WithMetrics records request metrics
func WithMetrics(m *observability.Metrics) Option {
	return func(c *HTTPClient) {
		c.metrics = m
	}
}

// WithUnauthorizedHandler replaces the reaction to a 401 answer.
// The default invalidates the session credentials.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *HTTPClient) {
		c.onUnauthorized = fn
	}
}

// NewClient creates a client for cfg.BaseURL that authenticates with credentials
func NewClient(cfg *config.APIConfig, credentials providers.CredentialProvider, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		credentials: credentials,
	}
	c.onUnauthorized = func(ctx context.Context) {
		if c.credentials != nil {
			c.credentials.Invalidate()
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request describes one backend call. route is the templated path used for spans and metrics.
type request struct {
	method      string
	path        string
	route       string
	query       url.Values
	body        io.Reader
	contentType string
	anonymous   bool
}

func jsonRequest(method, path, route string, payload any) (request, error) {
	req := request{method: method, path: path, route: route}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return req, apperrors.NewInternalError("failed to encode request body", err)
		}
		req.body = bytes.NewReader(data)
		req.contentType = "application/json"
	}
	return req, nil
}

// do sends req and decodes a 2xx JSON answer into out when out is non-nil.
// Every failure is returned as an *apperrors.AppError.
func (c *HTTPClient) do(ctx context.Context, req request, out any) (err error) {
	route := req.route
	if route == "" {
		route = req.path
	}
	ctx, span := observability.StartSpan(ctx, "api "+req.method+" "+route,
		attribute.String("http.method", req.method),
		attribute.String("http.route", route),
	)
	defer func() {
		if err != nil {
			observability.RecordError(span, err)
			span.SetStatus(codes.Error, apperrors.Message(err))
		}
		span.End()
	}()

	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, req.body)
	if err != nil {
		return apperrors.NewInternalError("failed to build request", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if !req.anonymous {
		if c.credentials == nil {
			return apperrors.NewUnauthorizedError("not signed in")
		}
		token, err := c.credentials.Token(ctx)
		if err != nil {
			return err
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		observability.RecordAPIMetric(ctx, c.metrics, req.method, route, 0, time.Since(start))
		return apperrors.NewNetworkError("request to backend failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	observability.RecordAPIMetric(ctx, c.metrics, req.method, route, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if err != nil {
		return apperrors.NewNetworkError("failed to read backend response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := errorFromResponse(resp.StatusCode, payload)
		observability.LoggerFromContext(ctx).Debug().
			Str("method", req.method).
			Str("route", route).
			Int("status", resp.StatusCode).
			Str("error", apiErr.Message).
			Msg("backend rejected request")
		if resp.StatusCode == http.StatusUnauthorized && !req.anonymous && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return apperrors.NewInternalError("failed to decode backend response", err)
	}
	return nil
}
