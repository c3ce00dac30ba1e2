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
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/coursehub-web/pkg/errors"
	"github.com/noah-isme/coursehub-web/pkg/middleware/requestid"
)

const maxResponseBytes = 4 << 20

// CallObserver receives timing for every backend round trip.
type CallObserver interface {
	ObserveBackendCall(endpoint string, status int, duration time.Duration)
}

// Client talks to the marketplace REST API.
type Client struct {
	baseURL  string
	http     *http.Client
	logger   *zap.Logger
	observer CallObserver
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver records call metrics.
func WithObserver(o CallObserver) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// New constructs a Client for baseURL (scheme://host[:port], without the /api suffix).
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errorMapper turns a non-successful backend answer into a typed error.
type errorMapper func(status int, message string) *appErrors.Error

type request struct {
	method   string
	path     string
	endpoint string
	token    string
	body     interface{}
	fallback string
	mapError errorMapper
}

// rawEnvelope mirrors the backend response shape with the payload left undecoded.
type rawEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// call performs req and decodes the envelope payload into T. A missing payload on success is
// returned as nil without error; callers that require data check for it.
func call[T any](ctx context.Context, c *Client, req request) (*T, error) {
	data, err := c.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNetwork, req.fallback)
	}
	return out, nil
}

// roundTrip executes req and returns the raw envelope data on success.
func (c *Client) roundTrip(ctx context.Context, req request) (json.RawMessage, error) {
	mapError := req.mapError
	if mapError == nil {
		mapError = defaultErrorMapper
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal, "failed to encode request")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal, req.fallback)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	if id := requestid.FromContext(ctx); id != "" {
		httpReq.Header.Set(requestid.HeaderKey, id)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		c.observe(req.endpoint, 0, duration)
		c.logger.Warn("backend request failed",
			zap.String("endpoint", req.endpoint),
			zap.Duration("latency", duration),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrNetwork, networkMessage(err, req.fallback))
	}
	defer resp.Body.Close()
	c.observe(req.endpoint, resp.StatusCode, duration)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNetwork, networkMessage(err, req.fallback))
	}

	env := rawEnvelope{Success: resp.StatusCode < http.StatusBadRequest}
	if len(bytes.TrimSpace(raw)) > 0 {
		if decodeErr := json.Unmarshal(raw, &env); decodeErr != nil {
			if resp.StatusCode >= http.StatusBadRequest {
				return nil, mapError(resp.StatusCode, req.fallback)
			}
			return nil, appErrors.Wrap(decodeErr, appErrors.ErrNetwork, req.fallback)
		}
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		status := resp.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadRequest
		}
		message := env.Message
		if message == "" {
			message = req.fallback
		}
		c.logger.Debug("backend rejected request",
			zap.String("endpoint", req.endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message))
		return nil, mapError(status, message)
	}

	return env.Data, nil
}

func (c *Client) observe(endpoint string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer.ObserveBackendCall(endpoint, status, duration)
	}
}

func networkMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request to the server timed out"
	case errors.Is(err, context.Canceled):
		return "request was cancelled"
	case fallback != "":
		return fallback
	default:
		return appErrors.ErrNetwork.Message
	}
}

func defaultErrorMapper(status int, message string) *appErrors.Error {
	switch {
	case status == http.StatusUnauthorized:
		return appErrors.Clone(appErrors.ErrUnauthorized, message)
	case status == http.StatusForbidden:
		return appErrors.Clone(appErrors.ErrForbidden, message)
	case status == http.StatusNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, message)
	case status >= http.StatusInternalServerError:
		return appErrors.Clone(appErrors.ErrNetwork, message)
	case status >= http.StatusBadRequest:
		return appErrors.Clone(appErrors.ErrValidation, message)
	default:
		return appErrors.Clone(appErrors.ErrNetwork, message)
	}
}

// credentialErrorMapper classifies login rejections as bad credentials rather than an
// expired session, so a failed login never triggers the global 401 logout.
func credentialErrorMapper(status int, message string) *appErrors.Error {
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return appErrors.Clone(appErrors.ErrInvalidCredentials, message)
	default:
		return defaultErrorMapper(status, message)
	}
}

// registrationErrorMapper classifies constraint violations (bad fields, duplicate email).
func registrationErrorMapper(status int, message string) *appErrors.Error {
	switch status {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return appErrors.Clone(appErrors.ErrValidation, message)
	default:
		return defaultErrorMapper(status, message)
	}
}

func pathf(format string, args ...interface{}) string {
	escaped := make([]interface{}, len(args))
	for i, a := range args {
		escaped[i] = url.PathEscape(fmt.Sprint(a))
	}
	return fmt.Sprintf(format, escaped...)
}
