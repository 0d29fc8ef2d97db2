package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/mmhmddd/PowerEV-sub000/internal/util"

	"go.uber.org/zap"
)

// TokenSource supplies the bearer token attached to every authenticated
// request. An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// APIError is a non-2xx response from the upstream API. Message carries
// the backend's own error text when the body contained one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error %d", e.Status)
}

// ErrorMessage extracts the backend-provided message from err, or returns
// the empty string when none exists. Callers substitute their own
// localized fallback for empty results.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// Client talks to the upstream PowerEV catalog API. It injects the bearer
// token, adapts the response envelopes and reports a 401 to the
// unauthorized hook so the stored session can be dropped.
type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func(context.Context)
	logger         *zap.Logger
}

// NewClient creates an upstream API client. tokens and onUnauthorized may
// be nil.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, onUnauthorized func(context.Context)) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
		},
		tokens:         tokens,
		onUnauthorized: onUnauthorized,
		logger:         util.GetLogger(),
	}
}

// do issues one request and decodes a 2xx body into out when out is
// non-nil. collection is the low-cardinality metric label for the call.
func (c *Client) do(ctx context.Context, method, path, collection string, body, out any) error {
	ctx, span := util.StartSpan(ctx, "Backend."+method+" /"+collection)
	defer span.End()

	start := time.Now()
	defer func() {
		util.BackendRequestDuration.WithLabelValues(method, collection).Observe(time.Since(start).Seconds())
	}()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			c.logger.Warn("Failed to read auth token", zap.Error(err))
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		util.BackendRequestsTotal.WithLabelValues(method, collection, "transport_error").Inc()
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	util.BackendRequestsTotal.WithLabelValues(method, collection, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return &APIError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// readErrorMessage pulls {message} out of an error body when present.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}
