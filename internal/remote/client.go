// Package remote is the HTTP client for the sprint, task, project and
// notification services.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	headerUserID    = "X-User-Id"
	headerRequestID = "X-Request-ID"
)

// Client talks to the backend services over their REST APIs.
type Client struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewClient creates a Client. A nil observer discards call events.
func NewClient(cfg Config, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}

	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		}
	}

	httpClient := base
	if cfg.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.Token,
			TokenType:   "Bearer",
		}))
	}

	return &Client{cfg: cfg, http: httpClient, observer: observer}
}

// request describes one logical service call.
type request struct {
	op         string
	method     string
	base       string
	path       string
	operatorID string
	ifMatch    string
	body       any
}

// response carries what callers may need beyond the decoded payload.
type response struct {
	status int
	header http.Header
}

// do executes r and decodes the payload into out (which may be nil).
// Only GET requests are retried.
func (c *Client) do(ctx context.Context, r request, out any) (*response, error) {
	start := time.Now()
	requestID := uuid.NewString()

	attempts := 1
	if r.method == http.MethodGet && c.cfg.MaxRetries > 0 {
		attempts += c.cfg.MaxRetries
	}

	var (
		resp    *response
		lastErr error
		tried   int
	)
	for tried < attempts {
		tried++
		resp, lastErr = c.attempt(ctx, r, requestID, out)
		if lastErr == nil || !retryable(resp, lastErr) || ctx.Err() != nil {
			break
		}
	}

	event := CallEvent{
		Op:        r.op,
		Method:    r.method,
		Path:      r.path,
		RequestID: requestID,
		Attempts:  tried,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   lastErr == nil,
		ErrorCode: errorCode(lastErr),
	}
	if resp != nil {
		event.StatusCode = resp.status
	}
	c.observer.OnCallComplete(event)

	return resp, lastErr
}

func (c *Client) attempt(ctx context.Context, r request, requestID string, out any) (*response, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s request: %w", r.op, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.method, strings.TrimRight(r.base, "/")+r.path, body)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", r.op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(headerRequestID, requestID)
	if r.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if r.operatorID != "" {
		httpReq.Header.Set(headerUserID, r.operatorID)
	}
	if r.ifMatch != "" {
		httpReq.Header.Set("If-Match", quoteETag(r.ifMatch))
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, r.op, err)
	}
	defer httpResp.Body.Close()

	resp := &response{status: httpResp.StatusCode, header: httpResp.Header}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return resp, transportError(ctx, r.op, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return resp, &APIError{
			Op:         r.op,
			StatusCode: httpResp.StatusCode,
			Message:    messageFrom(respBody, httpResp.StatusCode),
		}
	}

	if err := decodeData(r.op, httpResp.StatusCode, respBody, out); err != nil {
		return resp, err
	}
	return resp, nil
}

func transportError(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func retryable(resp *response, err error) bool {
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTimeout) {
		return true
	}
	return resp != nil && resp.status >= 500
}

func quoteETag(v string) string {
	if strings.HasPrefix(v, `"`) || strings.HasPrefix(v, `W/"`) {
		return v
	}
	return `"` + v + `"`
}
