package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/port"
	"github.com/Mrinal-Agrawal21/veera-app/internal/metrics"
)

// Compile-time interface check.
var _ port.RiskModelClient = (*ModelClient)(nil)

const (
	DefaultTimeout       = 5 * time.Second
	DefaultRetryBackoff  = 2 * time.Second
	DefaultWarmUpTimeout = 10 * time.Second

	predictPath = "/predict"
	warmUpPath  = "/docs"

	maxResponseBytes = 1 << 20
)

var (
	// ErrBaseURLRequired is returned by NewModelClient when no model address
	// is configured. It is a deployment error.
	ErrBaseURLRequired = errors.New("model service base URL is required")

	// ErrModelResponseEmpty is a 2xx answer without a usable body. It is
	// retried once, like a server error.
	ErrModelResponseEmpty = errors.New("model returned an empty or unparsable response")

	// ErrModelTransport covers timeouts, refused connections and DNS failures.
	ErrModelTransport = errors.New("model transport failure")
)

// StatusError is a non-2xx answer from the model.
type StatusError struct {
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("model API error (status %d): %s", e.StatusCode, e.Body)
}

// ServerSide reports whether the status is a 5xx, the model's cold-start symptom.
func (e *StatusError) ServerSide() bool {
	return e.StatusCode >= 500 && e.StatusCode <= 599
}

// Config configures a ModelClient.
type Config struct {
	// Transport is wrapped with otelhttp; nil uses http.DefaultTransport.
	Transport http.RoundTripper

	BaseURL       string
	Timeout       time.Duration
	RetryBackoff  time.Duration
	WarmUpTimeout time.Duration
}

// ModelClient owns the HTTP relationship with the external scoring model.
// A call that hits a 5xx or an empty 2xx body is retried exactly once after
// RetryBackoff; everything else fails immediately.
type ModelClient struct {
	client        *http.Client
	logger        *slog.Logger
	predictURL    string
	warmUpURL     string
	retryBackoff  time.Duration
	warmUpTimeout time.Duration
	ready         atomic.Bool
}

// NewModelClient validates the base URL and builds a client. It performs no I/O.
func NewModelClient(cfg Config, logger *slog.Logger) (*ModelClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	backoff := cfg.RetryBackoff
	if backoff < 0 {
		backoff = 0
	} else if backoff == 0 {
		backoff = DefaultRetryBackoff
	}
	warmUp := cfg.WarmUpTimeout
	if warmUp <= 0 {
		warmUp = DefaultWarmUpTimeout
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &ModelClient{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		logger:        logger,
		predictURL:    base + predictPath,
		warmUpURL:     base + warmUpPath,
		retryBackoff:  backoff,
		warmUpTimeout: warmUp,
	}, nil
}

// PredictURL returns the resolved scoring endpoint.
func (c *ModelClient) PredictURL() string {
	return c.predictURL
}

// Ready reports whether the model answered the last warm-up or scoring call.
func (c *ModelClient) Ready() bool {
	return c.ready.Load()
}

// WarmUp sends one best-effort request to the model's docs page so that a
// sleeping deployment starts booting. Failure is logged and otherwise ignored;
// the first scoring call's retry covers a model that is still cold.
func (c *ModelClient) WarmUp(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.warmUpTimeout)
	defer cancel()

	err := c.probe(ctx)
	if err != nil {
		c.setReady(false)
		c.logger.Warn("model warm-up failed, first request will retry",
			slog.String("url", c.warmUpURL),
			slog.String("error", err.Error()),
		)
		return
	}

	c.setReady(true)
	c.logger.Info("model warm-up succeeded", slog.String("url", c.warmUpURL))
}

func (c *ModelClient) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.warmUpURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrModelTransport, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}

// Score sends the feature vector to {base}/predict. Every returned error
// wraps port.ErrModelUnavailable, except when ctx is cancelled: that error
// wraps context.Canceled and leaves readiness untouched.
func (c *ModelClient) Score(ctx context.Context, req port.ModelRiskRequest) (port.ModelRiskResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return port.ModelRiskResponse{}, fmt.Errorf("%w: encode request: %w", port.ErrModelUnavailable, err)
	}

	res, err := c.predict(ctx, body)
	if err == nil {
		c.setReady(true)
		return res, nil
	}
	if abandoned(ctx) {
		return port.ModelRiskResponse{}, abandonedError(ctx, err)
	}
	if !coldStartSymptom(err) {
		if errors.Is(err, ErrModelTransport) {
			c.setReady(false)
		}
		return port.ModelRiskResponse{}, fmt.Errorf("%w: %w", port.ErrModelUnavailable, err)
	}

	c.logger.Warn("model cold start suspected, retrying",
		slog.Duration("backoff", c.retryBackoff),
		slog.String("error", err.Error()),
	)
	metrics.ModelRetries.Inc()

	if err := sleep(ctx, c.retryBackoff); err != nil {
		if abandoned(ctx) {
			return port.ModelRiskResponse{}, abandonedError(ctx, err)
		}
		return port.ModelRiskResponse{}, fmt.Errorf("%w: retry abandoned: %w", port.ErrModelUnavailable, err)
	}

	res, err = c.predict(ctx, body)
	if err != nil {
		if abandoned(ctx) {
			return port.ModelRiskResponse{}, abandonedError(ctx, err)
		}
		c.setReady(false)
		return port.ModelRiskResponse{}, fmt.Errorf("%w: after retry: %w", port.ErrModelUnavailable, err)
	}

	c.setReady(true)
	return res, nil
}

// abandoned reports whether the caller cancelled ctx. Deadlines still count
// as the model being too slow.
func abandoned(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}

func abandonedError(ctx context.Context, err error) error {
	return fmt.Errorf("model request abandoned: %w: %w", ctx.Err(), err)
}

// predict performs a single attempt.
func (c *ModelClient) predict(ctx context.Context, body []byte) (port.ModelRiskResponse, error) {
	start := time.Now()
	defer func() {
		metrics.ModelRequestDuration.Observe(time.Since(start).Seconds())
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.predictURL, bytes.NewReader(body))
	if err != nil {
		return port.ModelRiskResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		metrics.ModelRequests.WithLabelValues("transport").Inc()
		return port.ModelRiskResponse{}, fmt.Errorf("%w: %w", ErrModelTransport, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.ModelRequests.WithLabelValues("transport").Inc()
		return port.ModelRiskResponse{}, fmt.Errorf("%w: read response body: %w", ErrModelTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(payload), 256)}
		if statusErr.ServerSide() {
			metrics.ModelRequests.WithLabelValues("server_error").Inc()
		} else {
			metrics.ModelRequests.WithLabelValues("client_error").Inc()
		}
		return port.ModelRiskResponse{}, statusErr
	}

	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		metrics.ModelRequests.WithLabelValues("empty").Inc()
		return port.ModelRiskResponse{}, ErrModelResponseEmpty
	}

	var result port.ModelRiskResponse
	if err := json.Unmarshal(trimmed, &result); err != nil {
		metrics.ModelRequests.WithLabelValues("empty").Inc()
		return port.ModelRiskResponse{}, fmt.Errorf("%w: %w", ErrModelResponseEmpty, err)
	}

	metrics.ModelRequests.WithLabelValues("ok").Inc()
	return result, nil
}

func (c *ModelClient) setReady(ok bool) {
	c.ready.Store(ok)
	if ok {
		metrics.ModelReady.Set(1)
	} else {
		metrics.ModelReady.Set(0)
	}
}

// coldStartSymptom reports whether err warrants the single retry.
func coldStartSymptom(err error) bool {
	if errors.Is(err, ErrModelResponseEmpty) {
		return true
	}
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.ServerSide()
}

// sleep waits for d or until ctx is done. Only the calling request waits.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
