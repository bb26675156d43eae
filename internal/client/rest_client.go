package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"fx-converter-go/internal/api"
	"fx-converter-go/internal/config"
	"fx-converter-go/internal/converter"
	"fx-converter-go/internal/history"
	"fx-converter-go/internal/widget"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxRetries = 3

// RestClientInterface defines the operations of the converter API client.
type RestClientInterface interface {
	Status(ctx context.Context) (*widget.Snapshot, error)
	History(ctx context.Context) ([]history.Row, error)
	SetAmount(ctx context.Context, value string) (*widget.Snapshot, error)
	SetOverride(ctx context.Context, value string) (*widget.Snapshot, error)
	Toggle(ctx context.Context) (*widget.Snapshot, error)
	SetMode(ctx context.Context, mode converter.Mode) (*widget.Snapshot, error)
}

// RestClient is a client for the converter HTTP API.
// It implements the RestClientInterface.
type RestClient struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
	backoff time.Duration
}

// ensure RestClient implements the interface
var _ RestClientInterface = (*RestClient)(nil)

// APIError is a non-retryable error status returned by the server.
type APIError struct {
	StatusCode int
	Message    string
	Snapshot   *widget.Snapshot
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// NewRestClient creates a new API client.
func NewRestClient(cfg *config.Client, logger *zap.Logger) *RestClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &RestClient{
		client:  client,
		logger:  logger.Named("client"),
		limiter: limiter,
		backoff: time.Second,
	}
}

// Status fetches the current widget snapshot.
func (c *RestClient) Status(ctx context.Context) (*widget.Snapshot, error) {
	req := c.client.R().SetResult(&widget.Snapshot{})

	resp, err := c.doRequest(ctx, http.MethodGet, "/api/status", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	return resp.Result().(*widget.Snapshot), nil
}

// History fetches the retained conversions, newest first.
func (c *RestClient) History(ctx context.Context) ([]history.Row, error) {
	var rows []history.Row
	req := c.client.R().SetResult(&rows)

	if _, err := c.doRequest(ctx, http.MethodGet, "/api/history", req); err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return rows, nil
}

// SetAmount sends a new amount text.
func (c *RestClient) SetAmount(ctx context.Context, value string) (*widget.Snapshot, error) {
	snap, err := c.post(ctx, "/api/amount", api.ValueRequest{Value: value})
	if err != nil {
		return nil, fmt.Errorf("failed to set amount: %w", err)
	}
	return snap, nil
}

// SetOverride sends a new override text. Empty clears the override.
func (c *RestClient) SetOverride(ctx context.Context, value string) (*widget.Snapshot, error) {
	snap, err := c.post(ctx, "/api/override", api.ValueRequest{Value: value})
	if err != nil {
		return nil, fmt.Errorf("failed to set override: %w", err)
	}
	return snap, nil
}

// Toggle flips the conversion direction.
func (c *RestClient) Toggle(ctx context.Context) (*widget.Snapshot, error) {
	snap, err := c.post(ctx, "/api/toggle", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle mode: %w", err)
	}
	return snap, nil
}

// SetMode selects a conversion direction.
func (c *RestClient) SetMode(ctx context.Context, mode converter.Mode) (*widget.Snapshot, error) {
	snap, err := c.post(ctx, "/api/mode", api.ModeRequest{Mode: mode})
	if err != nil {
		return nil, fmt.Errorf("failed to set mode: %w", err)
	}
	return snap, nil
}

func (c *RestClient) post(ctx context.Context, path string, body any) (*widget.Snapshot, error) {
	req := c.client.R().
		SetHeader("Content-Type", "application/json").
		SetResult(&widget.Snapshot{})
	if body != nil {
		req.SetBody(body)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}
	return resp.Result().(*widget.Snapshot), nil
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *RestClient) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error

	req.SetContext(ctx)

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if err == nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				if seconds, convErr := strconv.Atoi(resp.Header().Get("Retry-After")); convErr == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 && statusCode != http.StatusServiceUnavailable {
				shouldRetry = true
			}
		} else if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, apiError(resp)
		}

		if retryAfter == 0 {
			// Exponential backoff: 1x, 2x, 4x
			retryAfter = time.Duration(math.Pow(2, float64(i))) * c.backoff
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err == nil {
		err = apiError(resp)
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

func apiError(resp *resty.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode(), Message: resp.Status()}

	var body api.ErrorResponse
	if jsonErr := json.Unmarshal(resp.Body(), &body); jsonErr == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Snapshot = body.Snapshot
	}
	return apiErr
}
