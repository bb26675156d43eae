package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fx-converter-go/internal/api"
	"fx-converter-go/internal/config"
	"fx-converter-go/internal/converter"
	"fx-converter-go/internal/widget"
	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestServer creates a new test server and a RestClient configured to use it.
func setupTestServer(t *testing.T, handler http.Handler) *RestClient {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &RestClient{
		client:  resty.New().SetBaseURL(server.URL),
		logger:  zap.NewNop(),
		limiter: rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
		backoff: time.Millisecond,
	}
}

// setupWidgetServer serves a running widget through the real API handlers.
func setupWidgetServer(t *testing.T) *RestClient {
	cfg := config.Default()
	cfg.Simulator.TickInterval = time.Hour // keep the rate at its initial value
	w := widget.New(cfg, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return setupTestServer(t, api.NewAPIServer(cfg.Server, w, zap.NewNop()).Handler())
}

func TestRestClient_EndToEnd(t *testing.T) {
	rc := setupWidgetServer(t)
	ctx := context.Background()

	snap, err := rc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.1000", snap.SimulatedRate)

	snap, err = rc.SetOverride(ctx, "1.12")
	require.NoError(t, err)
	assert.True(t, snap.OverrideActive)

	snap, err = rc.SetAmount(ctx, "50")
	require.NoError(t, err)
	assert.Equal(t, "56.00", snap.Output)

	snap, err = rc.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, converter.USDToEUR, snap.Mode)
	assert.Equal(t, "56.00", snap.Amount)

	snap, err = rc.SetMode(ctx, converter.EURToUSD)
	require.NoError(t, err)
	assert.Equal(t, converter.EURToUSD, snap.Mode)
	assert.Equal(t, "50.00", snap.Amount)

	rows, err := rc.History(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "50.00 EUR", rows[0].From)
	assert.Equal(t, "1.1200", rows[0].OverrideRate)
}

func TestRestClient_RejectedInput(t *testing.T) {
	rc := setupWidgetServer(t)

	_, err := rc.SetAmount(context.Background(), "12x")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "input rejected")
	require.NotNil(t, apiErr.Snapshot)
	assert.Equal(t, "", apiErr.Snapshot.Amount)
}

func TestRestClient_Retries(t *testing.T) {
	t.Run("Recovers after server errors", func(t *testing.T) {
		var calls atomic.Int32
		rc := setupTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/status", r.URL.Path)
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"simulated_rate":"1.1234"}`))
		}))

		snap, err := rc.Status(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "1.1234", snap.SimulatedRate)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("Gives up after max attempts", func(t *testing.T) {
		var calls atomic.Int32
		rc := setupTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))

		_, err := rc.History(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get history")
		assert.Contains(t, err.Error(), "request failed after 3 attempts")
		assert.Equal(t, int32(maxRetries), calls.Load())
	})

	t.Run("Does not retry a stopped widget", func(t *testing.T) {
		var calls atomic.Int32
		rc := setupTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"widget is stopped"}`))
		}))

		_, err := rc.Toggle(context.Background())

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "widget is stopped", apiErr.Message)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Stops on cancelled context", func(t *testing.T) {
		rc := setupTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		rc.backoff = time.Hour

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := rc.Status(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestNewRestClient(t *testing.T) {
	cfg := &config.Client{BaseURL: "http://localhost:9999", RateLimit: 5, RateLimitBurst: 2, Timeout: time.Second}
	rc := NewRestClient(cfg, zap.NewNop())

	require.NotNil(t, rc)
	assert.Equal(t, cfg.BaseURL, rc.client.BaseURL)
	assert.Equal(t, rate.Limit(5), rc.limiter.Limit())
	assert.Equal(t, 2, rc.limiter.Burst())
	assert.Equal(t, time.Second, rc.backoff)
}
