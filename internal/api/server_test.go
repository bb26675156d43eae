package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fx-converter-go/internal/config"
	"fx-converter-go/internal/converter"
	"fx-converter-go/internal/history"
	"fx-converter-go/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockConverter is a mock implementation of the Converter interface.
type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) Snapshot(ctx context.Context) (widget.Snapshot, error) {
	args := m.Called()
	return args.Get(0).(widget.Snapshot), args.Error(1)
}

func (m *MockConverter) SetAmount(ctx context.Context, value string) (widget.Snapshot, error) {
	args := m.Called(value)
	return args.Get(0).(widget.Snapshot), args.Error(1)
}

func (m *MockConverter) SetOverride(ctx context.Context, value string) (widget.Snapshot, error) {
	args := m.Called(value)
	return args.Get(0).(widget.Snapshot), args.Error(1)
}

func (m *MockConverter) Toggle(ctx context.Context) (widget.Snapshot, error) {
	args := m.Called()
	return args.Get(0).(widget.Snapshot), args.Error(1)
}

func (m *MockConverter) SetMode(ctx context.Context, mode converter.Mode) (widget.Snapshot, error) {
	args := m.Called(mode)
	return args.Get(0).(widget.Snapshot), args.Error(1)
}

func setupTestServer(t *testing.T) (*MockConverter, *httptest.Server) {
	m := new(MockConverter)
	s := NewAPIServer(config.Server{Port: 0}, m, zap.NewNop())
	server := httptest.NewServer(s.Handler())
	t.Cleanup(server.Close)
	return m, server
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	_, server := setupTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatus(t *testing.T) {
	m, server := setupTestServer(t)
	m.On("Snapshot").Return(widget.Snapshot{SimulatedRate: "1.1000", Output: "0.00"}, nil)

	resp, err := http.Get(server.URL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var snap widget.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, "1.1000", snap.SimulatedRate)
	m.AssertExpectations(t)
}

func TestHistory(t *testing.T) {
	t.Run("Rows", func(t *testing.T) {
		m, server := setupTestServer(t)
		m.On("Snapshot").Return(widget.Snapshot{History: []history.Row{{From: "100.00 EUR", To: "110.00 USD"}}}, nil)

		resp, err := http.Get(server.URL + "/api/history")
		require.NoError(t, err)
		defer resp.Body.Close()

		var rows []history.Row
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "110.00 USD", rows[0].To)
	})

	t.Run("Empty is an array", func(t *testing.T) {
		m, server := setupTestServer(t)
		m.On("Snapshot").Return(widget.Snapshot{}, nil)

		resp, err := http.Get(server.URL + "/api/history")
		require.NoError(t, err)
		defer resp.Body.Close()

		var raw json.RawMessage
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
		assert.JSONEq(t, `[]`, string(raw))
	})
}

func TestMutations(t *testing.T) {
	testCases := []struct {
		name   string
		path   string
		body   string
		method string
		arg    any
	}{
		{name: "Amount", path: "/api/amount", body: `{"value":"100"}`, method: "SetAmount", arg: "100"},
		{name: "Override", path: "/api/override", body: `{"value":"1.12"}`, method: "SetOverride", arg: "1.12"},
		{name: "Mode", path: "/api/mode", body: `{"mode":"USD"}`, method: "SetMode", arg: converter.USDToEUR},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, server := setupTestServer(t)
			m.On(tc.method, tc.arg).Return(widget.Snapshot{Output: "110.00"}, nil)

			resp := post(t, server.URL+tc.path, tc.body)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			var snap widget.Snapshot
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
			assert.Equal(t, "110.00", snap.Output)
			m.AssertExpectations(t)
		})
	}
}

func TestToggle(t *testing.T) {
	m, server := setupTestServer(t)
	m.On("Toggle").Return(widget.Snapshot{Mode: converter.USDToEUR, Amount: "56.00"}, nil)

	resp := post(t, server.URL+"/api/toggle", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var snap widget.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, converter.USDToEUR, snap.Mode)
	assert.Equal(t, "56.00", snap.Amount)
}

func TestErrors(t *testing.T) {
	t.Run("Rejected input", func(t *testing.T) {
		m, server := setupTestServer(t)
		rejected := fmt.Errorf("%w: amount %q", widget.ErrInvalidInput, "1a")
		m.On("SetAmount", "1a").Return(widget.Snapshot{Amount: "1"}, rejected)

		resp := post(t, server.URL+"/api/amount", `{"value":"1a"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Contains(t, body.Error, "input rejected")
		require.NotNil(t, body.Snapshot)
		assert.Equal(t, "1", body.Snapshot.Amount)
	})

	t.Run("Malformed body", func(t *testing.T) {
		m, server := setupTestServer(t)

		resp := post(t, server.URL+"/api/override", `{`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		m.AssertNotCalled(t, "SetOverride", mock.Anything)
	})

	t.Run("Stopped widget", func(t *testing.T) {
		m, server := setupTestServer(t)
		m.On("Snapshot").Return(widget.Snapshot{}, widget.ErrStopped)

		resp, err := http.Get(server.URL + "/api/status")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("Unexpected error", func(t *testing.T) {
		m, server := setupTestServer(t)
		m.On("Toggle").Return(widget.Snapshot{}, errors.New("boom"))

		resp := post(t, server.URL+"/api/toggle", "")

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})

	t.Run("Wrong method", func(t *testing.T) {
		_, server := setupTestServer(t)

		resp, err := http.Get(server.URL + "/api/toggle")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}
