package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fx-converter-go/internal/config"
	"fx-converter-go/internal/converter"
	"fx-converter-go/internal/history"
	"fx-converter-go/internal/widget"
	"go.uber.org/zap"
)

// Converter is the widget surface the API exposes.
type Converter interface {
	Snapshot(ctx context.Context) (widget.Snapshot, error)
	SetAmount(ctx context.Context, value string) (widget.Snapshot, error)
	SetOverride(ctx context.Context, value string) (widget.Snapshot, error)
	Toggle(ctx context.Context) (widget.Snapshot, error)
	SetMode(ctx context.Context, mode converter.Mode) (widget.Snapshot, error)
}

var _ Converter = (*widget.Widget)(nil)

// ValueRequest is the body of the amount and override endpoints.
type ValueRequest struct {
	Value string `json:"value"`
}

// ModeRequest is the body of the mode endpoint.
type ModeRequest struct {
	Mode converter.Mode `json:"mode"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error    string           `json:"error"`
	Snapshot *widget.Snapshot `json:"snapshot,omitempty"`
}

// APIServer provides an HTTP interface for the converter widget.
type APIServer struct {
	server    *http.Server
	converter Converter
	logger    *zap.Logger
}

// NewAPIServer creates a new APIServer listening on cfg.Port.
func NewAPIServer(cfg config.Server, c Converter, logger *zap.Logger) *APIServer {
	s := &APIServer{
		converter: c,
		logger:    logger.Named("api-server"),
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routes of the API.
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /api/status", s.statusHandler)
	mux.HandleFunc("GET /api/history", s.historyHandler)
	mux.HandleFunc("POST /api/amount", s.amountHandler)
	mux.HandleFunc("POST /api/override", s.overrideHandler)
	mux.HandleFunc("POST /api/toggle", s.toggleHandler)
	mux.HandleFunc("POST /api/mode", s.modeHandler)
	return mux
}

// Start runs the HTTP server in a new goroutine.
func (s *APIServer) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *APIServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}

func (s *APIServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *APIServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := s.converter.Snapshot(r.Context())
	s.respond(w, "status", snap, err)
}

func (s *APIServer) historyHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := s.converter.Snapshot(r.Context())
	if err != nil {
		s.respond(w, "history", snap, err)
		return
	}
	rows := snap.History
	if rows == nil {
		rows = []history.Row{}
	}
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *APIServer) amountHandler(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	if !s.decode(w, r, &req) {
		return
	}
	snap, err := s.converter.SetAmount(r.Context(), req.Value)
	s.respond(w, "amount", snap, err)
}

func (s *APIServer) overrideHandler(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	if !s.decode(w, r, &req) {
		return
	}
	snap, err := s.converter.SetOverride(r.Context(), req.Value)
	s.respond(w, "override", snap, err)
}

func (s *APIServer) toggleHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := s.converter.Toggle(r.Context())
	s.respond(w, "toggle", snap, err)
}

func (s *APIServer) modeHandler(w http.ResponseWriter, r *http.Request) {
	var req ModeRequest
	if !s.decode(w, r, &req) {
		return
	}
	snap, err := s.converter.SetMode(r.Context(), req.Mode)
	s.respond(w, "mode", snap, err)
}

func (s *APIServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.logger.Debug("Malformed request body", zap.String("path", r.URL.Path), zap.Error(err))
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "malformed request body"})
		return false
	}
	return true
}

func (s *APIServer) respond(w http.ResponseWriter, op string, snap widget.Snapshot, err error) {
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, snap)
	case errors.Is(err, widget.ErrInvalidInput):
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Snapshot: &snap})
	case errors.Is(err, widget.ErrStopped):
		s.writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	default:
		s.logger.Error("Widget request failed", zap.String("op", op), zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func (s *APIServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write response", zap.Error(err))
	}
}
