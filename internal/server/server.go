package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/codeshield-io/codeshield/internal/analysis"
	"github.com/codeshield-io/codeshield/internal/review"
	"github.com/codeshield-io/codeshield/pkg/shared/config"
	"github.com/codeshield-io/codeshield/pkg/shared/errors"
)

const (
	AnalyzePath       = "/analyze"
	LegacyAnalyzePath = "/functions/v1/analyze-code"
	HealthPath        = "/healthz"

	RequestIDHeader = "X-Request-ID"

	corsAllowOrigin  = "*"
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
	corsAllowMethods = "POST, OPTIONS"
)

// Server exposes the analysis over HTTP.
type Server struct {
	analyzer review.Analyzer
	logger   hclog.Logger
	settings config.Server
}

type analyzeRequest struct {
	Code     interface{} `json:"code"`
	Language interface{} `json:"language"`
}

type analyzeResponse struct {
	Analysis analysis.Result `json:"analysis"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates a Server. A nil analyzer makes every analysis request fail
// with a not configured error while the process keeps serving.
func New(logger hclog.Logger, settings config.Server, analyzer review.Analyzer) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Server{
		analyzer: analyzer,
		logger:   logger,
		settings: settings,
	}
}

// Handler returns the routed handler with CORS and request id middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(AnalyzePath, s.handleAnalyze)
	mux.HandleFunc(LegacyAnalyzePath, s.handleAnalyze)
	mux.HandleFunc(HealthPath, s.handleHealth)
	return s.withRequestContext(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.settings.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "address", s.settings.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down", "timeout", s.settings.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.settings.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		w.Header().Set(RequestIDHeader, requestID)
		w.Header().Set("Access-Control-Allow-Origin", corsAllowOrigin)
		w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
		w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(hclog.WithContext(r.Context(), s.logger, "request_id", requestID)))
		s.logger.Debug("request served", "request_id", requestID, "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	logger := hclog.FromContext(r.Context())
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	req, err := s.decodeRequest(w, r)
	if err == nil {
		err = req.Validate()
	}
	if err == nil && s.analyzer == nil {
		err = &errors.ConfigError{Setting: "model API key"}
	}
	if err != nil {
		s.writeError(w, logger, err)
		return
	}

	result, err := review.Run(r.Context(), s.analyzer, req, logger)
	if err != nil {
		s.writeError(w, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Analysis: result})
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (review.Request, error) {
	body := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer body.Close()

	var payload analyzeRequest
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		if _, tooLarge := err.(*http.MaxBytesError); tooLarge {
			return review.Request{}, err
		}
		return review.Request{}, errors.NewValidationError("body", "malformed JSON")
	}

	code, ok := payload.Code.(string)
	if !ok {
		return review.Request{}, errors.NewValidationError("code", "must be a non-empty string")
	}
	req := review.Request{Code: code}
	if language, ok := payload.Language.(string); ok && language != "" {
		req.Language = &language
	}
	return req, nil
}

func (s *Server) writeError(w http.ResponseWriter, logger hclog.Logger, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("analysis failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: errors.PublicMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
