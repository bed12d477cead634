// Package api exposes the conversion pipeline over HTTP.
//
// The API mirrors the CLI surface: one endpoint per conversion direction
// plus validation and a health check. Requests and responses are JSON; the
// interchange XML travels inside JSON strings so callers never need
// multipart handling.
//
// # Endpoints
//
//   - POST /api/export   {diagram, options} → {xml, warnings}
//   - POST /api/import   {xml}              → {diagram, mode, format, warnings}
//   - POST /api/validate {xml}              → {valid, errors, warnings}
//   - GET  /healthz
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	flowerrors "github.com/skarven/flowsheet/pkg/errors"
	"github.com/skarven/flowsheet/pkg/graph"
	"github.com/skarven/flowsheet/pkg/pipeline"
)

// Server wires the conversion pipeline to an HTTP router.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// NewServer creates a server with the given logger.
// If logger is nil, the package default logger is used.
func NewServer(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner: pipeline.NewRunner(logger),
		logger: logger,
	}
}

// Router builds the chi router with all endpoints registered.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/export", s.handleExport)
		r.Post("/import", s.handleImport)
		r.Post("/validate", s.handleValidate)
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// =============================================================================
// Request/Response Types
// =============================================================================

// ExportRequest carries a diagram snapshot and export options.
type ExportRequest struct {
	Diagram graph.Snapshot   `json:"diagram"`
	Options pipeline.Options `json:"options"`
}

// ExportResponse carries the serialized document.
type ExportResponse struct {
	XML      string   `json:"xml"`
	Warnings []string `json:"warnings,omitempty"`
}

// ImportRequest carries interchange XML.
type ImportRequest struct {
	XML string `json:"xml"`
}

// ImportResponse carries the built diagram.
type ImportResponse struct {
	Diagram  graph.Snapshot `json:"diagram"`
	Mode     graph.Mode     `json:"mode"`
	Format   string         `json:"format"`
	Version  string         `json:"version,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// ValidateRequest carries interchange XML.
type ValidateRequest struct {
	XML string `json:"xml"`
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		s.logger.Error("write health response", "err", err)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.runner.Export(req.Diagram, req.Options)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.writeJSON(w, http.StatusOK, ExportResponse{
		XML:      result.XML,
		Warnings: result.Warnings,
	})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.runner.Import([]byte(req.XML), pipeline.Options{})
	if err != nil {
		status := http.StatusInternalServerError
		if flowerrors.Is(err, flowerrors.ErrCodeFatalParse) {
			status = http.StatusUnprocessableEntity
		}
		s.writeError(w, status, err)
		return
	}

	s.writeJSON(w, http.StatusOK, ImportResponse{
		Diagram:  result.Snapshot,
		Mode:     result.Mode,
		Format:   result.Format,
		Version:  result.Version,
		Warnings: result.Warnings,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.writeJSON(w, http.StatusOK, s.runner.Validate([]byte(req.XML)))
}

// =============================================================================
// JSON Helpers
// =============================================================================

// maxRequestBody caps request bodies at 16 MiB.
const maxRequestBody = 16 << 20

// decode reads a JSON request body into v, writing an error response and
// returning false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest,
			flowerrors.Wrap(flowerrors.ErrCodeInvalidInput, err, "decode request"))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Warn("request failed", "status", status, "err", err)
	s.writeJSON(w, status, errorResponse{
		Error: flowerrors.UserMessage(err),
		Code:  string(flowerrors.GetCode(err)),
	})
}
