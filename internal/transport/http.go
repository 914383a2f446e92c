package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/dynamic-activities/internal/apperror"
	"github.com/rpggio/dynamic-activities/internal/bridge"
)

// maxBodyBytes bounds a JSON-RPC request body.
const maxBodyBytes = 1 << 20

// Handler dispatches bridge methods.
type Handler interface {
	Handle(ctx context.Context, method string, params json.RawMessage) (any, error)
}

// Server wires HTTP handlers.
type Server struct {
	handler Handler
	logger  *slog.Logger
	metrics http.Handler
	mcp     http.Handler
}

// Option customizes the router.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics serves h at /metrics, outside authentication.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithMCP mounts a streamable MCP handler at /mcp behind authentication.
func WithMCP(h http.Handler) Option {
	return func(s *Server) { s.mcp = h }
}

// NewServer creates an HTTP server router with middleware.
func NewServer(handler Handler, authMiddleware func(http.Handler) http.Handler, opts ...Option) *chi.Mux {
	srv := &Server{handler: handler, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(srv)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	if srv.metrics != nil {
		r.Method(http.MethodGet, "/metrics", srv.metrics)
	}

	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}
		r.Post("/rpc", srv.handleRPC)
		if srv.mcp != nil {
			r.Handle("/mcp", srv.mcp)
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(err, ErrParse) {
			WriteError(w, nil, ErrParseCode, "parse error", nil)
			return
		}
		WriteError(w, nil, ErrInvalidReq, "invalid request", nil)
		return
	}

	client, _ := ClientFromContext(r.Context())
	s.logger.Debug("rpc request", "method", req.Method, "client", client, "request_id", middleware.GetReqID(r.Context()))

	result, err := s.handler.Handle(r.Context(), req.Method, req.Params)
	if err != nil {
		s.writeHandlerError(w, req, err)
		return
	}

	WriteResult(w, req.ID, result)
}

func (s *Server) writeHandlerError(w http.ResponseWriter, req Request, err error) {
	var (
		paramsErr *bridge.ParamsError
		appErr    *apperror.Error
	)
	switch {
	case errors.As(err, &paramsErr):
		WriteError(w, req.ID, ErrInvalidParams, paramsErr.Error(), paramsErr.Fields())
	case errors.Is(err, bridge.ErrUnknownMethod):
		WriteError(w, req.ID, ErrMethodNotFound, "method not found", req.Method)
	case errors.As(err, &appErr):
		WriteError(w, req.ID, ErrApplication, appErr.Message, appErr)
	default:
		s.logger.Error("rpc handler failed", "method", req.Method, "error", err)
		WriteError(w, req.ID, ErrInternal, "internal error", nil)
	}
}
