// Package http exposes a node host over HTTP.
//
// The routes and payloads are described by openapi.yaml, which the server
// serves on /openapi.yaml and uses to validate request bodies. Deleting a
// node drops the host's reference without detaching, exactly like a host
// that forgets its obligation.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/graft/internal/logging"
	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/nodehost"
	"github.com/aretw0/graft/pkg/observability"
	"github.com/aretw0/graft/pkg/ports"
	"github.com/aretw0/graft/pkg/registry"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NodeView is the JSON representation of a retained node.
type NodeView = nodehost.NodeView

// ReleasedView reports a node the server no longer references.
type ReleasedView = nodehost.ReleasedView

// Server is an HTTP front for a nodehost.Host.
type Server struct {
	host         *nodehost.Host
	doc          *openapi3.T
	createSchema *openapi3.Schema
	gatherer     prometheus.Gatherer
	logger       *slog.Logger
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

type config struct {
	logger   *slog.Logger
	registry *registry.Registry
	reg      *prometheus.Registry
	journal  ports.EventJournal
	hooks    []domain.LifecycleHooks
}

// Option configures the Server.
type Option func(*config)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithRegistry sets the node kinds the server can build.
func WithRegistry(r *registry.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithPrometheus registers the server metrics on reg and serves it on /metrics.
func WithPrometheus(reg *prometheus.Registry) Option {
	return func(c *config) {
		c.reg = reg
	}
}

// WithLifecycleHooks adds hooks to the server's bridge.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = append(c.hooks, hooks)
	}
}

// WithJournal records every bridge event in j and serves it on /events.
// The default is an in-memory journal.
func WithJournal(j ports.EventJournal) Option {
	return func(c *config) {
		c.journal = j
	}
}

// NewServer creates an HTTP host.
func NewServer(name string, opts ...Option) (*Server, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	if cfg.reg == nil {
		cfg.reg = prometheus.NewRegistry()
	}

	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}
	createRef, ok := doc.Components.Schemas["CreateRequest"]
	if !ok || createRef.Value == nil {
		return nil, errors.New("OpenAPI document has no CreateRequest schema")
	}

	metrics, err := observability.NewMetrics(cfg.reg)
	if err != nil {
		return nil, err
	}

	hostOpts := []nodehost.Option{
		nodehost.WithLogger(cfg.logger),
		nodehost.WithMetrics(metrics),
	}
	if cfg.registry != nil {
		hostOpts = append(hostOpts, nodehost.WithRegistry(cfg.registry))
	}
	if cfg.journal != nil {
		hostOpts = append(hostOpts, nodehost.WithJournal(cfg.journal))
	}
	for _, h := range cfg.hooks {
		hostOpts = append(hostOpts, nodehost.WithLifecycleHooks(h))
	}

	return &Server{
		host:         nodehost.New(name, hostOpts...),
		doc:          doc,
		createSchema: createRef.Value,
		gatherer:     cfg.reg,
		logger:       cfg.logger,
	}, nil
}

// Host returns the node host behind the server.
func (s *Server) Host() *nodehost.Host {
	return s.host
}

// Handler returns the chi router for the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		spec, err := rawSpec()
		if err != nil {
			http.Error(w, "Failed to load spec", http.StatusInternalServerError)
			s.logger.Error("failed to load OpenAPI document", "error", err)
			return
		}
		w.Header().Set("Content-Type", "text/yaml")
		if _, err := w.Write(spec); err != nil {
			s.logger.Warn("failed to write OpenAPI document", "error", err)
		}
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	handler := HandlerFromMux(s, r)
	return enableCORS(handler)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateNode handles POST /nodes. The body is checked against the
// CreateRequest schema before it is decoded.
func (s *Server) CreateNode(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Debug("create: malformed body", "error", err)
		return
	}
	if err := s.createSchema.VisitJSON(generic); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	var body CreateNodeJSONRequestBody
	if err := json.Unmarshal(raw, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	view, err := s.host.Create(body.ID, body.Kind)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, view)
}

// ListNodes handles GET /nodes.
func (s *Server) ListNodes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.host.List())
}

// GetNode handles GET /nodes/{id}.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request, id string) {
	view, err := s.host.Get(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// AttachNode handles POST /nodes/{id}/attach.
func (s *Server) AttachNode(w http.ResponseWriter, r *http.Request, id string) {
	view, err := s.host.Attach(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// DetachNode handles POST /nodes/{id}/detach.
func (s *Server) DetachNode(w http.ResponseWriter, r *http.Request, id string) {
	view, err := s.host.Detach(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// ReleaseNode handles DELETE /nodes/{id}. It drops the server's reference
// and does not detach.
func (s *Server) ReleaseNode(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.host.Release(id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListReleased handles GET /released.
func (s *Server) ListReleased(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.host.Released())
}

// ListEvents handles GET /events?limit=N.
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request, params ListEventsParams) {
	var limit int64
	if params.Limit != nil {
		if *params.Limit < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = *params.Limit
	}

	events, err := s.host.Events(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list events", "error", err)
		http.Error(w, "failed to list events", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNodeExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUnknownKind), errors.Is(err, domain.ErrInvalidNode):
		status = http.StatusBadRequest
	default:
		s.logger.Error("request failed", "error", err)
	}
	http.Error(w, err.Error(), status)
}
