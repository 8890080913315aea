// Package mcp exposes a node host as Model Context Protocol tools, so agents
// can build, attach, detach and release nodes the same way HTTP clients do.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/graft"
	"github.com/aretw0/graft/internal/logging"
	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/nodehost"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NodesURI is the resource listing every retained node.
const NodesURI = "graft://nodes"

const shutdownTimeout = 5 * time.Second

// NodeArgs names one retained node.
type NodeArgs struct {
	ID string `json:"id"`
}

// CreateArgs are the arguments of create_node.
type CreateArgs struct {
	ID   string `json:"id"`
	Kind string `json:"kind,omitempty"`
}

// EventsArgs are the arguments of list_events.
type EventsArgs struct {
	Limit int64 `json:"limit,omitempty"`
}

// KindsResponse lists the buildable node kinds.
type KindsResponse struct {
	Kinds []string `json:"kinds" jsonschema_description:"Node kinds create_node accepts"`
}

// NodesResponse lists retained nodes.
type NodesResponse struct {
	Nodes []nodehost.NodeView `json:"nodes"`
}

// ReleaseResponse confirms a release.
type ReleaseResponse struct {
	ID       string `json:"id" jsonschema_description:"The released node"`
	Released bool   `json:"released"`
}

// ReleasedResponse lists the nodes the host dropped.
type ReleasedResponse struct {
	Released []nodehost.ReleasedView `json:"released"`
}

// EventsResponse lists journaled bridge events, oldest first.
type EventsResponse struct {
	Events []domain.NodeEvent `json:"events"`
}

// Server wraps a node host and exposes it as an MCP server.
type Server struct {
	host      *nodehost.Host
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates an MCP server driving host.
func NewServer(host *nodehost.Host, opts ...Option) *Server {
	s := &Server{
		host:      host,
		mcpServer: server.NewMCPServer("graft-mcp", strings.TrimSpace(graft.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio serves on Stdin/Stdout until the input closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over Server-Sent Events on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "addr", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_kinds",
		mcp.WithDescription("List the node kinds the host can build."),
		mcp.WithOutputSchema[KindsResponse](),
	), mcp.NewStructuredToolHandler(s.handleListKinds))

	s.mcpServer.AddTool(mcp.NewTool("create_node",
		mcp.WithDescription("Build a detached node of the given kind and retain it under id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node ID, unique among retained nodes")),
		mcp.WithString("kind", mcp.Description("Node kind; defaults to router")),
	), mcp.NewStructuredToolHandler(s.handleCreate))

	s.mcpServer.AddTool(mcp.NewTool("list_nodes",
		mcp.WithDescription("List retained nodes with their lifecycle, sorted by ID."),
	), mcp.NewStructuredToolHandler(s.handleListNodes))

	s.mcpServer.AddTool(mcp.NewTool("get_node",
		mcp.WithDescription("Describe one retained node."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node ID")),
	), mcp.NewStructuredToolHandler(s.handleGet))

	s.mcpServer.AddTool(mcp.NewTool("attach_node",
		mcp.WithDescription("Attach a node: activate it, then load it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node ID")),
	), mcp.NewStructuredToolHandler(s.handleAttach))

	s.mcpServer.AddTool(mcp.NewTool("detach_node",
		mcp.WithDescription("Detach a node: deactivate it. It stays loaded."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node ID")),
	), mcp.NewStructuredToolHandler(s.handleDetach))

	s.mcpServer.AddTool(mcp.NewTool("release_node",
		mcp.WithDescription("Drop the host's reference to a node without detaching it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node ID")),
		mcp.WithOutputSchema[ReleaseResponse](),
	), mcp.NewStructuredToolHandler(s.handleRelease))

	s.mcpServer.AddTool(mcp.NewTool("list_released",
		mcp.WithDescription("List released nodes and whether each was reclaimed."),
		mcp.WithOutputSchema[ReleasedResponse](),
	), mcp.NewStructuredToolHandler(s.handleListReleased))

	s.mcpServer.AddTool(mcp.NewTool("list_events",
		mcp.WithDescription("List journaled attach and detach events, oldest first."),
		mcp.WithNumber("limit", mcp.Description("Return only the newest N events; 0 returns all"), mcp.Min(0)),
	), mcp.NewStructuredToolHandler(s.handleListEvents))
}

func (s *Server) handleListKinds(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (KindsResponse, error) {
	return KindsResponse{Kinds: s.host.Kinds()}, nil
}

func (s *Server) handleCreate(ctx context.Context, request mcp.CallToolRequest, args CreateArgs) (nodehost.NodeView, error) {
	view, err := s.host.Create(args.ID, args.Kind)
	if err != nil {
		s.logger.Debug("mcp create_node rejected", "id", args.ID, "error", err)
		return nodehost.NodeView{}, err
	}
	return view, nil
}

func (s *Server) handleListNodes(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (NodesResponse, error) {
	return NodesResponse{Nodes: s.host.List()}, nil
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest, args NodeArgs) (nodehost.NodeView, error) {
	return s.host.Get(args.ID)
}

func (s *Server) handleAttach(ctx context.Context, request mcp.CallToolRequest, args NodeArgs) (nodehost.NodeView, error) {
	return s.host.Attach(args.ID)
}

func (s *Server) handleDetach(ctx context.Context, request mcp.CallToolRequest, args NodeArgs) (nodehost.NodeView, error) {
	return s.host.Detach(args.ID)
}

func (s *Server) handleRelease(ctx context.Context, request mcp.CallToolRequest, args NodeArgs) (ReleaseResponse, error) {
	if err := s.host.Release(args.ID); err != nil {
		return ReleaseResponse{}, err
	}
	return ReleaseResponse{ID: args.ID, Released: true}, nil
}

func (s *Server) handleListReleased(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ReleasedResponse, error) {
	return ReleasedResponse{Released: s.host.Released()}, nil
}

func (s *Server) handleListEvents(ctx context.Context, request mcp.CallToolRequest, args EventsArgs) (EventsResponse, error) {
	if args.Limit < 0 {
		return EventsResponse{}, fmt.Errorf("limit must be non-negative, got %d", args.Limit)
	}
	events, err := s.host.Events(ctx, args.Limit)
	if err != nil {
		s.logger.Error("mcp list_events failed", "error", err)
		return EventsResponse{}, fmt.Errorf("list events: %w", err)
	}
	return EventsResponse{Events: events}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(NodesURI, "Retained Nodes",
		mcp.WithResourceDescription("Every node the host retains, with its lifecycle"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.host.List())
		if err != nil {
			return nil, fmt.Errorf("failed to encode nodes: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      NodesURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
