package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aretw0/lousa"
	"github.com/aretw0/lousa/internal/logging"
	"github.com/aretw0/lousa/pkg/board"
	"github.com/aretw0/lousa/pkg/equiv"
	"github.com/aretw0/lousa/pkg/ports"
	"github.com/aretw0/lousa/pkg/relay"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CheckResult is the structured output of check_equivalence.
type CheckResult struct {
	Verdict  string `json:"verdict" jsonschema_description:"equivalent, different or error"`
	Residual string `json:"residual,omitempty" jsonschema_description:"Simplified lhs - rhs when the sides differ"`
	Reason   string `json:"reason,omitempty" jsonschema_description:"Why the check could not run"`
	Message  string `json:"message" jsonschema_description:"Human-readable status line"`
}

// SolveResult is the structured output of solve_image.
type SolveResult struct {
	Content   string `json:"content" jsonschema_description:"Model answer in Markdown with LaTeX"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Snapshots int    `json:"snapshots" jsonschema_description:"Undo depth of the scratch board"`
}

// Server exposes the checker and the relay as MCP tools.
type Server struct {
	solver    relay.Solver
	settings  ports.SettingsStore
	boardOpts []board.Option
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithBoardOptions configures the scratch board built for every solve_image call.
func WithBoardOptions(opts ...board.Option) Option {
	return func(s *Server) { s.boardOpts = append(s.boardOpts, opts...) }
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a new MCP Server instance.
func NewServer(solver relay.Solver, store ports.SettingsStore, opts ...Option) *Server {
	s := &Server{
		solver:    solver,
		settings:  store,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("lousa-mcp", strings.TrimSpace(lousa.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: check_equivalence
	checkTool := mcp.NewTool("check_equivalence",
		mcp.WithDescription("Check whether two algebraic expressions are equivalent (symbolic, then numeric sampling)."),
		mcp.WithString("lhs", mcp.Required(), mcp.Description("Left-hand expression, e.g. (x+1)^2")),
		mcp.WithString("rhs", mcp.Required(), mcp.Description("Right-hand expression, e.g. x^2+2x+1")),
		mcp.WithOutputSchema[CheckResult](),
	)
	s.mcpServer.AddTool(checkTool, mcp.NewStructuredToolHandler(s.handleCheck))

	// TOOL: solve_image
	solveTool := mcp.NewTool("solve_image",
		mcp.WithDescription("Composite an image file onto a fresh board and ask the vision model to solve it."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to a PNG, JPEG, GIF, BMP or WebP file")),
		mcp.WithString("prompt", mcp.Description("Prompt override (defaults to the stored settings)")),
		mcp.WithOutputSchema[SolveResult](),
	)
	s.mcpServer.AddTool(solveTool, mcp.NewStructuredToolHandler(s.handleSolve))
}

func (s *Server) handleCheck(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CheckResult, error) {
	lhs, _ := args["lhs"].(string)
	rhs, _ := args["rhs"].(string)

	v := equiv.Check(lhs, rhs)
	return CheckResult{
		Verdict:  v.Kind.String(),
		Residual: v.Residual,
		Reason:   v.Reason,
		Message:  v.Message(),
	}, nil
}

func (s *Server) handleSolve(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SolveResult, error) {
	path, _ := args["path"].(string)
	if path == "" {
		return SolveResult{}, fmt.Errorf("path is required")
	}

	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return SolveResult{}, fmt.Errorf("failed to load settings: %w", err)
	}
	if prompt, ok := args["prompt"].(string); ok && strings.TrimSpace(prompt) != "" {
		cfg.Prompt = prompt
	}

	// 1. Composite onto a scratch board
	f, err := os.Open(path)
	if err != nil {
		return SolveResult{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	b, err := board.New(s.boardOpts...)
	if err != nil {
		return SolveResult{}, err
	}
	defer b.Close()
	if err := b.Upload(ctx, f).Wait(ctx); err != nil {
		return SolveResult{}, err
	}
	img, err := b.Export()
	if err != nil {
		return SolveResult{}, err
	}

	// 2. Relay
	resp, err := s.solver.Solve(ctx, relay.Request{
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		DataURL:     relay.DataURL(img),
		Prompt:      cfg.Prompt,
	})
	if err != nil {
		s.logger.Warn("MCP solve failed", "error", err)
		return SolveResult{}, fmt.Errorf("solve failed: %w", err)
	}

	return SolveResult{
		Content:   resp.Content,
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		Snapshots: b.Snapshots(),
	}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: lousa://settings
	s.mcpServer.AddResource(mcp.NewResource("lousa://settings", "Current Solve Settings",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		cfg, err := s.settings.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		jsonBytes, _ := json.Marshal(cfg)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "lousa://settings",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
