package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/lousa/internal/logging"
	"github.com/aretw0/lousa/internal/metrics"
	"github.com/aretw0/lousa/pkg/board"
	"github.com/aretw0/lousa/pkg/domain"
	"github.com/aretw0/lousa/pkg/input"
	"github.com/aretw0/lousa/pkg/ports"
	"github.com/aretw0/lousa/pkg/relay"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MaxBodyBytes bounds JSON and image request bodies.
const MaxBodyBytes = 20 << 20

// Server holds the collaborators behind the HTTP surface.
type Server struct {
	solver   relay.Solver
	boards   *board.Manager
	settings ports.SettingsStore
	archive  ports.SolutionArchive
	audit    ports.AuditLog
	metrics  *metrics.Metrics
	version  string
	logger   *slog.Logger
	spec     *openapi3.T
	cameras  map[string]bool
}

// Option configures the Server.
type Option func(*Server)

// WithBoards exposes the board routes.
func WithBoards(m *board.Manager) Option {
	return func(s *Server) { s.boards = m }
}

// WithArchive stores every board solve and exposes /api/solutions.
func WithArchive(a ports.SolutionArchive) Option {
	return func(s *Server) { s.archive = a }
}

// WithAudit exposes /api/audit.
func WithAudit(a ports.AuditLog) Option {
	return func(s *Server) { s.audit = a }
}

// WithMetrics counts checks and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = strings.TrimSpace(v) }
}

// WithCameraURLs sets the snapshot URLs a capture request may open. Without any,
// capture only works on a camera opened in-process.
func WithCameraURLs(urls ...string) Option {
	return func(s *Server) {
		for _, u := range urls {
			if u = strings.TrimSpace(u); u != "" {
				s.cameras[u] = true
			}
		}
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer validates the embedded OpenAPI document and builds a Server.
func NewServer(solver relay.Solver, store ports.SettingsStore, opts ...Option) (*Server, error) {
	spec, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	s := &Server{
		solver:   solver,
		settings: store,
		version:  "dev",
		logger:   logging.NewNop(),
		spec:     spec,
		cameras:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/solve", s.Solve)
		r.Post("/check", s.Check)

		r.Get("/settings", s.GetSettings)
		r.Put("/settings", s.PutSettings)
		r.Delete("/settings", s.ClearSettings)

		if s.boards != nil {
			r.Get("/boards", s.ListBoards)
			r.Post("/boards", s.CreateBoard)
			r.Route("/boards/{id}", func(r chi.Router) {
				r.Delete("/", s.DeleteBoard)
				r.Post("/strokes", s.AddStroke)
				r.Post("/clear", s.ClearBoard)
				r.Post("/undo", s.UndoBoard)
				r.Post("/image", s.UploadImage)
				r.Post("/capture", s.CaptureFrame)
				r.Get("/image.png", s.ExportImage)
				r.Post("/solve", s.SolveBoard)
				r.Post("/report.pdf", s.ReportPDF)
			})
		}
		if s.archive != nil {
			r.Get("/solutions", s.ListSolutions)
			r.Get("/solutions/{id}", s.GetSolution)
		}
		if s.audit != nil {
			r.Get("/audit", s.RecentAudit)
		}
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Lousa API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "lousa-http",
		"version":     s.version,
		"api_version": apiVersion,
	})
}

// -- Helpers --

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorBody{Error: msg, Details: details})
}

// writeFailure maps domain and relay errors to a status and a JSON body.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	var relayErr *relay.Error
	if errors.As(err, &relayErr) {
		writeError(w, relay.StatusOf(err), relayErr.Message, relayErr.Details)
		return
	}
	var camErr *input.CameraError
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("request failed", "error", err)
	}
	if errors.As(err, &camErr) {
		writeError(w, status, "camera unavailable: "+camErr.Reason, "")
		return
	}
	writeError(w, status, err.Error(), "")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrBoardNotFound), errors.Is(err, domain.ErrSolutionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidGeometry), errors.Is(err, domain.ErrInvalidPen),
		errors.Is(err, domain.ErrInvalidMode), errors.Is(err, domain.ErrUndecodable),
		errors.Is(err, domain.ErrEmptyExpression), errors.Is(err, domain.ErrSyntax):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStaleLoad), errors.Is(err, domain.ErrCameraClosed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCameraUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body, validates it against schema and decodes it into dst.
// An empty body decodes to the zero value when allowEmpty is set.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, schema string, dst any, allowEmpty bool) bool {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large", err.Error())
		return false
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		if allowEmpty {
			return true
		}
		writeError(w, http.StatusBadRequest, "invalid request body", "empty body")
		return false
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	if schema != "" {
		if err := validateBody(s.spec, schema, generic); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return false
		}
	}
	if err := json.Unmarshal(data, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}
