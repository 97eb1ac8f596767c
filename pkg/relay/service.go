package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aretw0/lousa/internal/logging"
	"github.com/aretw0/lousa/pkg/domain"
	"github.com/aretw0/lousa/pkg/ports"
)

// DefaultTimeout bounds a single upstream call.
const DefaultTimeout = 2 * time.Minute

// Outcome describes a finished relay call, for metrics.
type Outcome struct {
	Provider string
	Status   int
	Duration time.Duration
}

// Service relays solve requests to the configured upstreams.
type Service struct {
	upstreams  map[string]Upstream
	lookupKey  func(string) string
	httpClient *http.Client
	audit      ports.AuditLog
	observe    func(Outcome)
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithUpstream adds or replaces a provider.
func WithUpstream(u Upstream) Option {
	return func(s *Service) {
		s.upstreams[u.Name] = u
	}
}

// WithKeyLookup replaces os.Getenv as the source of API keys.
func WithKeyLookup(fn func(string) string) Option {
	return func(s *Service) {
		s.lookupKey = fn
	}
}

// WithHTTPClient sets the client used for upstream calls.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		s.httpClient = c
	}
}

// WithAudit records every call in log.
func WithAudit(log ports.AuditLog) Option {
	return func(s *Service) {
		s.audit = log
	}
}

// WithObserver registers a callback invoked after every call.
func WithObserver(fn func(Outcome)) Option {
	return func(s *Service) {
		s.observe = fn
	}
}

// WithLogger configures a logger for the Service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a relay over DefaultUpstreams.
func NewService(opts ...Option) *Service {
	s := &Service{
		upstreams:  DefaultUpstreams(),
		lookupKey:  os.Getenv,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		observe:    func(Outcome) {},
		logger:     logging.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Providers reports, for each provider, whether its API key is configured.
func (s *Service) Providers() map[string]bool {
	out := make(map[string]bool, len(s.upstreams))
	for name, u := range s.upstreams {
		out[name] = strings.TrimSpace(s.lookupKey(u.KeyEnv)) != ""
	}
	return out
}

// Solve validates req and forwards it upstream once.
// Every failure is returned as an *Error.
func (s *Service) Solve(ctx context.Context, req Request) (*Response, error) {
	start := s.now()
	resp, err := s.solve(ctx, req)

	status := http.StatusOK
	if err != nil {
		status = StatusOf(err)
	}
	s.finish(ctx, req, status, err, s.now().Sub(start))
	return resp, err
}

func (s *Service) solve(ctx context.Context, req Request) (*Response, error) {
	// 1. Validate
	if req.DataURL == "" || req.Prompt == "" {
		return nil, newError(http.StatusBadRequest, "missing dataUrl or prompt", "")
	}
	up, ok := s.upstreams[req.Provider]
	if !ok {
		return nil, newError(http.StatusBadRequest, fmt.Sprintf("unsupported provider %q", req.Provider), "")
	}

	// 2. Server-side credential
	key := strings.TrimSpace(s.lookupKey(up.KeyEnv))
	if key == "" {
		return nil, newError(http.StatusInternalServerError,
			fmt.Sprintf("API key not configured for %s. Set the %s environment variable", up.Name, up.KeyEnv), "")
	}

	// 3. Build the single user message
	model := req.Model
	if model == "" {
		model = up.DefaultModel
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: req.Prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: req.DataURL}},
			},
		}},
		Temperature: temperature,
		MaxTokens:   MaxTokens,
	})
	if err != nil {
		return nil, newError(http.StatusInternalServerError, "failed to encode upstream request", err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, up.URL, bytes.NewReader(body))
	if err != nil {
		return nil, newError(http.StatusInternalServerError, "failed to create upstream request", err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+key)
	for k, v := range up.Headers {
		httpReq.Header.Set(k, v)
	}

	// 4. Call once
	s.logger.Debug("relaying solve request", "provider", up.Name, "model", model)
	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, newError(http.StatusBadGateway, fmt.Sprintf("%s API unreachable", up.Name), err.Error())
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, newError(http.StatusBadGateway, fmt.Sprintf("failed to read %s response", up.Name), err.Error())
	}

	// 5. Proxy upstream failures with their status
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		s.logger.Warn("upstream error", "provider", up.Name, "status", httpResp.StatusCode)
		return nil, newError(httpResp.StatusCode,
			fmt.Sprintf("%s API error: %d", up.Name, httpResp.StatusCode), string(respBody))
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, newError(http.StatusBadGateway, fmt.Sprintf("invalid %s response", up.Name), err.Error())
	}
	content := ""
	if len(chat.Choices) > 0 {
		content = chat.Choices[0].Message.Content
	}
	return &Response{Content: content}, nil
}

func (s *Service) finish(ctx context.Context, req Request, status int, err error, d time.Duration) {
	s.observe(Outcome{Provider: req.Provider, Status: status, Duration: d})
	if s.audit == nil {
		return
	}

	entry := domain.AuditEntry{
		Provider:   req.Provider,
		Model:      req.Model,
		Status:     status,
		Duration:   d,
		ImageBytes: len(req.DataURL),
		CreatedAt:  s.now().UTC(),
	}
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			entry.Error = e.Message
		} else {
			entry.Error = err.Error()
		}
	}
	// The audit trail must not fail the request.
	if aerr := s.audit.Record(context.WithoutCancel(ctx), entry); aerr != nil {
		s.logger.Warn("failed to record relay audit entry", "error", aerr)
	}
}
