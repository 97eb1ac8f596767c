package relay

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
)

// Supported providers.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
)

// MaxTokens is sent with every completion request.
const MaxTokens = 1000

// DefaultTemperature replaces a zero temperature.
const DefaultTemperature = 0.2

// Request is the body of a solve call.
type Request struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	DataURL     string  `json:"dataUrl"`
	Prompt      string  `json:"prompt"`
}

// Response is the body of a successful solve call.
type Response struct {
	Content string `json:"content"`
}

// Error is a failed solve call. Status is the HTTP status to answer with.
type Error struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%d): %s", e.Message, e.Status, e.Details)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

func newError(status int, msg, details string) *Error {
	return &Error{Status: status, Message: msg, Details: details}
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// Solver answers solve requests. Service and Client both implement it.
type Solver interface {
	Solve(ctx context.Context, req Request) (*Response, error)
}

// DataURL encodes a PNG as an inline data URL.
func DataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// FailureMessage is the text shown in place of a solution when a solve fails.
func FailureMessage(err error) string {
	return fmt.Sprintf("❌ Error: %v. Tip: run a server that exposes /api/solve with your API key on the backend.", err)
}
