package relay_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/lousa/pkg/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Solve(t *testing.T) {
	var got relay.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/solve", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(relay.Response{Content: "x = 2"})
	}))
	defer srv.Close()

	resp, err := relay.NewClient(srv.URL+"/").Solve(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, "x = 2", resp.Content)
	assert.Equal(t, "solve", got.Prompt)
	assert.Equal(t, "openai", got.Provider)
}

func TestClient_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"API key not configured for openai","details":""}`))
	}))
	defer srv.Close()

	_, err := relay.NewClient(srv.URL).Solve(context.Background(), request())
	var relayErr *relay.Error
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, 500, relayErr.Status)
	assert.Equal(t, "API key not configured for openai", relayErr.Message)
	assert.Contains(t, relay.FailureMessage(err), "API key not configured for openai")
}

func TestClient_PlainErrorAndFallbacks(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/plain/api/solve", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	})
	mux.HandleFunc("/chat/api/solve", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"from choices"}}]}`))
	})
	mux.HandleFunc("/raw/api/solve", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":""}`))
	})

	_, err := relay.NewClient(srv.URL+"/plain").Solve(context.Background(), request())
	var relayErr *relay.Error
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, "HTTP 502", relayErr.Message)
	assert.Equal(t, "gateway down", relayErr.Details)

	resp, err := relay.NewClient(srv.URL+"/chat").Solve(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, "from choices", resp.Content)

	resp, err = relay.NewClient(srv.URL+"/raw").Solve(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, `{"content":""}`, resp.Content)
}
