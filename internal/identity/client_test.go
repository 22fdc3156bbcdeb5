package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVerifySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/authenticate", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "jdoe", body["username"])
		require.Equal(t, true, body["profile"])

		json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"profile": map[string]string{
				"name":   "Jane Doe",
				"srn":    "SRN123",
				"branch": "CSE",
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	profile, err := client.Verify(context.Background(), "jdoe", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", profile.Name)
	require.Equal(t, "SRN123", profile.ExternalRef)
}

func TestVerifyRejectedCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"status": false, "message": "bad password"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	_, err := client.Verify(context.Background(), "jdoe", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRejectionWithHTMLBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("<html><body>Forbidden</body></html>"))
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	_, err := client.Verify(context.Background(), "jdoe", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "identity down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	_, err := client.Verify(context.Background(), "jdoe", "hunter2")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyMissingProfileFallsBackToUsername(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": true})
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	profile, err := client.Verify(context.Background(), "jdoe", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "jdoe", profile.Name)
}
