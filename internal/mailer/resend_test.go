package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResendRelaySend(t *testing.T) {
	var got resendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "msg-123"})
	}))
	defer server.Close()

	relay := NewResendRelay("test-key")
	relay.endpoint = server.URL

	id, err := relay.Send(context.Background(), Message{
		FromEmail: "crm@example.com",
		FromName:  "Lead CRM",
		To:        "max@ex.com",
		Subject:   "Hallo",
		HTML:      "<p>Test</p>",
	})
	require.NoError(t, err)
	require.Equal(t, "msg-123", id)
	require.Equal(t, "Lead CRM <crm@example.com>", got.From)
	require.Equal(t, []string{"max@ex.com"}, got.To)
}

func TestResendRelayRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "Invalid API key"},
		})
	}))
	defer server.Close()

	relay := NewResendRelay("bad-key")
	relay.endpoint = server.URL

	_, err := relay.Send(context.Background(), Message{To: "max@ex.com"})
	require.ErrorContains(t, err, "Invalid API key")
}

func TestNewSelectsBackend(t *testing.T) {
	relay, err := New(configWith("resend", "key", ""))
	require.NoError(t, err)
	require.Equal(t, "resend", relay.Name())

	relay, err = New(configWith("smtp", "", "smtp.example.com"))
	require.NoError(t, err)
	require.Equal(t, "smtp", relay.Name())

	_, err = New(configWith("resend", "", ""))
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(configWith("pigeon", "", ""))
	require.Error(t, err)
}
