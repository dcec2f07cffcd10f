package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

type stubRelay struct {
	sent []Message
	fail bool
}

func (s *stubRelay) Send(_ context.Context, msg Message) (string, error) {
	if s.fail {
		return "", context.DeadlineExceeded
	}
	s.sent = append(s.sent, msg)
	return "stub-1", nil
}

func (s *stubRelay) Name() string { return "stub" }

func TestHandlerTestEmail(t *testing.T) {
	relay := &stubRelay{}
	router := mux.NewRouter()
	NewHandler(relay, nil).Register(router)

	body := `{"fromEmail":"crm@example.com","fromName":"Lead CRM","testEmail":"max@ex.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/email/test", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp testResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "stub-1", resp.ID)

	require.Len(t, relay.sent, 1)
	require.Equal(t, "max@ex.com", relay.sent[0].To)
	require.Equal(t, "Test E-Mail von Ihrem CRM System", relay.sent[0].Subject)
}

func TestHandlerTestEmailMissingFields(t *testing.T) {
	router := mux.NewRouter()
	NewHandler(&stubRelay{}, nil).Register(router)

	req := httptest.NewRequest(http.MethodPost, "/api/email/test", strings.NewReader(`{"fromEmail":"a@b.c"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerStatus(t *testing.T) {
	router := mux.NewRouter()
	NewHandler(nil, nil).Register(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/email/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, false, status["configured"])
}
