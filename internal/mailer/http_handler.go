package mailer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Handler exposes a test-send endpoint and the relay status.
type Handler struct {
	relay Relay
	log   *logrus.Entry
}

// NewHandler wires the mailer endpoints. The relay may be nil when no
// backend is configured; endpoints then report the missing setup.
func NewHandler(relay Relay, log *logrus.Entry) *Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Handler{relay: relay, log: log}
}

// Register mounts the mailer routes on the router.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/email/test", h.test).Methods(http.MethodPost)
	r.HandleFunc("/api/email/status", h.status).Methods(http.MethodGet)
}

type testRequest struct {
	FromEmail string `json:"fromEmail"`
	FromName  string `json:"fromName"`
	TestEmail string `json:"testEmail"`
}

type testResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Method  string `json:"method,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) test(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, testResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if req.FromEmail == "" || req.FromName == "" || req.TestEmail == "" {
		writeJSON(w, http.StatusBadRequest, testResponse{Error: "fromEmail, fromName and testEmail are required"})
		return
	}
	if h.relay == nil {
		writeJSON(w, http.StatusInternalServerError, testResponse{Error: "no mail relay configured"})
		return
	}

	msg := Message{
		FromEmail: req.FromEmail,
		FromName:  req.FromName,
		To:        req.TestEmail,
		Subject:   "Test E-Mail von Ihrem CRM System",
		HTML:      testBody(h.relay.Name()),
	}

	id, err := h.relay.Send(r.Context(), msg)
	if err != nil {
		h.log.WithError(err).Warn("test email delivery failed")
		writeJSON(w, http.StatusInternalServerError, testResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, testResponse{Success: true, ID: id, Method: h.relay.Name()})
}

func (h *Handler) status(w http.ResponseWriter, _ *http.Request) {
	status := map[string]any{"configured": h.relay != nil}
	if h.relay != nil {
		status["method"] = h.relay.Name()
	}
	writeJSON(w, http.StatusOK, status)
}

func testBody(method string) string {
	return fmt.Sprintf(
		`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Test E-Mail erfolgreich!</h2>
  <p>Diese Test-E-Mail wurde erfolgreich über %s gesendet.</p>
  <p><strong>Zeitpunkt:</strong> %s</p>
  <p><em>Diese Nachricht wurde automatisch generiert.</em></p>
</div>`,
		method,
		time.Now().Format("02.01.2006 15:04:05"),
	)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
