package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/mhartmann/leadcrm/internal/auth"
	"github.com/mhartmann/leadcrm/internal/repository"
)

const maxUploadBytes = 32 << 20

// Handler exposes the import pipeline over HTTP: upload/preview,
// commit, cancel, sample download, and the error audit log.
type Handler struct {
	store    repository.ContactRepository
	logs     repository.ImportLogRepository
	registry *Registry
	log      *logrus.Entry
}

// NewHandler wires the import endpoints.
func NewHandler(store repository.ContactRepository, logs repository.ImportLogRepository, log *logrus.Entry) *Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Handler{
		store:    store,
		logs:     logs,
		registry: NewRegistry(),
		log:      log,
	}
}

// Register mounts the import routes on the router.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/import/preview", h.preview).Methods(http.MethodPost)
	r.HandleFunc("/api/import/{id}/commit", h.commit).Methods(http.MethodPost)
	r.HandleFunc("/api/import/{id}", h.cancel).Methods(http.MethodDelete)
	r.HandleFunc("/api/import/sample", h.sample).Methods(http.MethodGet)
	r.HandleFunc("/api/import/logs", h.listLogs).Methods(http.MethodGet)
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid form data: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file required: %v", err))
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read file: %v", err))
		return
	}
	if len(payload) == 0 {
		writeError(w, http.StatusBadRequest, "file is empty")
		return
	}

	session := NewSession(userID, h.store, h.logs, h.log)
	preview, err := session.LoadFile(r.Context(), header.Filename, payload)
	if err != nil {
		writeError(w, statusForImportError(err), err.Error())
		return
	}

	h.registry.Add(session)
	writeJSON(w, http.StatusOK, preview)
}

func (h *Handler) commit(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	summary, err := session.Commit(r.Context(), func(processed, total int) {
		h.log.WithFields(logrus.Fields{
			"session":   session.ID(),
			"processed": processed,
			"total":     total,
		}).Debug("import progress")
	})
	if err != nil {
		writeError(w, statusForImportError(err), err.Error())
		return
	}

	h.registry.Remove(session.ID())
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	if err := session.Cancel(); err != nil {
		writeError(w, statusForImportError(err), err.Error())
		return
	}

	h.registry.Remove(session.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) sample(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("format") {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="leads_beispiel.csv"`)
		if err := WriteSampleCSV(w); err != nil {
			h.log.WithError(err).Error("failed to stream sample csv")
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="leads_beispiel.xlsx"`)
		if err := WriteSampleXLSX(w); err != nil {
			h.log.WithError(err).Error("failed to stream sample xlsx")
		}
	default:
		writeError(w, http.StatusBadRequest, "format must be csv or xlsx")
	}
}

func (h *Handler) listLogs(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	entries, err := h.logs.List(r.Context(), userID, r.URL.Query().Get("file"), 0, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return nil, false
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return nil, false
	}

	session, ok := h.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "import session not found")
		return nil, false
	}
	if session.userID != userID {
		writeError(w, http.StatusNotFound, "import session not found")
		return nil, false
	}

	return session, true
}

func statusForImportError(err error) int {
	switch {
	case errors.Is(err, ErrWrongPhase):
		return http.StatusConflict
	case errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrNotEnoughRows),
		errors.Is(err, ErrNoEmailColumn),
		errors.Is(err, ErrNoNameColumns),
		errors.Is(err, ErrNoValidRows):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
