package contacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/mhartmann/leadcrm/internal/auth"
	"github.com/mhartmann/leadcrm/internal/domain"
	"github.com/mhartmann/leadcrm/internal/repository"
)

// Handler exposes the contact store over HTTP.
type Handler struct {
	store repository.ContactRepository
	log   *logrus.Entry
}

// NewHandler wires the contact endpoints.
func NewHandler(store repository.ContactRepository, log *logrus.Entry) *Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Handler{store: store, log: log}
}

// Register mounts the contact routes on the router.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/contacts", h.list).Methods(http.MethodGet)
	r.HandleFunc("/api/contacts", h.create).Methods(http.MethodPost)
	r.HandleFunc("/api/contacts/export", h.export).Methods(http.MethodGet)
	r.HandleFunc("/api/contacts/{id}", h.update).Methods(http.MethodPut)
	r.HandleFunc("/api/contacts/{id}", h.delete).Methods(http.MethodDelete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	result, err := h.store.List(r.Context(), userID)
	if err != nil {
		h.log.WithError(err).Error("failed to list contacts")
		writeError(w, http.StatusInternalServerError, "failed to list contacts")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var fields domain.ContactFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if fields.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	contact, err := h.store.Create(r.Context(), userID, fields)
	if err != nil {
		h.log.WithError(err).Error("failed to create contact")
		writeError(w, http.StatusInternalServerError, "failed to create contact")
		return
	}

	writeJSON(w, http.StatusCreated, contact)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireUserID(r.Context()); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	var update domain.ContactUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	contact, err := h.store.Update(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "contact not found")
			return
		}
		h.log.WithError(err).Error("failed to update contact")
		writeError(w, http.StatusInternalServerError, "failed to update contact")
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireUserID(r.Context()); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "contact not found")
			return
		}
		h.log.WithError(err).Error("failed to delete contact")
		writeError(w, http.StatusInternalServerError, "failed to delete contact")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	result, err := h.store.List(r.Context(), userID)
	if err != nil {
		h.log.WithError(err).Error("failed to load contacts for export")
		writeError(w, http.StatusInternalServerError, "failed to export contacts")
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="contacts.csv"`)
		if err := WriteCSV(w, result); err != nil {
			h.log.WithError(err).Error("failed to stream contacts csv")
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="contacts.xlsx"`)
		if err := WriteXLSX(w, result); err != nil {
			h.log.WithError(err).Error("failed to stream contacts xlsx")
		}
	default:
		writeError(w, http.StatusBadRequest, "format must be csv or xlsx")
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
