package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/mhartmann/leadcrm/internal/auth"
	"github.com/mhartmann/leadcrm/internal/domain"
)

func newImportRouter(store *stubContactStore) *mux.Router {
	router := mux.NewRouter()
	NewHandler(store, &stubLogStore{}, nil).Register(router)
	return router
}

func doAsUser(router *mux.Router, req *http.Request, userID uuid.UUID) *httptest.ResponseRecorder {
	req = req.WithContext(auth.ContextWithUserID(context.Background(), userID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func multipartUpload(t *testing.T, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestHandlerPreviewAndCommit(t *testing.T) {
	store := &stubContactStore{
		contacts: []domain.Contact{{ID: uuid.New(), Email: "anna@ex.com"}},
	}
	router := newImportRouter(store)
	userID := uuid.New()

	body, contentType := multipartUpload(t, "leads.csv",
		"Vorname,Nachname,Email\nMax,Mustermann,max@ex.com\nAnna,Schmidt,anna@ex.com\n")
	req := httptest.NewRequest(http.MethodPost, "/api/import/preview", body)
	req.Header.Set("Content-Type", contentType)

	rec := doAsUser(router, req, userID)
	require.Equal(t, http.StatusOK, rec.Code)

	var preview Preview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	require.NotEqual(t, uuid.Nil, preview.SessionID)
	require.Len(t, preview.Outcome.NewLeads, 1)
	require.Len(t, preview.Outcome.Duplicates, 1)

	commitReq := httptest.NewRequest(http.MethodPost, "/api/import/"+preview.SessionID.String()+"/commit", nil)
	commitRec := doAsUser(router, commitReq, userID)
	require.Equal(t, http.StatusOK, commitRec.Code)

	var summary Summary
	require.NoError(t, json.Unmarshal(commitRec.Body.Bytes(), &summary))
	require.Equal(t, 1, summary.Created)
	require.Equal(t, 2, summary.Attempted)

	// the session is gone after commit
	again := doAsUser(router, httptest.NewRequest(http.MethodPost, "/api/import/"+preview.SessionID.String()+"/commit", nil), userID)
	require.Equal(t, http.StatusNotFound, again.Code)
}

func TestHandlerPreviewStructuralFailure(t *testing.T) {
	router := newImportRouter(&stubContactStore{})

	body, contentType := multipartUpload(t, "leads.csv", "Vorname,Nachname\nMax,Mustermann\n")
	req := httptest.NewRequest(http.MethodPost, "/api/import/preview", body)
	req.Header.Set("Content-Type", contentType)

	rec := doAsUser(router, req, uuid.New())
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, ErrNoEmailColumn.Error(), payload["error"])
}

func TestHandlerPreviewRequiresUser(t *testing.T) {
	router := newImportRouter(&stubContactStore{})

	body, contentType := multipartUpload(t, "leads.csv", "Vorname,Nachname,Email\nMax,M,m@ex.com\n")
	req := httptest.NewRequest(http.MethodPost, "/api/import/preview", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandlerCancel(t *testing.T) {
	router := newImportRouter(&stubContactStore{})
	userID := uuid.New()

	body, contentType := multipartUpload(t, "leads.csv", "Vorname,Nachname,Email\nMax,M,m@ex.com\n")
	req := httptest.NewRequest(http.MethodPost, "/api/import/preview", body)
	req.Header.Set("Content-Type", contentType)
	rec := doAsUser(router, req, userID)
	require.Equal(t, http.StatusOK, rec.Code)

	var preview Preview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))

	cancelRec := doAsUser(router, httptest.NewRequest(http.MethodDelete, "/api/import/"+preview.SessionID.String(), nil), userID)
	require.Equal(t, http.StatusNoContent, cancelRec.Code)
}

func TestHandlerSessionsAreUserScoped(t *testing.T) {
	router := newImportRouter(&stubContactStore{})
	owner := uuid.New()

	body, contentType := multipartUpload(t, "leads.csv", "Vorname,Nachname,Email\nMax,M,m@ex.com\n")
	req := httptest.NewRequest(http.MethodPost, "/api/import/preview", body)
	req.Header.Set("Content-Type", contentType)
	rec := doAsUser(router, req, owner)
	require.Equal(t, http.StatusOK, rec.Code)

	var preview Preview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))

	intruder := doAsUser(router, httptest.NewRequest(http.MethodPost, "/api/import/"+preview.SessionID.String()+"/commit", nil), uuid.New())
	require.Equal(t, http.StatusNotFound, intruder.Code)
}

func TestHandlerSampleDownload(t *testing.T) {
	router := newImportRouter(&stubContactStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/import/sample", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "leads_beispiel.csv")
	require.Contains(t, rec.Body.String(), "Vorname,Nachname,Email")

	recXLSX := httptest.NewRecorder()
	router.ServeHTTP(recXLSX, httptest.NewRequest(http.MethodGet, "/api/import/sample?format=xlsx", nil))
	require.Equal(t, http.StatusOK, recXLSX.Code)
	require.Contains(t, recXLSX.Header().Get("Content-Disposition"), "leads_beispiel.xlsx")
}
