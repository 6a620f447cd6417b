package surrealoverlay

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/surrealdb/surrealoverlay/pkg/models"
	"github.com/surrealdb/surrealoverlay/pkg/store"
)

// maxBodyBytes bounds request bodies. Overlays are small documents.
const maxBodyBytes = 1 << 20

func (a *App) handleListOverlays(w http.ResponseWriter, r *http.Request) {
	overlays, err := a.gateway.List(r.Context())
	if err != nil {
		a.respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, overlays)
}

// handleCreateOverlay validates the body, fills the variant defaults and
// returns the stored overlay with 201.
//
//	POST /api/overlays
//	{"type": "text", "name": "Lower Third", "content": "Live"}
func (a *App) handleCreateOverlay(w http.ResponseWriter, r *http.Request) {
	var in models.Fields
	if !decodeBody(w, r, &in) {
		return
	}

	o, err := a.gateway.Create(r.Context(), in)
	if err != nil {
		a.respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (a *App) handleGetOverlay(w http.ResponseWriter, r *http.Request) {
	o, err := a.gateway.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		a.respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// handleUpdateOverlay merges a partial body into the stored overlay.
// Nested position, size and style objects merge key by key.
func (a *App) handleUpdateOverlay(w http.ResponseWriter, r *http.Request) {
	var patch models.Fields
	if !decodeBody(w, r, &patch) {
		return
	}

	o, err := a.gateway.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		a.respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (a *App) handleDeleteOverlay(w http.ResponseWriter, r *http.Request) {
	if err := a.gateway.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		a.respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.DeleteResponse{Message: models.DeletedMessage})
}

// handleHealth always answers 200 while the process can respond.
func (a *App) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthStatus{
		Status:   "healthy",
		Store:    string(a.config.Store),
		ReadOnly: a.IsReadOnly(),
		Time:     time.Now().Unix(),
	})
}

func (a *App) handleGetReadOnly(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, models.ReadOnlyStatus{ReadOnly: a.IsReadOnly()})
}

// handleSetReadOnly is unauthenticated; deployments are expected to keep
// /api/admin off the public network.
func (a *App) handleSetReadOnly(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReadOnly *bool `json:"readOnly"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ReadOnly == nil {
		respondError(w, http.StatusBadRequest, models.ErrMissingField.Error(), "Missing required field: readOnly")
		return
	}

	a.SetReadOnly(*req.ReadOnly)
	respondJSON(w, http.StatusOK, models.ReadOnlyStatus{ReadOnly: a.IsReadOnly()})
}

// decodeBody decodes a JSON request body into v. On failure it writes a 400
// invalid_json response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, models.CodeInvalidJSON, "Invalid request payload")
		return false
	}
	// The body must hold exactly one JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, models.CodeInvalidJSON, "Invalid request payload")
		return false
	}
	return true
}

// respondFailure maps gateway errors to status codes. Validation messages
// are client-correctable and returned verbatim; internal errors are logged
// and replaced by a generic message.
func (a *App) respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Code.Error(), verr.Message)
	case errors.Is(err, store.ErrInvalidIdentifier):
		respondError(w, http.StatusBadRequest, models.CodeInvalidIdentifier, "Invalid overlay ID")
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, models.CodeNotFound, "Overlay not found")
	case errors.Is(err, store.ErrReadOnly):
		respondError(w, http.StatusServiceUnavailable, models.CodeReadOnly, "Overlays are read-only during maintenance")
	default:
		a.log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		respondError(w, http.StatusInternalServerError, models.CodeInternal, "Internal server error")
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		response, _ = json.Marshal(models.APIError{Message: "Internal server error", Code: models.CodeInternal})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// respondError sends {"message": ..., "code": ...}.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, models.APIError{Message: message, Code: code})
}
