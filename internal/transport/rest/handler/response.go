package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"govready/internal/model"
	"govready/internal/service"
)

// ResponseHandler handles answer endpoints
type ResponseHandler struct {
	responseSvc *service.ResponseService
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(responseSvc *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{responseSvc: responseSvc}
}

// Upsert handles PUT /v1/assessments/{id}/responses/{questionId}
func (h *ResponseHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)

	var req model.UpsertResponseRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.responseSvc.Upsert(r.Context(), actor, vars["id"], vars["questionId"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// List handles GET /v1/assessments/{id}/responses
func (h *ResponseHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.responseSvc.List(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
