package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"govready/internal/model"
	"govready/internal/service"
)

// CollaborationHandler handles section workflow endpoints
type CollaborationHandler struct {
	collabSvc *service.CollaborationService
}

// NewCollaborationHandler creates a new collaboration handler
func NewCollaborationHandler(collabSvc *service.CollaborationService) *CollaborationHandler {
	return &CollaborationHandler{collabSvc: collabSvc}
}

// List handles GET /v1/assessments/{id}/sections/states
func (h *CollaborationHandler) List(w http.ResponseWriter, r *http.Request) {
	states, err := h.collabSvc.List(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, states)
}

// Get handles GET /v1/assessments/{id}/sections/{sectionId}/state
func (h *CollaborationHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	state, err := h.collabSvc.Get(r.Context(), vars["id"], vars["sectionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Transition handles POST /v1/assessments/{id}/sections/{sectionId}/transitions
func (h *CollaborationHandler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)

	var req model.TransitionRequest
	if !decode(w, r, &req) {
		return
	}

	state, err := h.collabSvc.Transition(r.Context(), actor, vars["id"], vars["sectionId"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Reassign handles POST /v1/assessments/{id}/sections/{sectionId}/assignee
func (h *CollaborationHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)

	var req model.ReassignRequest
	if !decode(w, r, &req) {
		return
	}

	state, err := h.collabSvc.Reassign(r.Context(), actor, vars["id"], vars["sectionId"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
