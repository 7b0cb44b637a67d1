package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"govready/internal/model"
	"govready/internal/service"
)

// AssessmentHandler handles assessment, resolution and scoring endpoints
type AssessmentHandler struct {
	assessmentSvc *service.AssessmentService
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(assessmentSvc *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentSvc: assessmentSvc}
}

// Create handles POST /v1/assessments
func (h *AssessmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req model.CreateAssessmentRequest
	if !decode(w, r, &req) {
		return
	}

	a, err := h.assessmentSvc.Create(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// Get handles GET /v1/assessments/{id}
func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.assessmentSvc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// List handles GET /v1/assessments?companyId=
func (h *AssessmentHandler) List(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("companyId")
	if companyID == "" {
		writeError(w, http.StatusBadRequest, "companyId is required")
		return
	}

	list, err := h.assessmentSvc.ListByCompany(r.Context(), companyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// UpdateContext handles PUT /v1/assessments/{id}/context
func (h *AssessmentHandler) UpdateContext(w http.ResponseWriter, r *http.Request) {
	var rc model.ResolutionContext
	if !decode(w, r, &rc) {
		return
	}

	a, err := h.assessmentSvc.UpdateContext(r.Context(), mux.Vars(r)["id"], rc)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Resolved handles GET /v1/assessments/{id}/resolved
func (h *AssessmentHandler) Resolved(w http.ResponseWriter, r *http.Request) {
	resolved, err := h.assessmentSvc.Resolve(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resolved)
}

// PreviewRequest is the request body for resolving a context without an assessment
type PreviewRequest struct {
	Context   model.ResolutionContext `json:"context"`
	AdminView bool                    `json:"adminView"`
}

// Preview handles POST /v1/resolve
func (h *AssessmentHandler) Preview(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req PreviewRequest
	if !decode(w, r, &req) {
		return
	}
	if req.AdminView && !actor.IsAdmin() {
		writeError(w, http.StatusForbidden, "admin view requires an admin token")
		return
	}

	resolved, err := h.assessmentSvc.Preview(r.Context(), req.Context, req.AdminView)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resolved)
}

// Score handles GET /v1/assessments/{id}/score
func (h *AssessmentHandler) Score(w http.ResponseWriter, r *http.Request) {
	score, err := h.assessmentSvc.Score(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

// Dashboard handles GET /v1/assessments/{id}/dashboard
func (h *AssessmentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.assessmentSvc.Dashboard(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Readiness handles GET /v1/companies/{companyId}/readiness?top=
func (h *AssessmentHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	companyID := mux.Vars(r)["companyId"]

	topStr := r.URL.Query().Get("top")
	top := 20
	if topStr != "" {
		if n, err := strconv.Atoi(topStr); err == nil && n > 0 {
			top = n
		}
	}

	entries, err := h.assessmentSvc.Readiness(r.Context(), companyID, top)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []model.ReadinessEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
