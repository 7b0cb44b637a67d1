package handler

import (
	"net/http"
	"strings"

	"govready/internal/engine"
	"govready/internal/model"
	"govready/internal/service"
)

// CatalogHandler serves the reference catalog
type CatalogHandler struct {
	catalogSvc *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogSvc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// Personas handles GET /v1/catalog/personas
func (h *CatalogHandler) Personas(w http.ResponseWriter, r *http.Request) {
	personas, err := h.catalogSvc.ListPersonas(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, personas)
}

// Sections handles GET /v1/catalog/sections?category=&ids=a,b
func (h *CatalogHandler) Sections(w http.ResponseWriter, r *http.Request) {
	filter := model.SectionFilter{Category: r.URL.Query().Get("category")}
	if ids := r.URL.Query().Get("ids"); ids != "" {
		filter.IDs = strings.Split(ids, ",")
	}

	sections, err := h.catalogSvc.ListSections(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if sections == nil {
		sections = []model.Section{}
	}
	writeJSON(w, http.StatusOK, sections)
}

// Issues handles GET /v1/catalog/issues
func (h *CatalogHandler) Issues(w http.ResponseWriter, r *http.Request) {
	issues, err := h.catalogSvc.Validate(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if issues == nil {
		issues = []engine.CatalogIssue{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":  len(issues) == 0,
		"issues": issues,
	})
}
