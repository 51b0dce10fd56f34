package handler

import (
	"net/http"

	"pokeguess/internal/service"
)

// CatalogHandler serves the guessable name list
type CatalogHandler struct {
	catalogSvc *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogSvc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// Names handles GET /v1/catalog/names
func (h *CatalogHandler) Names(w http.ResponseWriter, r *http.Request) {
	names, err := h.catalogSvc.Names(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"names": names,
	})
}
