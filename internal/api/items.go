package api

import (
	"net/http"

	"github.com/fitscore/fitscore/internal/store"
)

// handleItems lists the item catalogue keyed "<item_id>-<ISO3>".
func (h *Handler) handleItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Items(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "items", err)
		return
	}
	out := make(map[string]store.CatalogItem, len(items))
	for _, it := range items {
		out[it.Key()] = it
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleSchemes(w http.ResponseWriter, r *http.Request) {
	schemes, err := h.catalog.Schemes(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "schemes", err)
		return
	}
	writeJSON(w, http.StatusOK, schemes)
}
