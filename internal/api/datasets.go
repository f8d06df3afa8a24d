package api

import (
	"net/http"

	"github.com/fitscore/fitscore/internal/dataset"
)

func (h *Handler) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	if h.datasets == nil {
		writeError(w, http.StatusNotFound, "dataset administration is disabled")
		return
	}
	ids, err := h.datasets.List(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "datasets", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"datasets": ids})
}

// handleUploadDataset stores the uploaded dataset and loads it into the
// database. Cached bounds are dropped afterwards.
func (h *Handler) handleUploadDataset(w http.ResponseWriter, r *http.Request) {
	if h.datasets == nil {
		writeError(w, http.StatusNotFound, "dataset administration is disabled")
		return
	}
	id := r.PathValue("datasetID")

	body, err := requestBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer body.Close()
	snap, err := dataset.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.datasets.Save(r.Context(), id, snap); err != nil {
		h.writeDomainError(w, r, "dataset-upload", err)
		return
	}
	m, err := h.datasets.Load(r.Context(), id, snap)
	if err != nil {
		h.writeDomainError(w, r, "dataset-upload", err)
		return
	}
	h.cache.Purge()
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) handleImportDataset(w http.ResponseWriter, r *http.Request) {
	if h.datasets == nil {
		writeError(w, http.StatusNotFound, "dataset administration is disabled")
		return
	}
	m, err := h.datasets.Import(r.Context(), r.PathValue("datasetID"))
	if err != nil {
		h.writeDomainError(w, r, "dataset-import", err)
		return
	}
	h.cache.Purge()
	writeJSON(w, http.StatusOK, m)
}
