package api

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fitscore/fitscore/internal/blob"
	"github.com/fitscore/fitscore/internal/recipe"
	"github.com/fitscore/fitscore/pkg/surface"
)

// maxBodyBytes bounds recipe and dataset uploads.
const maxBodyBytes = 256 << 20

// recipeRequest is the JSON body for POST /calculate-recipe.
type recipeRequest struct {
	Items               map[string]float64 `json:"items"` // "<item_id>-<ISO3>" -> kg
	WeightingSchemeName string             `json:"weighting_scheme_name,omitempty"`
	WeightingSchemeID   int                `json:"weighting_scheme_id,omitempty"`
}

func (h *Handler) handleCalculateRecipe(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	scoringReq, err := recipe.BuildRequest(r.Context(), h.catalog, req.Items, req.WeightingSchemeName, req.WeightingSchemeID)
	if err != nil {
		h.writeDomainError(w, r, "calculate-recipe", err)
		return
	}

	a, err := h.assessor.AssessRecipe(r.Context(), scoringReq)
	if err != nil {
		h.writeDomainError(w, r, "calculate-recipe", err)
		return
	}

	report, err := recipe.BuildReport(r.Context(), h.catalog, a)
	if err != nil {
		h.writeDomainError(w, r, "calculate-recipe", err)
		return
	}
	h.metrics.RecordGrade(report.RecipeInfo.SingleScore.Grade)

	if h.reports != nil {
		if err := blob.PutJSON(r.Context(), h.reports, blob.KindReport, a.ID, report); err != nil {
			h.logger.Warn("failed to archive report", "id", a.ID, "error", err)
		}
	}
	w.Header().Set("X-Assessment-ID", a.ID)
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		writeError(w, http.StatusNotFound, "report archiving is disabled")
		return
	}
	var report surface.Report
	if err := blob.GetJSON(r.Context(), h.reports, blob.KindReport, r.PathValue("reportID"), &report); err != nil {
		h.writeDomainError(w, r, "report", err)
		return
	}
	writeJSON(w, http.StatusOK, &report)
}

// requestBody returns the size-limited body, decompressing gzip uploads.
func requestBody(w http.ResponseWriter, r *http.Request) (io.ReadCloser, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if r.Header.Get("Content-Encoding") != "gzip" {
		return body, nil
	}
	gz, err := gzip.NewReader(body)
	if err != nil {
		return nil, fmt.Errorf("invalid gzip body: %w", err)
	}
	return gz, nil
}

// decodeBody decodes a JSON request body, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := requestBody(w, r)
	if err != nil {
		return err
	}
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
