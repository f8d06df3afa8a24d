// Package api implements the FitScore REST API: recipe assessment, the item
// catalogue and dataset administration.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/fitscore/fitscore/internal/blob"
	"github.com/fitscore/fitscore/internal/dataset"
	"github.com/fitscore/fitscore/internal/recipe"
	"github.com/fitscore/fitscore/internal/store"
	"github.com/fitscore/fitscore/pkg/scoring"
)

// Catalog resolves request input and display names.
type Catalog interface {
	recipe.Resolver
	recipe.Namer
	Items(ctx context.Context) ([]store.CatalogItem, error)
	Schemes(ctx context.Context) ([]store.WeightingScheme, error)
	Ping(ctx context.Context) error
}

// Assessor scores recipes.
type Assessor interface {
	AssessRecipe(ctx context.Context, req scoring.RecipeRequest) (*scoring.Assessment, error)
}

// Handler is the top-level API handler for the FitScore service.
type Handler struct {
	catalog  Catalog
	assessor Assessor
	datasets *dataset.Service   // nil disables dataset administration
	reports  blob.StorageClient // nil disables report archiving
	cache    *PlanCache
	metrics  *Metrics
	logger   *slog.Logger
}

// Deps groups the optional collaborators of a Handler.
type Deps struct {
	Datasets *dataset.Service
	Reports  blob.StorageClient
	Cache    *PlanCache
	Metrics  *Metrics
	Logger   *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(catalog Catalog, assessor Assessor, deps Deps) *Handler {
	if deps.Cache == nil {
		deps.Cache = NewPlanCacheFromEnv()
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics(nil)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Handler{
		catalog:  catalog,
		assessor: assessor,
		datasets: deps.Datasets,
		reports:  deps.Reports,
		cache:    deps.Cache,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
}

// RegisterRoutes registers all API routes on the given ServeMux. Admin
// routes are wrapped with admin, typically APIKeyAuth.
func (h *Handler) RegisterRoutes(mux *http.ServeMux, admin func(http.Handler) http.Handler) {
	if admin == nil {
		admin = func(next http.Handler) http.Handler { return next }
	}

	mux.Handle("POST /calculate-recipe", h.instrument("calculate-recipe", h.handleCalculateRecipe))
	mux.Handle("GET /items", h.instrument("items", h.handleItems))
	mux.Handle("GET /schemes", h.instrument("schemes", h.handleSchemes))
	mux.Handle("GET /reports/{reportID}", h.instrument("report", h.handleGetReport))
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.Handle("GET /metrics", h.metrics.Handler())

	mux.Handle("GET /admin/datasets", admin(h.instrument("datasets", h.handleListDatasets)))
	mux.Handle("POST /admin/datasets/{datasetID}", admin(h.instrument("dataset-upload", h.handleUploadDataset)))
	mux.Handle("POST /admin/datasets/{datasetID}/import", admin(h.instrument("dataset-import", h.handleImportDataset)))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

// errorBody is the JSON body of every error response.
type errorBody struct {
	Detail      string   `json:"detail"`
	Errors      []string `json:"errors,omitempty"`
	ExceptionID string   `json:"exception_id"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Detail: msg, ExceptionID: uuid.NewString()})
}
