package api

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/fitscore/fitscore/internal/blob"
	"github.com/fitscore/fitscore/internal/dataset"
	"github.com/fitscore/fitscore/internal/logging"
	"github.com/fitscore/fitscore/internal/store"
	"github.com/fitscore/fitscore/pkg/lcia"
	"github.com/fitscore/fitscore/pkg/scoring"
)

type fakeCatalog struct {
	pingErr error
}

func (c *fakeCatalog) GeoByCountry(_ context.Context, iso3 string) (lcia.GeoID, error) {
	if iso3 == "FRA" {
		return 1, nil
	}
	return 0, &lcia.NotFoundError{Kind: "geography", Key: iso3}
}

func (c *fakeCatalog) ResolveScheme(_ context.Context, name string, id int) (lcia.Scheme, error) {
	if name != "" && id != 0 {
		return lcia.Scheme{}, &lcia.ValidationError{Field: "weighting scheme", Value: name, Reason: "both given"}
	}
	if id == 2 || name == "ef31_nr" {
		return lcia.Scheme{ID: 2, Name: lcia.SchemeEF31NR}, nil
	}
	if id != 0 {
		return lcia.Scheme{}, &lcia.NotFoundError{Kind: "weighting scheme", Key: "id"}
	}
	return lcia.Scheme{ID: 1, Name: lcia.DefaultScheme}, nil
}

func (c *fakeCatalog) Items(context.Context) ([]store.CatalogItem, error) {
	group := "viandes"
	return []store.CatalogItem{
		{ItemID: "20134", Country3: "FRA", ProductName: "Beef", Country: "France", InternationalCode: 250, Group: &group},
	}, nil
}

func (c *fakeCatalog) Schemes(context.Context) ([]store.WeightingScheme, error) {
	return []store.WeightingScheme{{SchemeID: 1, Name: "delphi_r0110"}}, nil
}

func (c *fakeCatalog) Name(_ context.Context, ref lcia.NameRef) (string, error) {
	switch r := ref.(type) {
	case lcia.StageRef:
		if name, ok := map[lcia.LCStageID]string{1: "Agriculture", 2: "Processing"}[r.ID]; ok {
			return name, nil
		}
	case lcia.CategoryRef:
		return "Climate change", nil
	case lcia.GeoRef:
		if r.ID == 1 {
			return "France", nil
		}
	case lcia.ItemRef:
		return "Beef", nil
	}
	return "", &lcia.NotFoundError{Kind: ref.Kind() + " name", Key: ref.Key()}
}

func (c *fakeCatalog) Ping(context.Context) error { return c.pingErr }

type fakeAssessor struct {
	mu   sync.Mutex
	last scoring.RecipeRequest
	err  error
}

func gv(scaled float64) lcia.GradedValue {
	return lcia.GradedValue{Raw: lcia.LCIAValue(scaled * 10), Scaled: scaled, Grade: lcia.GradeFromScaled(scaled)}
}

func result(scaled float64, proxy bool) *lcia.GradedLCIAResult {
	return &lcia.GradedLCIAResult{
		ContainsProxy:        proxy,
		SingleScore:          gv(scaled),
		StageValues:          map[lcia.LCStageID]lcia.GradedValue{1: gv(scaled), 2: gv(scaled / 2)},
		ImpactCategoryValues: map[lcia.ImpactCategoryID]lcia.GradedValue{1: gv(scaled)},
	}
}

func (a *fakeAssessor) AssessRecipe(_ context.Context, req scoring.RecipeRequest) (*scoring.Assessment, error) {
	a.mu.Lock()
	a.last = req
	a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	out := &scoring.Assessment{ID: "assessment-1", Scheme: req.Scheme, Recipe: result(0.4, false)}
	for _, it := range req.Items {
		out.Items = append(out.Items, scoring.ItemAssessment{Item: it, Result: result(0.4, false)})
		out.TotalMassKg += float64(it.Amount)
	}
	return out, nil
}

type testServer struct {
	*httptest.Server
	assessor *fakeAssessor
	catalog  *fakeCatalog
	cache    *PlanCache
	reports  blob.StorageClient
	db       *memDB
}

type memDB struct{ snap *store.Snapshot }

func (m *memDB) Dump(context.Context) (*store.Snapshot, error) { return m.snap, nil }
func (m *memDB) Replace(_ context.Context, s *store.Snapshot) error {
	m.snap = s
	return nil
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		assessor: &fakeAssessor{},
		catalog:  &fakeCatalog{},
		cache:    NewPlanCache(4),
		reports:  blob.NewLocalStorage(t.TempDir()),
		db:       &memDB{},
	}
	h := NewHandler(ts.catalog, ts.assessor, Deps{
		Datasets: dataset.NewService(ts.db, blob.NewLocalStorage(t.TempDir()), logging.Discard()),
		Reports:  ts.reports,
		Cache:    ts.cache,
		Logger:   logging.Discard(),
	})
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, APIKeyAuth("secret"))
	ts.Server = httptest.NewServer(CORS(mux))
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestCalculateRecipe(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/calculate-recipe", `{"items": {"24070-FRA": 0.5, "20134-FRA": 1.2}, "weighting_scheme_name": "ef31_nr"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if id := resp.Header.Get("X-Assessment-ID"); id != "assessment-1" {
		t.Errorf("X-Assessment-ID = %q", id)
	}

	doc := decode[map[string]map[string]any](t, resp)
	general := doc["Recipe Info"]["General Info"].(map[string]any)
	if general["Weighting Scheme"] != "ef31_nr" || general["Overall Mass"] != "1.7 kg" {
		t.Errorf("unexpected general info %v", general)
	}
	if _, ok := doc["Item Results"]["20134-FRA"]; !ok {
		t.Errorf("missing item result: %v", doc["Item Results"])
	}

	req := ts.assessor.last
	if req.Scheme.ID != 2 || len(req.Items) != 2 {
		t.Fatalf("unexpected scoring request %+v", req)
	}
	if req.Items[0].Key.ItemID != "20134" || req.Items[0].GeoID != 1 || req.Items[0].Amount != 1.2 {
		t.Errorf("items must be sorted by key and resolved: %+v", req.Items)
	}

	// The report is archived and can be fetched back.
	get, err := http.Get(ts.URL + "/reports/assessment-1")
	if err != nil {
		t.Fatal(err)
	}
	defer get.Body.Close()
	if get.StatusCode != http.StatusOK {
		t.Fatalf("GET report status = %d", get.StatusCode)
	}
	archived := decode[map[string]map[string]any](t, get)
	if _, ok := archived["Recipe Info"]["Single Score"]; !ok {
		t.Error("archived report lacks single score")
	}
}

func TestCalculateRecipeGzip(t *testing.T) {
	ts := newTestServer(t)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte(`{"items": {"20134-FRA": 2}}`))
	gz.Close()

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/calculate-recipe", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ts.assessor.last.Scheme.Name != lcia.DefaultScheme {
		t.Errorf("expected default scheme, got %v", ts.assessor.last.Scheme)
	}
}

func TestCalculateRecipeErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		assessErr  error
		wantStatus int
		wantDetail string
	}{
		{name: "malformed body", body: `{"items": `, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"items": {"20134-FRA": 1}, "scheme": "x"}`, wantStatus: http.StatusBadRequest},
		{name: "empty recipe", body: `{"items": {}}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "bad item key", body: `{"items": {"20134FRA": 1}}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "zero amount", body: `{"items": {"20134-FRA": 0}}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "unknown country", body: `{"items": {"20134-DEU": 1}}`, wantStatus: http.StatusNotFound},
		{name: "scheme name and id", body: `{"items": {"20134-FRA": 1}, "weighting_scheme_name": "ef31_nr", "weighting_scheme_id": 2}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "unknown scheme id", body: `{"items": {"20134-FRA": 1}, "weighting_scheme_id": 9}`, wantStatus: http.StatusNotFound},
		{
			name:       "missing values",
			body:       `{"items": {"20134-FRA": 1}}`,
			assessErr:  &lcia.MissingValuesError{ItemID: "20134", GeoID: 1, SchemeID: 1, SingleScore: true},
			wantStatus: http.StatusBadRequest,
			wantDetail: "single score",
		},
		{
			name:       "inconsistent bounds",
			body:       `{"items": {"20134-FRA": 1}}`,
			assessErr:  &lcia.BoundsError{SchemeID: 1, Dimension: "single score", Min: 2, Max: 1},
			wantStatus: http.StatusInternalServerError,
			wantDetail: "internal error",
		},
		{
			name:       "unclassified",
			body:       `{"items": {"20134-FRA": 1}}`,
			assessErr:  lcia.Classify("loading weighted values", errors.New("connection reset")),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "internal error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.assessor.err = tt.assessErr

			resp := postJSON(t, ts.URL+"/calculate-recipe", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			body := decode[errorBody](t, resp)
			if body.ExceptionID == "" {
				t.Error("expected an exception id")
			}
			if tt.wantDetail != "" && !strings.Contains(body.Detail, tt.wantDetail) {
				t.Errorf("detail = %q, want it to contain %q", body.Detail, tt.wantDetail)
			}
		})
	}
}

func TestItems(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/items")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	items := decode[map[string]map[string]any](t, resp)
	beef, ok := items["20134-FRA"]
	if !ok {
		t.Fatalf("expected key 20134-FRA, got %v", items)
	}
	if beef["product_name"] != "Beef" || beef["international_code"] != float64(250) || beef["subgroup"] != nil {
		t.Errorf("unexpected item %v", beef)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}

	ts.catalog.pingErr = errors.New("database is locked")
	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("healthz status = %d, want 503", resp.StatusCode)
	}

	postJSON(t, ts.URL+"/calculate-recipe", `{"items": {"20134-FRA": 1}}`)
	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	for _, want := range []string{
		`fitscore_api_requests_total{endpoint="calculate-recipe",method="POST",status="200"} 1`,
		`fitscore_recipe_grades_total{grade="C"} 1`,
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestAdminDatasets(t *testing.T) {
	ts := newTestServer(t)
	ts.cache.Put(1, &scoring.Plan{Scheme: 1})

	doc := `{"geographies": [{"geo_id": 1, "geo_shorthand_3": "FRA"}]}`

	resp := postJSON(t, ts.URL+"/admin/datasets/ciqual", doc)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("without key: status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/admin/datasets/ciqual", strings.NewReader(doc))
	req.Header.Set("X-API-Key", "secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status = %d, want 201", resp.StatusCode)
	}
	if ts.db.snap == nil || len(ts.db.snap.Geographies) != 1 {
		t.Error("dataset not loaded into the database")
	}
	if ts.cache.Len() != 0 {
		t.Error("plan cache must be purged after a dataset change")
	}

	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/admin/datasets", nil)
	req.Header.Set("X-API-Key", "secret")
	list, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer list.Body.Close()
	ids := decode[map[string][]string](t, list)
	if len(ids["datasets"]) != 1 || ids["datasets"][0] != "ciqual" {
		t.Errorf("unexpected dataset list %v", ids)
	}

	req, _ = http.NewRequest(http.MethodPost, ts.URL+"/admin/datasets/nope/import", nil)
	req.Header.Set("X-API-Key", "secret")
	missing, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("import of unknown dataset: status = %d, want 404", missing.StatusCode)
	}
}
