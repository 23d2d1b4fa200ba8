package dash

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/selmend/heal"
	"github.com/hazyhaar/selmend/report"
	"github.com/hazyhaar/selmend/visual"
)

func testServer(t *testing.T) (*Server, *report.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := report.OpenStore(filepath.Join(dir, "heals.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	visualPath := filepath.Join(dir, "visual-report.json")
	return New(store, visualPath, nil), store, visualPath
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	srv, _, _ := testServer(t)
	rr := get(t, srv.Router(), "/healthz")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestHealsEndpoint(t *testing.T) {
	srv, store, _ := testServer(t)
	ctx := context.Background()

	for _, ev := range []heal.Event{
		{OldSelector: "#a", NewSelector: "[id*='a']", Strategy: "attribute", Action: heal.ActionElementFound},
		{OldSelector: "#b", Action: heal.ActionHealingFailed, Attempts: 3},
	} {
		if err := store.Record(ctx, ev); err != nil {
			t.Fatal(err)
		}
	}

	rr := get(t, srv.Router(), "/api/heals?limit=10")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	var rows []report.HealRow
	if err := json.Unmarshal(rr.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv, store, _ := testServer(t)
	if err := store.Record(context.Background(), heal.Event{
		OldSelector: "#a", NewSelector: "nav a", Strategy: "structural", Action: heal.ActionElementFound,
	}); err != nil {
		t.Fatal(err)
	}

	rr := get(t, srv.Router(), "/api/heals/stats")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var stats report.Stats
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Total != 1 || stats.ByStrategy["structural"] != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestVisualEndpoint(t *testing.T) {
	srv, _, visualPath := testServer(t)

	// Missing report answers 404.
	if rr := get(t, srv.Router(), "/api/visual"); rr.Code != http.StatusNotFound {
		t.Fatalf("missing report status = %d", rr.Code)
	}

	rec := visual.NewRecorder("suite", visual.Config{Threshold: 0.1})
	rec.Add(visual.Result{Name: "landing", Passed: true, Matched: true})
	if err := rec.Write(visualPath); err != nil {
		t.Fatal(err)
	}

	rr := get(t, srv.Router(), "/api/visual")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var rep visual.Report
	if err := json.Unmarshal(rr.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.TestSuite != "suite" || rep.TotalComparisons != 1 {
		t.Fatalf("report = %+v", rep)
	}
}
