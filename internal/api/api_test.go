package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/pedigraph/pedigraph/pkg/kin"
	"github.com/pedigraph/pedigraph/pkg/layout"
	"github.com/pedigraph/pedigraph/pkg/pipeline"
	"github.com/pedigraph/pedigraph/pkg/store"
)

func testServer() *Server {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	return New(runner, store.NewMemoryStore(), logger)
}

func testSnapshotJSON(t *testing.T) []byte {
	t.Helper()
	snap := kin.Snapshot{
		People: []kin.Person{
			{ID: "p1", GivenName: "Ada"},
			{ID: "p2", GivenName: "Ben"},
			{ID: "c1", GivenName: "Cleo"},
		},
		Edges: []kin.KinshipEdge{
			{ID: "e1", PersonA: "p1", PersonB: "p2", Kind: kin.KindSpouse},
			{ID: "e2", PersonA: "p1", PersonB: "c1", Kind: kin.KindParent},
		},
	}
	data, err := kin.MarshalSnapshot(snap)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestHealthAndVersion(t *testing.T) {
	srv := testServer()

	for _, path := range []string{"/healthz", "/version"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("GET %s content type = %q", path, ct)
		}
	}
}

func TestLayoutEndpoint(t *testing.T) {
	srv := testServer()

	body, _ := json.Marshal(map[string]any{
		"snapshot": json.RawMessage(testSnapshotJSON(t)),
		"options":  map[string]any{"focal_id": "c1"},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/layout", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res layout.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(res.Placements) != 3 {
		t.Errorf("placements = %d, want 3", len(res.Placements))
	}
}

func TestLayoutEndpointBadBody(t *testing.T) {
	srv := testServer()

	req := httptest.NewRequest(http.MethodPost, "/v1/layout", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INVALID_INPUT") {
		t.Errorf("expected INVALID_INPUT code in %s", rec.Body.String())
	}
}

func TestRenderEndpoint(t *testing.T) {
	srv := testServer()

	body, _ := json.Marshal(map[string]any{
		"snapshot": json.RawMessage(testSnapshotJSON(t)),
		"options":  map[string]any{"formats": []string{"svg"}},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/render", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q, want image/svg+xml", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "<svg") {
		t.Error("body should be an SVG document")
	}
	if rec.Header().Get("X-Snapshot-Hash") == "" {
		t.Error("snapshot hash header should be set")
	}
}

func TestSnapshotCRUD(t *testing.T) {
	srv := testServer()
	h := srv.Handler()
	snapJSON := testSnapshotJSON(t)

	// Put
	req := httptest.NewRequest(http.MethodPut, "/v1/snapshots/family", bytes.NewReader(snapJSON))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var saved store.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatal(err)
	}
	if saved.People != 3 {
		t.Errorf("record people = %d, want 3", saved.People)
	}

	// List
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/snapshots/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("LIST status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"family"`) {
		t.Error("list should contain the saved snapshot")
	}

	// Get
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/snapshots/family", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}

	// Render stored snapshot
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/snapshots/family/render?format=svg&focal=c1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("render status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(rec.Body.String(), "<svg") {
		t.Error("render body should be an SVG document")
	}

	// Layout for stored snapshot
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/snapshots/family/layout?focal=c1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("layout status = %d", rec.Code)
	}

	// Delete
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/snapshots/family", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", rec.Code)
	}

	// Missing after delete
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/snapshots/family", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET deleted status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "SNAPSHOT_NOT_FOUND") {
		t.Errorf("expected SNAPSHOT_NOT_FOUND code in %s", rec.Body.String())
	}
}

func TestRenderInvalidFormat(t *testing.T) {
	srv := testServer()

	req := httptest.NewRequest(http.MethodPut, "/v1/snapshots/fam", bytes.NewReader(testSnapshotJSON(t)))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatal("setup PUT failed")
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/snapshots/fam/render?format=tiff", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INVALID_FORMAT") {
		t.Errorf("expected INVALID_FORMAT code in %s", rec.Body.String())
	}
}
