package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/artpar/gridpatch/adapters/clock"
	apihttp "github.com/artpar/gridpatch/adapters/http"
	"github.com/artpar/gridpatch/adapters/idgen"
	"github.com/artpar/gridpatch/adapters/memory"
	"github.com/artpar/gridpatch/adapters/metrics"
	"github.com/artpar/gridpatch/adapters/xlsx"
	"github.com/artpar/gridpatch/app"
	"github.com/artpar/gridpatch/core/events"
	"github.com/artpar/gridpatch/domain/patch"
	"github.com/artpar/gridpatch/domain/table"
	"github.com/artpar/gridpatch/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

var stringShape = table.Shape{
	RowTypeName:    "pricingRow",
	CellsFieldName: "cells",
	CellType:       table.CellType{Name: "string"},
}

type testServer struct {
	router  chi.Router
	editor  *app.TableEditor
	bus     *events.Bus
	metrics *metrics.Collector
	feed    *apihttp.Feed
}

func setupTestServer(t *testing.T) testServer {
	t.Helper()
	return newTestServer(t, nil)
}

// newTestServer builds a server over a memory store, optionally wrapped.
func newTestServer(t *testing.T, wrap func(ports.DocumentStore) ports.DocumentStore) testServer {
	t.Helper()

	clk := clock.NewTicking(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Millisecond)
	var store ports.DocumentStore = memory.NewDocumentStore(idgen.NewSequential("doc_"), clk)
	if wrap != nil {
		store = wrap(store)
	}
	bus := events.NewBus(zerolog.Nop())
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	editor := app.NewTableEditor(app.EditorDeps{
		Store:   store,
		Keys:    idgen.NewSequential("k"),
		Clock:   clk,
		Bus:     bus,
		Metrics: m,
		Logger:  zerolog.Nop(),
	}, app.EditorConfig{
		DocumentType: "page",
		Field:        "pricing",
		Shape:        stringShape,
	})

	feed := apihttp.NewFeed(editor, bus, m, zerolog.Nop(), apihttp.FeedConfig{WriteTimeout: time.Second})
	router := apihttp.NewRouter(apihttp.NewTableHandler(editor, zerolog.Nop()), zerolog.Nop(), apihttp.RouterConfig{
		Metrics:       m,
		EnableOpenAPI: true,
		Feed:          feed,
		Version:       "1.2.3",
	})

	return testServer{router: router, editor: editor, bus: bus, metrics: m, feed: feed}
}

func (s testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	case []byte:
		r = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s testServer) createDocument(t *testing.T, pricing any) string {
	t.Helper()
	body := map[string]any{"title": "Plans"}
	if pricing != nil {
		body["pricing"] = pricing
	}
	rec := s.do(t, "POST", "/api/v1/documents", apihttp.CreateDocumentRequest{Body: body})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body)
	}
	var doc apihttp.DocumentResponse
	decode(t, rec, &doc)
	return doc.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body apihttp.ErrorResponseBody
	decode(t, rec, &body)
	return body.Error.Code
}

func twoByTwo() []any {
	return []any{
		map[string]any{"_type": "pricingRow", "_key": "r1", "cells": []any{"a", "b"}},
		map[string]any{"_type": "pricingRow", "_key": "r2", "cells": []any{"c", "d"}},
	}
}

func TestHealthAndVersion(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, "GET", "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}

	rec = s.do(t, "GET", "/version", nil)
	var v apihttp.VersionResponse
	decode(t, rec, &v)
	if v.Version != "1.2.3" || v.Service != "gridpatch" {
		t.Errorf("version = %+v", v)
	}
}

func TestDocuments(t *testing.T) {
	s := setupTestServer(t)
	id := s.createDocument(t, nil)

	rec := s.do(t, "GET", "/api/v1/documents", nil)
	var docs []apihttp.DocumentResponse
	decode(t, rec, &docs)
	if len(docs) != 1 || docs[0].ID != id || docs[0].Type != "page" {
		t.Errorf("list = %+v", docs)
	}

	rec = s.do(t, "GET", "/api/v1/documents/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var doc apihttp.DocumentResponse
	decode(t, rec, &doc)
	if doc.Rev != 1 || doc.Body["title"] != "Plans" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestCreateDocument_Errors(t *testing.T) {
	s := setupTestServer(t)
	s.do(t, "POST", "/api/v1/documents", apihttp.CreateDocumentRequest{ID: "home", Body: map[string]any{}})

	tests := []struct {
		name     string
		body     any
		wantCode int
		wantErr  string
	}{
		{"duplicate id", apihttp.CreateDocumentRequest{ID: "home"}, http.StatusConflict, "document_exists"},
		{"bad json", "{", http.StatusBadRequest, "bad_request"},
		{"malformed table", apihttp.CreateDocumentRequest{Body: map[string]any{"pricing": "nope"}}, http.StatusUnprocessableEntity, "malformed_table"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, "POST", "/api/v1/documents", tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body)
			}
			if got := errorCode(t, rec); got != tt.wantErr {
				t.Errorf("code = %s, want %s", got, tt.wantErr)
			}
		})
	}
}

func TestGetTable(t *testing.T) {
	s := setupTestServer(t)
	id := s.createDocument(t, twoByTwo())

	rec := s.do(t, "GET", "/api/v1/documents/"+id+"/table", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp apihttp.TableResponse
	decode(t, rec, &resp)
	if resp.Rows != 2 || resp.Columns != 2 {
		t.Errorf("size = %dx%d, want 2x2", resp.Rows, resp.Columns)
	}
	if resp.Field != "pricing" || resp.Shape.RowType != "pricingRow" || resp.Shape.Structured {
		t.Errorf("shape = %+v field = %s", resp.Shape, resp.Field)
	}
}

func TestGrowTable(t *testing.T) {
	s := setupTestServer(t)
	id := s.createDocument(t, nil)
	base := "/api/v1/documents/" + id + "/table"

	rec := s.do(t, "POST", base+"/initialize", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("initialize status = %d: %s", rec.Code, rec.Body)
	}
	var res apihttp.ResultResponse
	decode(t, rec, &res)
	if res.Rev != 2 || len(res.Patch) != 1 {
		t.Errorf("initialize rev=%d patch=%v", res.Rev, res.Patch)
	}

	s.do(t, "POST", base+"/rows", nil)
	rec = s.do(t, "POST", base+"/columns", nil)
	decode(t, rec, &res)
	if res.Rev != 4 {
		t.Errorf("rev = %d, want 4", res.Rev)
	}

	g, _, err := s.editor.Table(testContext(t), id)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if len(g) != 2 || g.Columns() != 2 {
		t.Errorf("grid = %dx%d, want 2x2", len(g), g.Columns())
	}
}

func TestUpdateCell(t *testing.T) {
	s := setupTestServer(t)
	id := s.createDocument(t, twoByTwo())
	base := "/api/v1/documents/" + id + "/table/rows"

	rec := s.do(t, "PUT", base+"/1/cells/0", apihttp.UpdateCellRequest{Text: "z"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var res apihttp.ResultResponse
	decode(t, rec, &res)
	if len(res.Patch) != 1 {
		t.Fatalf("patch = %v, want one op", res.Patch)
	}
	if got := res.Patch[0].Path.String(); got != "pricing" {
		t.Errorf("patch path = %s, want pricing", got)
	}
	g, _, _ := s.editor.Table(testContext(t), id)
	if g[1].Cells[0].Text() != "z" {
		t.Errorf("cell [1,0] = %q, want z", g[1].Cells[0].Text())
	}

	tests := []struct {
		name     string
		path     string
		body     any
		wantCode int
		wantErr  string
	}{
		{"row out of range", base + "/5/cells/0", apihttp.UpdateCellRequest{Text: "x"}, http.StatusUnprocessableEntity, "out_of_range"},
		{"cell out of range", base + "/0/cells/9", apihttp.UpdateCellRequest{Text: "x"}, http.StatusUnprocessableEntity, "out_of_range"},
		{"non-integer row", base + "/first/cells/0", apihttp.UpdateCellRequest{Text: "x"}, http.StatusBadRequest, "bad_request"},
		{"nested patch on string cell", base + "/0/cells/0/patch", `[{"type":"set","path":["amount"],"value":1}]`, http.StatusUnprocessableEntity, "wrong_cell_type"},
		{"bad patch json", base + "/0/cells/0/patch", `[{"type":"move"}]`, http.StatusBadRequest, "bad_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := "PUT"
			if strings.HasSuffix(tt.path, "/patch") {
				method = "POST"
			}
			rec := s.do(t, method, tt.path, tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body)
			}
			if got := errorCode(t, rec); got != tt.wantErr {
				t.Errorf("code = %s, want %s", got, tt.wantErr)
			}
		})
	}
}

func TestReorder(t *testing.T) {
	s := setupTestServer(t)
	id := s.createDocument(t, twoByTwo())
	path := "/api/v1/documents/" + id + "/table/reorder"

	rec := s.do(t, "POST", path, apihttp.ReorderRequest{From: 0, To: 1})
	var res apihttp.ResultResponse
	decode(t, rec, &res)
	if rec.Code != http.StatusOK || res.Diagnostic != "" || len(res.Patch) != 2 {
		t.Fatalf("move: status=%d res=%+v", rec.Code, res)
	}

	// a no-op move succeeds with a diagnostic and commits nothing
	rec = s.do(t, "POST", path, apihttp.ReorderRequest{From: 1, To: 1})
	res = apihttp.ResultResponse{}
	decode(t, rec, &res)
	if rec.Code != http.StatusOK {
		t.Fatalf("no-op status = %d", rec.Code)
	}
	if res.Diagnostic == "" || len(res.Patch) != 0 {
		t.Errorf("no-op res = %+v, want diagnostic and empty patch", res)
	}
	if res.Rev != 2 {
		t.Errorf("rev = %d, want 2 (unchanged)", res.Rev)
	}
}

func TestConfirmationFlow(t *testing.T) {
	s := setupTestServer(t)
	id := s.createDocument(t, twoByTwo())
	base := "/api/v1/documents/" + id + "/table"

	rec := s.do(t, "DELETE", base+"/rows/0", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("request status = %d: %s", rec.Code, rec.Body)
	}
	var p apihttp.PendingResponse
	decode(t, rec, &p)
	if !p.Pending || p.Action != "remove_row" || p.Message != "Are you sure you want to delete the table row?" {
		t.Errorf("pending = %+v", p)
	}

	// nothing is committed before confirmation
	g, _, _ := s.editor.Table(testContext(t), id)
	if len(g) != 2 {
		t.Fatalf("rows = %d before confirm, want 2", len(g))
	}

	rec = s.do(t, "GET", base+"/pending", nil)
	p = apihttp.PendingResponse{}
	decode(t, rec, &p)
	if !p.Pending || p.Index != 0 {
		t.Errorf("GET pending = %+v", p)
	}

	rec = s.do(t, "POST", base+"/pending/confirm", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm status = %d: %s", rec.Code, rec.Body)
	}
	g, _, _ = s.editor.Table(testContext(t), id)
	if len(g) != 1 || g[0].Key != "r2" {
		t.Errorf("after confirm grid = %+v", g)
	}

	rec = s.do(t, "POST", base+"/pending/confirm", nil)
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "no_pending" {
		t.Errorf("second confirm status = %d body = %s", rec.Code, rec.Body)
	}
}

func TestCancelAndClear(t *testing.T) {
	s := setupTestServer(t)
	id := s.createDocument(t, twoByTwo())
	base := "/api/v1/documents/" + id + "/table"

	if rec := s.do(t, "DELETE", base+"/columns/1", nil); rec.Code != http.StatusAccepted {
		t.Fatalf("request column status = %d", rec.Code)
	}
	rec := s.do(t, "POST", base+"/pending/cancel", nil)
	var p apihttp.PendingResponse
	decode(t, rec, &p)
	if rec.Code != http.StatusOK || p.Pending || p.Action != "remove_column" {
		t.Errorf("cancel status = %d pending = %+v", rec.Code, p)
	}

	if rec := s.do(t, "DELETE", base, nil); rec.Code != http.StatusAccepted {
		t.Fatalf("request clear status = %d", rec.Code)
	}
	rec = s.do(t, "POST", base+"/pending/confirm", nil)
	var res apihttp.ResultResponse
	decode(t, rec, &res)
	if res.Table != nil {
		t.Errorf("table after clear = %v, want null", res.Table)
	}
}

func TestNotFound(t *testing.T) {
	s := setupTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/documents/missing"},
		{"GET", "/api/v1/documents/missing/table"},
		{"POST", "/api/v1/documents/missing/table/rows"},
		{"DELETE", "/api/v1/documents/missing/table"},
		{"GET", "/ws/documents/missing"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := s.do(t, p.method, p.path, nil)
			if rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", rec.Code)
			}
			if got := errorCode(t, rec); got != "not_found" {
				t.Errorf("code = %s, want not_found", got)
			}
		})
	}
}

// racingStore loses every commit to a concurrent writer.
type racingStore struct {
	ports.DocumentStore
}

func (racingStore) Commit(ctx context.Context, id string, e patch.Event) (ports.Document, error) {
	return ports.Document{}, fmt.Errorf("%w: %s", ports.ErrConflict, id)
}

func TestCommitConflict(t *testing.T) {
	s := newTestServer(t, func(store ports.DocumentStore) ports.DocumentStore {
		return racingStore{store}
	})
	id := s.createDocument(t, twoByTwo())

	rec := s.do(t, "POST", "/api/v1/documents/"+id+"/table/rows", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body = %s", rec.Code, rec.Body)
	}
	if got := errorCode(t, rec); got != "conflict" {
		t.Errorf("code = %s, want conflict", got)
	}
}

func TestExportImport(t *testing.T) {
	s := setupTestServer(t)
	id := s.createDocument(t, twoByTwo())
	base := "/api/v1/documents/" + id + "/table"

	rec := s.do(t, "GET", base+"/export?sheet=Prices", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d: %s", rec.Code, rec.Body)
	}
	matrix, err := xlsx.Import(bytes.NewReader(rec.Body.Bytes()), "Prices")
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(matrix) != 2 || matrix[1][1] != "d" {
		t.Errorf("exported matrix = %v", matrix)
	}

	var buf bytes.Buffer
	g := table.Grid{
		{Cells: []table.Cell{table.StringCell("x"), table.StringCell("y"), table.StringCell("z")}},
	}
	if err := xlsx.Export(&buf, g, stringShape, ""); err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	rec = s.do(t, "POST", base+"/import", buf.Bytes())
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d: %s", rec.Code, rec.Body)
	}
	got, _, _ := s.editor.Table(testContext(t), id)
	if len(got) != 1 || got.Columns() != 3 || got[0].Cells[2].Text() != "z" {
		t.Errorf("imported grid = %+v", got)
	}

	rec = s.do(t, "POST", base+"/import", "not a workbook")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad import status = %d, want 400", rec.Code)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	s := setupTestServer(t)
	s.do(t, "GET", "/version", nil)
	s.do(t, "GET", "/version", nil)

	if got := testutil.ToFloat64(s.metrics.RequestsTotal.WithLabelValues("GET", "/version", "2xx")); got != 2 {
		t.Errorf("requests_total = %v, want 2", got)
	}

	rec := s.do(t, "GET", "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("metrics status = %d", rec.Code)
	}
}

func TestSwaggerDoc(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, "GET", "/swagger/doc.json", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("doc.json status = %d", rec.Code)
	}
	var doc map[string]any
	decode(t, rec, &doc)
	paths, _ := doc["paths"].(map[string]any)
	if _, ok := paths["/api/v1/documents/{id}/table/pending/confirm"]; !ok {
		t.Error("swagger doc is missing the confirm endpoint")
	}
}
