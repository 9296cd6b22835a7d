package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/artpar/gridpatch/domain/patch"
	"github.com/artpar/gridpatch/domain/table"
	"github.com/artpar/gridpatch/ports"
	"gopkg.in/yaml.v3"
)

var (
	stringShape = table.Shape{
		RowTypeName:    "tableRow",
		CellsFieldName: "cells",
		CellType:       table.CellType{Name: "string"},
	}
	objectShape = table.Shape{
		RowTypeName:    "priceRow",
		CellsFieldName: "entries",
		CellType:       table.CellType{Name: "priceCell", Structured: true},
	}
)

func sampleGrid() table.Grid {
	return table.Grid{
		{Type: "tableRow", Key: "r1", Cells: []table.Cell{table.StringCell("Plan"), table.StringCell("Price")}},
		{Type: "tableRow", Key: "r2", Cells: []table.Cell{table.StringCell("Basic"), table.StringCell("$10")}},
	}
}

func sampleDocs() []ports.Document {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []ports.Document{
		{ID: "doc_1", Type: "page", Rev: 3, CreatedAt: at, UpdatedAt: at},
		{ID: "doc_2", Type: "page", Rev: 1, CreatedAt: at, UpdatedAt: at},
	}
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(NewJSONFormatter()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(NewJSONFormatter()); err == nil {
		t.Error("expected error for duplicate registration")
	}

	f, ok := r.Get("json")
	if !ok || f.Name() != "json" {
		t.Errorf("Get(json) = %v, %v", f, ok)
	}
	if _, ok := r.Get("csv"); ok {
		t.Error("Get(csv) should fail")
	}
}

func TestRegistry_Default(t *testing.T) {
	r := NewRegistry()
	if r.Default() != nil {
		t.Error("empty registry should have no default")
	}

	r.Register(NewYAMLFormatter())
	r.Register(NewJSONFormatter())

	// "table" is not registered, so the first sorted name wins
	if got := r.Default().Name(); got != "json" {
		t.Errorf("Default() = %s, want json", got)
	}

	r.Register(NewTableFormatter())
	if got := r.Default().Name(); got != "table" {
		t.Errorf("Default() = %s, want table", got)
	}

	if err := r.SetDefault("yaml"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if got := r.Default().Name(); got != "yaml" {
		t.Errorf("Default() = %s, want yaml", got)
	}
	if err := r.SetDefault("csv"); err == nil {
		t.Error("SetDefault(csv) should fail")
	}
}

func TestDefaultRegistry(t *testing.T) {
	got := strings.Join(List(), ",")
	if got != "json,table,yaml" {
		t.Errorf("List() = %s, want json,table,yaml", got)
	}
	if Default().Name() != "table" {
		t.Errorf("Default() = %s, want table", Default().Name())
	}
}

// -----------------------------------------------------------------------------
// Table formatter
// -----------------------------------------------------------------------------

func TestTableFormatter_FormatGrid(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTableFormatter().FormatGrid(&buf, sampleGrid(), stringShape, FormatOptions{ShowKeys: true}); err != nil {
		t.Fatalf("FormatGrid failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if fields := strings.Fields(lines[0]); strings.Join(fields, " ") != "# KEY C0 C1" {
		t.Errorf("header = %q", lines[0])
	}
	if fields := strings.Fields(lines[2]); strings.Join(fields, " ") != "1 r2 Basic $10" {
		t.Errorf("row 1 = %q", lines[2])
	}
}

func TestTableFormatter_FormatGrid_Absent(t *testing.T) {
	var buf bytes.Buffer
	NewTableFormatter().FormatGrid(&buf, nil, stringShape, FormatOptions{})

	if got := buf.String(); got != "No table.\n" {
		t.Errorf("got %q, want %q", got, "No table.\n")
	}
}

func TestTableFormatter_FormatGrid_StructuredCells(t *testing.T) {
	g := table.Grid{
		{Type: "priceRow", Key: "r1", Cells: []table.Cell{
			table.ObjectCell(map[string]any{"_type": "priceCell", "amount": float64(10), "currency": "USD"}),
			table.NewCell(objectShape.CellType),
		}},
	}

	var buf bytes.Buffer
	NewTableFormatter().FormatGrid(&buf, g, objectShape, FormatOptions{NoHeader: true})

	out := buf.String()
	if !strings.Contains(out, "amount=10 currency=USD") {
		t.Errorf("structured cell not rendered: %q", out)
	}
	if !strings.Contains(out, "-") {
		t.Errorf("empty structured cell should render as -: %q", out)
	}
}

func TestTableFormatter_FormatPatch(t *testing.T) {
	e := patch.From(
		patch.Unset(patch.Field("pricing"), patch.Key("r1")),
		patch.Insert([]any{map[string]any{"_key": "r1"}}, patch.After, patch.Field("pricing"), patch.Index(2)),
		patch.Set("hello", patch.Field("pricing"), patch.Index(0), patch.Field("cells"), patch.Index(1)),
	)

	var buf bytes.Buffer
	if err := NewTableFormatter().FormatPatch(&buf, e, FormatOptions{NoHeader: true}); err != nil {
		t.Fatalf("FormatPatch failed: %v", err)
	}

	want := []string{
		`unset pricing[_key=="r1"]`,
		"insert pricing[2] after 1 item(s)",
		"set pricing[0].cells[1] hello",
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i := range want {
		if got := strings.Join(strings.Fields(lines[i]), " "); got != want[i] {
			t.Errorf("line %d = %q, want %q", i, got, want[i])
		}
	}
}

func TestTableFormatter_FormatPatch_Root(t *testing.T) {
	var buf bytes.Buffer
	NewTableFormatter().FormatPatch(&buf, patch.From(patch.Unset()), FormatOptions{NoHeader: true})

	if got := strings.Join(strings.Fields(buf.String()), " "); got != "unset (root)" {
		t.Errorf("got %q, want %q", got, "unset (root)")
	}
}

func TestTableFormatter_FormatDocuments(t *testing.T) {
	var buf bytes.Buffer
	NewTableFormatter().FormatDocuments(&buf, sampleDocs(), FormatOptions{})

	out := buf.String()
	if !strings.Contains(out, "ID") || !strings.Contains(out, "doc_2") {
		t.Errorf("unexpected output:\n%s", out)
	}

	buf.Reset()
	NewTableFormatter().FormatDocuments(&buf, nil, FormatOptions{})
	if buf.String() != "No documents found.\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestTableFormatter_FormatValue(t *testing.T) {
	f := NewTableFormatter()

	tests := []struct {
		val  any
		want string
	}{
		{nil, "-"},
		{"text", "text"},
		{true, "yes"},
		{false, "no"},
		{float64(42), "42"},
		{3.14159, "3.14"},
		{[]any{"a"}, `["a"]`},
	}

	for _, tt := range tests {
		if got := f.formatValue(tt.val); got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.val, got, tt.want)
		}
	}
}

func TestTableFormatter_Truncate(t *testing.T) {
	f := NewTableFormatter()

	if got := f.truncate("abcdefghij", 6); got != "abc..." {
		t.Errorf("truncate = %q, want abc...", got)
	}
	if got := f.truncate("abc", 0); got != "abc" {
		t.Errorf("truncate = %q, want abc", got)
	}
}

func TestTableFormatter_FormatError(t *testing.T) {
	var buf bytes.Buffer
	NewTableFormatter().FormatError(&buf, errors.New("boom"))

	if buf.String() != "Error: boom\n" {
		t.Errorf("got %q", buf.String())
	}
}

// -----------------------------------------------------------------------------
// JSON formatter
// -----------------------------------------------------------------------------

func TestJSONFormatter_FormatPatch_WireFormat(t *testing.T) {
	e := patch.From(patch.Unset(patch.Field("pricing"), patch.Key("r1")))

	var buf bytes.Buffer
	if err := NewJSONFormatter().FormatPatch(&buf, e, FormatOptions{Compact: true}); err != nil {
		t.Fatalf("FormatPatch failed: %v", err)
	}

	want := `[{"type":"unset","path":["pricing",{"_key":"r1"}]}]` + "\n"
	if buf.String() != want {
		t.Errorf("got %s, want %s", buf.String(), want)
	}
}

func TestJSONFormatter_FormatPatch_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewJSONFormatter().FormatPatch(&buf, nil, FormatOptions{Compact: true})

	if buf.String() != "[]\n" {
		t.Errorf("got %q, want []", buf.String())
	}
}

func TestJSONFormatter_FormatGrid(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter().FormatGrid(&buf, sampleGrid(), stringShape, FormatOptions{}); err != nil {
		t.Fatalf("FormatGrid failed: %v", err)
	}

	var got struct {
		RowType    string `json:"row_type"`
		CellsField string `json:"cells_field"`
		Rows       []struct {
			Key   string   `json:"_key"`
			Type  string   `json:"_type"`
			Cells []string `json:"cells"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.RowType != "tableRow" || got.CellsField != "cells" {
		t.Errorf("shape = %s/%s", got.RowType, got.CellsField)
	}
	if len(got.Rows) != 2 || got.Rows[1].Cells[1] != "$10" || got.Rows[0].Key != "r1" {
		t.Errorf("rows = %+v", got.Rows)
	}
}

func TestJSONFormatter_FormatDocuments(t *testing.T) {
	var buf bytes.Buffer
	NewJSONFormatter().FormatDocuments(&buf, sampleDocs(), FormatOptions{})

	var got struct {
		Count int `json:"count"`
		Data  []struct {
			ID  string `json:"id"`
			Rev int64  `json:"rev"`
		} `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Count != 2 || got.Data[0].ID != "doc_1" || got.Data[0].Rev != 3 {
		t.Errorf("got %+v", got)
	}
}

// -----------------------------------------------------------------------------
// YAML formatter
// -----------------------------------------------------------------------------

func TestYAMLFormatter_FormatPatch(t *testing.T) {
	e := patch.From(patch.Insert([]any{"x"}, patch.Before, patch.Field("pricing"), patch.Index(0)))

	var buf bytes.Buffer
	if err := NewYAMLFormatter().FormatPatch(&buf, e, FormatOptions{}); err != nil {
		t.Fatalf("FormatPatch failed: %v", err)
	}

	var got []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d ops, want 1", len(got))
	}
	if got[0]["type"] != "insert" || got[0]["position"] != "before" {
		t.Errorf("op = %v", got[0])
	}
	path, _ := got[0]["path"].([]any)
	if len(path) != 2 || path[0] != "pricing" || path[1] != 0 {
		t.Errorf("path = %v", got[0]["path"])
	}
}

func TestYAMLFormatter_FormatGrid(t *testing.T) {
	var buf bytes.Buffer
	NewYAMLFormatter().FormatGrid(&buf, sampleGrid(), stringShape, FormatOptions{})

	out := buf.String()
	if !strings.Contains(out, "row_type: tableRow") || !strings.Contains(out, "_key: r2") {
		t.Errorf("unexpected YAML:\n%s", out)
	}
}

func TestYAMLFormatter_FormatError(t *testing.T) {
	var buf bytes.Buffer
	NewYAMLFormatter().FormatError(&buf, errors.New("boom"))

	if !strings.Contains(buf.String(), "message: boom") {
		t.Errorf("got %q", buf.String())
	}
}
