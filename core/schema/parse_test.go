package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const pageYAML = `
document: page
title: Page

fields:
  - name: title
    type: string
  - name: pricing
    title: Pricing table
    type: array
    of:
      - type: tableRow

types:
  - name: tableRow
    type: object
    fields:
      - name: cells
        type: array
        of:
          - type: string
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(pageYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if doc.Name != "page" {
		t.Errorf("Name = %q, want %q", doc.Name, "page")
	}
	if len(doc.Fields) != 2 {
		t.Errorf("Fields = %d, want 2", len(doc.Fields))
	}

	f, ok := doc.Field("pricing")
	if !ok {
		t.Fatal("missing pricing field")
	}
	if !f.IsArray() || len(f.Of) != 1 || f.Of[0].Kind != "tableRow" {
		t.Errorf("pricing = %+v", f)
	}
	if !f.Of[0].IsReference() {
		t.Error("tableRow item should be a reference")
	}

	if _, ok := doc.TypeSet()["tableRow"]; !ok {
		t.Error("TypeSet missing tableRow")
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing document name",
			yaml:    "fields: [{name: a, type: string}]",
			wantErr: "document name is required",
		},
		{
			name:    "invalid document name",
			yaml:    "document: 1page\nfields: [{name: a, type: string}]",
			wantErr: "not a valid identifier",
		},
		{
			name:    "no fields",
			yaml:    "document: page",
			wantErr: "at least one field",
		},
		{
			name:    "field without type",
			yaml:    "document: page\nfields: [{name: a}]",
			wantErr: "type is required",
		},
		{
			name:    "duplicate field",
			yaml:    "document: page\nfields: [{name: a, type: string}, {name: a, type: number}]",
			wantErr: "declared more than once",
		},
		{
			name:    "unknown type",
			yaml:    "document: page\nfields: [{name: a, type: widget}]",
			wantErr: `unknown type "widget"`,
		},
		{
			name:    "array without of",
			yaml:    "document: page\nfields: [{name: a, type: array}]",
			wantErr: "array type requires of",
		},
		{
			name:    "object without fields",
			yaml:    "document: page\nfields: [{name: a, type: object}]",
			wantErr: "object type requires fields",
		},
		{
			name:    "unnamed inline object item",
			yaml:    "document: page\nfields: [{name: a, type: array, of: [{type: object, fields: [{name: b, type: string}]}]}]",
			wantErr: "object items require a name",
		},
		{
			name:    "primitive with fields",
			yaml:    "document: page\nfields: [{name: a, type: string, fields: [{name: b, type: string}]}]",
			wantErr: "cannot declare of or fields",
		},
		{
			name:    "type shadows builtin",
			yaml:    "document: page\nfields: [{name: a, type: string}]\ntypes: [{name: string, type: object, fields: [{name: b, type: string}]}]",
			wantErr: "shadows a builtin",
		},
		{
			name:    "reference cycle",
			yaml:    "document: page\nfields: [{name: a, type: x}]\ntypes: [{name: x, type: y}, {name: y, type: x}]",
			wantErr: "reference cycle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("document: [unclosed")); err == nil {
		t.Error("expected parse error")
	}
}

func TestParseDir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		filepath.Join(dir, "page.yaml"): pageYAML,
		filepath.Join(sub, "note.yml"):  "document: note\nfields: [{name: body, type: text}]",
		filepath.Join(dir, "README.md"): "not a schema",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	docs, err := ParseDir(dir)
	if err != nil {
		t.Fatalf("ParseDir failed: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("docs = %d, want 2", len(docs))
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
