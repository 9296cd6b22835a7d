package table_test

import (
	"errors"
	"testing"

	"github.com/artpar/gridpatch/domain/table"
)

func TestDecodeEncode_KeepsExtraAttributes(t *testing.T) {
	value := []any{
		map[string]any{
			"_type": "tableRow",
			"_key":  "r1",
			"cells": []any{"a", map[string]any{"_type": "priceCell", "amount": 3.5}},
			"note":  "keep me",
		},
	}

	g, err := table.Decode(value, stringShape)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if g[0].Key != "r1" || g[0].Type != "tableRow" {
		t.Errorf("row = %+v", g[0])
	}
	if g[0].Cells[0].IsObject() || g[0].Cells[0].Text() != "a" {
		t.Errorf("cell 0 = %+v, want string a", g[0].Cells[0])
	}
	if !g[0].Cells[1].IsObject() || g[0].Cells[1].TypeName() != "priceCell" {
		t.Errorf("cell 1 = %+v, want priceCell object", g[0].Cells[1])
	}

	row := g.Encode(stringShape).([]any)[0].(map[string]any)
	if row["note"] != "keep me" {
		t.Errorf("extra attribute lost: %v", row)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"not an array", map[string]any{}},
		{"row not an object", []any{"x"}},
		{"cells not an array", []any{map[string]any{"cells": "x"}}},
		{"cell wrong type", []any{map[string]any{"cells": []any{1.0}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := table.Decode(tt.value, stringShape)
			if !errors.Is(err, table.ErrMalformedTable) {
				t.Errorf("got %v, want ErrMalformedTable", err)
			}
		})
	}
}

func TestDecode_Absent(t *testing.T) {
	g, err := table.Decode(nil, stringShape)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !g.IsAbsent() {
		t.Error("expected absent grid")
	}
	if g.Encode(stringShape) != nil {
		t.Error("absent grid should encode to nil")
	}
}

func TestObjectCellCopiesFields(t *testing.T) {
	fields := map[string]any{"_type": "priceCell"}
	c := table.ObjectCell(fields)
	fields["amount"] = 1

	if _, ok := c.Fields()["amount"]; ok {
		t.Error("ObjectCell shares its input map")
	}
	c.Fields()["x"] = 1
	if _, ok := c.Fields()["x"]; ok {
		t.Error("Fields returns the internal map")
	}
}
