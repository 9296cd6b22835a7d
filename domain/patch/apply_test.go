package patch_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/artpar/gridpatch/domain/patch"
)

func sampleDoc() map[string]any {
	return map[string]any{
		"title": "Prices",
		"rows": []any{
			map[string]any{"_key": "a", "cells": []any{"1", "2"}},
			map[string]any{"_key": "b", "cells": []any{"3", "4"}},
		},
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		op   patch.Op
		path patch.Path
		want any
	}{
		{
			name: "set field",
			op:   patch.Set("Costs", patch.Field("title")),
			path: patch.Path{patch.Field("title")},
			want: "Costs",
		},
		{
			name: "set nested by index",
			op:   patch.Set("9", patch.Field("rows"), patch.Index(1), patch.Field("cells"), patch.Index(0)),
			path: patch.Path{patch.Field("rows"), patch.Index(1), patch.Field("cells")},
			want: []any{"9", "4"},
		},
		{
			name: "set nested by key",
			op:   patch.Set("7", patch.Field("rows"), patch.Key("a"), patch.Field("cells"), patch.Index(-1)),
			path: patch.Path{patch.Field("rows"), patch.Index(0), patch.Field("cells")},
			want: []any{"1", "7"},
		},
		{
			name: "set creates missing objects",
			op:   patch.Set(true, patch.Field("meta"), patch.Field("draft")),
			path: patch.Path{patch.Field("meta")},
			want: map[string]any{"draft": true},
		},
		{
			name: "unset field",
			op:   patch.Unset(patch.Field("rows"), patch.Index(0), patch.Field("cells")),
			path: patch.Path{patch.Field("rows"), patch.Index(0)},
			want: map[string]any{"_key": "a"},
		},
		{
			name: "unset item by key",
			op:   patch.Unset(patch.Field("rows"), patch.Key("a")),
			path: patch.Path{patch.Field("rows")},
			want: []any{map[string]any{"_key": "b", "cells": []any{"3", "4"}}},
		},
		{
			name: "insert before",
			op:   patch.Insert([]any{"x"}, patch.Before, patch.Field("rows"), patch.Index(0), patch.Field("cells"), patch.Index(0)),
			path: patch.Path{patch.Field("rows"), patch.Index(0), patch.Field("cells")},
			want: []any{"x", "1", "2"},
		},
		{
			name: "insert after last",
			op:   patch.Insert([]any{"x", "y"}, patch.After, patch.Field("rows"), patch.Key("b"), patch.Field("cells"), patch.Index(1)),
			path: patch.Path{patch.Field("rows"), patch.Index(1), patch.Field("cells")},
			want: []any{"3", "4", "x", "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sampleDoc()
			out, err := patch.Apply(doc, patch.From(tt.op))
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			got, ok := patch.Get(out, tt.path)
			if !ok {
				t.Fatalf("Get(%s) found nothing", tt.path)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
			if !reflect.DeepEqual(doc, sampleDoc()) {
				t.Error("Apply modified its input")
			}
		})
	}
}

func TestApply_Root(t *testing.T) {
	out, err := patch.Apply(sampleDoc(), patch.From(patch.Unset()))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out != nil {
		t.Errorf("root unset = %v, want nil", out)
	}

	out, err = patch.Apply(nil, patch.From(patch.Set([]any{"a"})))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !reflect.DeepEqual(out, []any{"a"}) {
		t.Errorf("root set = %v", out)
	}
}

func TestApply_UnsetMissingIsNoop(t *testing.T) {
	doc := sampleDoc()
	for _, op := range []patch.Op{
		patch.Unset(patch.Field("nope")),
		patch.Unset(patch.Field("nope"), patch.Field("deeper")),
		patch.Unset(patch.Field("rows"), patch.Key("zzz")),
		patch.Unset(patch.Field("rows"), patch.Index(9)),
	} {
		out, err := patch.Apply(doc, patch.From(op))
		if err != nil {
			t.Errorf("%s: unexpected error %v", op.Path, err)
			continue
		}
		if !reflect.DeepEqual(out, doc) {
			t.Errorf("%s: document changed", op.Path)
		}
	}
}

func TestApply_Errors(t *testing.T) {
	tests := []struct {
		name string
		op   patch.Op
		want error
	}{
		{"set index past end", patch.Set("x", patch.Field("rows"), patch.Index(5)), patch.ErrPathNotFound},
		{"set unknown key", patch.Set("x", patch.Field("rows"), patch.Key("zzz")), patch.ErrPathNotFound},
		{"field on array", patch.Set("x", patch.Field("rows"), patch.Field("a")), patch.ErrTypeMismatch},
		{"index on string", patch.Set("x", patch.Field("title"), patch.Index(0)), patch.ErrTypeMismatch},
		{"insert at root", patch.Insert([]any{"x"}, patch.After), patch.ErrInvalidInsert},
		{"insert at field", patch.Insert([]any{"x"}, patch.After, patch.Field("rows")), patch.ErrInvalidInsert},
		{"insert bad position", patch.Insert([]any{"x"}, "middle", patch.Field("rows"), patch.Index(0)), patch.ErrInvalidInsert},
		{"insert missing anchor", patch.Insert([]any{"x"}, patch.Before, patch.Field("rows"), patch.Key("zzz")), patch.ErrPathNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := patch.Apply(sampleDoc(), patch.From(tt.op))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestApply_AtomicOnFailure(t *testing.T) {
	doc := sampleDoc()
	e := patch.From(
		patch.Set("changed", patch.Field("title")),
		patch.Set("x", patch.Field("rows"), patch.Index(99)),
	)
	out, err := patch.Apply(doc, e)
	if err == nil {
		t.Fatal("expected error")
	}
	if !reflect.DeepEqual(out, sampleDoc()) {
		t.Error("failed event left a partial change")
	}
}

func TestApplyObject(t *testing.T) {
	body, err := patch.ApplyObject(map[string]any{"a": 1}, patch.From(patch.Unset()))
	if err != nil {
		t.Fatalf("ApplyObject failed: %v", err)
	}
	if len(body) != 0 {
		t.Errorf("body = %v, want empty", body)
	}

	_, err = patch.ApplyObject(map[string]any{}, patch.From(patch.Set("x")))
	if !errors.Is(err, patch.ErrTypeMismatch) {
		t.Errorf("got %v, want ErrTypeMismatch", err)
	}
}
