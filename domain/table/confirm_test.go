package table_test

import (
	"errors"
	"testing"

	"github.com/artpar/gridpatch/domain/table"
)

func TestRequestReplacesPending(t *testing.T) {
	var s table.State = table.Idle{}

	s = table.Request(table.ActionRemoveRow, 2)
	s = table.Request(table.ActionClear, 0)

	p, next, err := table.Resolve(s)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if p.Action != table.ActionClear {
		t.Errorf("Action = %s, want clear", p.Action)
	}
	if p.Message != "Are you sure you want to clear the table?" {
		t.Errorf("Message = %q", p.Message)
	}
	if _, _, err := table.Resolve(next); !errors.Is(err, table.ErrNoPending) {
		t.Errorf("second Resolve err = %v, want ErrNoPending", err)
	}
}

func TestResolveID(t *testing.T) {
	first := table.Request(table.ActionRemoveRow, 1)
	first.ID = 1
	second := table.Request(table.ActionClear, 0)
	second.ID = 2

	var s table.State = second
	if _, _, err := table.ResolveID(s, first.ID); !errors.Is(err, table.ErrNoPending) {
		t.Errorf("replaced request resolved: err = %v, want ErrNoPending", err)
	}
	p, _, err := table.ResolveID(s, second.ID)
	if err != nil {
		t.Fatalf("ResolveID failed: %v", err)
	}
	if p.Action != table.ActionClear {
		t.Errorf("Action = %s, want clear", p.Action)
	}
	if _, _, err := table.ResolveID(table.Idle{}, 2); !errors.Is(err, table.ErrNoPending) {
		t.Errorf("ResolveID(Idle) err = %v, want ErrNoPending", err)
	}
}

func TestResolveIdle(t *testing.T) {
	for _, s := range []table.State{nil, table.Idle{}} {
		if _, _, err := table.Resolve(s); !errors.Is(err, table.ErrNoPending) {
			t.Errorf("Resolve(%v) err = %v, want ErrNoPending", s, err)
		}
	}
}

func TestActionMessages(t *testing.T) {
	tests := []struct {
		action table.Action
		name   string
		msg    string
	}{
		{table.ActionRemoveRow, "remove_row", "Are you sure you want to delete the table row?"},
		{table.ActionRemoveColumn, "remove_column", "Are you sure you want to delete the table column?"},
		{table.ActionClear, "clear", "Are you sure you want to clear the table?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.action.String() != tt.name {
				t.Errorf("String() = %q, want %q", tt.action.String(), tt.name)
			}
			p := table.Request(tt.action, 1)
			if p.Message != tt.msg {
				t.Errorf("Message = %q, want %q", p.Message, tt.msg)
			}
			if p.Index != 1 {
				t.Errorf("Index = %d, want 1", p.Index)
			}
		})
	}
}
