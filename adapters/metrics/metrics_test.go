package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/artpar/gridpatch/adapters/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetric returns the metric in family name whose labels include want.
func findMetric(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) *dto.Metric {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	next:
		for _, m := range f.GetMetric() {
			labels := make(map[string]string)
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue next
				}
			}
			return m
		}
	}
	return nil
}

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	if m == nil {
		t.Fatal("NewWithRegistry returned nil")
	}
	if m.TableOperations == nil {
		t.Error("TableOperations is nil")
	}
	if m.PatchOps == nil {
		t.Error("PatchOps is nil")
	}
	if m.CommitDuration == nil {
		t.Error("CommitDuration is nil")
	}

	// a second collector on its own registry must not panic
	metrics.NewWithRegistry(prometheus.NewRegistry())
}

func TestObserveOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.ObserveOperation("add_row", "ok")
	m.ObserveOperation("add_row", "ok")
	m.ObserveOperation("remove_row", "error")

	got := findMetric(t, reg, "gridpatch_table_operations_total", map[string]string{"operation": "add_row", "outcome": "ok"})
	if got == nil {
		t.Fatal("add_row counter not found")
	}
	if v := got.GetCounter().GetValue(); v != 2 {
		t.Errorf("add_row = %v, want 2", v)
	}
}

func TestObserveCommit(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.ObserveCommit("reorder_row", []string{"unset", "insert"}, time.Millisecond, nil)
	m.ObserveCommit("add_row", []string{"set"}, time.Millisecond, errors.New("boom"))

	if got := findMetric(t, reg, "gridpatch_patch_ops_total", map[string]string{"type": "insert"}); got == nil || got.GetCounter().GetValue() != 1 {
		t.Errorf("insert ops = %v, want 1", got)
	}
	if got := findMetric(t, reg, "gridpatch_patch_ops_total", map[string]string{"type": "set"}); got != nil {
		t.Errorf("failed commit counted set ops: %v", got)
	}
	if got := findMetric(t, reg, "gridpatch_commit_errors_total", map[string]string{"operation": "add_row"}); got == nil || got.GetCounter().GetValue() != 1 {
		t.Errorf("commit errors = %v, want 1", got)
	}
	if got := findMetric(t, reg, "gridpatch_commit_duration_seconds", nil); got == nil || got.GetHistogram().GetSampleCount() != 2 {
		t.Errorf("commit duration samples = %v, want 2", got)
	}
}

func TestObserveConfirmationAndReorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.ObserveConfirmation("clear", "confirmed")
	m.ObserveInvalidReorder("noop move")

	if findMetric(t, reg, "gridpatch_confirmations_total", map[string]string{"action": "clear", "resolution": "confirmed"}) == nil {
		t.Error("confirmation counter not found")
	}
	if findMetric(t, reg, "gridpatch_invalid_reorders_total", map[string]string{"reason": "noop move"}) == nil {
		t.Error("invalid reorder counter not found")
	}
}

func TestObserveReload(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	at := time.Unix(1700000000, 0)
	m.ObserveReload(at, nil)
	m.ObserveReload(at, errors.New("bad yaml"))

	if got := findMetric(t, reg, "gridpatch_config_last_reload_timestamp", nil); got == nil || got.GetGauge().GetValue() != 1700000000 {
		t.Errorf("last reload = %v, want 1700000000", got)
	}
	if got := findMetric(t, reg, "gridpatch_config_reload_errors_total", nil); got == nil || got.GetCounter().GetValue() != 1 {
		t.Errorf("reload errors = %v, want 1", got)
	}
}

func TestNilCollector(t *testing.T) {
	var m *metrics.Collector

	// none of these may panic
	m.ObserveOperation("add_row", "ok")
	m.ObserveCommit("add_row", []string{"set"}, time.Millisecond, nil)
	m.ObserveConfirmation("clear", "requested")
	m.ObserveInvalidReorder("same key")
	m.ObserveReload(time.Now(), nil)
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "2xx"},
		{204, "2xx"},
		{302, "3xx"},
		{404, "4xx"},
		{422, "4xx"},
		{503, "5xx"},
		{101, "other"},
	}

	for _, tt := range tests {
		if got := metrics.StatusLabel(tt.status); got != tt.want {
			t.Errorf("StatusLabel(%d) = %s, want %s", tt.status, got, tt.want)
		}
	}
}
