package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/artpar/gridpatch/core/events"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func dialFeed(t *testing.T, srv *httptest.Server, docID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/documents/" + docID
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial feed: %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("handshake status = %d", resp.StatusCode)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readEvent(t *testing.T, ws *websocket.Conn) events.Event {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read feed: %v", err)
	}
	var e events.Event
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("decode feed event %s: %v", data, err)
	}
	return e
}

func TestFeed_StreamsDocumentEvents(t *testing.T) {
	s := setupTestServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	id := s.createDocument(t, nil)
	other := s.createDocument(t, nil)
	ws := dialFeed(t, srv, id)

	if got := testutil.ToFloat64(s.metrics.FeedSubscribers); got != 1 {
		t.Errorf("feed subscribers = %v, want 1", got)
	}

	// events for other documents are not forwarded
	if _, err := s.editor.Initialize(testContext(t), other); err != nil {
		t.Fatalf("Initialize other: %v", err)
	}
	if _, err := s.editor.Initialize(testContext(t), id); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	patched := readEvent(t, ws)
	if patched.Name != events.TablePatched || patched.DocumentID != id {
		t.Fatalf("first event = %s for %s, want table.patched for %s", patched.Name, patched.DocumentID, id)
	}
	if patched.Operation != "initialize" || patched.Rev != 2 || len(patched.Patch) != 1 {
		t.Errorf("patched = %+v", patched)
	}

	focus := readEvent(t, ws)
	if focus.Name != events.TableFocus || focus.Focus == nil {
		t.Fatalf("second event = %+v, want table.focus", focus)
	}
	if focus.Focus.Path.String() != "pricing[0].cells[0]" {
		t.Errorf("focus path = %s", focus.Focus.Path)
	}

	if _, err := s.editor.RequestClear(testContext(t), id); err != nil {
		t.Fatalf("RequestClear: %v", err)
	}
	pending := readEvent(t, ws)
	if pending.Name != events.TableConfirmPending || pending.Message != "Are you sure you want to clear the table?" {
		t.Errorf("pending event = %+v", pending)
	}
}

func TestFeed_SetWriteTimeout(t *testing.T) {
	s := setupTestServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	s.feed.SetWriteTimeout(50 * time.Millisecond)
	s.feed.SetWriteTimeout(0) // ignored

	id := s.createDocument(t, nil)
	ws := dialFeed(t, srv, id)

	if _, err := s.editor.AddRow(testContext(t), id); err != nil {
		t.Fatalf("AddRow: %v", err)
	}
	if e := readEvent(t, ws); e.Operation != "add_row" {
		t.Errorf("operation = %s, want add_row", e.Operation)
	}
}
