// Package app provides application services that orchestrate domain logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/artpar/gridpatch/core/events"
	"github.com/artpar/gridpatch/domain/patch"
	"github.com/artpar/gridpatch/domain/table"
	"github.com/artpar/gridpatch/ports"
	"github.com/rs/zerolog"
)

// Operation names used in logs, metrics and events.
const (
	OpInitialize   = "initialize"
	OpAddRow       = "add_row"
	OpAddColumn    = "add_column"
	OpRemoveRow    = "remove_row"
	OpRemoveColumn = "remove_column"
	OpClear        = "clear"
	OpUpdateCell   = "update_cell"
	OpNestedPatch  = "nested_patch"
	OpReorderRow   = "reorder_row"
	OpImport       = "import"
	OpCreateDoc    = "create_document"
)

// Result is the outcome of a committed gesture.
type Result struct {
	// Document is the stored document after the commit.
	Document ports.Document

	// Grid is the table after the commit.
	Grid table.Grid

	// Patch is the document-relative event that was committed. Empty when
	// nothing was committed.
	Patch patch.Event

	// Diagnostic explains why a gesture was ignored (invalid reorders).
	Diagnostic string
}

// EditorDeps contains dependencies for TableEditor.
type EditorDeps struct {
	Store    ports.DocumentStore
	Keys     ports.IDGenerator
	Clock    ports.Clock
	Bus      *events.Bus         // optional
	Metrics  ports.EditorMetrics // optional
	Prompter ports.Prompter      // optional; without one requests wait for Confirm/Cancel
	Focuser  ports.Focuser       // optional
	Logger   zerolog.Logger
}

// EditorConfig contains configuration for TableEditor.
type EditorConfig struct {
	// DocumentType is the type given to documents the editor creates.
	DocumentType string

	// Field is the document field holding the table.
	Field string

	// Shape is the table shape resolved from the document schema.
	Shape table.Shape
}

// TableEditor forwards table gestures on stored documents to the mutator
// and commits the resulting patches. Gestures on one document are
// serialized; confirmation state is kept per document.
type TableEditor struct {
	store    ports.DocumentStore
	clock    ports.Clock
	bus      *events.Bus
	metrics  ports.EditorMetrics
	prompter ports.Prompter
	focuser  ports.Focuser
	logger   zerolog.Logger

	docType string
	field   string
	mutator *table.Mutator

	mu   sync.Mutex
	docs map[string]*docState
}

type docState struct {
	mu    sync.Mutex
	state table.State
	seq   uint64 // ID of the latest confirmation request
}

// NewTableEditor creates a new table editor.
func NewTableEditor(deps EditorDeps, cfg EditorConfig) *TableEditor {
	m := deps.Metrics
	if m == nil {
		m = nopMetrics{}
	}
	return &TableEditor{
		store:    deps.Store,
		clock:    deps.Clock,
		bus:      deps.Bus,
		metrics:  m,
		prompter: deps.Prompter,
		focuser:  deps.Focuser,
		logger:   deps.Logger.With().Str("component", "table_editor").Str("field", cfg.Field).Logger(),
		docType:  cfg.DocumentType,
		field:    cfg.Field,
		mutator:  table.NewMutator(cfg.Shape, deps.Keys),
		docs:     make(map[string]*docState),
	}
}

// Shape returns the table shape.
func (e *TableEditor) Shape() table.Shape {
	return e.mutator.Shape()
}

// Field returns the document field holding the table.
func (e *TableEditor) Field() string {
	return e.field
}

// -----------------------------------------------------------------------------
// Documents
// -----------------------------------------------------------------------------

// CreateDocument stores a new document of the editor's type. An empty id is
// assigned by the store.
func (e *TableEditor) CreateDocument(ctx context.Context, id string, body map[string]any) (ports.Document, error) {
	if _, err := table.Decode(body[e.field], e.mutator.Shape()); err != nil {
		e.metrics.ObserveOperation(OpCreateDoc, "error")
		return ports.Document{}, fmt.Errorf("field %s: %w", e.field, err)
	}
	doc, err := e.store.Create(ctx, ports.Document{ID: id, Type: e.docType, Body: body})
	if err != nil {
		e.metrics.ObserveOperation(OpCreateDoc, "error")
		return ports.Document{}, err
	}
	e.metrics.ObserveOperation(OpCreateDoc, "ok")
	return doc, nil
}

// Table reads the current table of a document.
func (e *TableEditor) Table(ctx context.Context, docID string) (table.Grid, ports.Document, error) {
	doc, err := e.store.Get(ctx, docID)
	if err != nil {
		return nil, ports.Document{}, err
	}
	g, err := e.decode(doc)
	if err != nil {
		return nil, ports.Document{}, err
	}
	return g, doc, nil
}

// Documents lists documents of the editor's type.
func (e *TableEditor) Documents(ctx context.Context) ([]ports.Document, error) {
	return e.store.List(ctx, e.docType)
}

// -----------------------------------------------------------------------------
// Growing the table
// -----------------------------------------------------------------------------

// Initialize creates a one-cell table, replacing any existing one.
func (e *TableEditor) Initialize(ctx context.Context, docID string) (Result, error) {
	res, err := e.edit(ctx, docID, OpInitialize, func(g table.Grid) (patch.Event, error) {
		return e.mutator.Initialize(), nil
	})
	if err == nil {
		e.focus(ctx, docID, 0, 0)
	}
	return res, err
}

// AddRow appends an empty row and focuses its first cell.
func (e *TableEditor) AddRow(ctx context.Context, docID string) (Result, error) {
	res, err := e.edit(ctx, docID, OpAddRow, func(g table.Grid) (patch.Event, error) {
		return e.mutator.AddRow(g), nil
	})
	if err == nil {
		e.focus(ctx, docID, len(res.Grid)-1, 0)
	}
	return res, err
}

// AddColumn appends an empty cell to every row and focuses the new cell of
// the first row.
func (e *TableEditor) AddColumn(ctx context.Context, docID string) (Result, error) {
	res, err := e.edit(ctx, docID, OpAddColumn, func(g table.Grid) (patch.Event, error) {
		return e.mutator.AddColumn(g), nil
	})
	if err == nil {
		e.focus(ctx, docID, 0, res.Grid.Columns()-1)
	}
	return res, err
}

// -----------------------------------------------------------------------------
// Editing cells
// -----------------------------------------------------------------------------

// UpdateStringCell replaces the text of one cell.
func (e *TableEditor) UpdateStringCell(ctx context.Context, docID, text string, row, cell int) (Result, error) {
	return e.edit(ctx, docID, OpUpdateCell, func(g table.Grid) (patch.Event, error) {
		return e.mutator.UpdateStringCell(g, text, row, cell)
	})
}

// ReceiveNestedPatch commits a patch reported by the editor of a
// structured cell. Paths in nested are relative to the cell.
func (e *TableEditor) ReceiveNestedPatch(ctx context.Context, docID string, nested patch.Event, row, cell int) (Result, error) {
	return e.edit(ctx, docID, OpNestedPatch, func(g table.Grid) (patch.Event, error) {
		return e.mutator.UpdateStructuredCell(g, nested, row, cell)
	})
}

// ReorderRow moves a row. Invalid moves are not errors: they are logged,
// nothing is committed and the result carries a diagnostic.
func (e *TableEditor) ReorderRow(ctx context.Context, docID string, oldIndex, newIndex int) (Result, error) {
	res, err := e.edit(ctx, docID, OpReorderRow, func(g table.Grid) (patch.Event, error) {
		return e.mutator.ReorderRow(g, oldIndex, newIndex)
	})
	if errors.Is(err, table.ErrInvalidReorder) {
		e.logger.Warn().
			Err(err).
			Str("document", docID).
			Int("from", oldIndex).
			Int("to", newIndex).
			Msg("reorder ignored")
		e.metrics.ObserveInvalidReorder(reorderReason(err))
		return Result{Document: res.Document, Grid: res.Grid, Diagnostic: err.Error()}, nil
	}
	return res, err
}

// Import replaces the table with a string matrix.
func (e *TableEditor) Import(ctx context.Context, docID string, matrix [][]string) (Result, error) {
	return e.edit(ctx, docID, OpImport, func(g table.Grid) (patch.Event, error) {
		return e.mutator.Load(matrix)
	})
}

// -----------------------------------------------------------------------------
// Destructive operations
// -----------------------------------------------------------------------------

// RequestRemoveRow asks for confirmation before removing a row.
func (e *TableEditor) RequestRemoveRow(ctx context.Context, docID string, index int) (table.Pending, error) {
	return e.request(ctx, docID, table.ActionRemoveRow, index)
}

// RequestRemoveColumn asks for confirmation before removing a column.
func (e *TableEditor) RequestRemoveColumn(ctx context.Context, docID string, index int) (table.Pending, error) {
	return e.request(ctx, docID, table.ActionRemoveColumn, index)
}

// RequestClear asks for confirmation before removing the whole table.
func (e *TableEditor) RequestClear(ctx context.Context, docID string) (table.Pending, error) {
	return e.request(ctx, docID, table.ActionClear, 0)
}

// Pending returns the confirmation awaiting an answer, if any.
func (e *TableEditor) Pending(docID string) (table.Pending, bool) {
	ds := e.stateFor(docID)
	ds.mu.Lock()
	defer ds.mu.Unlock()

	p, ok := ds.state.(table.Pending)
	return p, ok
}

// ConfirmPending applies the pending destructive operation. The request is
// consumed even when applying it fails.
func (e *TableEditor) ConfirmPending(ctx context.Context, docID string) (Result, error) {
	return e.confirm(ctx, docID, table.Resolve)
}

// CancelPending drops the pending destructive operation.
func (e *TableEditor) CancelPending(ctx context.Context, docID string) (table.Pending, error) {
	return e.cancel(ctx, docID, table.Resolve)
}

type resolver func(table.State) (table.Pending, table.Idle, error)

// forRequest resolves only the request with the given ID.
func forRequest(id uint64) resolver {
	return func(s table.State) (table.Pending, table.Idle, error) {
		return table.ResolveID(s, id)
	}
}

func (e *TableEditor) confirm(ctx context.Context, docID string, resolve resolver) (Result, error) {
	ds := e.stateFor(docID)
	ds.mu.Lock()
	defer ds.mu.Unlock()

	p, idle, err := resolve(ds.state)
	if err != nil {
		return Result{}, err
	}
	ds.state = idle
	e.metrics.ObserveConfirmation(p.Action.String(), "confirmed")
	e.publishConfirm(ctx, docID, events.TableConfirmClosed, p)

	return e.editLocked(ctx, docID, p.Action.String(), func(g table.Grid) (patch.Event, error) {
		return e.mutator.Commit(g, p)
	})
}

func (e *TableEditor) cancel(ctx context.Context, docID string, resolve resolver) (table.Pending, error) {
	ds := e.stateFor(docID)
	ds.mu.Lock()
	defer ds.mu.Unlock()

	p, idle, err := resolve(ds.state)
	if err != nil {
		return table.Pending{}, err
	}
	ds.state = idle
	e.metrics.ObserveConfirmation(p.Action.String(), "cancelled")
	e.publishConfirm(ctx, docID, events.TableConfirmClosed, p)
	e.logger.Debug().Str("document", docID).Str("action", p.Action.String()).Msg("confirmation cancelled")
	return p, nil
}

func (e *TableEditor) request(ctx context.Context, docID string, action table.Action, index int) (table.Pending, error) {
	// the document must exist before anything can be confirmed against it
	if _, err := e.store.Get(ctx, docID); err != nil {
		return table.Pending{}, err
	}

	ds := e.stateFor(docID)
	ds.mu.Lock()
	prev, replaced := ds.state.(table.Pending)
	ds.seq++
	p := table.Request(action, index)
	p.ID = ds.seq
	ds.state = p
	ds.mu.Unlock()

	if replaced {
		e.metrics.ObserveConfirmation(prev.Action.String(), "superseded")
		e.publishConfirm(ctx, docID, events.TableConfirmClosed, prev)
	}
	e.metrics.ObserveConfirmation(action.String(), "requested")
	e.publishConfirm(ctx, docID, events.TableConfirmPending, p)

	if e.prompter == nil {
		return p, nil
	}

	// the prompter may resolve synchronously, so it runs without the lock;
	// its callbacks answer this request only
	err := e.prompter.Prompt(ctx, ports.Prompt{
		DocumentID: docID,
		Action:     action.String(),
		Message:    p.Message,
		Commit: func(ctx context.Context) error {
			_, err := e.confirm(ctx, docID, forRequest(p.ID))
			return err
		},
		Cancel: func() {
			e.cancel(ctx, docID, forRequest(p.ID))
		},
	})
	if err != nil {
		return p, fmt.Errorf("prompt %s: %w", action, err)
	}
	return p, nil
}

// -----------------------------------------------------------------------------
// Commit plumbing
// -----------------------------------------------------------------------------

func (e *TableEditor) stateFor(docID string) *docState {
	e.mu.Lock()
	defer e.mu.Unlock()

	ds, ok := e.docs[docID]
	if !ok {
		ds = &docState{state: table.Idle{}}
		e.docs[docID] = ds
	}
	return ds
}

// edit reads the current table, builds a table-relative event and commits
// it under the document's lock.
func (e *TableEditor) edit(ctx context.Context, docID, op string, build func(table.Grid) (patch.Event, error)) (Result, error) {
	ds := e.stateFor(docID)
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return e.editLocked(ctx, docID, op, build)
}

func (e *TableEditor) editLocked(ctx context.Context, docID, op string, build func(table.Grid) (patch.Event, error)) (Result, error) {
	g, doc, err := e.Table(ctx, docID)
	if err != nil {
		e.metrics.ObserveOperation(op, "error")
		return Result{}, err
	}

	tableEvent, err := build(g)
	if err != nil {
		if errors.Is(err, table.ErrInvalidReorder) {
			e.metrics.ObserveOperation(op, "ignored")
			return Result{Document: doc, Grid: g}, err
		}
		e.metrics.ObserveOperation(op, "error")
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if tableEvent.IsEmpty() {
		e.metrics.ObserveOperation(op, "noop")
		return Result{Document: doc, Grid: g}, nil
	}

	docEvent := tableEvent.Prefix(patch.Field(e.field))

	start := e.clock.Now()
	committed, err := e.store.Commit(ctx, docID, docEvent)
	e.metrics.ObserveCommit(op, docEvent.Types(), e.clock.Now().Sub(start), err)
	if err != nil {
		e.metrics.ObserveOperation(op, "error")
		return Result{}, fmt.Errorf("commit %s: %w", op, err)
	}

	after, err := e.decode(committed)
	if err != nil {
		e.metrics.ObserveOperation(op, "error")
		return Result{}, err
	}
	e.metrics.ObserveOperation(op, "ok")

	e.logger.Debug().
		Str("document", docID).
		Str("operation", op).
		Int("ops", len(docEvent)).
		Int64("rev", committed.Rev).
		Msg("patch committed")

	e.publish(ctx, events.Event{
		Name:       events.TablePatched,
		DocumentID: docID,
		Field:      e.field,
		Operation:  op,
		Rev:        committed.Rev,
		Patch:      docEvent,
	})

	return Result{Document: committed, Grid: after, Patch: docEvent}, nil
}

func (e *TableEditor) decode(doc ports.Document) (table.Grid, error) {
	raw, _ := patch.Get(doc.Body, patch.Path{patch.Field(e.field)})
	g, err := table.Decode(raw, e.mutator.Shape())
	if err != nil {
		return nil, fmt.Errorf("document %s field %s: %w", doc.ID, e.field, err)
	}
	return g, nil
}

// focus asks the presentation layer to move to a cell. Failures are only
// logged.
func (e *TableEditor) focus(ctx context.Context, docID string, row, cell int) {
	if row < 0 || cell < 0 {
		return
	}
	path := patch.Path{
		patch.Field(e.field),
		patch.Index(row),
		patch.Field(e.mutator.Shape().CellsFieldName),
		patch.Index(cell),
	}

	e.publish(ctx, events.Event{
		Name:       events.TableFocus,
		DocumentID: docID,
		Field:      e.field,
		Focus:      &events.Focus{Row: row, Cell: cell, Path: path},
	})

	if e.focuser == nil {
		return
	}
	target := ports.FocusTarget{DocumentID: docID, Row: row, Cell: cell, Path: path}
	if err := e.focuser.Focus(ctx, target); err != nil {
		e.logger.Debug().Err(err).Str("document", docID).Str("path", path.String()).Msg("focus failed")
	}
}

func (e *TableEditor) publishConfirm(ctx context.Context, docID, name string, p table.Pending) {
	e.publish(ctx, events.Event{
		Name:       name,
		DocumentID: docID,
		Field:      e.field,
		Operation:  p.Action.String(),
		Message:    p.Message,
	})
}

// publish stamps and emits ev when someone is listening for it.
func (e *TableEditor) publish(ctx context.Context, ev events.Event) {
	if e.bus == nil || !e.bus.HasSubscribers(ev.Name) {
		return
	}
	ev.At = e.clock.Now()
	e.bus.Publish(ctx, ev)
}

func reorderReason(err error) string {
	switch {
	case errors.Is(err, table.ErrMissingKey):
		return "missing_key"
	case errors.Is(err, table.ErrNoopMove):
		return "noop_move"
	case errors.Is(err, table.ErrSameKey):
		return "same_key"
	default:
		return "other"
	}
}

type nopMetrics struct{}

func (nopMetrics) ObserveOperation(string, string)                      {}
func (nopMetrics) ObserveCommit(string, []string, time.Duration, error) {}
func (nopMetrics) ObserveConfirmation(string, string)                   {}
func (nopMetrics) ObserveInvalidReorder(string)                         {}
