// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/artpar/gridpatch/domain/patch"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates identifiers unique within a document store.
// Row keys and document IDs come from it.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Host Document Store
// -----------------------------------------------------------------------------

var (
	// ErrDocumentNotFound is returned when no document has the requested ID.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDocumentExists is returned when creating a document whose ID is taken.
	ErrDocumentExists = errors.New("document already exists")

	// ErrConflict is returned when a document changes while a patch is
	// being committed to it.
	ErrConflict = errors.New("document changed during commit")
)

// Document is a stored document.
type Document struct {
	ID        string
	Type      string
	Rev       int64 // incremented by every committed patch event
	Body      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentStore is the single source of truth for document values.
// It serializes concurrent commits; each event is applied atomically.
type DocumentStore interface {
	// Create stores a new document. An empty ID is assigned by the store.
	Create(ctx context.Context, doc Document) (Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (Document, error)

	// List returns documents of a type ("" for all), oldest first.
	List(ctx context.Context, docType string) ([]Document, error)

	// Commit applies a patch event to a document body and returns the result.
	// Paths are relative to the document body.
	Commit(ctx context.Context, id string, e patch.Event) (Document, error)
}

// -----------------------------------------------------------------------------
// Presentation Ports
// -----------------------------------------------------------------------------

// Prompt asks the operator to confirm a destructive table operation.
type Prompt struct {
	DocumentID string
	Action     string
	Message    string

	// Commit applies the pending operation.
	Commit func(ctx context.Context) error

	// Cancel drops the pending operation.
	Cancel func()
}

// Prompter surfaces confirmation prompts. Implementations either resolve the
// prompt themselves (calling Commit or Cancel) or leave it pending for a
// later confirm/cancel gesture.
type Prompter interface {
	Prompt(ctx context.Context, p Prompt) error
}

// FocusTarget names the cell the presentation layer should focus.
type FocusTarget struct {
	DocumentID string
	Row        int
	Cell       int
	Path       patch.Path // document-relative path of the cell
}

// Focuser moves input focus. Focus is best-effort; errors are logged and
// otherwise ignored.
type Focuser interface {
	Focus(ctx context.Context, target FocusTarget) error
}

// -----------------------------------------------------------------------------
// Observability Ports
// -----------------------------------------------------------------------------

// EditorMetrics records table editor activity.
type EditorMetrics interface {
	ObserveOperation(operation, outcome string)
	ObserveCommit(operation string, types []string, took time.Duration, err error)
	ObserveConfirmation(action, resolution string)
	ObserveInvalidReorder(reason string)
}
