package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/artpar/gridpatch/domain/patch"
	"github.com/artpar/gridpatch/ports"
)

// DocumentStore implements ports.DocumentStore using SQLite.
// Bodies are stored as JSON; every commit is appended to patch_log.
type DocumentStore struct {
	db    *DB
	ids   ports.IDGenerator
	clock ports.Clock
}

// NewDocumentStore creates a new document store.
func NewDocumentStore(db *DB, ids ports.IDGenerator, clock ports.Clock) *DocumentStore {
	return &DocumentStore{db: db, ids: ids, clock: clock}
}

// Create stores a new document at revision 1.
func (s *DocumentStore) Create(ctx context.Context, doc ports.Document) (ports.Document, error) {
	if doc.ID == "" {
		doc.ID = s.ids.New()
	}
	if doc.Body == nil {
		doc.Body = map[string]any{}
	}
	body, err := json.Marshal(doc.Body)
	if err != nil {
		return ports.Document{}, fmt.Errorf("encode body: %w", err)
	}

	now := s.clock.Now()
	doc.Rev = 1
	doc.CreatedAt = now
	doc.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, type, rev, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Type, doc.Rev, string(body), formatTime(now), formatTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.Document{}, fmt.Errorf("%w: %s", ports.ErrDocumentExists, doc.ID)
		}
		return ports.Document{}, fmt.Errorf("insert document: %w", err)
	}

	// hand back a decoded copy so callers never share the input map
	return s.Get(ctx, doc.ID)
}

// Get retrieves a document by ID.
func (s *DocumentStore) Get(ctx context.Context, id string) (ports.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, type, rev, body, created_at, updated_at FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.Document{}, fmt.Errorf("%w: %s", ports.ErrDocumentNotFound, id)
	}
	return doc, err
}

// List returns documents of a type ("" for all), oldest first.
func (s *DocumentStore) List(ctx context.Context, docType string) ([]ports.Document, error) {
	query := `SELECT id, type, rev, body, created_at, updated_at FROM documents`
	var args []any
	if docType != "" {
		query += ` WHERE type = ?`
		args = append(args, docType)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []ports.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Commit applies e to the document body inside a transaction. The revision
// check in the UPDATE guards against a concurrent writer on another
// connection.
func (s *DocumentStore) Commit(ctx context.Context, id string, e patch.Event) (ports.Document, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ports.Document{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT id, type, rev, body, created_at, updated_at FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.Document{}, fmt.Errorf("%w: %s", ports.ErrDocumentNotFound, id)
	}
	if err != nil {
		return ports.Document{}, err
	}

	body, err := patch.ApplyObject(doc.Body, e)
	if err != nil {
		return ports.Document{}, err
	}
	encodedBody, err := json.Marshal(body)
	if err != nil {
		return ports.Document{}, fmt.Errorf("encode body: %w", err)
	}
	encodedPatch, err := json.Marshal(e)
	if err != nil {
		return ports.Document{}, fmt.Errorf("encode patch: %w", err)
	}

	now := s.clock.Now()
	res, err := tx.ExecContext(ctx,
		`UPDATE documents SET rev = rev + 1, body = ?, updated_at = ? WHERE id = ? AND rev = ?`,
		string(encodedBody), formatTime(now), id, doc.Rev,
	)
	if err != nil {
		return ports.Document{}, fmt.Errorf("update document: %w", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return ports.Document{}, fmt.Errorf("%w: %s", ports.ErrConflict, id)
	}

	doc.Rev++
	doc.UpdatedAt = now
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO patch_log (document_id, rev, patch, committed_at) VALUES (?, ?, ?, ?)`,
		id, doc.Rev, string(encodedPatch), formatTime(now),
	); err != nil {
		return ports.Document{}, fmt.Errorf("record patch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ports.Document{}, fmt.Errorf("commit: %w", err)
	}

	// re-decode so the returned body matches what Get returns
	var decoded map[string]any
	if err := json.Unmarshal(encodedBody, &decoded); err != nil {
		return ports.Document{}, fmt.Errorf("decode body: %w", err)
	}
	doc.Body = decoded
	return doc, nil
}

// History returns the patch events committed to a document, oldest first.
func (s *DocumentStore) History(ctx context.Context, id string) ([]patch.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT patch FROM patch_log WHERE document_id = ? ORDER BY rev`, id)
	if err != nil {
		return nil, fmt.Errorf("query patch log: %w", err)
	}
	defer rows.Close()

	var events []patch.Event
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan patch: %w", err)
		}
		var e patch.Event
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("decode patch: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (ports.Document, error) {
	var doc ports.Document
	var body, createdAt, updatedAt string

	if err := row.Scan(&doc.ID, &doc.Type, &doc.Rev, &body, &createdAt, &updatedAt); err != nil {
		return ports.Document{}, err
	}
	if err := json.Unmarshal([]byte(body), &doc.Body); err != nil {
		return ports.Document{}, fmt.Errorf("decode body of %s: %w", doc.ID, err)
	}
	if doc.Body == nil {
		doc.Body = map[string]any{}
	}
	doc.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	doc.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return doc, nil
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Ensure interface compliance.
var _ ports.DocumentStore = (*DocumentStore)(nil)
