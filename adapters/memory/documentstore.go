// Package memory provides in-memory implementations for testing and for
// running without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/artpar/gridpatch/domain/patch"
	"github.com/artpar/gridpatch/ports"
)

// DocumentStore is an in-memory implementation of ports.DocumentStore.
type DocumentStore struct {
	mu    sync.RWMutex
	docs  map[string]ports.Document
	ids   ports.IDGenerator
	clock ports.Clock
}

// NewDocumentStore creates an empty store. ids assigns IDs to documents
// created without one.
func NewDocumentStore(ids ports.IDGenerator, clock ports.Clock) *DocumentStore {
	return &DocumentStore{
		docs:  make(map[string]ports.Document),
		ids:   ids,
		clock: clock,
	}
}

// Create stores a new document at revision 1.
func (s *DocumentStore) Create(ctx context.Context, doc ports.Document) (ports.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.ID == "" {
		doc.ID = s.ids.New()
	}
	if _, ok := s.docs[doc.ID]; ok {
		return ports.Document{}, fmt.Errorf("%w: %s", ports.ErrDocumentExists, doc.ID)
	}
	if doc.Body == nil {
		doc.Body = map[string]any{}
	}

	now := s.clock.Now()
	doc.Rev = 1
	doc.Body = cloneMap(doc.Body)
	doc.CreatedAt = now
	doc.UpdatedAt = now

	s.docs[doc.ID] = doc
	return copyDoc(doc), nil
}

// Get retrieves a document by ID.
func (s *DocumentStore) Get(ctx context.Context, id string) (ports.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return ports.Document{}, fmt.Errorf("%w: %s", ports.ErrDocumentNotFound, id)
	}
	return copyDoc(doc), nil
}

// List returns documents of a type ("" for all), oldest first.
func (s *DocumentStore) List(ctx context.Context, docType string) ([]ports.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []ports.Document
	for _, doc := range s.docs {
		if docType == "" || doc.Type == docType {
			result = append(result, copyDoc(doc))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// Commit applies e to the document body. A failed event leaves the
// document untouched.
func (s *DocumentStore) Commit(ctx context.Context, id string, e patch.Event) (ports.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return ports.Document{}, fmt.Errorf("%w: %s", ports.ErrDocumentNotFound, id)
	}

	body, err := patch.ApplyObject(doc.Body, e)
	if err != nil {
		return ports.Document{}, err
	}

	doc.Body = body
	doc.Rev++
	doc.UpdatedAt = s.clock.Now()
	s.docs[id] = doc
	return copyDoc(doc), nil
}

func copyDoc(doc ports.Document) ports.Document {
	doc.Body = cloneMap(doc.Body)
	return doc
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Ensure interface compliance.
var _ ports.DocumentStore = (*DocumentStore)(nil)
