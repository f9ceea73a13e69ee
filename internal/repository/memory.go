package repository

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/atinyakov/GophRoster/internal/models"
)

type memDocument struct {
	id        string
	fields    map[string]any
	deletedAt time.Time
	deleted   bool
}

// MemoryDocumentRepository keeps documents in process memory. It backs the
// "memory" driver and the service tests.
type MemoryDocumentRepository struct {
	mu          sync.RWMutex
	collections map[string][]*memDocument
	now         func() time.Time
}

// NewMemoryDocumentRepository returns an empty repository.
func NewMemoryDocumentRepository() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{
		collections: make(map[string][]*memDocument),
		now:         time.Now,
	}
}

// ListAll returns copies of the live documents in insertion order.
func (r *MemoryDocumentRepository) ListAll(_ context.Context, collection string) ([]models.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := []models.Document{}
	for _, d := range r.collections[collection] {
		if d.deleted {
			continue
		}
		docs = append(docs, models.Document{ID: d.id, Fields: maps.Clone(d.fields)})
	}
	return docs, nil
}

// Create appends a new document.
func (r *MemoryDocumentRepository) Create(_ context.Context, collection, id string, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := maps.Clone(fields)
	if stored == nil {
		stored = map[string]any{}
	}
	r.collections[collection] = append(r.collections[collection], &memDocument{id: id, fields: stored})
	return nil
}

// UpdateFields merges fields into the live document with the given id.
func (r *MemoryDocumentRepository) UpdateFields(_ context.Context, collection, id string, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := r.find(collection, id)
	if d == nil {
		return ErrNotFound
	}
	maps.Copy(d.fields, fields)
	return nil
}

// Delete soft-deletes the live document with the given id.
func (r *MemoryDocumentRepository) Delete(_ context.Context, collection, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := r.find(collection, id)
	if d == nil {
		return ErrNotFound
	}
	d.deleted = true
	d.deletedAt = r.now()
	return nil
}

// Purge drops documents soft-deleted before the cutoff.
func (r *MemoryDocumentRepository) Purge(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for name, docs := range r.collections {
		kept := docs[:0]
		for _, d := range docs {
			if d.deleted && d.deletedAt.Before(before) {
				removed++
				continue
			}
			kept = append(kept, d)
		}
		r.collections[name] = kept
	}
	return removed, nil
}

func (r *MemoryDocumentRepository) find(collection, id string) *memDocument {
	for _, d := range r.collections[collection] {
		if d.id == id && !d.deleted {
			return d
		}
	}
	return nil
}
