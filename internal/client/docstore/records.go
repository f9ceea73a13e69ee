package docstore

import (
	"context"

	"github.com/atinyakov/GophRoster/internal/models"
)

// RecordStore exposes one collection of the store as user records.
type RecordStore struct {
	client     *Client
	collection string
}

// NewRecordStore binds client to collection.
func NewRecordStore(client *Client, collection string) *RecordStore {
	return &RecordStore{client: client, collection: collection}
}

// ListAll fetches and projects every document of the collection.
func (s *RecordStore) ListAll(ctx context.Context) ([]models.Record, error) {
	docs, err := s.client.ListAll(ctx, s.collection)
	if err != nil {
		return nil, err
	}
	records := make([]models.Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, models.RecordFromDocument(d))
	}
	return records, nil
}

// Create stores the given fields and returns the new id.
func (s *RecordStore) Create(ctx context.Context, fields map[string]any) (string, error) {
	return s.client.Create(ctx, s.collection, fields)
}

// UpdateFields applies a partial update to the record with the given id.
func (s *RecordStore) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	return s.client.UpdateFields(ctx, s.collection, id, fields)
}

// Delete removes the record with the given id.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, s.collection, id)
}
