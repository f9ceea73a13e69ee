package editor

import (
	"context"
	"errors"
	"maps"
	"strconv"
	"sync"

	"github.com/atinyakov/GophRoster/internal/models"
)

var errRejected = errors.New("store rejected the call")

type updateCall struct {
	id     string
	fields map[string]any
}

// fakeStore is an in-memory collection that records every call.
type fakeStore struct {
	mu      sync.Mutex
	records []models.Record
	seq     int

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	// listHook, when set, runs before ListAll returns and may block.
	listHook func()

	creates []map[string]any
	updates []updateCall
	deletes []string
	lists   int
}

func newFakeStore(records ...models.Record) *fakeStore {
	return &fakeStore{records: records}
}

func (f *fakeStore) ListAll(context.Context) ([]models.Record, error) {
	f.mu.Lock()
	f.lists++
	out := append([]models.Record(nil), f.records...)
	err := f.listErr
	hook := f.listHook
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeStore) Create(_ context.Context, fields map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, maps.Clone(fields))
	if f.createErr != nil {
		return "", f.createErr
	}
	f.seq++
	id := "new-" + strconv.Itoa(f.seq)
	f.records = append(f.records, models.RecordFromDocument(models.Document{ID: id, Fields: fields}))
	return id, nil
}

func (f *fakeStore) UpdateFields(_ context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updateCall{id: id, fields: maps.Clone(fields)})
	if f.updateErr != nil {
		return f.updateErr
	}
	for i, r := range f.records {
		if r.ID == id {
			doc := models.Document{ID: id, Fields: r.Fields()}
			maps.Copy(doc.Fields, fields)
			f.records[i] = models.RecordFromDocument(doc)
			return nil
		}
	}
	return errRejected
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return errRejected
}
