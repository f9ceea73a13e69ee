package editor

import (
	"context"
	"errors"
	"sync"

	"github.com/atinyakov/GophRoster/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrRecordNotFound is returned by Save when the id is not in Records.
	ErrRecordNotFound = errors.New("editor: record not in local state")
	// ErrUnknownField is returned for a field name other than fname, lname
	// or city.
	ErrUnknownField = errors.New("editor: unknown field")
)

// Store is the remote collection the editor mirrors.
type Store interface {
	// ListAll returns every record of the collection.
	ListAll(ctx context.Context) ([]models.Record, error)
	// Create stores fields as a new record and returns its id.
	Create(ctx context.Context, fields map[string]any) (string, error)
	// UpdateFields applies a partial update to the record with the given id.
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	// Delete removes the record with the given id.
	Delete(ctx context.Context, id string) error
}

// Editor holds the table state and runs the remote side of each operation.
//
// State changes are serialised, remote calls are not: the lock is never held
// across a Store call, so overlapping operations may interleave and whichever
// reload finishes last determines Records.
type Editor struct {
	store Store
	log   *zap.Logger

	mu    sync.Mutex
	state State
	subs  map[int]func(State)
	next  int
}

// New returns an editor with empty state. Call Load to populate it.
func New(store Store, log *zap.Logger) *Editor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Editor{
		store: store,
		log:   log,
		state: State{Records: []models.Record{}},
		subs:  make(map[int]func(State)),
	}
}

// State returns a copy of the current state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Subscribe registers fn to receive a copy of the state after every
// transition, including intermediate ones. It returns an unsubscribe func.
func (e *Editor) Subscribe(fn func(State)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.next
	e.next++
	e.subs[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs, id)
	}
}

// Dispatch applies a to the state and notifies subscribers.
func (e *Editor) Dispatch(a Action) State {
	e.mu.Lock()
	e.state = Reduce(e.state, a)
	snapshot := e.state.clone()
	subs := make([]func(State), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot.clone())
	}
	return snapshot
}

// Load replaces Records with the full remote collection.
func (e *Editor) Load(ctx context.Context) error {
	records, err := e.store.ListAll(ctx)
	if err != nil {
		e.log.Warn("load failed", zap.Error(err))
		return err
	}
	e.log.Debug("loaded", zap.Int("records", len(records)))
	e.Dispatch(Loaded{Records: records})
	return nil
}

// BeginEdit puts the row with id into edit mode. Any other row leaves edit
// mode without saving.
func (e *Editor) BeginEdit(id string) {
	e.Dispatch(EditBegan{ID: id})
}

// ChangeField edits the in-memory copy of a record. Nothing is sent to the
// store; an unknown id is ignored.
func (e *Editor) ChangeField(id string, field Field, value string) error {
	if _, err := ParseField(string(field)); err != nil {
		return err
	}
	e.Dispatch(FieldChanged{ID: id, Field: field, Value: value})
	return nil
}

// Save sends the three text fields of the in-memory record to the store,
// reloads, and leaves edit mode. If the update fails the row stays in edit
// mode and the error is returned as is.
func (e *Editor) Save(ctx context.Context, id string) error {
	rec, ok := e.State().Record(id)
	if !ok {
		return ErrRecordNotFound
	}
	if err := e.store.UpdateFields(ctx, id, rec.Fields()); err != nil {
		e.log.Warn("update failed", zap.String("id", id), zap.Error(err))
		return err
	}
	e.log.Debug("updated", zap.String("id", id))

	err := e.Load(ctx)
	e.Dispatch(EditCleared{})
	return err
}

// CancelEdit leaves edit mode. Local field changes stay in Records until the
// next reload.
func (e *Editor) CancelEdit() {
	e.Dispatch(EditCleared{})
}

// Delete removes the record from the store and reloads. EditingID is left
// alone even when it named the deleted row.
func (e *Editor) Delete(ctx context.Context, id string) error {
	if err := e.store.Delete(ctx, id); err != nil {
		e.log.Warn("delete failed", zap.String("id", id), zap.Error(err))
		return err
	}
	e.log.Debug("deleted", zap.String("id", id))
	return e.Load(ctx)
}

// Add creates a record from the draft row. On success the new record is
// appended locally without an id, the draft is cleared, and the collection
// is reloaded, replacing the local copy. On failure the draft is still
// cleared and the create error is returned.
func (e *Editor) Add(ctx context.Context) error {
	rec := e.State().Draft.Record()

	id, err := e.store.Create(ctx, rec.Fields())
	if err != nil {
		e.log.Warn("create failed", zap.Error(err))
		e.Dispatch(DraftCleared{})
		return err
	}
	e.log.Debug("created", zap.String("id", id))

	e.Dispatch(LocalAppended{Record: rec})
	e.Dispatch(DraftCleared{})
	return e.Load(ctx)
}

// Search fetches the full collection and keeps only the records matching
// the current search text.
func (e *Editor) Search(ctx context.Context) error {
	text := e.State().SearchText
	records, err := e.store.ListAll(ctx)
	if err != nil {
		e.log.Warn("search failed", zap.Error(err))
		return err
	}
	matched := Filter(records, text)
	e.log.Debug("searched", zap.String("text", text), zap.Int("matched", len(matched)))
	e.Dispatch(Loaded{Records: matched})
	return nil
}

// SetSearchText updates the search input.
func (e *Editor) SetSearchText(text string) {
	e.Dispatch(SearchTextChanged{Text: text})
}

// SetDraft updates one field of the new-record row.
func (e *Editor) SetDraft(field Field, value string) error {
	if _, err := ParseField(string(field)); err != nil {
		return err
	}
	e.Dispatch(DraftChanged{Field: field, Value: value})
	return nil
}
