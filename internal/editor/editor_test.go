package editor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/atinyakov/GophRoster/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var (
	ann = models.Record{ID: "1", FName: "Ann", LName: "Lee", City: "NY"}
	bo  = models.Record{ID: "2", FName: "Bo", LName: "Ng", City: "SF"}
	cy  = models.Record{ID: "3", FName: "Cy", LName: "Annis", City: "LA"}
)

func loaded(t *testing.T, store *fakeStore) *Editor {
	t.Helper()
	e := New(store, zap.NewNop())
	require.NoError(t, e.Load(context.Background()))
	return e
}

func TestLoad_MirrorsRemote(t *testing.T) {
	store := newFakeStore(ann, bo, cy)
	e := loaded(t, store)

	assert.Equal(t, []models.Record{ann, bo, cy}, e.State().Records)
}

func TestLoad_ErrorKeepsRecords(t *testing.T) {
	store := newFakeStore(ann)
	e := loaded(t, store)
	store.listErr = errRejected

	assert.ErrorIs(t, e.Load(context.Background()), errRejected)
	assert.Equal(t, []models.Record{ann}, e.State().Records)
}

func TestChangeField_LocalOnly(t *testing.T) {
	store := newFakeStore(ann, bo)
	e := loaded(t, store)

	require.NoError(t, e.ChangeField("1", City, "LA"))
	require.NoError(t, e.ChangeField("missing", City, "LA"))

	assert.Equal(t, []models.Record{{ID: "1", FName: "Ann", LName: "Lee", City: "LA"}, bo}, e.State().Records)
	assert.Empty(t, store.updates)
	assert.ErrorIs(t, e.ChangeField("1", Field("id"), "x"), ErrUnknownField)
}

func TestSave_SendsThreeFieldsAndReloads(t *testing.T) {
	store := newFakeStore(ann)
	e := loaded(t, store)

	e.BeginEdit("1")
	require.NoError(t, e.ChangeField("1", City, "LA"))
	require.NoError(t, e.Save(context.Background(), "1"))

	require.Len(t, store.updates, 1)
	assert.Equal(t, "1", store.updates[0].id)
	assert.Equal(t, map[string]any{"fname": "Ann", "lname": "Lee", "city": "LA"}, store.updates[0].fields)

	s := e.State()
	assert.Empty(t, s.EditingID)
	assert.Equal(t, "LA", s.Records[0].City)
	assert.Equal(t, 2, store.lists)
}

func TestSave_FailureLeavesEditing(t *testing.T) {
	store := newFakeStore(ann)
	e := loaded(t, store)
	store.updateErr = errRejected

	e.BeginEdit("1")
	require.NoError(t, e.ChangeField("1", FirstName, "Anne"))
	err := e.Save(context.Background(), "1")

	assert.ErrorIs(t, err, errRejected)
	s := e.State()
	assert.Equal(t, "1", s.EditingID)
	assert.Equal(t, "Anne", s.Records[0].FName, "no rollback of local edits")
	assert.Equal(t, 1, store.lists, "no reload after a failed update")
}

func TestSave_UnknownID(t *testing.T) {
	store := newFakeStore(ann)
	e := loaded(t, store)

	assert.ErrorIs(t, e.Save(context.Background(), "nope"), ErrRecordNotFound)
	assert.Empty(t, store.updates)
}

func TestSave_ReloadFailureStillLeavesEditMode(t *testing.T) {
	store := newFakeStore(ann)
	e := loaded(t, store)
	e.BeginEdit("1")
	store.listErr = errRejected

	assert.ErrorIs(t, e.Save(context.Background(), "1"), errRejected)
	assert.Empty(t, e.State().EditingID)
}

func TestCancelEdit_KeepsLocalChanges(t *testing.T) {
	store := newFakeStore(ann)
	e := loaded(t, store)

	e.BeginEdit("1")
	require.NoError(t, e.ChangeField("1", LastName, "Li"))
	e.CancelEdit()

	s := e.State()
	assert.Empty(t, s.EditingID)
	assert.Equal(t, "Li", s.Records[0].LName)

	require.NoError(t, e.Load(context.Background()))
	assert.Equal(t, "Lee", e.State().Records[0].LName, "reload overwrites the draft edit")
}

func TestBeginEdit_LastClickWins(t *testing.T) {
	store := newFakeStore(ann, bo)
	e := loaded(t, store)

	var seen []string
	unsubscribe := e.Subscribe(func(s State) { seen = append(seen, s.EditingID) })
	defer unsubscribe()

	e.BeginEdit("1")
	require.NoError(t, e.ChangeField("1", City, "unsaved"))
	e.BeginEdit("2")

	s := e.State()
	assert.True(t, s.IsEditing("2"))
	assert.False(t, s.IsEditing("1"))
	assert.Equal(t, []string{"1", "1", "2"}, seen)
	assert.Empty(t, store.updates, "switching rows never saves")
}

func TestDelete_ReloadsAndKeepsStaleEditingID(t *testing.T) {
	store := newFakeStore(ann, bo)
	e := loaded(t, store)

	e.BeginEdit("2")
	require.NoError(t, e.Delete(context.Background(), "2"))

	s := e.State()
	assert.Equal(t, []models.Record{ann}, s.Records)
	assert.Equal(t, "2", s.EditingID)
	assert.True(t, s.EditingStale())
}

func TestDelete_Rejected(t *testing.T) {
	store := newFakeStore(ann)
	e := loaded(t, store)

	assert.ErrorIs(t, e.Delete(context.Background(), "ghost"), errRejected)
	assert.Equal(t, 1, store.lists)
}

func TestAdd_CreatesFromDraftAndClears(t *testing.T) {
	store := newFakeStore(ann)
	e := loaded(t, store)

	require.NoError(t, e.SetDraft(FirstName, "Bo"))
	require.NoError(t, e.SetDraft(LastName, ""))
	require.NoError(t, e.SetDraft(City, "SF"))

	var snapshots []State
	unsubscribe := e.Subscribe(func(s State) { snapshots = append(snapshots, s) })
	defer unsubscribe()

	require.NoError(t, e.Add(context.Background()))

	require.Len(t, store.creates, 1)
	assert.Equal(t, map[string]any{"fname": "Bo", "lname": "", "city": "SF"}, store.creates[0])

	s := e.State()
	assert.Equal(t, Draft{}, s.Draft)
	require.Len(t, s.Records, 2)
	assert.Equal(t, "new-1", s.Records[1].ID, "reload result wins over the local copy")

	// The fabricated copy is visible before the reload replaces it.
	require.NotEmpty(t, snapshots)
	first := snapshots[0]
	require.Len(t, first.Records, 2)
	assert.Equal(t, models.Record{FName: "Bo", City: "SF"}, first.Records[1])
}

func TestAdd_FailureStillClearsDraft(t *testing.T) {
	store := newFakeStore(ann)
	store.createErr = errRejected
	e := loaded(t, store)

	require.NoError(t, e.SetDraft(FirstName, "Bo"))
	require.NoError(t, e.SetDraft(City, "SF"))

	assert.ErrorIs(t, e.Add(context.Background()), errRejected)

	s := e.State()
	assert.Equal(t, Draft{}, s.Draft)
	assert.Equal(t, []models.Record{ann}, s.Records)
}

func TestSearch(t *testing.T) {
	store := newFakeStore(ann, bo, cy)

	tests := []struct {
		text string
		want []models.Record
	}{
		{"", []models.Record{ann, bo, cy}},
		{"ann", []models.Record{ann, cy}},
		{"sf", []models.Record{bo}},
		{"zzz", []models.Record{}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			e := loaded(t, store)
			e.SetSearchText(tt.text)
			require.NoError(t, e.Search(context.Background()))
			assert.Equal(t, tt.want, e.State().Records)
		})
	}
}

func TestSearch_RefetchesInsteadOfNarrowing(t *testing.T) {
	store := newFakeStore(ann, bo)
	e := loaded(t, store)

	e.SetSearchText("bo")
	require.NoError(t, e.Search(context.Background()))
	require.Equal(t, []models.Record{bo}, e.State().Records)

	e.SetSearchText("ann")
	require.NoError(t, e.Search(context.Background()))
	assert.Equal(t, []models.Record{ann}, e.State().Records)
	assert.Equal(t, 3, store.lists)
}

func TestSetDraft_UnknownField(t *testing.T) {
	e := New(newFakeStore(), nil)
	assert.ErrorIs(t, e.SetDraft(Field("age"), "3"), ErrUnknownField)
}

func TestOverlappingLoads_LastToFinishWins(t *testing.T) {
	store := newFakeStore(ann)
	e := New(store, zap.NewNop())

	release := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once
	store.listHook = func() {
		first := false
		once.Do(func() { first = true })
		if first {
			close(entered)
			<-release
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, e.Load(context.Background()))
	}()
	<-entered

	// A newer load completes while the older one is still in flight.
	store.mu.Lock()
	store.records = []models.Record{ann, bo}
	store.mu.Unlock()
	require.NoError(t, e.Load(context.Background()))
	require.Len(t, e.State().Records, 2)

	close(release)
	wg.Wait()

	assert.Equal(t, []models.Record{ann}, e.State().Records, "stale load resolves last and wins")
}

func TestLogsRemoteFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := newFakeStore(ann)
	store.deleteErr = errors.New("network down")
	e := New(store, zap.New(core))

	require.Error(t, e.Delete(context.Background(), "1"))

	entries := logs.FilterMessage("delete failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].ContextMap()["id"])
}

func TestStateIsACopy(t *testing.T) {
	e := loaded(t, newFakeStore(ann))

	s := e.State()
	s.Records[0].FName = "mutated"

	assert.Equal(t, "Ann", e.State().Records[0].FName)
}
