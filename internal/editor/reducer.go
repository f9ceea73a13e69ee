package editor

import (
	"slices"

	"github.com/atinyakov/GophRoster/internal/models"
)

// Action is a state transition understood by Reduce.
type Action interface {
	action()
}

// Loaded replaces Records wholesale with a fetched (and possibly filtered)
// collection.
type Loaded struct {
	Records []models.Record
}

// EditBegan puts the row with ID into edit mode, taking it from any other row.
type EditBegan struct {
	ID string
}

// FieldChanged sets one field of the in-memory record with ID.
type FieldChanged struct {
	ID    string
	Field Field
	Value string
}

// EditCleared leaves edit mode without touching Records.
type EditCleared struct{}

// DraftChanged sets one field of the new-record row.
type DraftChanged struct {
	Field Field
	Value string
}

// SearchTextChanged sets the search input.
type SearchTextChanged struct {
	Text string
}

// LocalAppended appends a record that only exists locally.
type LocalAppended struct {
	Record models.Record
}

// DraftCleared resets the new-record row.
type DraftCleared struct{}

func (Loaded) action()            {}
func (EditBegan) action()         {}
func (FieldChanged) action()      {}
func (EditCleared) action()       {}
func (DraftChanged) action()      {}
func (SearchTextChanged) action() {}
func (LocalAppended) action()     {}
func (DraftCleared) action()      {}

// Reduce returns the state that results from applying a to s. It never
// modifies s or the slices it references.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Loaded:
		s.Records = slices.Clone(a.Records)
		if s.Records == nil {
			s.Records = []models.Record{}
		}
	case EditBegan:
		s.EditingID = a.ID
	case FieldChanged:
		i := s.index(a.ID)
		if i < 0 {
			return s
		}
		s.Records = slices.Clone(s.Records)
		s.Records[i] = setRecordField(s.Records[i], a.Field, a.Value)
	case EditCleared:
		s.EditingID = ""
	case DraftChanged:
		s.Draft = setDraftField(s.Draft, a.Field, a.Value)
	case SearchTextChanged:
		s.SearchText = a.Text
	case LocalAppended:
		s.Records = append(slices.Clip(s.Records), a.Record)
	case DraftCleared:
		s.Draft = Draft{}
	}
	return s
}
