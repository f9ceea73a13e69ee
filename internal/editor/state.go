// Package editor implements the roster table editor as a reducer-driven state
// container. Every operation is expressed as one or more Actions folded into
// an immutable State; remote calls go through a Store and are always followed
// by a full reload of the collection.
package editor

import (
	"fmt"
	"slices"

	"github.com/atinyakov/GophRoster/internal/models"
)

// Field names an editable column of a record or of the draft row.
type Field string

// Editable fields.
const (
	FirstName Field = models.FieldFirstName
	LastName  Field = models.FieldLastName
	City      Field = models.FieldCity
)

// ParseField validates a field name.
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FirstName, LastName, City:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Draft holds the inputs of the not-yet-created record.
type Draft struct {
	FirstName string
	LastName  string
	City      string
}

// Record builds the record the draft describes. It has no id.
func (d Draft) Record() models.Record {
	return models.Record{FName: d.FirstName, LName: d.LastName, City: d.City}
}

// State is a snapshot of the editor. Values returned by the Editor are
// copies; mutating them does not affect the editor.
type State struct {
	// Records mirrors the remote collection, possibly with local edits.
	Records []models.Record
	// EditingID is the id of the row in edit mode; empty means none.
	EditingID string
	// SearchText is the current search input.
	SearchText string
	// Draft is the new-record row.
	Draft Draft
}

// Record returns the first record with the given id.
func (s State) Record(id string) (models.Record, bool) {
	i := s.index(id)
	if i < 0 {
		return models.Record{}, false
	}
	return s.Records[i], true
}

// IsEditing reports whether the row with the given id is in edit mode.
func (s State) IsEditing(id string) bool {
	return s.EditingID != "" && s.EditingID == id
}

// EditingStale reports whether EditingID points at a row that is no longer
// in Records, as happens after deleting the row being edited.
func (s State) EditingStale() bool {
	return s.EditingID != "" && s.index(s.EditingID) < 0
}

func (s State) index(id string) int {
	return slices.IndexFunc(s.Records, func(r models.Record) bool { return r.ID == id })
}

func (s State) clone() State {
	s.Records = slices.Clone(s.Records)
	return s
}

func setRecordField(r models.Record, f Field, value string) models.Record {
	switch f {
	case FirstName:
		r.FName = value
	case LastName:
		r.LName = value
	case City:
		r.City = value
	}
	return r
}

func setDraftField(d Draft, f Field, value string) Draft {
	switch f {
	case FirstName:
		d.FirstName = value
	case LastName:
		d.LastName = value
	case City:
		d.City = value
	}
	return d
}
