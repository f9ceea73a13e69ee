// Package models defines the core data structures for stored documents and
// the user records projected from them.
package models

// Field names persisted for a user record.
const (
	FieldFirstName = "fname"
	FieldLastName  = "lname"
	FieldCity      = "city"
)

// UsersCollection is the collection the roster reads and writes.
const UsersCollection = "users"

// Document is a schema-less entry of a collection.
type Document struct {
	// ID is the identifier assigned by the store on creation.
	ID string `json:"id"`
	// Fields holds the document payload.
	Fields map[string]any `json:"fields"`
}

// Record represents a single user row.
type Record struct {
	// ID is the store-assigned identifier. Empty for a record that has not
	// been persisted yet.
	ID string `json:"id"`
	// FName is the first name.
	FName string `json:"fname"`
	// LName is the last name.
	LName string `json:"lname"`
	// City is the home city.
	City string `json:"city"`
}

// RecordFromDocument projects a document onto a Record. Missing or
// non-string fields become empty strings.
func RecordFromDocument(d Document) Record {
	return Record{
		ID:    d.ID,
		FName: stringField(d.Fields, FieldFirstName),
		LName: stringField(d.Fields, FieldLastName),
		City:  stringField(d.Fields, FieldCity),
	}
}

// Fields returns the three persisted text fields of r.
func (r Record) Fields() map[string]any {
	return map[string]any{
		FieldFirstName: r.FName,
		FieldLastName:  r.LName,
		FieldCity:      r.City,
	}
}

func stringField(fields map[string]any, key string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}
