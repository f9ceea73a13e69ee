package editor

import (
	"strings"

	"github.com/atinyakov/GophRoster/internal/models"
)

// Matches reports whether text is a case-insensitive substring of the first
// name, last name or city of r. Empty text matches every record.
func Matches(r models.Record, text string) bool {
	needle := strings.ToLower(text)
	return strings.Contains(strings.ToLower(r.FName), needle) ||
		strings.Contains(strings.ToLower(r.LName), needle) ||
		strings.Contains(strings.ToLower(r.City), needle)
}

// Filter returns the records matching text, preserving order.
func Filter(records []models.Record, text string) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if Matches(r, text) {
			out = append(out, r)
		}
	}
	return out
}
