package data

import (
	"strings"

	"github.com/google/uuid"
)

// UUIDEntry is the result of a name to UUID lookup.
type UUIDEntry struct {
	ID     string `json:"id"` // no hyphens
	Name   string `json:"name"`
	Legacy *bool  `json:"legacy,omitempty"`
	Demo   *bool  `json:"demo,omitempty"`
}

// UUID parses ID.
func (e UUIDEntry) UUID() (uuid.UUID, error) {
	return uuid.Parse(e.ID)
}

// FormatUUID formats a UUID string with dashes in lower case. Strings that
// are not UUIDs are returned unchanged.
// Input:  "069A79F444E94726A5BEFCA90E38AAF5"
// Output: "069a79f4-44e9-4726-a5be-fca90e38aaf5"
func FormatUUID(s string) string {
	id, err := uuid.Parse(s)
	if err != nil {
		return s
	}
	return id.String()
}

// TrimUUID returns the UUID without dashes in lower case, the form the API
// uses in paths and bodies. Strings that are not UUIDs are returned
// unchanged.
func TrimUUID(s string) string {
	id, err := uuid.Parse(s)
	if err != nil {
		return s
	}
	return strings.ReplaceAll(id.String(), "-", "")
}
