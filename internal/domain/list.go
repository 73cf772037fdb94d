package domain

import "time"

// ReadingStatus tags a saved book with where it sits in the owner's queue.
type ReadingStatus string

const (
	// StatusToBeRead marks a book the owner intends to read.
	StatusToBeRead ReadingStatus = "tbr"
	// StatusReading marks a book the owner is currently reading.
	StatusReading ReadingStatus = "reading"
	// StatusRead marks a finished book.
	StatusRead ReadingStatus = "read"
)

// Valid reports whether the status is one of the three known values.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusToBeRead, StatusReading, StatusRead:
		return true
	default:
		return false
	}
}

// ListEntry is a book saved to an owner's status-tagged list.
// At most one entry exists per (ExternalID, OwnerID) pair; saving the same
// book again replaces the status and date in place.
type ListEntry struct {
	BookRecord
	OwnerID   string        `json:"owner_id"`
	Status    ReadingStatus `json:"status"`
	DateAdded time.Time     `json:"date_added"`
}

// SameBook reports whether this entry and the given identifiers refer to
// the same saved book. ExternalID is the join key; entries without one
// never match, so unidentified books can coexist on a list.
func (e *ListEntry) SameBook(externalID, ownerID string) bool {
	return e.ExternalID != "" && e.ExternalID == externalID && e.OwnerID == ownerID
}
