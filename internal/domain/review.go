package domain

import (
	"strings"
	"time"
)

// Rating bounds for reviews.
const (
	MinRating = 1
	MaxRating = 5
)

// ReviewEntry is a rating and comment an owner left on a book.
// Reviews are append-only: an owner may review the same book repeatedly.
type ReviewEntry struct {
	ID      string    `json:"id,omitempty"`
	BookID  string    `json:"book_id"`
	OwnerID string    `json:"owner_id"`
	Rating  int       `json:"rating"`
	Comment string    `json:"comment"`
	Date    time.Time `json:"date"`
}

// Valid reports whether the review carries a rating in range and a
// non-empty comment after trimming.
func (r *ReviewEntry) Valid() bool {
	return r.Rating >= MinRating && r.Rating <= MaxRating && strings.TrimSpace(r.Comment) != ""
}

// MergeKey identifies a review for optional cross-source de-duplication.
// The source system defines no reconciliation key between local and backend
// reviews; (owner, book, date) is the closest stable composite.
func (r *ReviewEntry) MergeKey() string {
	return r.OwnerID + "\x00" + r.BookID + "\x00" + r.Date.UTC().Format(time.RFC3339Nano)
}
