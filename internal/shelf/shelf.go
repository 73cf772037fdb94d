// Package shelf implements the device-local list and review store. Entries
// are keyed by owner identity and persisted as whole JSON collections, so
// every mutation rewrites the full collection and the last writer wins.
package shelf

import (
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/id"
)

const (
	entriesKey = "shelf:entries"
	reviewsKey = "shelf:reviews"
)

// KV is the raw persistence the store runs on. A missing key reports
// ok=false with no error.
type KV interface {
	Read(key string) ([]byte, bool, error)
	Write(key string, value []byte) error
}

// LoadOutcome reports how a collection read resolved. Corrupt backing data
// degrades to an empty collection instead of failing, and the outcome lets
// callers and tests tell that apart from a genuinely empty store.
type LoadOutcome int

const (
	// LoadOK means the collection was present and parsed.
	LoadOK LoadOutcome = iota
	// LoadEmpty means no collection has been written yet.
	LoadEmpty
	// LoadRecovered means the backing data was unreadable or corrupt and
	// the store fell back to an empty collection.
	LoadRecovered
)

func (o LoadOutcome) String() string {
	switch o {
	case LoadOK:
		return "ok"
	case LoadEmpty:
		return "empty"
	case LoadRecovered:
		return "recovered"
	default:
		return "unknown"
	}
}

// Store holds the device's list entries and reviews.
type Store struct {
	kv     KV
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides review ID generation. Used by tests.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// New creates a Store over the given key-value persistence.
func New(kv KV, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		kv:     kv,
		logger: logger.With("component", "shelf"),
		now:    time.Now,
		newID:  func() string { return id.MustGenerate("rev") },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpsertListEntry saves a book to the owner's list under the given status.
// If an entry with the same (externalID, ownerID) already exists it is
// replaced in place, so the list holds at most one entry per book per owner.
func (s *Store) UpsertListEntry(record domain.BookRecord, ownerID string, status domain.ReadingStatus) (domain.ListEntry, error) {
	if ownerID == "" {
		return domain.ListEntry{}, errors.Unauthorized("saving a book requires a signed-in owner")
	}
	if !status.Valid() {
		return domain.ListEntry{}, errors.Validationf("unknown reading status %q", status)
	}

	entry := domain.ListEntry{
		BookRecord: record,
		OwnerID:    ownerID,
		Status:     status,
		DateAdded:  s.now(),
	}

	entries, outcome := s.loadEntries()
	if outcome == LoadRecovered {
		s.logger.Warn("list collection was corrupt, starting from empty")
	}

	replaced := false
	for i := range entries {
		if entries[i].SameBook(record.ExternalID, ownerID) {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}

	if err := s.saveEntries(entries); err != nil {
		return domain.ListEntry{}, err
	}
	return entry, nil
}

// AppendReview adds a review for a book. Ratings outside [1,5] and empty
// comments are silently declined, leaving the collection untouched. That
// mirrors how the store has always behaved and callers rely on it.
func (s *Store) AppendReview(bookID, ownerID string, rating int, comment string) error {
	if ownerID == "" {
		return errors.Unauthorized("reviewing a book requires a signed-in owner")
	}

	review := domain.ReviewEntry{
		ID:      s.newID(),
		BookID:  bookID,
		OwnerID: ownerID,
		Rating:  rating,
		Comment: strings.TrimSpace(comment),
		Date:    s.now(),
	}
	if !review.Valid() {
		s.logger.Debug("declining invalid review",
			"book_id", bookID, "rating", rating, "empty_comment", review.Comment == "")
		return nil
	}

	reviews, outcome := s.loadReviews()
	if outcome == LoadRecovered {
		s.logger.Warn("review collection was corrupt, starting from empty")
	}

	reviews = append(reviews, review)
	return s.saveReviews(reviews)
}

// ListFor returns the owner's list entries in insertion order.
func (s *Store) ListFor(ownerID string) ([]domain.ListEntry, LoadOutcome) {
	entries, outcome := s.loadEntries()
	var matched []domain.ListEntry
	for _, e := range entries {
		if e.OwnerID == ownerID {
			matched = append(matched, e)
		}
	}
	return matched, outcome
}

// ReviewsFor returns every stored review for the given book in insertion
// order. Pure read.
func (s *Store) ReviewsFor(bookID string) ([]domain.ReviewEntry, LoadOutcome) {
	reviews, outcome := s.loadReviews()
	var matched []domain.ReviewEntry
	for _, r := range reviews {
		if r.BookID == bookID {
			matched = append(matched, r)
		}
	}
	return matched, outcome
}

func (s *Store) loadEntries() ([]domain.ListEntry, LoadOutcome) {
	var entries []domain.ListEntry
	outcome := s.load(entriesKey, &entries)
	if outcome != LoadOK {
		return []domain.ListEntry{}, outcome
	}
	return entries, outcome
}

func (s *Store) loadReviews() ([]domain.ReviewEntry, LoadOutcome) {
	var reviews []domain.ReviewEntry
	outcome := s.load(reviewsKey, &reviews)
	if outcome != LoadOK {
		return []domain.ReviewEntry{}, outcome
	}
	return reviews, outcome
}

// load reads and decodes one collection. Read and parse failures degrade to
// an empty collection so local corruption never blocks the caller.
func (s *Store) load(key string, dest any) LoadOutcome {
	data, ok, err := s.kv.Read(key)
	if err != nil {
		s.logger.Warn("storage read failed", "key", key, "error", err)
		return LoadRecovered
	}
	if !ok {
		return LoadEmpty
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Warn("storage data corrupt", "key", key, "error", err)
		return LoadRecovered
	}
	return LoadOK
}

func (s *Store) saveEntries(entries []domain.ListEntry) error {
	return s.save(entriesKey, entries)
}

func (s *Store) saveReviews(reviews []domain.ReviewEntry) error {
	return s.save(reviewsKey, reviews)
}

func (s *Store) save(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Write(key, data); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}
