package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/id"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

// LibraryService manages an owner's server-side book list and reviews.
// The persistence model mirrors the device store: whole collections per
// owner, last writer wins.
type LibraryService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewLibraryService creates a new library service.
func NewLibraryService(store *store.Store, logger *slog.Logger) *LibraryService {
	return &LibraryService{store: store, logger: logger}
}

// SaveBook adds a book to the owner's list under the given status, or
// replaces the existing entry for the same book. At most one entry exists
// per (externalID, ownerID) pair.
func (s *LibraryService) SaveBook(ctx context.Context, ownerID string, record domain.BookRecord, status domain.ReadingStatus) (*domain.ListEntry, error) {
	if ownerID == "" {
		return nil, domainerrors.Unauthorized("saving a book requires a signed-in owner")
	}
	if !status.Valid() {
		return nil, domainerrors.Validationf("unknown reading status %q", status)
	}
	if record.Title == "" {
		return nil, domainerrors.Validation("book title is required")
	}

	entry := domain.ListEntry{
		BookRecord: record,
		OwnerID:    ownerID,
		Status:     status,
		DateAdded:  time.Now(),
	}

	entries, err := s.store.GetListEntries(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load list: %w", err)
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

	if err := s.store.SaveListEntries(ctx, ownerID, entries); err != nil {
		return nil, fmt.Errorf("save list: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("Saved book to list",
			"owner_id", ownerID,
			"external_id", record.ExternalID,
			"status", status,
			"replaced", replaced,
		)
	}
	return &entry, nil
}

// ListBooks returns the owner's saved books in insertion order.
func (s *LibraryService) ListBooks(ctx context.Context, ownerID string) ([]domain.ListEntry, error) {
	if ownerID == "" {
		return nil, domainerrors.Unauthorized("listing books requires a signed-in owner")
	}
	entries, err := s.store.GetListEntries(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load list: %w", err)
	}
	return entries, nil
}

// AddReview appends a review to the owner's collection. Unlike the device
// store, the server rejects invalid input loudly.
func (s *LibraryService) AddReview(ctx context.Context, ownerID, bookID string, rating int, comment string) (*domain.ReviewEntry, error) {
	if ownerID == "" {
		return nil, domainerrors.Unauthorized("reviewing a book requires a signed-in owner")
	}
	if bookID == "" {
		return nil, domainerrors.Validation("book ID is required")
	}

	reviewID, err := id.Generate("rev")
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := domain.ReviewEntry{
		ID:      reviewID,
		BookID:  bookID,
		OwnerID: ownerID,
		Rating:  rating,
		Comment: strings.TrimSpace(comment),
		Date:    time.Now(),
	}
	if !review.Valid() {
		return nil, domainerrors.Validationf("rating must be between %d and %d and comment must not be empty",
			domain.MinRating, domain.MaxRating)
	}

	reviews, err := s.store.GetReviews(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	reviews = append(reviews, review)

	if err := s.store.SaveReviews(ctx, ownerID, reviews); err != nil {
		return nil, fmt.Errorf("save reviews: %w", err)
	}
	return &review, nil
}

// ListReviews returns the owner's reviews, optionally filtered to one
// book, in insertion order.
func (s *LibraryService) ListReviews(ctx context.Context, ownerID, bookID string) ([]domain.ReviewEntry, error) {
	if ownerID == "" {
		return nil, domainerrors.Unauthorized("listing reviews requires a signed-in owner")
	}
	reviews, err := s.store.GetReviews(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	if bookID == "" {
		return reviews, nil
	}

	matched := make([]domain.ReviewEntry, 0, len(reviews))
	for _, r := range reviews {
		if r.BookID == bookID {
			matched = append(matched, r)
		}
	}
	return matched, nil
}
