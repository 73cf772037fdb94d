package store

import (
	"context"
	"fmt"

	"github.com/shelfmark/shelfmark-server/internal/domain"
)

// Server-side shelf persistence. Each owner's list entries and reviews are
// stored as whole collections under one key apiece - mutations rewrite the
// collection, so the last writer wins, mirroring the device-side model.
const (
	ownerListPrefix   = "list:"
	ownerReviewPrefix = "review:"
)

// GetListEntries returns the owner's saved list entries.
// A missing collection is an empty list, not an error.
func (s *Store) GetListEntries(_ context.Context, ownerID string) ([]domain.ListEntry, error) {
	var entries []domain.ListEntry
	err := s.get([]byte(ownerListPrefix+ownerID), &entries)
	if err != nil {
		if isKeyNotFound(err) {
			return []domain.ListEntry{}, nil
		}
		return nil, fmt.Errorf("get list entries: %w", err)
	}
	return entries, nil
}

// SaveListEntries overwrites the owner's list collection.
func (s *Store) SaveListEntries(_ context.Context, ownerID string, entries []domain.ListEntry) error {
	if err := s.set([]byte(ownerListPrefix+ownerID), entries); err != nil {
		return fmt.Errorf("save list entries: %w", err)
	}
	return nil
}

// GetReviews returns the owner's reviews in insertion order.
// A missing collection is an empty list, not an error.
func (s *Store) GetReviews(_ context.Context, ownerID string) ([]domain.ReviewEntry, error) {
	var reviews []domain.ReviewEntry
	err := s.get([]byte(ownerReviewPrefix+ownerID), &reviews)
	if err != nil {
		if isKeyNotFound(err) {
			return []domain.ReviewEntry{}, nil
		}
		return nil, fmt.Errorf("get reviews: %w", err)
	}
	return reviews, nil
}

// SaveReviews overwrites the owner's review collection.
func (s *Store) SaveReviews(_ context.Context, ownerID string, reviews []domain.ReviewEntry) error {
	if err := s.set([]byte(ownerReviewPrefix+ownerID), reviews); err != nil {
		return fmt.Errorf("save reviews: %w", err)
	}
	return nil
}

// DeleteOwnerData removes the owner's list and review collections.
// Part of the account-deletion cascade. Idempotent.
func (s *Store) DeleteOwnerData(_ context.Context, ownerID string) error {
	if err := s.delete([]byte(ownerListPrefix + ownerID)); err != nil {
		return fmt.Errorf("delete list entries: %w", err)
	}
	if err := s.delete([]byte(ownerReviewPrefix + ownerID)); err != nil {
		return fmt.Errorf("delete reviews: %w", err)
	}
	return nil
}
