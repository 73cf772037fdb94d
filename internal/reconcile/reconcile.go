// Package reconcile merges review data from the authoritative backend with
// device-local reviews into a single display sequence.
package reconcile

import "github.com/shelfmark/shelfmark-server/internal/domain"

// Option configures a merge.
type Option func(*merger)

type merger struct {
	dedupe bool
}

// WithDeduplication drops a local review when a backend review with the
// same owner, book, and timestamp is already present. The sources are
// additive by default, so a locally written review that was later synced
// server-side would otherwise show twice.
func WithDeduplication() Option {
	return func(m *merger) { m.dedupe = true }
}

// MergeReviews produces the ordered display list for a book: backend
// reviews first in their given order, then local reviews in insertion
// order. Neither input is modified.
func MergeReviews(backend, local []domain.ReviewEntry, opts ...Option) []domain.ReviewEntry {
	var m merger
	for _, opt := range opts {
		opt(&m)
	}

	merged := make([]domain.ReviewEntry, 0, len(backend)+len(local))
	merged = append(merged, backend...)

	if !m.dedupe {
		return append(merged, local...)
	}

	seen := make(map[string]struct{}, len(backend))
	for i := range backend {
		seen[backend[i].MergeKey()] = struct{}{}
	}
	for i := range local {
		if _, dup := seen[local[i].MergeKey()]; dup {
			continue
		}
		merged = append(merged, local[i])
	}
	return merged
}
