package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

func setupLibraryTest(t *testing.T) (*LibraryService, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "shelfmark-library-test-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	svc := NewLibraryService(s, nil)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}
	return svc, cleanup
}

func TestLibraryService_SaveBook(t *testing.T) {
	svc, cleanup := setupLibraryTest(t)
	defer cleanup()

	ctx := context.Background()
	record := domain.BookRecord{Title: "Dune", Author: "Frank Herbert", ExternalID: "/works/OL893415W"}

	entry, err := svc.SaveBook(ctx, "user_42", record, domain.StatusToBeRead)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusToBeRead, entry.Status)
	assert.False(t, entry.DateAdded.IsZero())

	books, err := svc.ListBooks(ctx, "user_42")
	require.NoError(t, err)
	require.Len(t, books, 1)
}

func TestLibraryService_SaveBook_UpsertsByExternalID(t *testing.T) {
	svc, cleanup := setupLibraryTest(t)
	defer cleanup()

	ctx := context.Background()
	record := domain.BookRecord{Title: "Dune", ExternalID: "/works/OL893415W"}

	_, err := svc.SaveBook(ctx, "user_42", record, domain.StatusToBeRead)
	require.NoError(t, err)
	_, err = svc.SaveBook(ctx, "user_42", record, domain.StatusRead)
	require.NoError(t, err)

	books, err := svc.ListBooks(ctx, "user_42")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, domain.StatusRead, books[0].Status)
}

func TestLibraryService_SaveBook_Rejections(t *testing.T) {
	svc, cleanup := setupLibraryTest(t)
	defer cleanup()

	ctx := context.Background()
	record := domain.BookRecord{Title: "Dune", ExternalID: "/works/OL893415W"}

	_, err := svc.SaveBook(ctx, "", record, domain.StatusRead)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))

	_, err = svc.SaveBook(ctx, "user_42", record, domain.ReadingStatus("wishlist"))
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = svc.SaveBook(ctx, "user_42", domain.BookRecord{}, domain.StatusRead)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestLibraryService_AddReview(t *testing.T) {
	svc, cleanup := setupLibraryTest(t)
	defer cleanup()

	ctx := context.Background()

	review, err := svc.AddReview(ctx, "user_42", "/works/OL893415W", 5, "  A classic.  ")
	require.NoError(t, err)
	assert.Equal(t, "A classic.", review.Comment)
	assert.NotEmpty(t, review.ID)

	// Reviews accumulate rather than replace.
	_, err = svc.AddReview(ctx, "user_42", "/works/OL893415W", 3, "On reread, less so.")
	require.NoError(t, err)

	reviews, err := svc.ListReviews(ctx, "user_42", "/works/OL893415W")
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "A classic.", reviews[0].Comment)
}

func TestLibraryService_AddReview_Rejections(t *testing.T) {
	svc, cleanup := setupLibraryTest(t)
	defer cleanup()

	ctx := context.Background()

	_, err := svc.AddReview(ctx, "", "/works/OL893415W", 5, "Great.")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))

	_, err = svc.AddReview(ctx, "user_42", "/works/OL893415W", 0, "Zero.")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = svc.AddReview(ctx, "user_42", "/works/OL893415W", 6, "Six.")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = svc.AddReview(ctx, "user_42", "/works/OL893415W", 4, "   ")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = svc.AddReview(ctx, "user_42", "", 4, "No book.")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	reviews, err := svc.ListReviews(ctx, "user_42", "")
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestLibraryService_ListReviews_FiltersByBook(t *testing.T) {
	svc, cleanup := setupLibraryTest(t)
	defer cleanup()

	ctx := context.Background()
	_, err := svc.AddReview(ctx, "user_42", "/works/OL893415W", 5, "Dune.")
	require.NoError(t, err)
	_, err = svc.AddReview(ctx, "user_42", "/works/OL1967298W", 4, "Hyperion.")
	require.NoError(t, err)

	all, err := svc.ListReviews(ctx, "user_42", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := svc.ListReviews(ctx, "user_42", "/works/OL1967298W")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "Hyperion.", one[0].Comment)
}
