package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/media/images"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

func setupProfileTest(t *testing.T) (*ProfileService, *store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "shelfmark-profile-test-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	pictures, err := images.NewStorage(tmpDir)
	require.NoError(t, err)

	svc := NewProfileService(s, pictures, nil)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}
	return svc, s, cleanup
}

func createTestUser(t *testing.T, s *store.Store, userID, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		Record:      domain.Record{ID: userID},
		Email:       email,
		DisplayName: "Reader",
	}
	user.InitTimestamps()
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestProfileService_GetProfile(t *testing.T) {
	svc, s, cleanup := setupProfileTest(t)
	defer cleanup()

	createTestUser(t, s, "user_42", "reader@example.com")

	user, err := svc.GetProfile(context.Background(), "user_42")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", user.Email)
}

func TestProfileService_GetProfile_NotFound(t *testing.T) {
	svc, _, cleanup := setupProfileTest(t)
	defer cleanup()

	_, err := svc.GetProfile(context.Background(), "user_missing")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestProfileService_UpdateProfile_Fields(t *testing.T) {
	svc, s, cleanup := setupProfileTest(t)
	defer cleanup()

	createTestUser(t, s, "user_42", "reader@example.com")

	newName := "Renamed Reader"
	user, err := svc.UpdateProfile(context.Background(), "user_42", UpdateProfileRequest{
		DisplayName: &newName,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Reader", user.DisplayName)
	// Untouched fields stay put.
	assert.Equal(t, "reader@example.com", user.Email)
}

func TestProfileService_UpdateProfile_Picture(t *testing.T) {
	svc, s, cleanup := setupProfileTest(t)
	defer cleanup()

	createTestUser(t, s, "user_42", "reader@example.com")

	user, err := svc.UpdateProfile(context.Background(), "user_42", UpdateProfileRequest{
		Picture: pngBytes(t),
	})
	require.NoError(t, err)
	assert.Equal(t, "/media/profiles/user_42.jpg", user.ProfilePic)

	data, err := svc.Picture(context.Background(), "user_42")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestProfileService_UpdateProfile_BadPicture(t *testing.T) {
	svc, s, cleanup := setupProfileTest(t)
	defer cleanup()

	createTestUser(t, s, "user_42", "reader@example.com")

	_, err := svc.UpdateProfile(context.Background(), "user_42", UpdateProfileRequest{
		Picture: []byte("not an image at all"),
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	// The bad upload wrote nothing.
	_, err = svc.Picture(context.Background(), "user_42")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestProfileService_UpdateProfile_BadEmail(t *testing.T) {
	svc, s, cleanup := setupProfileTest(t)
	defer cleanup()

	createTestUser(t, s, "user_42", "reader@example.com")

	badEmail := "not-an-email"
	_, err := svc.UpdateProfile(context.Background(), "user_42", UpdateProfileRequest{
		Email: &badEmail,
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestProfileService_DeleteAccount_Cascades(t *testing.T) {
	svc, s, cleanup := setupProfileTest(t)
	defer cleanup()

	ctx := context.Background()
	createTestUser(t, s, "user_42", "reader@example.com")

	// Give the owner a list entry, a review, and a picture.
	require.NoError(t, s.SaveListEntries(ctx, "user_42", []domain.ListEntry{
		{BookRecord: domain.BookRecord{Title: "Dune", ExternalID: "OL893415W"}, OwnerID: "user_42", Status: domain.StatusRead},
	}))
	require.NoError(t, s.SaveReviews(ctx, "user_42", []domain.ReviewEntry{
		{ID: "rev_1", BookID: "OL893415W", OwnerID: "user_42", Rating: 5, Comment: "Classic."},
	}))
	_, err := svc.UpdateProfile(ctx, "user_42", UpdateProfileRequest{Picture: pngBytes(t)})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, "user_42"))

	_, err = svc.GetProfile(ctx, "user_42")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	entries, err := s.GetListEntries(ctx, "user_42")
	require.NoError(t, err)
	assert.Empty(t, entries)

	reviews, err := s.GetReviews(ctx, "user_42")
	require.NoError(t, err)
	assert.Empty(t, reviews)

	_, err = svc.Picture(ctx, "user_42")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestProfileService_DeleteAccount_NotFound(t *testing.T) {
	svc, _, cleanup := setupProfileTest(t)
	defer cleanup()

	err := svc.DeleteAccount(context.Background(), "user_missing")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
