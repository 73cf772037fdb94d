package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/media/images"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

// ProfileService provides account profile reads, updates, and deletion.
type ProfileService struct {
	store    *store.Store
	pictures *images.Storage
	logger   *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(store *store.Store, pictures *images.Storage, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		store:    store,
		pictures: pictures,
		logger:   logger,
	}
}

// UpdateProfileRequest carries the fields to change. Nil pointers mean
// "leave as is"; Picture is raw upload bytes.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=100"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Picture     []byte  `json:"-"`
}

// GetProfile returns the account for the given user.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies the requested changes and returns the updated
// account. An attached picture is validated before anything is written,
// so a bad upload changes nothing.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(req.Picture) > 0 {
		format, err := images.Validate(req.Picture)
		if err != nil {
			return nil, domainerrors.Validation("profile picture must be a jpeg, png, gif, or webp image")
		}
		if err := s.pictures.Save(userID, req.Picture); err != nil {
			return nil, fmt.Errorf("save picture: %w", err)
		}
		user.ProfilePic = "/media/profiles/" + userID + ".jpg"
		if s.logger != nil {
			s.logger.Debug("Saved profile picture", "user_id", userID, "format", format)
		}
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Picture returns the stored picture bytes for a user.
func (s *ProfileService) Picture(ctx context.Context, userID string) ([]byte, error) {
	if !s.pictures.Exists(userID) {
		return nil, domainerrors.NotFound("no profile picture")
	}
	data, err := s.pictures.Get(userID)
	if err != nil {
		return nil, fmt.Errorf("read picture: %w", err)
	}
	return data, nil
}

// DeleteAccount removes a user and everything they own: list rows,
// reviews, stored picture, then the account itself.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID string) error {
	// Look the user up first so a missing account fails before the
	// cascade touches anything.
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return err
	}

	if err := s.store.DeleteOwnerData(ctx, userID); err != nil {
		return fmt.Errorf("delete owner data: %w", err)
	}
	if err := s.pictures.Delete(userID); err != nil {
		return fmt.Errorf("delete picture: %w", err)
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Account deleted", "user_id", userID)
	}
	return nil
}
