package api

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/http/response"
	"github.com/shelfmark/shelfmark-server/internal/service"
)

// Multipart uploads are capped before image validation sees them.
const maxProfileFormBytes = 8 << 20

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/profile",
		Summary:     "Get profile",
		Description: "Returns the account profile. Only the owner may view it.",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteAccount",
		Method:        http.MethodDelete,
		Path:          "/api/v1/users/{id}",
		Summary:       "Delete account",
		Description:   "Permanently removes the account, its saved books, reviews, and profile picture",
		Tags:          []string{"Profile"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteAccount)

	// Multipart update and picture serving go through chi directly, not huma.
	s.router.Put("/api/v1/users/{id}/profile", s.handleUpdateProfile)
	s.router.Get("/media/profiles/{id}", s.handleServePicture)
}

// === DTOs ===

// ProfileResponse contains account profile data.
type ProfileResponse struct {
	ID          string `json:"id" doc:"Account ID"`
	Email       string `json:"email" doc:"Account email"`
	DisplayName string `json:"display_name" doc:"Display name"`
	ProfilePic  string `json:"profile_pic,omitempty" doc:"Profile picture path"`
}

// ProfileOutput wraps the profile response for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// ProfileInput identifies the account being accessed.
type ProfileInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"Account ID"`
}

// === Handlers ===

func (s *Server) handleGetProfile(ctx context.Context, input *ProfileInput) (*ProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if userID != input.ID {
		return nil, domainerrors.Unauthorized("profiles are private to their owner")
	}

	user, err := s.profileService.GetProfile(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: ProfileResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		ProfilePic:  user.ProfilePic,
	}}, nil
}

func (s *Server) handleDeleteAccount(ctx context.Context, input *ProfileInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if userID != input.ID {
		return nil, domainerrors.Unauthorized("accounts can only be deleted by their owner")
	}

	if err := s.profileService.DeleteAccount(ctx, input.ID); err != nil {
		return nil, err
	}

	return nil, nil
}

// handleUpdateProfile applies a multipart profile update. Text fields
// display_name and email are optional; profile_pic carries the image upload.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	userID := userIDFrom(ctx)
	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}
	if userID != id {
		response.Unauthorized(w, "Profiles can only be changed by their owner", s.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProfileFormBytes)
	if err := r.ParseMultipartForm(maxProfileFormBytes); err != nil {
		response.BadRequest(w, "Request must be multipart/form-data", s.logger)
		return
	}

	var req service.UpdateProfileRequest
	if values, ok := r.MultipartForm.Value["display_name"]; ok && len(values) > 0 {
		req.DisplayName = &values[0]
	}
	if values, ok := r.MultipartForm.Value["email"]; ok && len(values) > 0 {
		req.Email = &values[0]
	}

	if file, _, err := r.FormFile("profile_pic"); err == nil {
		data, readErr := io.ReadAll(file)
		_ = file.Close() //nolint:errcheck // Read already completed
		if readErr != nil {
			response.BadRequest(w, "Could not read uploaded picture", s.logger)
			return
		}
		req.Picture = data
	}

	user, err := s.profileService.UpdateProfile(ctx, id, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, ProfileResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		ProfilePic:  user.ProfilePic,
	}, s.logger)
}

// handleServePicture streams a stored profile picture. Profile paths
// advertise a .jpg extension; the storage key is the bare account ID.
func (s *Server) handleServePicture(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(chi.URLParam(r, "id"), ".jpg")
	if id == "" {
		response.BadRequest(w, "Picture ID is required", s.logger)
		return
	}

	data, err := s.pictures.Get(id)
	if err != nil {
		response.NotFound(w, "Picture not found", s.logger)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data) //nolint:errcheck // Client disconnects are not actionable
}
