package gateway

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"

	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
)

// Profile is the backend's view of an account.
type Profile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	ProfilePic  string `json:"profile_pic,omitempty"`
}

// Upload is a file attached to a profile update.
type Upload struct {
	Filename string
	Content  io.Reader
}

// ProfileUpdate carries the fields to change. Empty strings mean "leave
// as is"; Picture is optional.
type ProfileUpdate struct {
	DisplayName string
	Email       string
	Picture     *Upload
}

// GetProfile fetches the owner's profile. Requires a signed-in session.
func (c *Client) GetProfile(ctx context.Context, ownerID string) (Profile, error) {
	var profile Profile
	err := c.attempt(ctx, func(ctx context.Context) error {
		profile = Profile{}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/api/v1/users/%s/profile", ownerID), nil)
		if err != nil {
			return domainerrors.Wrap(err, domainerrors.CodeInternal, "build request")
		}
		return c.do(req, &profile)
	})
	if err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// UpdateProfile sends changed fields, and optionally a new picture, as a
// multipart form. The multipart body is buffered up front so the request
// is repeatable under a retrying policy.
func (c *Client) UpdateProfile(ctx context.Context, ownerID string, update ProfileUpdate) (Profile, error) {
	body, contentType, err := encodeProfileForm(update)
	if err != nil {
		return Profile{}, err
	}

	var profile Profile
	err = c.attempt(ctx, func(ctx context.Context) error {
		profile = Profile{}
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url("/api/v1/users/%s/profile", ownerID), bytes.NewReader(body))
		if err != nil {
			return domainerrors.Wrap(err, domainerrors.CodeInternal, "build request")
		}
		req.Header.Set("Content-Type", contentType)
		return c.do(req, &profile)
	})
	if err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// DeleteAccount removes the owner's account. The backend cascades over
// the owner's list rows, reviews, and stored picture.
func (c *Client) DeleteAccount(ctx context.Context, ownerID string) error {
	return c.attempt(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.url("/api/v1/users/%s", ownerID), nil)
		if err != nil {
			return domainerrors.Wrap(err, domainerrors.CodeInternal, "build request")
		}
		return c.do(req, nil)
	})
}

func encodeProfileForm(update ProfileUpdate) ([]byte, string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	if update.DisplayName != "" {
		if err := form.WriteField("display_name", update.DisplayName); err != nil {
			return nil, "", domainerrors.Wrap(err, domainerrors.CodeInternal, "encode form")
		}
	}
	if update.Email != "" {
		if err := form.WriteField("email", update.Email); err != nil {
			return nil, "", domainerrors.Wrap(err, domainerrors.CodeInternal, "encode form")
		}
	}
	if update.Picture != nil {
		part, err := form.CreateFormFile("profile_pic", update.Picture.Filename)
		if err != nil {
			return nil, "", domainerrors.Wrap(err, domainerrors.CodeInternal, "encode form")
		}
		if _, err := io.Copy(part, update.Picture.Content); err != nil {
			return nil, "", domainerrors.Wrap(err, domainerrors.CodeInternal, "read picture")
		}
	}

	if err := form.Close(); err != nil {
		return nil, "", domainerrors.Wrap(err, domainerrors.CodeInternal, "encode form")
	}
	return buf.Bytes(), form.FormDataContentType(), nil
}
