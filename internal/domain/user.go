package domain

import "time"

// User represents an account on the backend.
type User struct {
	Record
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	DisplayName  string    `json:"display_name"`
	ProfilePic   string    `json:"profile_pic,omitempty"` // Server-relative path to the uploaded picture
	LastLoginAt  time.Time `json:"last_login_at"`
}

// Name returns the best available name to display for the user.
// Prefers DisplayName, falls back to the email address.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// HasProfilePic reports whether the user uploaded a picture.
func (u *User) HasProfilePic() bool {
	return u.ProfilePic != ""
}
