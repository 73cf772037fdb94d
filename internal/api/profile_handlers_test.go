package api

import (
	"bytes"
	"encoding/json/v2"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// profileEnvelope mirrors the response envelope used by chi-direct handlers.
type profileEnvelope struct {
	Data    ProfileResponse `json:"data"`
	Error   string          `json:"error,omitempty"`
	Success bool            `json:"success"`
}

// multipartBody builds a multipart form with the given text fields and an
// optional profile_pic upload.
func multipartBody(t *testing.T, fields map[string]string, picture []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	if picture != nil {
		part, err := mw.CreateFormFile("profile_pic", "me.png")
		require.NoError(t, err)
		_, err = part.Write(picture)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

// putProfile sends a multipart profile update through the full router.
func putProfile(t *testing.T, server *Server, token, userID string, fields map[string]string, picture []byte) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, fields, picture)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/"+userID+"/profile", body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestGetOwnProfile(t *testing.T) {
	_, api, cleanup := setupTestServer(t)
	defer cleanup()

	user := registerTestUser(t, api, "reader@example.com")

	resp := api.Get("/api/v1/users/"+user.OwnerID+"/profile", bearer(user.Token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var profile ProfileResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &profile))

	assert.Equal(t, user.OwnerID, profile.ID)
	assert.Equal(t, "reader@example.com", profile.Email)
	assert.Equal(t, "Test Reader", profile.DisplayName)
	assert.Empty(t, profile.ProfilePic)
}

func TestGetProfileRequiresAuth(t *testing.T) {
	_, api, cleanup := setupTestServer(t)
	defer cleanup()

	user := registerTestUser(t, api, "reader@example.com")

	resp := api.Get("/api/v1/users/" + user.OwnerID + "/profile")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGetProfileRejectsOtherAccount(t *testing.T) {
	_, api, cleanup := setupTestServer(t)
	defer cleanup()

	alice := registerTestUser(t, api, "alice@example.com")
	bob := registerTestUser(t, api, "bob@example.com")

	resp := api.Get("/api/v1/users/"+bob.OwnerID+"/profile", bearer(alice.Token))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestUpdateProfileFields(t *testing.T) {
	server, api, cleanup := setupTestServer(t)
	defer cleanup()

	user := registerTestUser(t, api, "reader@example.com")

	rec := putProfile(t, server, user.Token, user.OwnerID, map[string]string{
		"display_name": "Renamed Reader",
		"email":        "renamed@example.com",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env profileEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "Renamed Reader", env.Data.DisplayName)
	assert.Equal(t, "renamed@example.com", env.Data.Email)

	// The change must be visible through the read path too.
	resp := api.Get("/api/v1/users/"+user.OwnerID+"/profile", bearer(user.Token))
	var profile ProfileResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &profile))
	assert.Equal(t, "renamed@example.com", profile.Email)
}

func TestUpdateProfilePicture(t *testing.T) {
	server, api, cleanup := setupTestServer(t)
	defer cleanup()

	user := registerTestUser(t, api, "reader@example.com")

	rec := putProfile(t, server, user.Token, user.OwnerID, nil, pngBytes(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env profileEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, strings.HasPrefix(env.Data.ProfilePic, "/media/profiles/"), env.Data.ProfilePic)

	// The stored picture is served back under the advertised path.
	req := httptest.NewRequest(http.MethodGet, "/media/profiles/"+user.OwnerID, nil)
	picRec := httptest.NewRecorder()
	server.ServeHTTP(picRec, req)

	require.Equal(t, http.StatusOK, picRec.Code)
	assert.Equal(t, "image/png", picRec.Header().Get("Content-Type"))
	assert.NotEmpty(t, picRec.Body.Bytes())
}

func TestUpdateProfileRejectsBadPicture(t *testing.T) {
	server, api, cleanup := setupTestServer(t)
	defer cleanup()

	user := registerTestUser(t, api, "reader@example.com")

	rec := putProfile(t, server, user.Token, user.OwnerID, nil, []byte("not an image at all"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Nothing was stored for the failed upload.
	req := httptest.NewRequest(http.MethodGet, "/media/profiles/"+user.OwnerID, nil)
	picRec := httptest.NewRecorder()
	server.ServeHTTP(picRec, req)
	assert.Equal(t, http.StatusNotFound, picRec.Code)
}

func TestUpdateProfileRejectsOtherAccount(t *testing.T) {
	server, api, cleanup := setupTestServer(t)
	defer cleanup()

	alice := registerTestUser(t, api, "alice@example.com")
	bob := registerTestUser(t, api, "bob@example.com")

	rec := putProfile(t, server, alice.Token, bob.OwnerID, map[string]string{
		"display_name": "Hijacked",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteAccount(t *testing.T) {
	server, api, cleanup := setupTestServer(t)
	defer cleanup()

	user := registerTestUser(t, api, "reader@example.com")

	// Leave data behind so the cascade has something to remove.
	saveResp := api.Post("/api/v1/shelf/books", bearer(user.Token), map[string]any{
		"title":       "Piranesi",
		"external_id": "OL456W",
		"status":      "read",
	})
	require.Equal(t, http.StatusOK, saveResp.Code)
	rec := putProfile(t, server, user.Token, user.OwnerID, nil, pngBytes(t))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := api.Delete("/api/v1/users/"+user.OwnerID, bearer(user.Token))
	assert.Equal(t, http.StatusNoContent, resp.Code)

	// Account is gone.
	profileResp := api.Get("/api/v1/users/"+user.OwnerID+"/profile", bearer(user.Token))
	assert.Equal(t, http.StatusNotFound, profileResp.Code)

	// Sign-in no longer works.
	loginResp := api.Post("/api/v1/auth/login", map[string]any{
		"email":    "reader@example.com",
		"password": "correct-horse-battery",
	})
	assert.Equal(t, http.StatusUnauthorized, loginResp.Code)

	// The picture was removed with the account.
	picReq := httptest.NewRequest(http.MethodGet, "/media/profiles/"+user.OwnerID, nil)
	picRec := httptest.NewRecorder()
	server.ServeHTTP(picRec, picReq)
	assert.Equal(t, http.StatusNotFound, picRec.Code)
}

func TestDeleteOtherAccountRejected(t *testing.T) {
	_, api, cleanup := setupTestServer(t)
	defer cleanup()

	alice := registerTestUser(t, api, "alice@example.com")
	bob := registerTestUser(t, api, "bob@example.com")

	resp := api.Delete("/api/v1/users/"+bob.OwnerID, bearer(alice.Token))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// Bob is untouched.
	profileResp := api.Get("/api/v1/users/"+bob.OwnerID+"/profile", bearer(bob.Token))
	assert.Equal(t, http.StatusOK, profileResp.Code)
}
