package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-server/internal/domain"
)

func TestShelfRequiresAuth(t *testing.T) {
	_, api, cleanup := setupTestServer(t)
	defer cleanup()

	assert.Equal(t, http.StatusUnauthorized, api.Get("/api/v1/shelf/books").Code)
	assert.Equal(t, http.StatusUnauthorized, api.Get("/api/v1/shelf/reviews").Code)

	resp := api.Post("/api/v1/shelf/books", map[string]any{
		"title":  "The Dispossessed",
		"status": "tbr",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestSaveAndListBooks(t *testing.T) {
	_, api, cleanup := setupTestServer(t)
	defer cleanup()

	user := registerTestUser(t, api, "reader@example.com")

	resp := api.Post("/api/v1/shelf/books", bearer(user.Token), map[string]any{
		"title":       "The Dispossessed",
		"author":      "Ursula K. Le Guin",
		"external_id": "OL123W",
		"status":      "tbr",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var entry domain.ListEntry
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &entry))
	assert.Equal(t, domain.StatusToBeRead, entry.Status)
	assert.Equal(t, user.OwnerID, entry.OwnerID)
	assert.False(t, entry.DateAdded.IsZero())

	listResp := api.Get("/api/v1/shelf/books", bearer(user.Token))
	require.Equal(t, http.StatusOK, listResp.Code)

	var list BookListResponse
	require.NoError(t, json.Unmarshal(listResp.Body.Bytes(), &list))
	require.Len(t, list.Books, 1)
	assert.Equal(t, "The Dispossessed", list.Books[0].Title)
}

func TestSaveBookMovesStatusInPlace(t *testing.T) {
	_, api, cleanup := setupTestServer(t)
	defer cleanup()

	user := registerTestUser(t, api, "reader@example.com")

	for _, status := range []string{"tbr", "reading", "read"} {
		resp := api.Post("/api/v1/shelf/books", bearer(user.Token), map[string]any{
			"title":       "The Dispossessed",
			"external_id": "OL123W",
			"status":      status,
		})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	listResp := api.Get("/api/v1/shelf/books", bearer(user.Token))
	var list BookListResponse
	require.NoError(t, json.Unmarshal(listResp.Body.Bytes(), &list))

	require.Len(t, list.Books, 1)
	assert.Equal(t, domain.StatusRead, list.Books[0].Status)
}

func TestSaveBookRejectsUnknownStatus(t *testing.T) {
	_, api, cleanup := setupTestServer(t)
	defer cleanup()

	user := registerTestUser(t, api, "reader@example.com")

	resp := api.Post("/api/v1/shelf/books", bearer(user.Token), map[string]any{
		"title":  "The Dispossessed",
		"status": "finished",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var apiErr APIError
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &apiErr))
	assert.Equal(t, "VALIDATION", apiErr.Code)
}

func TestShelfIsSeparatePerAccount(t *testing.T) {
	_, api, cleanup := setupTestServer(t)
	defer cleanup()

	alice := registerTestUser(t, api, "alice@example.com")
	bob := registerTestUser(t, api, "bob@example.com")

	resp := api.Post("/api/v1/shelf/books", bearer(alice.Token), map[string]any{
		"title":       "Piranesi",
		"external_id": "OL456W",
		"status":      "reading",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var bobList BookListResponse
	listResp := api.Get("/api/v1/shelf/books", bearer(bob.Token))
	require.NoError(t, json.Unmarshal(listResp.Body.Bytes(), &bobList))

	assert.Empty(t, bobList.Books)
}

func TestAddAndListReviews(t *testing.T) {
	_, api, cleanup := setupTestServer(t)
	defer cleanup()

	user := registerTestUser(t, api, "reader@example.com")

	resp := api.Post("/api/v1/shelf/reviews", bearer(user.Token), map[string]any{
		"book_id": "OL123W",
		"rating":  4,
		"comment": "  Quiet and devastating.  ",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var review domain.ReviewEntry
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &review))
	assert.Equal(t, "Quiet and devastating.", review.Comment)
	assert.Equal(t, 4, review.Rating)
	assert.NotEmpty(t, review.ID)

	listResp := api.Get("/api/v1/shelf/reviews", bearer(user.Token))
	require.Equal(t, http.StatusOK, listResp.Code)

	var list ReviewListResponse
	require.NoError(t, json.Unmarshal(listResp.Body.Bytes(), &list))
	assert.Len(t, list.Reviews, 1)
}

func TestReviewsAccumulatePerBook(t *testing.T) {
	_, api, cleanup := setupTestServer(t)
	defer cleanup()

	user := registerTestUser(t, api, "reader@example.com")

	for _, rating := range []int{3, 5} {
		resp := api.Post("/api/v1/shelf/reviews", bearer(user.Token), map[string]any{
			"book_id": "OL123W",
			"rating":  rating,
			"comment": "Another read, another opinion.",
		})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	listResp := api.Get("/api/v1/shelf/reviews", bearer(user.Token))
	var list ReviewListResponse
	require.NoError(t, json.Unmarshal(listResp.Body.Bytes(), &list))

	require.Len(t, list.Reviews, 2)
	assert.Equal(t, 3, list.Reviews[0].Rating)
	assert.Equal(t, 5, list.Reviews[1].Rating)
}

func TestAddReviewRejectsBadInput(t *testing.T) {
	_, api, cleanup := setupTestServer(t)
	defer cleanup()

	user := registerTestUser(t, api, "reader@example.com")

	cases := []map[string]any{
		{"book_id": "OL123W", "rating": 0, "comment": "Rating too low."},
		{"book_id": "OL123W", "rating": 6, "comment": "Rating too high."},
		{"book_id": "OL123W", "rating": 3, "comment": "   "},
		{"book_id": "", "rating": 3, "comment": "No book."},
	}

	for _, body := range cases {
		resp := api.Post("/api/v1/shelf/reviews", bearer(user.Token), body)
		assert.Equal(t, http.StatusBadRequest, resp.Code, "body: %v", body)
	}

	listResp := api.Get("/api/v1/shelf/reviews", bearer(user.Token))
	var list ReviewListResponse
	require.NoError(t, json.Unmarshal(listResp.Body.Bytes(), &list))
	assert.Empty(t, list.Reviews)
}

func TestReviewsFilterByBook(t *testing.T) {
	_, api, cleanup := setupTestServer(t)
	defer cleanup()

	user := registerTestUser(t, api, "reader@example.com")

	for _, bookID := range []string{"OL123W", "OL456W", "OL123W"} {
		resp := api.Post("/api/v1/shelf/reviews", bearer(user.Token), map[string]any{
			"book_id": bookID,
			"rating":  4,
			"comment": "Worth the time.",
		})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	listResp := api.Get("/api/v1/shelf/reviews?book_id=OL123W", bearer(user.Token))
	require.Equal(t, http.StatusOK, listResp.Code)

	var list ReviewListResponse
	require.NoError(t, json.Unmarshal(listResp.Body.Bytes(), &list))

	require.Len(t, list.Reviews, 2)
	for _, r := range list.Reviews {
		assert.Equal(t, "OL123W", r.BookID)
	}
}
