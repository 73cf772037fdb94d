package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shelfmark/shelfmark-server/internal/domain"
)

func (s *Server) registerShelfRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listShelfBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelf/books",
		Summary:     "List saved books",
		Description: "Returns every book on the authenticated account's reading list",
		Tags:        []string{"Shelf"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListShelfBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveShelfBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/shelf/books",
		Summary:     "Save a book",
		Description: "Adds a book to the reading list, or moves it to a new status if already saved",
		Tags:        []string{"Shelf"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSaveShelfBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listShelfReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelf/reviews",
		Summary:     "List reviews",
		Description: "Returns the authenticated account's reviews, optionally filtered by book",
		Tags:        []string{"Shelf"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListShelfReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "addShelfReview",
		Method:      http.MethodPost,
		Path:        "/api/v1/shelf/reviews",
		Summary:     "Add a review",
		Description: "Appends a rating and comment for a book. Reviews are never edited in place.",
		Tags:        []string{"Shelf"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddShelfReview)
}

// === DTOs ===

// SaveBookRequest is the request body for saving a book to the list.
type SaveBookRequest struct {
	Title           string   `json:"title" doc:"Book title"`
	Author          string   `json:"author,omitempty" doc:"Primary author"`
	Genre           string   `json:"genre,omitempty" doc:"Genre label"`
	Description     string   `json:"description,omitempty" doc:"Synopsis"`
	ISBN            string   `json:"isbn,omitempty" doc:"ISBN if known"`
	PublicationYear int      `json:"publication_year,omitempty" doc:"First publication year"`
	CoverImage      string   `json:"cover_image,omitempty" doc:"Cover image URL"`
	ExternalID      string   `json:"external_id,omitempty" doc:"Catalog identifier"`
	AverageRating   *float64 `json:"average_rating,omitempty" doc:"Catalog average rating"`
	Status          string   `json:"status" doc:"Reading status: tbr, reading, or read"`
}

// SaveBookInput wraps the save request for Huma.
type SaveBookInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Body          SaveBookRequest
}

// ListEntryOutput wraps a saved list entry for Huma.
type ListEntryOutput struct {
	Body domain.ListEntry
}

// AuthenticatedInput carries only the bearer token.
type AuthenticatedInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
}

// BookListResponse contains the account's saved books.
type BookListResponse struct {
	Books []domain.ListEntry `json:"books" doc:"Saved books"`
}

// BookListOutput wraps the book list for Huma.
type BookListOutput struct {
	Body BookListResponse
}

// ReviewListInput carries the optional book filter.
type ReviewListInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	BookID        string `query:"book_id" doc:"Only return reviews for this book"`
}

// ReviewListResponse contains the account's reviews.
type ReviewListResponse struct {
	Reviews []domain.ReviewEntry `json:"reviews" doc:"Reviews, oldest first"`
}

// ReviewListOutput wraps the review list for Huma.
type ReviewListOutput struct {
	Body ReviewListResponse
}

// AddReviewRequest is the request body for adding a review.
type AddReviewRequest struct {
	BookID  string `json:"book_id" doc:"Catalog identifier of the reviewed book"`
	Rating  int    `json:"rating" doc:"Star rating from 1 to 5"`
	Comment string `json:"comment" doc:"Review text"`
}

// AddReviewInput wraps the review request for Huma.
type AddReviewInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Body          AddReviewRequest
}

// ReviewOutput wraps the stored review for Huma.
type ReviewOutput struct {
	Body domain.ReviewEntry
}

// === Handlers ===

func (s *Server) handleListShelfBooks(ctx context.Context, _ *AuthenticatedInput) (*BookListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.libraryService.ListBooks(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &BookListOutput{Body: BookListResponse{Books: books}}, nil
}

func (s *Server) handleSaveShelfBook(ctx context.Context, input *SaveBookInput) (*ListEntryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	record := domain.BookRecord{
		Title:           input.Body.Title,
		Author:          input.Body.Author,
		Genre:           input.Body.Genre,
		Description:     input.Body.Description,
		ISBN:            input.Body.ISBN,
		PublicationYear: input.Body.PublicationYear,
		CoverImage:      input.Body.CoverImage,
		ExternalID:      input.Body.ExternalID,
		AverageRating:   input.Body.AverageRating,
	}

	entry, err := s.libraryService.SaveBook(ctx, userID, record, domain.ReadingStatus(input.Body.Status))
	if err != nil {
		return nil, err
	}

	return &ListEntryOutput{Body: *entry}, nil
}

func (s *Server) handleListShelfReviews(ctx context.Context, input *ReviewListInput) (*ReviewListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	reviews, err := s.libraryService.ListReviews(ctx, userID, input.BookID)
	if err != nil {
		return nil, err
	}

	return &ReviewListOutput{Body: ReviewListResponse{Reviews: reviews}}, nil
}

func (s *Server) handleAddShelfReview(ctx context.Context, input *AddReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.libraryService.AddReview(ctx, userID, input.Body.BookID, input.Body.Rating, input.Body.Comment)
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: *review}, nil
}
