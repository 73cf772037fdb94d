package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shelfmark/shelfmark-server/internal/domain"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/search",
		Summary:     "Search the catalog",
		Description: "Searches the public catalog by title and returns normalized book records",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCatalogSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "browseCatalogSubject",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/subjects/{subject}",
		Summary:     "Browse a catalog subject",
		Description: "Samples the public catalog for a subject at a random offset, so repeated requests surface different books",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCatalogSubject)
}

// === DTOs ===

// CatalogSearchInput is the query for a title search.
type CatalogSearchInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Title         string `query:"title" minLength:"1" doc:"Title to search for"`
}

// CatalogSubjectInput is the query for subject browsing.
type CatalogSubjectInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Subject       string `path:"subject" doc:"Subject name, free form"`
	Limit         int    `query:"limit" default:"12" minimum:"1" maximum:"50" doc:"Number of books to return"`
}

// CatalogBook is a normalized record plus derived per-platform borrow links.
type CatalogBook struct {
	domain.BookRecord
	BorrowLinks []domain.BorrowOption `json:"borrow_links"`
}

// CatalogResultsResponse carries normalized catalog records.
type CatalogResultsResponse struct {
	Books []CatalogBook `json:"books"`
}

// CatalogResultsOutput wraps catalog results for Huma.
type CatalogResultsOutput struct {
	Body CatalogResultsResponse
}

// === Handlers ===

func (s *Server) handleCatalogSearch(ctx context.Context, input *CatalogSearchInput) (*CatalogResultsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	records, err := s.catalog.SearchByTitle(ctx, input.Title)
	if err != nil {
		return nil, err
	}
	return &CatalogResultsOutput{Body: CatalogResultsResponse{Books: catalogBooks(records)}}, nil
}

func (s *Server) handleCatalogSubject(ctx context.Context, input *CatalogSubjectInput) (*CatalogResultsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	records, err := s.catalog.SampleSubject(ctx, input.Subject, input.Limit)
	if err != nil {
		return nil, err
	}
	return &CatalogResultsOutput{Body: CatalogResultsResponse{Books: catalogBooks(records)}}, nil
}

// catalogBooks attaches borrow links to each record for the response payload.
func catalogBooks(records []domain.BookRecord) []CatalogBook {
	books := make([]CatalogBook, 0, len(records))
	for i := range records {
		books = append(books, CatalogBook{
			BookRecord:  records[i],
			BorrowLinks: records[i].BorrowOptions(),
		})
	}
	return books
}
