package domain

import (
	"net/url"
	"strings"
)

// Fallback values used when the source catalog omits a field.
// These literals are part of the normalized contract: a BookRecord never
// carries an empty title, author, genre, description, or cover URL.
const (
	UnknownTitle         = "Unknown Title"
	UnknownAuthor        = "Unknown Author"
	UnknownGenre         = "Unknown Genre"
	NoDescription        = "No description available."
	PlaceholderCoverURL  = "https://placehold.co/200x300"
	coverURLPrefix       = "https://covers.openlibrary.org/b/id/"
	coverURLMediumSuffix = "-M.jpg"
)

// PurchaseOption is a commerce link attached to a book by the profile layer.
// Normalization always produces an empty slice - these come from elsewhere.
type PurchaseOption struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Price    string `json:"price,omitempty"`
}

// BookRecord is the canonical book shape used throughout the application.
// It is constructed fresh on every normalization pass and never mutated;
// list entries embed a copy rather than referencing it.
type BookRecord struct {
	Title           string           `json:"title"`
	Author          string           `json:"author"`
	Genre           string           `json:"genre"`
	Description     string           `json:"description"`
	ISBN            string           `json:"isbn,omitempty"`
	PublicationYear int              `json:"publication_year,omitempty"`
	CoverImage      string           `json:"cover_image"`
	ExternalID      string           `json:"external_id,omitempty"`
	AverageRating   *float64         `json:"average_rating"`
	PurchaseOptions []PurchaseOption `json:"purchase_options"`
}

// CoverURL builds the catalog cover image URL for a cover identifier,
// or the fixed placeholder when the identifier is empty.
func CoverURL(coverID string) string {
	if coverID == "" {
		return PlaceholderCoverURL
	}
	return coverURLPrefix + coverID + coverURLMediumSuffix
}

// BorrowPlatform identifies an external site where a book can be borrowed or bought.
type BorrowPlatform string

// Supported borrow/rent platforms.
const (
	PlatformGoogleBooks BorrowPlatform = "Google Books"
	PlatformAmazon      BorrowPlatform = "Amazon"
	PlatformGoodreads   BorrowPlatform = "Goodreads"
)

// borrowPlatforms is the fixed order borrow links are rendered in.
var borrowPlatforms = []BorrowPlatform{PlatformGoogleBooks, PlatformAmazon, PlatformGoodreads}

// BorrowOption is one external borrow/buy link attached to an API payload.
type BorrowOption struct {
	Platform BorrowPlatform `json:"platform"`
	URL      string         `json:"url"`
}

// BorrowOptions returns a link per supported platform, in fixed order.
func (b *BookRecord) BorrowOptions() []BorrowOption {
	options := make([]BorrowOption, 0, len(borrowPlatforms))
	for _, p := range borrowPlatforms {
		options = append(options, BorrowOption{Platform: p, URL: b.BorrowLink(p)})
	}
	return options
}

// BorrowLink returns an external search URL for this book on the given platform.
// Unknown platforms return an empty string.
func (b *BookRecord) BorrowLink(platform BorrowPlatform) string {
	query := url.QueryEscape(strings.TrimSpace(b.Title + " " + b.Author))
	switch platform {
	case PlatformGoogleBooks:
		if b.ExternalID != "" {
			return "https://books.google.com/books?id=" + url.QueryEscape(b.ExternalID)
		}
		return "https://books.google.com/books?hl=en&q=" + query
	case PlatformAmazon:
		return "https://www.amazon.com/s?k=" + query
	case PlatformGoodreads:
		return "https://www.goodreads.com/search?q=" + query
	default:
		return ""
	}
}
