package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBorrowLink(t *testing.T) {
	withID := BookRecord{Title: "Dune", Author: "Frank Herbert", ExternalID: "/works/OL1W"}
	withoutID := BookRecord{Title: "Dune", Author: "Frank Herbert"}

	tests := []struct {
		name     string
		book     BookRecord
		platform BorrowPlatform
		want     string
	}{
		{"google books uses the external id", withID, PlatformGoogleBooks,
			"https://books.google.com/books?id=%2Fworks%2FOL1W"},
		{"google books falls back to a title search", withoutID, PlatformGoogleBooks,
			"https://books.google.com/books?hl=en&q=Dune+Frank+Herbert"},
		{"amazon searches by title and author", withID, PlatformAmazon,
			"https://www.amazon.com/s?k=Dune+Frank+Herbert"},
		{"goodreads searches by title and author", withID, PlatformGoodreads,
			"https://www.goodreads.com/search?q=Dune+Frank+Herbert"},
		{"unknown platform yields no link", withID, BorrowPlatform("Library Genesis"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.book.BorrowLink(tt.platform))
		})
	}
}

func TestBorrowOptions(t *testing.T) {
	book := BookRecord{Title: "Hyperion", Author: "Dan Simmons"}

	options := book.BorrowOptions()
	require.Len(t, options, 3)

	assert.Equal(t, PlatformGoogleBooks, options[0].Platform)
	assert.Equal(t, PlatformAmazon, options[1].Platform)
	assert.Equal(t, PlatformGoodreads, options[2].Platform)
	for _, o := range options {
		assert.NotEmpty(t, o.URL)
	}
}
