package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-server/internal/domain"
)

func TestNormalizeSearchDoc_AllFields(t *testing.T) {
	doc := searchDoc{
		Key:              "/works/OL893415W",
		Title:            "Dune",
		AuthorName:       []string{"Frank Herbert"},
		Subject:          []string{"Science fiction", "Deserts"},
		FirstSentence:    sentenceText{Text: "A beginning is the time for taking the most delicate care."},
		ISBN:             []string{"9780441013593", "0441013597"},
		FirstPublishYear: 1965,
		CoverID:          11481354,
	}

	rec := normalizeSearchDoc(&doc)

	assert.Equal(t, "Dune", rec.Title)
	assert.Equal(t, "Frank Herbert", rec.Author)
	assert.Equal(t, "Science fiction", rec.Genre)
	assert.Equal(t, "A beginning is the time for taking the most delicate care.", rec.Description)
	assert.Equal(t, "9780441013593", rec.ISBN)
	assert.Equal(t, 1965, rec.PublicationYear)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/11481354-M.jpg", rec.CoverImage)
	assert.Equal(t, "/works/OL893415W", rec.ExternalID)
	assert.Nil(t, rec.AverageRating)
	assert.Empty(t, rec.PurchaseOptions)
}

func TestNormalizeSearchDoc_MissingFieldsFallBack(t *testing.T) {
	rec := normalizeSearchDoc(&searchDoc{})

	assert.Equal(t, domain.UnknownTitle, rec.Title)
	assert.Equal(t, domain.UnknownAuthor, rec.Author)
	assert.Equal(t, domain.UnknownGenre, rec.Genre)
	assert.Equal(t, domain.NoDescription, rec.Description)
	assert.Empty(t, rec.ISBN)
	assert.Zero(t, rec.PublicationYear)
	assert.Equal(t, domain.PlaceholderCoverURL, rec.CoverImage)
	assert.Empty(t, rec.ExternalID)
	assert.Nil(t, rec.AverageRating)
	assert.NotNil(t, rec.PurchaseOptions)
	assert.Empty(t, rec.PurchaseOptions)
}

func TestNormalizeSearchDoc_MultipleAuthorsJoined(t *testing.T) {
	doc := searchDoc{
		Title:      "Good Omens",
		AuthorName: []string{"Terry Pratchett", "Neil Gaiman"},
	}

	rec := normalizeSearchDoc(&doc)
	assert.Equal(t, "Terry Pratchett, Neil Gaiman", rec.Author)
}

func TestNormalizeSearchDoc_SubtitleFallsBackBeforeLiteral(t *testing.T) {
	doc := searchDoc{Title: "Sapiens", Subtitle: "A Brief History of Humankind"}

	rec := normalizeSearchDoc(&doc)
	assert.Equal(t, "A Brief History of Humankind", rec.Description)
}

func TestNormalizeSearchDocs_PreservesOrderAndCount(t *testing.T) {
	docs := []searchDoc{
		{Title: "First"},
		{}, // entirely empty records are still emitted
		{Title: "Third"},
	}

	records := normalizeSearchDocs(docs)
	require.Len(t, records, 3)
	assert.Equal(t, "First", records[0].Title)
	assert.Equal(t, domain.UnknownTitle, records[1].Title)
	assert.Equal(t, "Third", records[2].Title)
}

func TestNormalizeWork_AllFields(t *testing.T) {
	work := subjectWork{
		Key:              "/works/OL27448W",
		Title:            "The Lord of the Rings",
		Authors:          []workAuthor{{Name: "J.R.R. Tolkien"}},
		Subject:          []string{"Fantasy"},
		Description:      textOrValue{Text: "An epic quest across Middle-earth."},
		CoverEditionKey:  "OL21058613M",
		FirstPublishYear: 1954,
		CoverID:          9255566,
	}

	rec := normalizeWork(&work)

	assert.Equal(t, "The Lord of the Rings", rec.Title)
	assert.Equal(t, "J.R.R. Tolkien", rec.Author)
	assert.Equal(t, "Fantasy", rec.Genre)
	assert.Equal(t, "An epic quest across Middle-earth.", rec.Description)
	// cover_edition_key fills the identifier slot on the subjects path.
	assert.Equal(t, "OL21058613M", rec.ISBN)
	assert.Equal(t, 1954, rec.PublicationYear)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/9255566-M.jpg", rec.CoverImage)
	assert.Equal(t, "/works/OL27448W", rec.ExternalID)
	assert.Nil(t, rec.AverageRating)
}

func TestNormalizeWork_MissingFieldsFallBack(t *testing.T) {
	rec := normalizeWork(&subjectWork{})

	assert.Equal(t, domain.UnknownTitle, rec.Title)
	assert.Equal(t, domain.UnknownAuthor, rec.Author)
	assert.Equal(t, domain.UnknownGenre, rec.Genre)
	assert.Equal(t, domain.NoDescription, rec.Description)
	assert.Equal(t, domain.PlaceholderCoverURL, rec.CoverImage)
}

func TestNormalizeWorks_BothPathsShareOneShape(t *testing.T) {
	// The two entry points consume different source shapes but must funnel
	// into identical output records.
	fromSearch := normalizeSearchDoc(&searchDoc{
		Key:        "/works/OL1W",
		Title:      "Dune",
		AuthorName: []string{"Frank Herbert"},
	})
	fromSubject := normalizeWork(&subjectWork{
		Key:     "/works/OL1W",
		Title:   "Dune",
		Authors: []workAuthor{{Name: "Frank Herbert"}},
	})

	assert.Equal(t, fromSearch, fromSubject)
}

func TestSentenceText_Variants(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain string", `"It was a dark night."`, "It was a dark night."},
		{"sentence list", `["First sentence.","Second sentence."]`, "First sentence. Second sentence."},
		{"typed object", `{"type":"/type/text","value":"It was a dark night."}`, "It was a dark night."},
		{"null", `null`, ""},
		{"unrecognized shape", `42`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s sentenceText
			require.NoError(t, s.UnmarshalJSON([]byte(tt.in)))
			assert.Equal(t, tt.want, s.Text)
		})
	}
}

func TestTextOrValue_Variants(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain string", `"A short synopsis."`, "A short synopsis."},
		{"typed object", `{"type":"/type/text","value":"A long synopsis."}`, "A long synopsis."},
		{"string list", `["Part one.","Part two."]`, "Part one. Part two."},
		{"null", `null`, ""},
		{"unrecognized shape", `7`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v textOrValue
			require.NoError(t, v.UnmarshalJSON([]byte(tt.in)))
			assert.Equal(t, tt.want, v.Text)
		})
	}
}
