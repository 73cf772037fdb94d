package catalog

import (
	"strconv"
	"strings"

	"github.com/shelfmark/shelfmark-server/internal/domain"
)

// Normalization is total: every derivation below has a deterministic
// fallback, so a record with arbitrary missing fields still yields a fully
// populated BookRecord. Output order and count always match the input.

// normalizeSearchDocs converts search results one-to-one, in order.
func normalizeSearchDocs(docs []searchDoc) []domain.BookRecord {
	records := make([]domain.BookRecord, 0, len(docs))
	for i := range docs {
		records = append(records, normalizeSearchDoc(&docs[i]))
	}
	return records
}

// normalizeSearchDoc derives a canonical record from one search result.
func normalizeSearchDoc(d *searchDoc) domain.BookRecord {
	description := d.FirstSentence.Text
	if description == "" {
		description = d.Subtitle
	}

	var isbn string
	if len(d.ISBN) > 0 {
		isbn = d.ISBN[0]
	}

	return domain.BookRecord{
		Title:           fallback(d.Title, domain.UnknownTitle),
		Author:          joinAuthors(d.AuthorName),
		Genre:           firstOr(d.Subject, domain.UnknownGenre),
		Description:     fallback(description, domain.NoDescription),
		ISBN:            isbn,
		PublicationYear: d.FirstPublishYear,
		CoverImage:      domain.CoverURL(coverID(d.CoverID)),
		ExternalID:      d.Key,
		AverageRating:   nil, // the search endpoint supplies no ratings
		PurchaseOptions: []domain.PurchaseOption{},
	}
}

// normalizeWorks converts subject-sampling results one-to-one, in order.
func normalizeWorks(works []subjectWork) []domain.BookRecord {
	records := make([]domain.BookRecord, 0, len(works))
	for i := range works {
		records = append(records, normalizeWork(&works[i]))
	}
	return records
}

// normalizeWork derives a canonical record from one subject work.
// The subjects endpoint has no ISBN list; cover_edition_key fills the
// identifier slot, matching what the search path puts there.
func normalizeWork(w *subjectWork) domain.BookRecord {
	names := make([]string, 0, len(w.Authors))
	for _, a := range w.Authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}

	return domain.BookRecord{
		Title:           fallback(w.Title, domain.UnknownTitle),
		Author:          joinAuthors(names),
		Genre:           firstOr(w.Subject, domain.UnknownGenre),
		Description:     fallback(w.Description.Text, domain.NoDescription),
		ISBN:            w.CoverEditionKey,
		PublicationYear: w.FirstPublishYear,
		CoverImage:      domain.CoverURL(coverID(w.CoverID)),
		ExternalID:      w.Key,
		AverageRating:   nil,
		PurchaseOptions: []domain.PurchaseOption{},
	}
}

// joinAuthors joins a list of author names with ", ", or falls back.
func joinAuthors(names []string) string {
	if len(names) == 0 {
		return domain.UnknownAuthor
	}
	return strings.Join(names, ", ")
}

// firstOr returns the first element of list, or def when empty.
func firstOr(list []string, def string) string {
	if len(list) > 0 && list[0] != "" {
		return list[0]
	}
	return def
}

// fallback returns v unless empty.
func fallback(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// coverID renders a numeric cover identifier, empty when absent.
func coverID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
