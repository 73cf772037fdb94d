package catalog

import (
	"encoding/json/v2"
	"strings"
)

// searchResponse matches /search.json.
type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

// searchDoc is one loosely structured result from the search endpoint.
// Every field may be absent.
type searchDoc struct {
	Key              string       `json:"key"`
	Title            string       `json:"title"`
	Subtitle         string       `json:"subtitle"`
	AuthorName       []string     `json:"author_name"`
	Subject          []string     `json:"subject"`
	FirstSentence    sentenceText `json:"first_sentence"`
	ISBN             []string     `json:"isbn"`
	FirstPublishYear int          `json:"first_publish_year"`
	CoverID          int64        `json:"cover_i"`
}

// subjectResponse matches /subjects/{subject}.json.
type subjectResponse struct {
	WorkCount int           `json:"work_count"`
	Works     []subjectWork `json:"works"`
}

// subjectWork is one work from the subjects endpoint. The shape differs
// from searchDoc: authors are objects, the cover field is named cover_id,
// and there is no ISBN list (cover_edition_key is the closest identifier).
type subjectWork struct {
	Key              string       `json:"key"`
	Title            string       `json:"title"`
	Authors          []workAuthor `json:"authors"`
	Subject          []string     `json:"subject"`
	Description      textOrValue  `json:"description"`
	CoverEditionKey  string       `json:"cover_edition_key"`
	FirstPublishYear int          `json:"first_publish_year"`
	CoverID          int64        `json:"cover_id"`
}

type workAuthor struct {
	Name string `json:"name"`
}

// sentenceText decodes a field that Open Library serves either as a plain
// string, a list of sentence strings, or a typed text object. Lists are
// joined with single spaces. An explicit variant check - no reflection
// walking.
type sentenceText struct {
	Text string
}

// UnmarshalJSON implements json.Unmarshaler for the string/list/object union.
func (s *sentenceText) UnmarshalJSON(data []byte) error {
	s.Text = freeText(data)
	return nil
}

// textOrValue decodes a field served either as a plain string, an object
// exposing a "value" field ({"type": "/type/text", "value": ...}), or a
// list of strings.
type textOrValue struct {
	Text string
}

// UnmarshalJSON implements json.Unmarshaler for the string/object/list union.
func (t *textOrValue) UnmarshalJSON(data []byte) error {
	t.Text = freeText(data)
	return nil
}

// freeText decodes the loose shapes Open Library uses for prose fields.
// A shape that matches none of the known variants decodes to the empty
// string, so one odd field degrades to the placeholder fallback instead of
// rejecting the whole response.
func freeText(data []byte) string {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "" || trimmed == "null":
		return ""
	case strings.HasPrefix(trimmed, "["):
		var parts []string
		if err := json.Unmarshal(data, &parts); err != nil {
			return ""
		}
		return strings.Join(parts, " ")
	case strings.HasPrefix(trimmed, "{"):
		var obj struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return ""
		}
		return obj.Value
	default:
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return ""
		}
		return single
	}
}
