package article

import "time"

// Article is one content file: front-matter metadata plus the raw Markdown body.
type Article struct {
	// Slug is the unique identifier derived from the file name
	Slug string `json:"slug"`

	// Path is the source file path relative to the content root
	Path string `json:"path"`

	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`

	// Draft articles are left out of published listings but stay addressable by slug
	Draft bool `json:"draft"`

	Tags []string `json:"tags,omitempty"`

	// References are outbound links to other articles, unvalidated, in first-seen order
	References []string `json:"references,omitempty"`

	// Body is the Markdown after the front-matter block. Opaque to Folio.
	Body string `json:"body,omitempty"`
}

// Summary is an Article without its body, used by listing operations.
type Summary struct {
	Slug        string    `json:"slug"`
	Path        string    `json:"path"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Draft       bool      `json:"draft"`
	Tags        []string  `json:"tags,omitempty"`
	References  []string  `json:"references,omitempty"`
}

// ToSummary converts an Article to a Summary by stripping the body.
func (a *Article) ToSummary() Summary {
	return Summary{
		Slug:        a.Slug,
		Path:        a.Path,
		Title:       a.Title,
		Date:        a.Date,
		Description: a.Description,
		Draft:       a.Draft,
		Tags:        a.Tags,
		References:  a.References,
	}
}
