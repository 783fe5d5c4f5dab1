package article

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/hpungsan/folio/internal/errors"
)

// formats are the front-matter blocks Folio accepts: TOML (+++) and YAML (---).
var formats = []*frontmatter.Format{
	frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
	frontmatter.NewFormat("---", "---", yaml.Unmarshal),
}

// dateLayouts are tried in order for string-valued dates.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Dates are stored as Unix nanoseconds, which bounds the usable years.
const (
	minYear = 1678
	maxYear = 2261
)

// FrontMatter is the typed metadata block of an article.
type FrontMatter struct {
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Draft       bool      `json:"draft"`
	Tags        []string  `json:"tags,omitempty"`
	References  []string  `json:"references,omitempty"`
}

// Validate checks the required keys.
func (fm FrontMatter) Validate() error {
	return validation.ValidateStruct(&fm,
		validation.Field(&fm.Title, validation.Required),
		validation.Field(&fm.Date, validation.Required),
		validation.Field(&fm.Description, validation.Required),
	)
}

// Parse builds an Article from one content file. path is relative to the
// content root and determines the slug.
func Parse(path string, source []byte) (*Article, error) {
	slug, err := SlugFromPath(path)
	if err != nil {
		return nil, errors.NewInvalidSlug(path, err.Error())
	}

	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, errors.NewMalformedFrontMatter(path, err.Error())
	}

	return &Article{
		Slug:        slug,
		Path:        path,
		Title:       fm.Title,
		Date:        fm.Date,
		Description: fm.Description,
		Draft:       fm.Draft,
		Tags:        fm.Tags,
		References:  MergeReferences(fm.References, ExtractReferences(body)),
		Body:        string(body),
	}, nil
}

// ParseFrontMatter splits source into validated front matter and the Markdown
// body. Leading blank lines of the body are dropped.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	raw := map[string]any{}
	body, err := frontmatter.MustParse(bytes.NewReader(source), &raw, formats...)
	if err != nil {
		if stderrors.Is(err, frontmatter.ErrNotFound) {
			return FrontMatter{}, nil, fmt.Errorf("missing front matter block")
		}
		return FrontMatter{}, nil, fmt.Errorf("decode front matter: %w", err)
	}

	fm, err := decodeFrontMatter(raw)
	if err != nil {
		return FrontMatter{}, nil, err
	}
	if err := fm.Validate(); err != nil {
		return FrontMatter{}, nil, err
	}

	return fm, bytes.TrimLeft(body, "\r\n"), nil
}

// decodeFrontMatter converts the loosely typed decoded block into FrontMatter.
// Type problems for every key are collected into one error.
func decodeFrontMatter(raw map[string]any) (FrontMatter, error) {
	var fm FrontMatter
	problems := map[string]string{}

	if v, ok := raw["title"]; ok {
		if s, ok := v.(string); ok {
			fm.Title = strings.TrimSpace(s)
		} else {
			problems["title"] = "must be a string"
		}
	}
	if v, ok := raw["description"]; ok {
		if s, ok := v.(string); ok {
			fm.Description = strings.TrimSpace(s)
		} else {
			problems["description"] = "must be a string"
		}
	}
	if v, ok := raw["date"]; ok {
		d, err := parseDate(v)
		switch {
		case err != nil:
			problems["date"] = err.Error()
		case !d.IsZero() && (d.Year() < minYear || d.Year() > maxYear):
			problems["date"] = fmt.Sprintf("year %d outside %d-%d", d.Year(), minYear, maxYear)
		default:
			fm.Date = d
		}
	}
	if v, ok := raw["draft"]; ok {
		if b, ok := v.(bool); ok {
			fm.Draft = b
		} else {
			problems["draft"] = "must be a boolean"
		}
	}
	if v, ok := raw["tags"]; ok {
		tags, err := stringList(v)
		if err != nil {
			problems["tags"] = err.Error()
		} else {
			fm.Tags = tags
		}
	}
	if v, ok := raw["references"]; ok {
		refs, err := stringList(v)
		if err != nil {
			problems["references"] = err.Error()
		} else {
			fm.References = refs
		}
	}

	if len(problems) > 0 {
		keys := make([]string, 0, len(problems))
		for k := range problems {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + problems[k]
		}
		return FrontMatter{}, fmt.Errorf("%s", strings.Join(parts, "; "))
	}
	return fm, nil
}

// parseDate accepts TOML local dates and date-times, time.Time values from
// either decoder, and strings in one of dateLayouts. Results are UTC.
func parseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d.UTC(), nil
	case toml.LocalDate:
		return d.AsTime(time.UTC), nil
	case toml.LocalDateTime:
		return d.AsTime(time.UTC), nil
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("cannot parse %q as an ISO-8601 date", s)
	default:
		return time.Time{}, fmt.Errorf("must be a date, got %T", v)
	}
}

// stringList accepts a list of strings in either decoder's representation.
func stringList(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return compactStrings(list), nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("must be a list of strings")
			}
			out = append(out, s)
		}
		return compactStrings(out), nil
	default:
		return nil, fmt.Errorf("must be a list of strings")
	}
}

func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
