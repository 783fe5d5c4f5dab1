package ops

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/errors"
)

// ScaffoldInput contains parameters for the Scaffold operation.
type ScaffoldInput struct {
	Root        string // content root, required
	Slug        string // normalized before use
	Title       string // required
	Description string // required
	Date        time.Time
	Tags        []string
	Draft       bool
}

// ScaffoldOutput contains the result of the Scaffold operation.
type ScaffoldOutput struct {
	Slug  string `json:"slug"`
	Path  string `json:"path"`
	Draft bool   `json:"draft"`
}

// Validate checks the required scaffold fields.
func (in ScaffoldInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Root, validation.Required),
		validation.Field(&in.Slug, validation.Required),
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Description, validation.Required),
	)
}

// Scaffold writes a new article file <root>/<slug>.md with TOML front matter.
// It never overwrites an existing file.
func Scaffold(input ScaffoldInput) (*ScaffoldOutput, error) {
	input.Root = strings.TrimSpace(input.Root)
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if err := input.Validate(); err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	slug, err := article.NormalizeSlug(input.Slug)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("slug: %v", err))
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	data, err := article.Render(article.FrontMatter{
		Title:       input.Title,
		Date:        date,
		Description: input.Description,
		Draft:       input.Draft,
		Tags:        input.Tags,
	}, "")
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	// The rendered file must load back cleanly.
	path := filepath.Join(input.Root, slug+".md")
	if _, err := article.Parse(slug+".md", data); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(input.Root, 0o755); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create content directory: %w", err))
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if stderrors.Is(err, os.ErrExist) {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("article file already exists: %s", path))
		}
		return nil, errors.NewInternal(err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return nil, errors.NewInternal(err)
	}
	if err := f.Close(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &ScaffoldOutput{Slug: slug, Path: path, Draft: input.Draft}, nil
}
