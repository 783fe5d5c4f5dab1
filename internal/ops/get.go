package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/db"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	Slug        string
	IncludeBody *bool // default: true (nil means default)
}

// GetOutput contains the result of the Get operation.
type GetOutput struct {
	article.Article // embedded (copy, not pointer)
}

// Get retrieves one article by slug. Drafts are returned.
func Get(ctx context.Context, database *sql.DB, input GetInput) (*GetOutput, error) {
	slug, err := requireSlug("slug", input.Slug)
	if err != nil {
		return nil, err
	}

	a, err := db.GetBySlug(ctx, database, slug)
	if err != nil {
		return nil, err
	}

	output := &GetOutput{Article: *a}

	includeBody := true
	if input.IncludeBody != nil {
		includeBody = *input.IncludeBody
	}
	if !includeBody {
		output.Body = ""
	}

	return output, nil
}
