package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/db"
)

// SortDateDescSlugAsc names the published listing order.
const SortDateDescSlugAsc = "date_desc_slug_asc"

// ListInput contains parameters for the ListPublished operation.
type ListInput struct {
	Tag      string // optional filter
	Limit    int    // default: 20, max: MaxLimit
	Offset   int    // default: 0
	MaxLimit int    // optional, lowers MaxListLimit
}

// ListOutput contains the result of the ListPublished operation.
type ListOutput struct {
	Items      []article.Summary `json:"items"`
	Pagination Pagination        `json:"pagination"`
	Sort       string            `json:"sort"`
}

// ListPublished retrieves non-draft article summaries, newest first with
// ties broken by slug.
func ListPublished(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	maxLimit := MaxListLimit
	if input.MaxLimit > 0 && input.MaxLimit < maxLimit {
		maxLimit = input.MaxLimit
	}

	// Apply limit defaults and bounds
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	// Ensure offset is non-negative
	offset := max(input.Offset, 0)

	summaries, total, err := db.ListPublished(ctx, database, strings.TrimSpace(input.Tag), limit, offset)
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	if summaries == nil {
		summaries = []article.Summary{}
	}

	return &ListOutput{
		Items: summaries,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(summaries) < total,
			Total:   total,
		},
		Sort: SortDateDescSlugAsc,
	}, nil
}
