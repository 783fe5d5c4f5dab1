package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/db"
)

// LatestInput contains parameters for the Latest operation.
type LatestInput struct {
	IncludeBody bool // default: false (summary only)
}

// LatestOutput contains the result of the Latest operation.
type LatestOutput struct {
	Item *LatestItem `json:"item"` // nil if nothing is published
}

// LatestItem contains the newest published article with optional body.
type LatestItem struct {
	article.Summary        // embedded summary
	Body            string `json:"body,omitempty"` // only if include_body
}

// Latest retrieves the newest published article.
func Latest(ctx context.Context, database *sql.DB, input LatestInput) (*LatestOutput, error) {
	s, err := db.GetLatest(ctx, database)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return &LatestOutput{Item: nil}, nil
	}

	item := &LatestItem{Summary: *s}
	if input.IncludeBody {
		a, err := db.GetBySlug(ctx, database, s.Slug)
		if err != nil {
			return nil, err
		}
		item.Body = a.Body
	}

	return &LatestOutput{Item: item}, nil
}
