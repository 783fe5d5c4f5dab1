package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/folio/internal/db"
)

// TagsOutput contains the result of the Tags operation.
type TagsOutput struct {
	Items []db.TagCount `json:"items"`
}

// Tags lists the tags of published articles with their article counts,
// most used first.
func Tags(ctx context.Context, database *sql.DB) (*TagsOutput, error) {
	items, err := db.ListTags(ctx, database)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []db.TagCount{}
	}
	return &TagsOutput{Items: items}, nil
}
