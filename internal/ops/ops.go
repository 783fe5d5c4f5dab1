package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/folio/internal/corpus"
	"github.com/hpungsan/folio/internal/db"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/logger"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 500
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// LoadInput contains parameters for the Load operation.
type LoadInput struct {
	Root       string // required
	Extensions []string
	Logger     logger.Logger
}

// LoadOutput contains the result of the Load operation.
type LoadOutput struct {
	RunID    string `json:"run_id"`
	Root     string `json:"root"`
	Articles int    `json:"articles"`
	Failures int    `json:"failures"`
}

// Load reads the corpus under input.Root and replaces the store contents with it.
// Per-article failures are recorded in the store, not returned.
func Load(ctx context.Context, database *sql.DB, input LoadInput) (*LoadOutput, error) {
	root := strings.TrimSpace(input.Root)
	if root == "" {
		return nil, errors.NewInvalidRequest("content root is required")
	}

	c, err := corpus.Load(ctx, root, corpus.LoadOptions{
		Extensions: input.Extensions,
		Logger:     input.Logger,
	})
	if err != nil {
		return nil, err
	}

	if err := db.LoadCorpus(ctx, database, c); err != nil {
		return nil, err
	}

	return &LoadOutput{
		RunID:    c.RunID,
		Root:     c.Root,
		Articles: len(c.Articles),
		Failures: len(c.Failures),
	}, nil
}

// requireSlug trims s and rejects an empty value for field.
func requireSlug(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.NewInvalidRequest(field + " is required")
	}
	return s, nil
}
