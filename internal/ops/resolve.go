package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/db"
	"github.com/hpungsan/folio/internal/errors"
)

// Match kinds reported by ResolveReference.
const (
	MatchedBySlug  = "slug"
	MatchedByTitle = "title"
)

// ResolveInput contains parameters for the ResolveReference operation.
type ResolveInput struct {
	From   string // slug of the referring article
	Target string // slug, link path or title
}

// ResolveOutput contains the result of the ResolveReference operation.
type ResolveOutput struct {
	From      string          `json:"from"`
	Target    string          `json:"target"`
	MatchedBy string          `json:"matched_by"`
	Article   article.Summary `json:"article"`
}

// ResolveReference resolves an inline reference from one article to another.
// The slug reduced from Target is tried first, then a case-insensitive title.
// A Target containing whitespace tries the title first.
func ResolveReference(ctx context.Context, database *sql.DB, input ResolveInput) (*ResolveOutput, error) {
	from, err := requireSlug("from", input.From)
	if err != nil {
		return nil, err
	}
	target, err := requireSlug("target", input.Target)
	if err != nil {
		return nil, err
	}

	ok, err := db.Exists(ctx, database, from)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewNotFound(from)
	}

	s, matchedBy, err := resolveTarget(ctx, database, target)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.NewUnresolvedReference(from, target)
	}

	return &ResolveOutput{
		From:      from,
		Target:    target,
		MatchedBy: matchedBy,
		Article:   *s,
	}, nil
}

// targetLookup matches a target one way, returning nil when it does not match.
type targetLookup func(context.Context, *sql.DB, string) (*article.Summary, string, error)

// resolveTarget returns the matched article and how it matched, or nil if
// nothing matches. Targets containing whitespace read as titles, so an exact
// title match wins over the slug reduced from them.
func resolveTarget(ctx context.Context, database *sql.DB, target string) (*article.Summary, string, error) {
	lookups := []targetLookup{bySlug, byTitle}
	if strings.ContainsAny(target, " \t") {
		lookups = []targetLookup{byTitle, bySlug}
	}
	for _, lookup := range lookups {
		s, matchedBy, err := lookup(ctx, database, target)
		if err != nil || s != nil {
			return s, matchedBy, err
		}
	}
	return nil, "", nil
}

func bySlug(ctx context.Context, database *sql.DB, target string) (*article.Summary, string, error) {
	slug := article.ReferenceTarget(target)
	if slug == "" {
		return nil, "", nil
	}
	a, err := db.GetBySlug(ctx, database, slug)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	s := a.ToSummary()
	return &s, MatchedBySlug, nil
}

func byTitle(ctx context.Context, database *sql.DB, target string) (*article.Summary, string, error) {
	titleNorm := article.NormalizeTitle(target)
	if titleNorm == "" {
		return nil, "", nil
	}
	s, err := db.FindByTitle(ctx, database, titleNorm)
	if err != nil || s == nil {
		return nil, "", err
	}
	return s, MatchedByTitle, nil
}
