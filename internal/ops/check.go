package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/folio/internal/corpus"
	"github.com/hpungsan/folio/internal/db"
	"github.com/hpungsan/folio/internal/errors"
)

// UnresolvedRef is a reference that matches no article.
type UnresolvedRef struct {
	From    string `json:"from"`
	Target  string `json:"target"`
	Message string `json:"message"`
}

// CheckOutput is the build-time report of authoring defects.
type CheckOutput struct {
	RunID      string           `json:"run_id,omitempty"`
	Articles   int              `json:"articles"`
	Failures   []corpus.Failure `json:"failures"`
	Unresolved []UnresolvedRef  `json:"unresolved"`
	OK         bool             `json:"ok"`
}

// Check reports every load failure and every reference that does not resolve.
func Check(ctx context.Context, database *sql.DB) (*CheckOutput, error) {
	output := &CheckOutput{
		Failures:   []corpus.Failure{},
		Unresolved: []UnresolvedRef{},
	}

	info, err := db.GetLoadInfo(ctx, database)
	if err != nil {
		return nil, err
	}
	if info != nil {
		output.RunID = info.RunID
		output.Articles = info.ArticleCount
	}

	failures, err := db.ListFailures(ctx, database)
	if err != nil {
		return nil, err
	}
	output.Failures = append(output.Failures, failures...)

	refs, err := db.ListReferences(ctx, database)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		select {
		case <-ctx.Done():
			return nil, errors.NewCancelled("check")
		default:
		}

		s, _, err := resolveTarget(ctx, database, ref.Target)
		if err != nil {
			return nil, err
		}
		if s == nil {
			output.Unresolved = append(output.Unresolved, UnresolvedRef{
				From:    ref.From,
				Target:  ref.Target,
				Message: errors.NewUnresolvedReference(ref.From, ref.Target).Message,
			})
		}
	}

	output.OK = len(output.Failures) == 0 && len(output.Unresolved) == 0
	return output, nil
}
