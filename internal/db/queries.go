package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/corpus"
	"github.com/hpungsan/folio/internal/errors"
)

// Reference is one outbound reference stored for an article.
type Reference struct {
	From     string `json:"from"`
	Target   string `json:"target"`
	Position int    `json:"position"`
}

// LoadInfo describes the corpus load currently held by the store.
type LoadInfo struct {
	RunID        string    `json:"run_id"`
	Root         string    `json:"root"`
	LoadedAt     time.Time `json:"loaded_at"`
	ArticleCount int       `json:"article_count"`
	FailureCount int       `json:"failure_count"`
}

const summaryColumns = `slug, path, title, description, published_at, draft`

// publishedOrder is the listing order: newest first, slug breaks ties.
const publishedOrder = `ORDER BY published_at DESC, slug ASC`

// LoadCorpus replaces the store contents with c in a single transaction.
func LoadCorpus(ctx context.Context, db *sql.DB, c *corpus.Corpus) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM load_failures`,
		`DELETE FROM loads`,
		`DELETE FROM article_references`,
		`DELETE FROM article_tags`,
		`DELETE FROM articles`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.NewInternal(err)
		}
	}

	for _, a := range c.Articles {
		if err := insertArticle(ctx, tx, a); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO loads (run_id, root, loaded_at, article_count, failure_count)
		VALUES (?, ?, ?, ?, ?)
	`, c.RunID, c.Root, c.LoadedAt.UnixNano(), len(c.Articles), len(c.Failures))
	if err != nil {
		return errors.NewInternal(err)
	}

	for _, f := range c.Failures {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO load_failures (run_id, path, code, message) VALUES (?, ?, ?, ?)
		`, c.RunID, f.Path, string(f.Code), f.Message)
		if err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func insertArticle(ctx context.Context, tx *sql.Tx, a *article.Article) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO articles (slug, path, title, title_norm, description, published_at, draft, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.Slug, a.Path, a.Title, article.NormalizeTitle(a.Title), a.Description,
		a.Date.UnixNano(), a.Draft, a.Body)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewDuplicateSlug(a.Slug, a.Path, "")
		}
		return errors.NewInternal(err)
	}

	for i, tag := range a.Tags {
		// A tag repeated in front matter keeps its first position.
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO article_tags (slug, tag, position) VALUES (?, ?, ?)
		`, a.Slug, tag, i)
		if err != nil {
			return errors.NewInternal(err)
		}
	}

	for i, ref := range a.References {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO article_references (slug, position, target) VALUES (?, ?, ?)
		`, a.Slug, i, ref)
		if err != nil {
			return errors.NewInternal(err)
		}
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetBySlug retrieves a full article, drafts included.
func GetBySlug(ctx context.Context, db *sql.DB, slug string) (*article.Article, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+summaryColumns+`, body
		FROM articles
		WHERE slug = ?
	`, slug)

	var (
		a           article.Article
		publishedAt int64
	)
	err := row.Scan(&a.Slug, &a.Path, &a.Title, &a.Description, &publishedAt, &a.Draft, &a.Body)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(slug)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	a.Date = time.Unix(0, publishedAt).UTC()

	tags, refs, err := loadRelations(ctx, db, []string{a.Slug})
	if err != nil {
		return nil, err
	}
	a.Tags = tags[a.Slug]
	a.References = refs[a.Slug]
	return &a, nil
}

// Exists reports whether an article with slug is loaded.
func Exists(ctx context.Context, db *sql.DB, slug string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE slug = ?`, slug).Scan(&n)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}

// ListPublished returns non-draft summaries in listing order, optionally
// restricted to one tag, along with the total number of matches.
func ListPublished(ctx context.Context, db *sql.DB, tag string, limit, offset int) ([]article.Summary, int, error) {
	where, args := publishedFilter(tag)

	total, err := countWhere(ctx, db, where, args)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + summaryColumns + ` FROM articles ` + where + ` ` + publishedOrder + ` LIMIT ? OFFSET ?`
	items, err := querySummaries(ctx, db, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// CountPublished returns the number of non-draft articles, optionally for one tag.
func CountPublished(ctx context.Context, db *sql.DB, tag string) (int, error) {
	where, args := publishedFilter(tag)
	return countWhere(ctx, db, where, args)
}

func publishedFilter(tag string) (string, []any) {
	if tag == "" {
		return `WHERE draft = 0`, nil
	}
	return `WHERE draft = 0 AND EXISTS (
		SELECT 1 FROM article_tags t WHERE t.slug = articles.slug AND t.tag = ?
	)`, []any{tag}
}

func countWhere(ctx context.Context, db *sql.DB, where string, args []any) (int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles `+where, args...).Scan(&total); err != nil {
		return 0, errors.NewInternal(err)
	}
	return total, nil
}

// ListAll returns every article summary, drafts included, in listing order.
func ListAll(ctx context.Context, db *sql.DB) ([]article.Summary, error) {
	return querySummaries(ctx, db, `SELECT `+summaryColumns+` FROM articles `+publishedOrder)
}

// GetLatest returns the newest published article summary, or nil if none.
func GetLatest(ctx context.Context, db *sql.DB) (*article.Summary, error) {
	items, err := querySummaries(ctx, db,
		`SELECT `+summaryColumns+` FROM articles WHERE draft = 0 `+publishedOrder+` LIMIT 1`)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// FindByTitle returns the first article in listing order whose normalized
// title equals titleNorm, drafts included. Returns nil if none match.
func FindByTitle(ctx context.Context, db *sql.DB, titleNorm string) (*article.Summary, error) {
	items, err := querySummaries(ctx, db,
		`SELECT `+summaryColumns+` FROM articles WHERE title_norm = ? `+publishedOrder+` LIMIT 1`, titleNorm)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// ListForExport returns full articles in listing order. Drafts are included
// only when includeDrafts is set.
func ListForExport(ctx context.Context, db *sql.DB, includeDrafts bool) ([]*article.Article, error) {
	query := `SELECT ` + summaryColumns + `, body FROM articles `
	if !includeDrafts {
		query += `WHERE draft = 0 `
	}
	query += publishedOrder

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var (
		out   []*article.Article
		slugs []string
	)
	for rows.Next() {
		var (
			a           article.Article
			publishedAt int64
		)
		if err := rows.Scan(&a.Slug, &a.Path, &a.Title, &a.Description, &publishedAt, &a.Draft, &a.Body); err != nil {
			rows.Close()
			return nil, errors.NewInternal(err)
		}
		a.Date = time.Unix(0, publishedAt).UTC()
		out = append(out, &a)
		slugs = append(slugs, a.Slug)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	tags, refs, err := loadRelations(ctx, db, slugs)
	if err != nil {
		return nil, err
	}
	for _, a := range out {
		a.Tags = tags[a.Slug]
		a.References = refs[a.Slug]
	}
	return out, nil
}

// ListReferences returns every stored reference, grouped by source slug in
// slug order and by position within a source.
func ListReferences(ctx context.Context, db *sql.DB) ([]Reference, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT slug, target, position FROM article_references ORDER BY slug ASC, position ASC
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var refs []Reference
	for rows.Next() {
		var r Reference
		if err := rows.Scan(&r.From, &r.Target, &r.Position); err != nil {
			return nil, errors.NewInternal(err)
		}
		refs = append(refs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return refs, nil
}

// TagCount is a tag with the number of published articles carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// ListTags returns tags used by published articles, most used first.
func ListTags(ctx context.Context, db *sql.DB) ([]TagCount, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT t.tag, COUNT(*) AS n
		FROM article_tags t
		JOIN articles a ON a.slug = t.slug
		WHERE a.draft = 0
		GROUP BY t.tag
		ORDER BY n DESC, t.tag ASC
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// ListFailures returns the failures recorded by the current load, in walk order.
func ListFailures(ctx context.Context, db *sql.DB) ([]corpus.Failure, error) {
	rows, err := db.QueryContext(ctx, `SELECT path, code, message FROM load_failures ORDER BY id ASC`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []corpus.Failure
	for rows.Next() {
		var (
			f    corpus.Failure
			code string
		)
		if err := rows.Scan(&f.Path, &code, &f.Message); err != nil {
			return nil, errors.NewInternal(err)
		}
		f.Code = errors.ErrorCode(code)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// GetLoadInfo returns the current load, or nil if nothing was loaded.
func GetLoadInfo(ctx context.Context, db *sql.DB) (*LoadInfo, error) {
	var (
		info     LoadInfo
		loadedAt int64
	)
	err := db.QueryRowContext(ctx, `
		SELECT run_id, root, loaded_at, article_count, failure_count FROM loads LIMIT 1
	`).Scan(&info.RunID, &info.Root, &loadedAt, &info.ArticleCount, &info.FailureCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	info.LoadedAt = time.Unix(0, loadedAt).UTC()
	return &info, nil
}

// querySummaries runs query and attaches tags and references. Rows are
// closed before the relation lookups run on the single connection.
func querySummaries(ctx context.Context, db *sql.DB, query string, args ...any) ([]article.Summary, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var (
		out   []article.Summary
		slugs []string
	)
	for rows.Next() {
		var (
			s           article.Summary
			publishedAt int64
		)
		if err := rows.Scan(&s.Slug, &s.Path, &s.Title, &s.Description, &publishedAt, &s.Draft); err != nil {
			rows.Close()
			return nil, errors.NewInternal(err)
		}
		s.Date = time.Unix(0, publishedAt).UTC()
		out = append(out, s)
		slugs = append(slugs, s.Slug)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	tags, refs, err := loadRelations(ctx, db, slugs)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Tags = tags[out[i].Slug]
		out[i].References = refs[out[i].Slug]
	}
	return out, nil
}

// loadRelations fetches tags and references for slugs, keyed by slug and
// ordered by position.
func loadRelations(ctx context.Context, db *sql.DB, slugs []string) (map[string][]string, map[string][]string, error) {
	tags := make(map[string][]string)
	refs := make(map[string][]string)
	if len(slugs) == 0 {
		return tags, refs, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(slugs)), ",")
	args := make([]any, len(slugs))
	for i, s := range slugs {
		args[i] = s
	}

	if err := collectPairs(ctx, db, tags,
		`SELECT slug, tag FROM article_tags WHERE slug IN (`+placeholders+`) ORDER BY slug, position`, args); err != nil {
		return nil, nil, err
	}
	if err := collectPairs(ctx, db, refs,
		`SELECT slug, target FROM article_references WHERE slug IN (`+placeholders+`) ORDER BY slug, position`, args); err != nil {
		return nil, nil, err
	}
	return tags, refs, nil
}

func collectPairs(ctx context.Context, db *sql.DB, into map[string][]string, query string, args []any) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer rows.Close()

	for rows.Next() {
		var slug, value string
		if err := rows.Scan(&slug, &value); err != nil {
			return errors.NewInternal(err)
		}
		into[slug] = append(into[slug], value)
	}
	if err := rows.Err(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
