// Package corpus loads a directory of articles into memory.
//
// Loading isolates failures per file: a malformed article is reported as a
// Failure and the rest of the corpus still loads.
package corpus

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/logger"
)

// DefaultExtensions are the file extensions loaded when none are configured.
var DefaultExtensions = []string{".md", ".markdown"}

// LoadOptions controls which files are read.
type LoadOptions struct {
	Extensions []string
	Logger     logger.Logger
}

// Failure records an article that could not be loaded.
type Failure struct {
	Path    string           `json:"path"`
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// Corpus is the result of one load.
type Corpus struct {
	// RunID is a ULID identifying this load
	RunID    string             `json:"run_id"`
	Root     string             `json:"root"`
	Articles []*article.Article `json:"articles"`
	Failures []Failure          `json:"failures"`
	LoadedAt time.Time          `json:"loaded_at"`
}

// Load walks root in lexical order and parses every file with a matching
// extension. Only an unreadable root or a cancelled context fail the load.
func Load(ctx context.Context, root string, opts LoadOptions) (*Corpus, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	exts := extensionSet(opts.Extensions)

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("content root %s: %v", root, err))
	}
	if !info.IsDir() {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("content root %s is not a directory", root))
	}

	runID, err := newRunID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	log = log.With(logger.String("run_id", runID), logger.String("root", root))

	c := &Corpus{
		RunID:    runID,
		Root:     root,
		Articles: []*article.Article{},
		Failures: []Failure{},
		LoadedAt: time.Now().UTC(),
	}
	bySlug := make(map[string]string)

	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			rel = p
		}
		rel = filepath.ToSlash(rel)

		if err != nil {
			if p == root {
				return err
			}
			c.addFailure(log, rel, errors.NewInternal(err))
			return nil
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !exts[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		if article.IsSectionPage(rel) {
			log.Debug("section page skipped", logger.String("path", rel))
			return nil
		}

		source, err := os.ReadFile(p)
		if err != nil {
			c.addFailure(log, rel, errors.NewInternal(err))
			return nil
		}

		a, err := article.Parse(rel, source)
		if err != nil {
			c.addFailure(log, rel, err)
			return nil
		}

		if existing, dup := bySlug[a.Slug]; dup {
			c.addFailure(log, rel, errors.NewDuplicateSlug(a.Slug, rel, existing))
			return nil
		}
		bySlug[a.Slug] = rel
		c.Articles = append(c.Articles, a)

		log.Debug("article loaded",
			logger.String("slug", a.Slug),
			logger.String("path", rel),
			logger.Bool("draft", a.Draft),
			logger.Int("references", len(a.References)),
		)
		return nil
	})
	if walkErr != nil {
		if stderrors.Is(walkErr, context.Canceled) || stderrors.Is(walkErr, context.DeadlineExceeded) {
			return nil, errors.NewCancelled("corpus load")
		}
		return nil, errors.NewInternal(walkErr)
	}

	log.Info("corpus loaded",
		logger.Int("articles", len(c.Articles)),
		logger.Int("failures", len(c.Failures)),
	)
	return c, nil
}

// addFailure records err against path and logs it.
func (c *Corpus) addFailure(log logger.Logger, path string, err error) {
	f := Failure{Path: path, Code: errors.ErrInternal, Message: err.Error()}
	if fErr, ok := errors.As(err); ok {
		f.Code = fErr.Code
		f.Message = fErr.Message
	}
	c.Failures = append(c.Failures, f)
	log.Warn("article skipped",
		logger.String("path", path),
		logger.String("code", string(f.Code)),
		logger.String("reason", f.Message),
	)
}

func extensionSet(exts []string) map[string]bool {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}

// newRunID generates a new ULID.
func newRunID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
