package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/folio/internal/errors"
)

// writeFiles creates files under root from a path -> content map.
func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func articleSource(title, date string, draft bool) string {
	d := "false"
	if draft {
		d = "true"
	}
	return "+++\ntitle = \"" + title + "\"\ndate = " + date + "\ndescription = \"About " + title + "\"\ndraft = " + d + "\n+++\n\nBody of " + title + ".\n"
}

func TestLoad_HappyPath(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"posts/rust-closures.md":             articleSource("Rust closures", "2026-01-05", false),
		"posts/rust-async-closures/index.md": articleSource("Async closures", "2026-02-22", false),
		"posts/rust-async-closures-draft.md": articleSource("Async closures draft", "2026-01-18", true),
		"posts/notes.txt":                    "not an article",
		".hidden/secret.md":                  articleSource("Hidden", "2026-01-01", false),
	})

	c, err := Load(context.Background(), root, LoadOptions{})
	require.NoError(t, err)

	require.NotEmpty(t, c.RunID)
	require.Len(t, c.RunID, 26)
	require.Empty(t, c.Failures)
	require.Len(t, c.Articles, 3)

	slugs := make([]string, len(c.Articles))
	for i, a := range c.Articles {
		slugs[i] = a.Slug
	}
	// WalkDir visits in lexical order.
	require.Equal(t, []string{"rust-async-closures", "rust-async-closures-draft", "rust-closures"}, slugs)
	require.Equal(t, "posts/rust-async-closures/index.md", c.Articles[0].Path)
}

func TestLoad_SkipsSectionPages(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"_index.md":              "+++\ntitle = \"Home\"\n+++\n",
		"posts/_index.md":        "+++\ntitle = \"Posts\"\n+++\n",
		"posts/rust-closures.md": articleSource("Rust closures", "2026-01-05", false),
	})

	c, err := Load(context.Background(), root, LoadOptions{})
	require.NoError(t, err)
	require.Empty(t, c.Failures)
	require.Len(t, c.Articles, 1)
	require.Equal(t, "rust-closures", c.Articles[0].Slug)
}

func TestLoad_PartialFailureIsolation(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a-good.md":      articleSource("Good", "2026-01-05", false),
		"b-no-title.md":  "+++\ndate = 2026-01-05\ndescription = \"d\"\n+++\n",
		"c-bad-date.md":  "+++\ntitle = \"t\"\ndate = \"someday\"\ndescription = \"d\"\n+++\n",
		"d-no-fm.md":     "# plain markdown\n",
		"e-also-good.md": articleSource("Also good", "2026-01-06", false),
	})

	c, err := Load(context.Background(), root, LoadOptions{})
	require.NoError(t, err)

	require.Len(t, c.Articles, 2)
	require.Len(t, c.Failures, 3)
	for _, f := range c.Failures {
		require.Equal(t, errors.ErrMalformedFrontMatter, f.Code, f.Path)
	}
	require.Equal(t, "b-no-title.md", c.Failures[0].Path)
	require.Equal(t, "c-bad-date.md", c.Failures[1].Path)
	require.Equal(t, "d-no-fm.md", c.Failures[2].Path)
}

func TestLoad_DuplicateSlug(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"2025/rust-closures.md":       articleSource("Old", "2025-01-05", false),
		"2026/rust-closures/index.md": articleSource("New", "2026-01-05", false),
	})

	c, err := Load(context.Background(), root, LoadOptions{})
	require.NoError(t, err)

	require.Len(t, c.Articles, 1)
	require.Equal(t, "2025/rust-closures.md", c.Articles[0].Path)
	require.Len(t, c.Failures, 1)
	require.Equal(t, errors.ErrDuplicateSlug, c.Failures[0].Code)
	require.Equal(t, "2026/rust-closures/index.md", c.Failures[0].Path)
}

func TestLoad_CustomExtensions(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.md":  articleSource("A", "2026-01-05", false),
		"b.mdx": articleSource("B", "2026-01-05", false),
	})

	c, err := Load(context.Background(), root, LoadOptions{Extensions: []string{"MDX"}})
	require.NoError(t, err)
	require.Len(t, c.Articles, 1)
	require.Equal(t, "b", c.Articles[0].Slug)
}

func TestLoad_MissingRoot(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope"), LoadOptions{})
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestLoad_RootIsFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.md": articleSource("A", "2026-01-05", false)})

	_, err := Load(context.Background(), filepath.Join(root, "a.md"), LoadOptions{})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestLoad_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.md": articleSource("A", "2026-01-05", false)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, root, LoadOptions{})
	require.True(t, errors.Is(err, errors.ErrCancelled), "got %v", err)
}

func TestLoad_EmptyCorpus(t *testing.T) {
	c, err := Load(context.Background(), t.TempDir(), LoadOptions{})
	require.NoError(t, err)
	require.NotNil(t, c.Articles)
	require.Empty(t, c.Articles)
	require.Empty(t, c.Failures)
}
