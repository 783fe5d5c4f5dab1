package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/folio/internal/errors"
)

func TestCheck_Clean(t *testing.T) {
	database := newLoadedStore(t, testCorpus)

	output, err := Check(context.Background(), database)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !output.OK {
		t.Errorf("OK = false, report = %+v", output)
	}
	if output.Articles != 3 {
		t.Errorf("Articles = %d, want 3", output.Articles)
	}
	if output.RunID == "" {
		t.Error("RunID is empty")
	}
}

func TestCheck_HugoSectionPages(t *testing.T) {
	files := map[string]string{
		"_index.md":       "+++\ntitle = \"Home\"\n+++\n",
		"posts/_index.md": "---\ntitle: Posts\n---\n",
	}
	for k, v := range testCorpus {
		files[k] = v
	}
	database := newLoadedStore(t, files)

	output, err := Check(context.Background(), database)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !output.OK || output.Articles != 3 {
		t.Errorf("report = %+v, want OK with 3 articles", output)
	}
}

func TestCheck_ReportsDefects(t *testing.T) {
	files := map[string]string{
		"no-date.md": "+++\ntitle = \"t\"\ndescription = \"d\"\n+++\n",
		"linker.md":  "+++\ntitle = \"Linker\"\ndate = 2026-01-01\ndescription = \"d\"\n+++\nSee [gone](rust-iterators) and [closures](rust-closures).\n",
	}
	for k, v := range testCorpus {
		files[k] = v
	}
	database := newLoadedStore(t, files)

	output, err := Check(context.Background(), database)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if output.OK {
		t.Error("OK = true, want false")
	}

	if len(output.Failures) != 1 {
		t.Fatalf("Failures = %+v, want 1", output.Failures)
	}
	if output.Failures[0].Path != "no-date.md" || output.Failures[0].Code != errors.ErrMalformedFrontMatter {
		t.Errorf("Failures[0] = %+v", output.Failures[0])
	}

	if len(output.Unresolved) != 1 {
		t.Fatalf("Unresolved = %+v, want 1", output.Unresolved)
	}
	u := output.Unresolved[0]
	if u.From != "linker" || u.Target != "rust-iterators" || u.Message == "" {
		t.Errorf("Unresolved[0] = %+v", u)
	}
}

func TestCheck_Cancelled(t *testing.T) {
	files := map[string]string{
		"linker.md": "+++\ntitle = \"Linker\"\ndate = 2026-01-01\ndescription = \"d\"\n+++\n[x](somewhere)\n",
	}
	database := newLoadedStore(t, files)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Check(ctx, database)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
