package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/folio/internal/errors"
)

func TestResolveReference(t *testing.T) {
	database := newLoadedStore(t, testCorpus)

	tests := []struct {
		name      string
		target    string
		wantSlug  string
		wantMatch string
	}{
		{"bare slug", "rust-closures", "rust-closures", MatchedBySlug},
		{"site path", "/posts/rust-closures/", "rust-closures", MatchedBySlug},
		{"relative file", "../rust-closures.md", "rust-closures", MatchedBySlug},
		{"fragment", "rust-closures#capturing", "rust-closures", MatchedBySlug},
		{"draft is addressable", "rust-async-closures-draft", "rust-async-closures-draft", MatchedBySlug},
		{"title", "Closures in Rust", "rust-closures", MatchedByTitle},
		{"title any case", "  closures IN   rust ", "rust-closures", MatchedByTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := ResolveReference(context.Background(), database, ResolveInput{
				From:   "rust-async-closures",
				Target: tt.target,
			})
			if err != nil {
				t.Fatalf("ResolveReference failed: %v", err)
			}
			if output.Article.Slug != tt.wantSlug {
				t.Errorf("Slug = %s, want %s", output.Article.Slug, tt.wantSlug)
			}
			if output.MatchedBy != tt.wantMatch {
				t.Errorf("MatchedBy = %s, want %s", output.MatchedBy, tt.wantMatch)
			}
		})
	}
}

func TestResolveReference_TitleWithSlash(t *testing.T) {
	database := newLoadedStore(t, map[string]string{
		"tcp.md":          "+++\ntitle = \"TCP/IP explained\"\ndate = 2026-01-01\ndescription = \"d\"\n+++\n",
		"ip-explained.md": "+++\ntitle = \"Other\"\ndate = 2026-01-02\ndescription = \"d\"\n+++\n",
	})

	tests := []struct {
		target    string
		wantSlug  string
		wantMatch string
	}{
		{"TCP/IP explained", "tcp", MatchedByTitle},
		{"posts/ip-explained/", "ip-explained", MatchedBySlug},
		{"ip explained", "ip-explained", MatchedBySlug},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			output, err := ResolveReference(context.Background(), database, ResolveInput{
				From:   "tcp",
				Target: tt.target,
			})
			if err != nil {
				t.Fatalf("ResolveReference failed: %v", err)
			}
			if output.Article.Slug != tt.wantSlug || output.MatchedBy != tt.wantMatch {
				t.Errorf("got %s by %s, want %s by %s", output.Article.Slug, output.MatchedBy, tt.wantSlug, tt.wantMatch)
			}
		})
	}
}

func TestResolveReference_Unresolved(t *testing.T) {
	database := newLoadedStore(t, testCorpus)

	_, err := ResolveReference(context.Background(), database, ResolveInput{
		From:   "rust-async-closures",
		Target: "rust-iterators",
	})
	if !errors.Is(err, errors.ErrUnresolvedReference) {
		t.Fatalf("err = %v, want UNRESOLVED_REFERENCE", err)
	}
}

func TestResolveReference_UnresolvedWhenTargetMissing(t *testing.T) {
	files := map[string]string{}
	for k, v := range testCorpus {
		if k != "posts/rust-closures.md" {
			files[k] = v
		}
	}
	database := newLoadedStore(t, files)

	_, err := ResolveReference(context.Background(), database, ResolveInput{
		From:   "rust-async-closures",
		Target: "rust-closures",
	})
	if !errors.Is(err, errors.ErrUnresolvedReference) {
		t.Fatalf("err = %v, want UNRESOLVED_REFERENCE", err)
	}
}

func TestResolveReference_UnknownFrom(t *testing.T) {
	database := newLoadedStore(t, testCorpus)

	_, err := ResolveReference(context.Background(), database, ResolveInput{
		From:   "nonexistent-slug",
		Target: "rust-closures",
	})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestResolveReference_MissingFields(t *testing.T) {
	database := newLoadedStore(t, testCorpus)

	for _, input := range []ResolveInput{
		{From: "", Target: "rust-closures"},
		{From: "rust-closures", Target: ""},
	} {
		_, err := ResolveReference(context.Background(), database, input)
		if !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("ResolveReference(%+v) err = %v, want INVALID_REQUEST", input, err)
		}
	}
}
