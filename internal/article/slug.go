package article

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/goliatone/go-slug"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// bundleIndexNames are file stems whose slug comes from the parent directory.
var bundleIndexNames = map[string]bool{"index": true, "_index": true}

// contentExtensions are stripped from reference targets.
var contentExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
}

// NormalizeSlug applies the slug normalization rules and rejects values that
// do not produce a valid slug.
func NormalizeSlug(value string) (string, error) {
	s, err := slug.Normalize(value)
	if err != nil {
		return "", err
	}
	if s == "" || !slug.IsValid(s) {
		return "", fmt.Errorf("%q does not produce a valid slug", value)
	}
	return s, nil
}

// SlugFromPath derives an article slug from its file path. Page bundles
// (dir/index.md) take the directory name.
func SlugFromPath(p string) (string, error) {
	p = filepath.ToSlash(p)
	base := path.Base(p)
	stem := strings.TrimSuffix(base, path.Ext(base))

	if bundleIndexNames[strings.ToLower(stem)] {
		dir := path.Dir(p)
		if dir == "." || dir == "/" || dir == "" {
			return "", fmt.Errorf("bundle index %q has no parent directory to name it", p)
		}
		stem = path.Base(dir)
	}

	if strings.TrimSpace(stem) == "" {
		return "", fmt.Errorf("file name %q is empty", base)
	}
	return NormalizeSlug(stem)
}

// IsSectionPage reports whether p is a Hugo list page (_index.md). Those
// describe a section, not an article.
func IsSectionPage(p string) bool {
	base := path.Base(filepath.ToSlash(p))
	return strings.EqualFold(strings.TrimSuffix(base, path.Ext(base)), "_index")
}

// ReferenceTarget reduces a raw reference (URL path, file name, shortcode
// argument) to a slug candidate. Returns "" if nothing usable remains.
func ReferenceTarget(ref string) string {
	ref = strings.TrimSpace(strings.ReplaceAll(ref, "\\", "/"))
	if i := strings.IndexAny(ref, "#?"); i >= 0 {
		ref = ref[:i]
	}
	ref = strings.TrimRight(ref, "/")
	if ref == "" {
		return ""
	}

	base := path.Base(ref)
	if ext := path.Ext(base); contentExtensions[strings.ToLower(ext)] {
		base = strings.TrimSuffix(base, ext)
	}
	if bundleIndexNames[strings.ToLower(base)] {
		dir := path.Dir(ref)
		if dir == "." || dir == "/" {
			return ""
		}
		base = path.Base(dir)
	}
	if base == "." || base == ".." || base == "/" {
		return ""
	}

	s, err := NormalizeSlug(base)
	if err != nil {
		return ""
	}
	return s
}

// NormalizeTitle lowercases, trims, and collapses whitespace so titles can be
// compared loosely.
func NormalizeTitle(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return whitespaceRegex.ReplaceAllString(s, " ")
}
