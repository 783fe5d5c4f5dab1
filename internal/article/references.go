package article

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// shortcodePattern matches Hugo ref/relref shortcodes in either delimiter style:
// {{< ref "rust-closures" >}} or {{% relref "posts/rust-closures.md" %}}.
var shortcodePattern = regexp.MustCompile(`\{\{[<%]\s*(?:rel)?ref\s+"([^"]+)"\s*[>%]\}\}`)

// fencePattern matches fenced code block delimiters (``` or ~~~) at the start of a line,
// allowing 0-3 spaces of indentation.
var fencePattern = regexp.MustCompile("(?m)^[ ]{0,3}(`{3,}|~{3,})")

var markdownParser = goldmark.New().Parser()

// ExtractReferences finds outbound article references in a Markdown body:
// ref/relref shortcodes first, then relative link destinations. Anything
// inside fenced code is ignored. The result is deduplicated and keeps
// first-seen order.
func ExtractReferences(body []byte) []string {
	var refs []string
	seen := make(map[string]bool)
	add := func(ref string) {
		ref = strings.TrimSpace(ref)
		if ref == "" || seen[ref] {
			return
		}
		seen[ref] = true
		refs = append(refs, ref)
	}

	src := string(body)
	fences := fencedRanges(src)
	for _, m := range shortcodePattern.FindAllStringSubmatchIndex(src, -1) {
		if insideFence(m[0], fences) {
			continue
		}
		add(src[m[2]:m[3]])
	}

	doc := markdownParser.Parse(text.NewReader(body))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			dest := string(link.Destination)
			if isArticleLink(dest) {
				add(dest)
			}
		}
		return ast.WalkContinue, nil
	})

	return refs
}

// MergeReferences appends extra references after base, skipping duplicates.
func MergeReferences(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, ref := range list {
			ref = strings.TrimSpace(ref)
			if ref == "" || seen[ref] {
				continue
			}
			seen[ref] = true
			out = append(out, ref)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// isArticleLink reports whether a link destination can point at another
// article: relative, no scheme, not a bare fragment, and either
// extensionless or a content file.
func isArticleLink(dest string) bool {
	dest = strings.TrimSpace(dest)
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "//") {
		return false
	}
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return false
	}
	p := strings.TrimRight(u.Path, "/")
	if p == "" {
		return false
	}
	ext := strings.ToLower(path.Ext(p))
	return ext == "" || contentExtensions[ext]
}

// fencedRanges returns byte offset ranges [start, end) for fenced code blocks in text.
// A closing fence must use the same character and be at least as long as the opener.
// An unclosed fence runs to the end of the text.
func fencedRanges(text string) [][2]int {
	matches := fencePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var ranges [][2]int
	var openChar byte
	var openLen int
	var openStart int
	inFence := false

	for _, match := range matches {
		fenceChars := text[match[2]:match[3]]
		char := fenceChars[0]
		fenceLen := len(fenceChars)

		if !inFence {
			openChar = char
			openLen = fenceLen
			openStart = match[0]
			inFence = true
		} else if char == openChar && fenceLen >= openLen {
			ranges = append(ranges, [2]int{openStart, match[1]})
			inFence = false
		}
	}
	if inFence {
		ranges = append(ranges, [2]int{openStart, len(text)})
	}
	return ranges
}

// insideFence returns true if byte offset pos falls inside any fenced range.
func insideFence(pos int, ranges [][2]int) bool {
	for _, r := range ranges {
		if pos >= r[0] && pos < r[1] {
			return true
		}
	}
	return false
}
