package mcp

import "github.com/mark3labs/mcp-go/mcp"

var listToolDef = mcp.NewTool("article_list",
	mcp.WithDescription("List published articles, newest first with ties broken by slug. Drafts are excluded."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("tag", mcp.Description("Only list articles carrying this tag")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 500)")),
	mcp.WithNumber("offset", mcp.Description("Number of articles to skip")),
)

var getToolDef = mcp.NewTool("article_get",
	mcp.WithDescription("Get one article by slug. Drafts are returned."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("slug", mcp.Required(), mcp.Description("Article slug")),
	mcp.WithBoolean("include_body", mcp.Description("Include the Markdown body (default true)")),
)

var resolveToolDef = mcp.NewTool("article_resolve",
	mcp.WithDescription("Resolve a cross-article reference to the article it points at. Matches by slug first, then by title."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("from", mcp.Required(), mcp.Description("Slug of the article containing the reference")),
	mcp.WithString("target", mcp.Required(), mcp.Description("Referenced slug, link path or title")),
)

var checkToolDef = mcp.NewTool("article_check",
	mcp.WithDescription("Report malformed articles and references that match no article."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var latestToolDef = mcp.NewTool("article_latest",
	mcp.WithDescription("Get the newest published article."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithBoolean("include_body", mcp.Description("Include the Markdown body (default false)")),
)

var tagsToolDef = mcp.NewTool("article_tags",
	mcp.WithDescription("List tags of published articles with article counts."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var reloadToolDef = mcp.NewTool("article_reload",
	mcp.WithDescription("Re-read the content directory and replace the loaded corpus."),
	mcp.WithReadOnlyHintAnnotation(false),
)
