package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/folio/internal/config"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/logger"
	"github.com/hpungsan/folio/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
	log logger.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, log logger.Logger) *Handlers {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handlers{db: db, cfg: cfg, log: log}
}

// Request types for each tool

// ListRequest represents the arguments for article_list.
type ListRequest struct {
	Tag    string `json:"tag,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// GetRequest represents the arguments for article_get.
type GetRequest struct {
	Slug        string `json:"slug"`
	IncludeBody *bool  `json:"include_body,omitempty"`
}

// ResolveRequest represents the arguments for article_resolve.
type ResolveRequest struct {
	From   string `json:"from"`
	Target string `json:"target"`
}

// LatestRequest represents the arguments for article_latest.
type LatestRequest struct {
	IncludeBody bool `json:"include_body,omitempty"`
}

// HandleList handles the article_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListPublished(ctx, h.db, ops.ListInput{
		Tag:      input.Tag,
		Limit:    input.Limit,
		Offset:   input.Offset,
		MaxLimit: h.cfg.ListMaxLimit,
	})
	return h.respond("article_list", result, err)
}

// HandleGet handles the article_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Get(ctx, h.db, ops.GetInput{
		Slug:        input.Slug,
		IncludeBody: input.IncludeBody,
	})
	return h.respond("article_get", result, err)
}

// HandleResolve handles the article_resolve tool call.
func (h *Handlers) HandleResolve(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ResolveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ResolveReference(ctx, h.db, ops.ResolveInput{
		From:   input.From,
		Target: input.Target,
	})
	return h.respond("article_resolve", result, err)
}

// HandleCheck handles the article_check tool call.
func (h *Handlers) HandleCheck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := decode[struct{}](req); err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Check(ctx, h.db)
	return h.respond("article_check", result, err)
}

// HandleLatest handles the article_latest tool call.
func (h *Handlers) HandleLatest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LatestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Latest(ctx, h.db, ops.LatestInput{IncludeBody: input.IncludeBody})
	return h.respond("article_latest", result, err)
}

// HandleTags handles the article_tags tool call.
func (h *Handlers) HandleTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := decode[struct{}](req); err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Tags(ctx, h.db)
	return h.respond("article_tags", result, err)
}

// HandleReload handles the article_reload tool call.
func (h *Handlers) HandleReload(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := decode[struct{}](req); err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	start := time.Now()
	result, err := ops.Load(ctx, h.db, ops.LoadInput{
		Root:       h.cfg.ContentDir,
		Extensions: h.cfg.Extensions,
		Logger:     h.log,
	})
	if err == nil {
		h.log.Info("corpus reloaded",
			logger.String("run_id", result.RunID),
			logger.Duration("took", time.Since(start)),
		)
	}
	return h.respond("article_reload", result, err)
}

// respond logs failed calls and converts the op result to an MCP result.
func (h *Handlers) respond(tool string, result any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		h.log.Warn("tool call failed", logger.String("tool", tool), logger.Error(err))
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if folioErr, ok := errors.As(err); ok {
		errorObj := map[string]any{
			"code":    folioErr.Code,
			"message": folioErr.Message,
			"status":  folioErr.Status,
		}
		if folioErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		} else if folioErr.Details != nil {
			errorObj["details"] = folioErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
