// Package mcpserver implements the Model Context Protocol server, exposing
// srdiff's apply engine to LLMs over stdio. This lets an assistant that
// already produces SEARCH/REPLACE edits apply them to a file, or preview
// the result, without shelling out to the CLI.
package mcpserver

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kazz187/srdiff/internal/engine"
)

// Version is advertised to clients for capability negotiation.
const Version = "1.0.0"

// Serve starts the MCP server over stdio.
func Serve() error {
	// Log to stderr; stdout is reserved for MCP JSON-RPC messages.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	h := &handlers{}

	s := server.NewMCPServer(
		"srdiff",
		Version,
		server.WithToolCapabilities(true),
	)

	registerTools(s, h)

	slog.Info("srdiff MCP server ready", "version", Version, "transport", "stdio")

	err := server.ServeStdio(s)
	if errors.Is(err, context.Canceled) {
		slog.Info("server stopped")
		return nil
	}
	return err
}

type handlers struct{}

func registerTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcp.NewTool("srdiff_apply",
			mcp.WithDescription("Apply a SEARCH/REPLACE diff to an original text buffer, returning the edited result"),
			mcp.WithString("original", mcp.Required(), mcp.Description("The original file content")),
			mcp.WithString("diff", mcp.Required(), mcp.Description("The SEARCH/REPLACE marker-delimited diff content")),
			mcp.WithString("dialect", mcp.Description("Which engine to use: \"strict\" (ordered) or \"lenient\" (position-sorted). Defaults to strict.")),
			mcp.WithBoolean("final", mcp.Description("Whether diff is the complete diff content, not a partial chunk of a stream. Defaults to true.")),
		),
		h.apply,
	)

	s.AddTool(
		mcp.NewTool("srdiff_preview",
			mcp.WithDescription("Apply a SEARCH/REPLACE diff as a partial chunk, previewing the result without requiring the diff to be complete"),
			mcp.WithString("original", mcp.Required(), mcp.Description("The original file content")),
			mcp.WithString("diff", mcp.Required(), mcp.Description("The SEARCH/REPLACE marker-delimited diff content, possibly truncated mid-block")),
			mcp.WithString("dialect", mcp.Description("Which engine to use: \"strict\" (ordered) or \"lenient\" (position-sorted). Defaults to strict.")),
		),
		h.preview,
	)
}

func (h *handlers) apply(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	original, err := req.RequireString("original")
	if err != nil {
		return mcp.NewToolResultError("original is required"), nil //nolint:nilerr
	}
	diff, err := req.RequireString("diff")
	if err != nil {
		return mcp.NewToolResultError("diff is required"), nil //nolint:nilerr
	}
	dialect := getString(req, "dialect", "strict")
	final := getBool(req, "final", true)

	result, err := applyDialect(dialect, diff, original, final)

	slog.Info("mcp:srdiff_apply", "dialect", dialect, "final", final, "error", err)

	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (h *handlers) preview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	original, err := req.RequireString("original")
	if err != nil {
		return mcp.NewToolResultError("original is required"), nil //nolint:nilerr
	}
	diff, err := req.RequireString("diff")
	if err != nil {
		return mcp.NewToolResultError("diff is required"), nil //nolint:nilerr
	}
	dialect := getString(req, "dialect", "strict")

	result, err := applyDialect(dialect, diff, original, false)

	slog.Info("mcp:srdiff_preview", "dialect", dialect, "error", err)

	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(result), nil
}

func applyDialect(dialect, diffContent, original string, isFinal bool) (string, error) {
	if dialect == "lenient" {
		return engine.ApplyLenient(diffContent, original, isFinal)
	}
	return engine.ApplyStrict(diffContent, original, isFinal)
}

func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}
