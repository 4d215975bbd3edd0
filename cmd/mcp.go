package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"dirhop/internal/match"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing folder lookup tools",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	sess, err := openSession(nil)
	if err != nil {
		return err
	}
	defer sess.close()

	s := mcpserver.NewMCPServer("dirhop", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(findFolderTool(), makeFindFolderHandler(sess))
	s.AddTool(rescanFoldersTool(), makeRescanHandler(sess))
	s.AddTool(listRootsTool(), makeListRootsHandler(sess))

	return mcpserver.ServeStdio(s)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func findFolderTool() mcp.Tool {
	return mcp.NewTool("find_folder",
		mcp.WithDescription("Find folders in the workspace by a fragment of their name or path. Supports path-segment queries like 'back/api'. Returns absolute paths."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Name or path fragment to match, case-insensitive"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of folders to return (default 20)"),
		),
	)
}

func rescanFoldersTool() mcp.Tool {
	return mcp.NewTool("rescan_folders",
		mcp.WithDescription("Force a full rescan of the workspace roots and refresh the folder cache."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			ReadOnlyHint:    mcp.ToBoolPtr(false),
			DestructiveHint: mcp.ToBoolPtr(false),
			IdempotentHint:  mcp.ToBoolPtr(true),
			OpenWorldHint:   mcp.ToBoolPtr(false),
		}),
	)
}

func listRootsTool() mcp.Tool {
	return mcp.NewTool("list_roots",
		mcp.WithDescription("List the workspace roots the folder cache was built from."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

// --- Handler factories ---

func makeFindFolderHandler(sess *session) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		limit := req.GetInt("limit", 20)
		if limit <= 0 {
			limit = 20
		}

		folders, err := sess.cache.Folders(ctx, sess.roots)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("folder lookup failed: %v", err)), nil
		}

		results := match.Filter(folders, query)
		if len(results) > limit {
			results = results[:limit]
		}
		if len(results) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No folders match %q", query)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "## Folders matching %q (%d)\n\n", query, len(results))
		for _, r := range results {
			fmt.Fprintf(&sb, "- **%s** — %s\n", r.Label, r.Detail)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func makeRescanHandler(sess *session) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		folders, err := sess.cache.Rescan(ctx, sess.roots)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("rescan failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Rescan complete: %d folders cached.", len(folders))), nil
	}
}

func makeListRootsHandler(sess *session) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var sb strings.Builder
		fmt.Fprintf(&sb, "## Workspace roots (%d)\n\n", len(sess.roots))
		for _, root := range sess.roots {
			fmt.Fprintf(&sb, "- %s\n", root)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}
