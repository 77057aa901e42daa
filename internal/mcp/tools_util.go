// tools_util.go provides helper functions for MCP tool parameter extraction.
//
// Design: permissive extraction (return default on error) rather than strict
// validation, since MCP tools should be forgiving of an LLM omitting an
// optional parameter.
package mcp

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// getString returns a string parameter or the default if not present.
func getString(req mcp.CallToolRequest, name, def string) string {
	if v, err := req.RequireString(name); err == nil {
		return v
	}
	return def
}

// getBool returns a boolean parameter or the default if not present.
func getBool(req mcp.CallToolRequest, name string, def bool) bool {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return def
	}
	if v, ok := args[name].(bool); ok {
		return v
	}
	return def
}

// getInt returns an integer parameter or the default. Handles JSON number type.
func getInt(req mcp.CallToolRequest, name string, def int) int {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return def
	}
	if v, ok := args[name].(float64); ok {
		return int(v)
	}
	return def
}

func getInt64(req mcp.CallToolRequest, name string, def int64) int64 {
	return int64(getInt(req, name, int(def)))
}

// jsonResult wraps a value as an MCP text result with pretty-printed JSON.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
