// Package tools provides centralized response utilities for MCP tool handlers.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// TextResponse creates a response with a single text content block.
func TextResponse(message string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
		IsError: false,
	}
}

// TextListResponse creates a response with one text content block per
// string, preserving order. An empty list yields an empty content list.
func TextListResponse(messages []string) *mcp.CallToolResultFor[any] {
	content := make([]mcp.Content, 0, len(messages))
	for _, message := range messages {
		content = append(content, &mcp.TextContent{Text: message})
	}
	return &mcp.CallToolResultFor[any]{
		Content: content,
		IsError: false,
	}
}

// JSONResponse creates a response with the JSON encoding of data as text.
func JSONResponse(data any) *mcp.CallToolResultFor[any] {
	jsonBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return ErrorResponsef("failed to marshal JSON: %v", err)
	}

	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: string(jsonBytes)}},
		IsError: false,
	}
}

// ErrorResponse creates a standardized error response.
func ErrorResponse(message string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + message}},
		IsError: true,
	}
}

// ErrorResponsef creates a standardized error response with formatted message.
func ErrorResponsef(format string, args ...any) *mcp.CallToolResultFor[any] {
	return ErrorResponse(fmt.Sprintf(format, args...))
}
