// Package mcp provides an MCP (Model Context Protocol) server adapter for Recall.
// It exposes the message retrieval tools to AI assistants over stdio or HTTP.
package mcp

import "errors"

// ErrMissingRegistry is returned when the tool registry is not provided.
var ErrMissingRegistry = errors.New("mcp: tool registry is required")
