package mcp

import (
	"github.com/veilchat/recall/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Registry dispatches tool invocations and lists capabilities.
	Registry driving.ToolRegistry

	// Indexer reports indexing status for resources. Optional.
	Indexer driving.Indexer
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Registry == nil {
		return ErrMissingRegistry
	}
	return nil
}
