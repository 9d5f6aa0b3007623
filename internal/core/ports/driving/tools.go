package driving

import (
	"context"

	"github.com/veilchat/recall/internal/core/domain"
)

// ToolRegistry is the in-process dispatch surface exposed to the
// natural-language front end. It mirrors the JSON-RPC 2.0 error
// categories without requiring a network transport.
type ToolRegistry interface {
	// List returns the descriptors of every registered tool, ordered
	// by name, for capability discovery.
	List() []domain.ToolDescriptor

	// Invoke validates the arguments against the named tool's
	// parameter specs and executes it. Faults never escape: unknown
	// names, invalid parameters, and execution panics all come back
	// as failed results.
	Invoke(ctx context.Context, name string, args map[string]any) domain.ToolResult
}
