package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Recall resources.
	uriScheme = "recall://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource describing the tool surface.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "tools",
		Name:        "tools",
		Description: "Descriptors of all available retrieval tools",
		MIMEType:    "application/json",
	}, s.handleToolsResource)

	// Static resource for index coverage.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "index/status",
		Name:        "index-status",
		Description: "Embedding index coverage of the message store",
		MIMEType:    "application/json",
	}, s.handleIndexStatusResource)
}

// handleToolsResource returns the descriptors of every registered tool.
func (s *Server) handleToolsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type paramInfo struct {
		Name        string `json:"name"`
		Type        string `json:"type"`
		Description string `json:"description"`
		Required    bool   `json:"required"`
		Default     any    `json:"default,omitempty"`
	}
	type toolInfo struct {
		Name        string      `json:"name"`
		Description string      `json:"description"`
		Parameters  []paramInfo `json:"parameters"`
	}

	descriptors := s.ports.Registry.List()
	infos := make([]toolInfo, len(descriptors))
	for i, d := range descriptors {
		params := make([]paramInfo, len(d.Params))
		for j, p := range d.Params {
			params[j] = paramInfo{
				Name:        p.Name,
				Type:        string(p.Type),
				Description: p.Description,
				Required:    p.Required,
				Default:     p.Default,
			}
		}
		infos[i] = toolInfo{Name: d.Name, Description: d.Description, Parameters: params}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling tools: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleIndexStatusResource returns embedding coverage of the store.
func (s *Server) handleIndexStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Indexer == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	status, err := s.ports.Indexer.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting index status: %w", err)
	}

	data, err := json.MarshalIndent(map[string]any{
		"total_messages":    status.TotalMessages,
		"embedded_messages": status.EmbeddedMessages,
		"embedding_version": status.EmbeddingVersion,
		"running":           status.Running,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling status: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
