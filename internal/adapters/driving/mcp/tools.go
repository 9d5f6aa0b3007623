package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veilchat/recall/internal/core/domain"
)

// registerTools exposes every tool in the registry over MCP. The
// registry stays the single source of truth for the tool set; this
// adapter only translates descriptors and results between the two
// protocols.
func (s *Server) registerTools() {
	for _, descriptor := range s.ports.Registry.List() {
		name := descriptor.Name
		s.server.AddTool(&mcp.Tool{
			Name:        name,
			Description: descriptor.Description,
			InputSchema: inputSchema(descriptor),
		}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return s.dispatch(ctx, name, req)
		})
	}
}

// dispatch forwards one MCP tool call to the registry.
func (s *Server) dispatch(
	ctx context.Context, name string, req *mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	args := map[string]any{}
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return nil, fmt.Errorf("decoding arguments: %w", err)
		}
	}

	result := s.ports.Registry.Invoke(ctx, name, args)
	if !result.OK() {
		// Tool-level failures stay inside the result so the caller
		// sees the error category; protocol errors are reserved for
		// transport faults.
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: result.ErrorString()}},
		}, nil
	}

	payload, err := json.Marshal(result.Data())
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(payload)}},
		StructuredContent: result.Data(),
	}, nil
}

// inputSchema builds a JSON schema from a tool descriptor.
func inputSchema(descriptor domain.ToolDescriptor) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{},
	}
	for _, param := range descriptor.Params {
		prop := &jsonschema.Schema{
			Type:        schemaType(param.Type),
			Description: param.Description,
		}
		if param.Default != nil {
			if raw, err := json.Marshal(param.Default); err == nil {
				prop.Default = raw
			}
		}
		schema.Properties[param.Name] = prop
		if param.Required {
			schema.Required = append(schema.Required, param.Name)
		}
	}
	return schema
}

// schemaType maps tool parameter types to JSON schema type names.
func schemaType(t domain.ToolParamType) string {
	switch t {
	case domain.ParamInt:
		return "integer"
	case domain.ParamFloat:
		return "number"
	case domain.ParamBool:
		return "boolean"
	default:
		return "string"
	}
}
