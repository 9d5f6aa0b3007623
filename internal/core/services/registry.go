package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/veilchat/recall/internal/core/domain"
	"github.com/veilchat/recall/internal/core/ports/driving"
	"github.com/veilchat/recall/internal/logger"
)

// Ensure ToolRegistryService implements the interface.
var _ driving.ToolRegistry = (*ToolRegistryService)(nil)

// ToolHandler executes a tool against validated arguments. Arguments
// carry defaults filled in and values coerced to the declared types.
type ToolHandler func(ctx context.Context, args map[string]any) domain.ToolResult

// registeredTool pairs a descriptor with its executable body.
type registeredTool struct {
	descriptor domain.ToolDescriptor
	handler    ToolHandler
}

// ToolRegistryService dispatches tool invocations by name. Lookup and
// argument validation happen at the dispatch boundary; range clamping
// of bounded parameters is each tool's own responsibility, applied
// after validation.
type ToolRegistryService struct {
	tools map[string]registeredTool
}

// NewToolRegistryService creates an empty registry.
func NewToolRegistryService() *ToolRegistryService {
	return &ToolRegistryService{tools: make(map[string]registeredTool)}
}

// Register adds a tool. Registering the same name twice replaces the
// earlier registration.
func (s *ToolRegistryService) Register(descriptor domain.ToolDescriptor, handler ToolHandler) {
	s.tools[descriptor.Name] = registeredTool{descriptor: descriptor, handler: handler}
}

// List returns all registered descriptors ordered by name.
func (s *ToolRegistryService) List() []domain.ToolDescriptor {
	descriptors := make([]domain.ToolDescriptor, 0, len(s.tools))
	for _, tool := range s.tools {
		descriptors = append(descriptors, tool.descriptor)
	}
	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Name < descriptors[j].Name
	})
	return descriptors
}

// Invoke validates args against the named tool's parameter specs and
// executes it. Faults never escape to the caller: unknown names,
// invalid parameters, and execution panics all come back as failed
// results.
func (s *ToolRegistryService) Invoke(
	ctx context.Context, name string, args map[string]any,
) (result domain.ToolResult) {
	logger.Debug("Tool invocation: %s %v", name, args)

	tool, ok := s.tools[name]
	if !ok {
		return domain.ToolFailure(domain.ToolErrMethodNotFound, "unknown tool %q", name)
	}

	validated, err := validateArgs(tool.descriptor, args)
	if err != nil {
		return domain.ToolFailure(domain.ToolErrInvalidParams, "%v", err)
	}

	// The dispatcher is the fault boundary: a panicking tool body must
	// surface as a failed result, never as a crash of the caller.
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Tool %s panicked: %v", name, r)
			result = domain.ToolFailure(domain.ToolErrInternal, "tool %s failed: %v", name, r)
		}
	}()

	return tool.handler(ctx, validated)
}

// validateArgs checks presence and types of arguments against the
// parameter specs, substituting defaults for absent optional
// parameters. Unknown extra arguments are passed through untouched.
func validateArgs(descriptor domain.ToolDescriptor, args map[string]any) (map[string]any, error) {
	validated := make(map[string]any, len(args))
	for key, value := range args {
		validated[key] = value
	}

	for _, param := range descriptor.Params {
		value, present := validated[param.Name]
		if !present {
			if param.Default != nil {
				validated[param.Name] = param.Default
				continue
			}
			if param.Required {
				return nil, fmt.Errorf("missing required parameter %q", param.Name)
			}
			continue
		}

		coerced, err := coerceValue(value, param.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %v", param.Name, err)
		}
		validated[param.Name] = coerced
	}

	return validated, nil
}

// coerceValue converts a raw argument to the declared parameter type.
// JSON decoding delivers every number as float64 and front ends may
// send numbers as strings, so numeric types accept both.
func coerceValue(value any, paramType domain.ToolParamType) (any, error) {
	switch paramType {
	case domain.ParamString:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		return s, nil

	case domain.ParamInt:
		switch v := value.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			return int(v), nil
		case string:
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("expected integer, got %q", v)
			}
			return n, nil
		default:
			return nil, fmt.Errorf("expected integer, got %T", value)
		}

	case domain.ParamFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("expected number, got %q", v)
			}
			return f, nil
		default:
			return nil, fmt.Errorf("expected number, got %T", value)
		}

	case domain.ParamBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("expected boolean, got %q", v)
			}
			return b, nil
		default:
			return nil, fmt.Errorf("expected boolean, got %T", value)
		}

	default:
		return nil, fmt.Errorf("unsupported parameter type %q", paramType)
	}
}
