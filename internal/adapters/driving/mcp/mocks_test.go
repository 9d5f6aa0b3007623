package mcp

import (
	"context"

	"github.com/veilchat/recall/internal/core/domain"
	"github.com/veilchat/recall/internal/core/ports/driving"
)

// mockRegistry implements driving.ToolRegistry for testing.
type mockRegistry struct {
	descriptors []domain.ToolDescriptor
	result      domain.ToolResult
	invoked     string
	args        map[string]any
}

var _ driving.ToolRegistry = (*mockRegistry)(nil)

func (m *mockRegistry) List() []domain.ToolDescriptor {
	return m.descriptors
}

func (m *mockRegistry) Invoke(_ context.Context, name string, args map[string]any) domain.ToolResult {
	m.invoked = name
	m.args = args
	return m.result
}

// mockIndexer implements driving.Indexer for testing.
type mockIndexer struct {
	status *domain.IndexStatus
	err    error
}

var _ driving.Indexer = (*mockIndexer)(nil)

func (m *mockIndexer) RunPass(_ context.Context, _ int, _ driving.ProgressFunc) (*domain.TaskResult, error) {
	return &domain.TaskResult{}, nil
}

func (m *mockIndexer) Reindex(_ context.Context, _ int, _ driving.ProgressFunc) (*domain.TaskResult, error) {
	return &domain.TaskResult{}, nil
}

func (m *mockIndexer) Status(_ context.Context) (*domain.IndexStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.status, nil
}
