package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToolsListCmd_Executes(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := runCommand(t, "tools", "list")
	assert.NoError(t, err)
	assert.Contains(t, out, "search_messages")
	assert.Contains(t, out, "query [string] (required)")
}

func TestToolsCallCmd_Executes(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := runCommand(t, "tools", "call", "index_status")
	assert.NoError(t, err)
	assert.Contains(t, out, `"success": true`)
}

func TestToolsCallCmd_UnknownTool(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := runCommand(t, "tools", "call", "nope")
	assert.Error(t, err)
	assert.Contains(t, out, "METHOD_NOT_FOUND")
}

func TestToolsCallCmd_BadArgsJSON(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := runCommand(t, "tools", "call", "index_status", "--args", "{not json")
	assert.Error(t, err)

	// Reset the flag for other tests.
	toolArgsJSON = "{}"
}
