package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexStatusCmd_Executes(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := runCommand(t, "index", "status")
	assert.NoError(t, err)
	assert.Contains(t, out, "Messages:          3")
	assert.Contains(t, out, "Indexed:           3")
}

func TestIndexRunCmd_Executes(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	// Fixture is already indexed, so a pass embeds nothing new.
	out, err := runCommand(t, "index", "run")
	assert.NoError(t, err)
	assert.Contains(t, out, "Indexed 0 messages")
}

func TestIndexRebuildCmd_Executes(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := runCommand(t, "index", "rebuild")
	assert.NoError(t, err)
	assert.Contains(t, out, "Indexed 3 messages")
}

func TestIndexCmd_FailsWithoutServices(t *testing.T) {
	SetServices(nil, nil, nil)

	_, err := runCommand(t, "index", "status")
	assert.Error(t, err)
}
