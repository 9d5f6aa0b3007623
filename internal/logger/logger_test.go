package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withBuffer(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(nil)
		SetVerbose(false)
	})
	return &buf
}

func TestDebugSuppressedWhenQuiet(t *testing.T) {
	buf := withBuffer(t)
	SetVerbose(false)

	Debug("hidden %d", 1)
	assert.Empty(t, buf.String())
}

func TestDebugPrintedWhenVerbose(t *testing.T) {
	buf := withBuffer(t)
	SetVerbose(true)

	Debug("visible %d", 2)
	assert.Equal(t, "[DEBUG] visible 2\n", buf.String())
}

func TestErrorAlwaysPrinted(t *testing.T) {
	buf := withBuffer(t)
	SetVerbose(false)

	Error("broke: %s", "disk")
	assert.Equal(t, "[ERROR] broke: disk\n", buf.String())
}

func TestSection(t *testing.T) {
	buf := withBuffer(t)
	SetVerbose(true)

	Section("Indexing")
	assert.Contains(t, buf.String(), "=== Indexing ===")
}
