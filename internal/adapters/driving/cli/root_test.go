package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_HasCommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{
		"upload", "batch", "document", "search", "stats", "chat",
		"cleanup", "backup", "serve", "watch", "mcp", "settings", "tui", "version",
	} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	if assert.NotNil(t, flag) {
		assert.Equal(t, "v", flag.Shorthand)
	}
}

func TestCommands_WithoutServices(t *testing.T) {
	SetServices(Services{})
	tests := [][]string{
		{"upload", "a.pdf"},
		{"batch", "a.pdf"},
		{"document", "list"},
		{"search", "x"},
		{"stats"},
		{"chat", "doc-1", "hi"},
		{"cleanup"},
		{"backup"},
		{"serve"},
		{"watch", "."},
		{"settings", "show"},
		{"tui"},
	}
	for _, args := range tests {
		t.Run(args[0], func(t *testing.T) {
			_, err := execute(t, "", args...)
			assert.Error(t, err)
		})
	}
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "512 B", humanBytes(512))
	assert.Equal(t, "2.0 KiB", humanBytes(2048))
	assert.Equal(t, "100.0 MiB", humanBytes(100<<20))
}

func TestMCPServe_RejectsBadPort(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "mcp", "serve", "--port", "70000")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}
