package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	setupTestServices(t)
	previous := version
	SetVersion("1.2.3")
	t.Cleanup(func() { version = previous })

	out, err := execute(t, "", "version")

	require.NoError(t, err)
	assert.Equal(t, "folio version 1.2.3\n", out)
}

func TestVersionCmd_Verbose(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "version", "--verbose")

	require.NoError(t, err)
	assert.Contains(t, out, "folio version ")
	assert.Contains(t, out, runtime.Version())
}
