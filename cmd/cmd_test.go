package cmd

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"twindex"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestExecuteUnknownCommand(t *testing.T) {
	withArgs(t, "frobnicate")
	err := Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestExecuteHelpAndVersion(t *testing.T) {
	for _, arg := range []string{"help", "--help", "-h", "version", "--version", "-v"} {
		withArgs(t, arg)
		assert.NoError(t, Execute(), "arg %q", arg)
	}
}

func TestExecuteNoArgsShowsHelp(t *testing.T) {
	withArgs(t)
	assert.NoError(t, Execute())
}

func TestParseServeAddrPositional(t *testing.T) {
	withArgs(t, "serve", ":9000")
	addr, err := parseServeAddr()
	require.NoError(t, err)
	assert.Equal(t, ":9000", addr)
}

func TestParseServeAddrFlag(t *testing.T) {
	withArgs(t, "serve", "--addr", "localhost:9001")
	addr, err := parseServeAddr()
	require.NoError(t, err)
	assert.Equal(t, "localhost:9001", addr)
}

func TestParseServeAddrDefault(t *testing.T) {
	withArgs(t, "serve")
	addr, err := parseServeAddr()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8000", addr)
}

func TestParseServeAddrInvalid(t *testing.T) {
	withArgs(t, "serve", "not-an-addr")
	_, err := parseServeAddr()
	assert.Error(t, err)
}

func TestAcquireMigrateLockBlocksSecondHolder(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	unlock, err := acquireMigrateLock()
	require.NoError(t, err)
	defer unlock()

	_, err = acquireMigrateLock()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}
