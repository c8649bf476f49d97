package cli_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunchdesk/internal/cli"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func withoutMongo(t *testing.T) {
	t.Helper()
	t.Setenv("MONGO_URI", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("LOG_PATH", "")
	t.Setenv("LOG_LEVEL", "error")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "lunchdesk dev")
}

func TestWindowSetRejectsBadWeek(t *testing.T) {
	_, err := run(t, "window", "set", "--enabled", "--week", "08.07.2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--week")
}

func TestWindowSetRequiresWeekWhenEnabling(t *testing.T) {
	_, err := run(t, "window", "set", "--enabled")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--week is required")
}

func TestWindowCommandsNeedMongo(t *testing.T) {
	withoutMongo(t)

	_, err := run(t, "window", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")

	_, err = run(t, "window", "set", "--enabled=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")
}

func TestServeValidatesConfig(t *testing.T) {
	withoutMongo(t)

	_, err := run(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI is required")
}

func TestExportFlags(t *testing.T) {
	_, err := run(t, "export")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "week")

	_, err = run(t, "export", "--week", "next monday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --week")
}

func TestUnknownCommand(t *testing.T) {
	_, err := run(t, "order")
	assert.Error(t, err)
}
