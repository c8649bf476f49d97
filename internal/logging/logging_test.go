package logging

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestSetupRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Setup(Options{Level: "loud"}))
}

func TestSetupRejectsUnknownFormat(t *testing.T) {
	assert.Error(t, Setup(Options{Level: "info", Format: "xml"}))
}

func TestSetupWritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lunchdesk.log")
	t.Cleanup(func() { log.SetOutput(os.Stdout) })

	require.NoError(t, Setup(Options{Level: "debug", Format: "text", Path: path}))
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	writer, ok := log.StandardLogger().Out.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, path, writer.Filename)

	log.Info("rotation check")
	require.NoError(t, writer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rotation check")
}
