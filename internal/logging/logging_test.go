package logging

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaacrego/plex-poster-display/config"
)

func TestSetup_WritesToFile(t *testing.T) {
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	path := filepath.Join(t.TempDir(), "logs", "poster.log")
	closer, err := Setup(config.LogOptions{File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1})
	require.NoError(t, err)

	log.Printf("[test] hello rotation")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[test] hello rotation")
}

func TestSetup_StdoutOnly(t *testing.T) {
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	closer, err := Setup(config.LogOptions{})
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
}
