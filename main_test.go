package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		configPath, logLevel = "", ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestReplayCommand(t *testing.T) {
	conf := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(conf, []byte("[log]\nlevel = \"error\"\n"), 0o644))

	out, err := execute(t, "replay", "--config", conf, "internal/replay/testdata/basic.yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "scroll, pause, jump and upload")
	assert.Contains(t, out, `final: active="upload-1"`)
}

func TestReplayCommand_RequiresTrace(t *testing.T) {
	_, err := execute(t, "replay")
	assert.Error(t, err)
}

func TestReplayCommand_MissingTrace(t *testing.T) {
	conf := filepath.Join(t.TempDir(), "none.toml")

	_, err := execute(t, "replay", "--config", conf, "does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load does-not-exist.yaml")
}

func TestDemoCommand_RejectsEmptyFeed(t *testing.T) {
	_, err := execute(t, "demo", "--items", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--items must be positive")
	demoItems = 100
}
