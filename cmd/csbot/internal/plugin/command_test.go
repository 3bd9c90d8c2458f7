package plugin

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPluginsCommand(t *testing.T) {
	path := "csbot.cfg"
	cmd := NewPluginsCommand(&path)

	require.NotNil(t, cmd)
	assert.Equal(t, "plugins", cmd.Use)
	assert.Equal(t, "List built-in plugins", cmd.Short)
	assert.False(t, cmd.HasSubCommands())
	assert.Nil(t, cmd.Run)
	assert.NotNil(t, cmd.RunE)
}

func TestPluginsCommandShowsEnabled(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "csbot.cfg")
	require.NoError(t, os.WriteFile(path, []byte("[DEFAULT]\nplugins = [\"usertrack\", \"meta\"]\n"), 0o644))

	cmd := NewPluginsCommand(&path)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	assert.Equal(t,
		"cron       disabled\n"+
			"meta       enabled (load order 2)\n"+
			"usertrack  enabled (load order 1)\n",
		buf.String())
}

func TestPluginsCommandMissingConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "missing.cfg")

	cmd := NewPluginsCommand(&path)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(nil)
	assert.Error(t, cmd.Execute())
}
