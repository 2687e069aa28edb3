package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigReadsFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("metadata:\n  sqlite:\n    path: /data/catalog.db\n"), 0644))

	require.NoError(t, initConfig(path))
	assert.Equal(t, "/data/catalog.db", viper.GetString("metadata.sqlite.path"))
}

func TestInitConfigReadsEnvironment(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("MEDIACAT_AGENT_CLEAN_INTERVAL", "15m")

	require.NoError(t, initConfig(""))
	assert.Equal(t, "15m", viper.GetString("agent.clean_interval"))
}

func TestInitConfigRejectsBrokenFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("metadata: [unclosed"), 0644))

	assert.Error(t, initConfig(path))
}

func TestVersionCommand(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := NewRootCommand(VersionInfo{Version: "1.2.3", Commit: "abc"})
	root.AddCommand(NewVersionCommand())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "mediacat 1.2.3.abc")
}
