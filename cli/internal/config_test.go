package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigCreatesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.CurrentContext)

	url, err := cfg.ServerURL()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", url)

	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestConfigContexts(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	staging := &Context{}
	staging.Server.URL = "https://staging.example.com"
	staging.Server.GRPC = "staging.example.com:443"
	cfg.AddContext("staging", staging)
	require.NoError(t, cfg.SetCurrentContext("staging"))
	require.NoError(t, SaveConfig(cfg))

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "staging", loaded.CurrentContext)
	current, err := loaded.GetCurrentContext()
	require.NoError(t, err)
	assert.Equal(t, "staging.example.com:443", current.GRPCAddress())

	assert.Error(t, loaded.DeleteContext("staging"), "current context cannot be deleted")
	assert.Error(t, loaded.SetCurrentContext("missing"))
	require.NoError(t, loaded.DeleteContext("prod"))

	empty := &Context{}
	loaded.AddContext("empty", empty)
	require.NoError(t, loaded.SetCurrentContext("empty"))
	_, err = loaded.ServerURL()
	assert.Error(t, err)

	path, err := credentialsPath("staging")
	require.NoError(t, err)
	assert.Contains(t, path, "credentials-staging.json")
}
