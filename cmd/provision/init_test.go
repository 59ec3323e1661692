package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/provision/internal/domain/manifest"
)

func TestInitCommand_UseAndShort(t *testing.T) {
	assert.Equal(t, "init", initCmd.Use)
	assert.Equal(t, "Create a starter manifest", initCmd.Short)
}

func TestInitCommand_HasFlags(t *testing.T) {
	flags := initCmd.Flags()

	t.Run("manifest flag exists", func(t *testing.T) {
		flag := flags.Lookup("manifest")
		require.NotNil(t, flag)
		assert.Equal(t, "provision.yaml", flag.DefValue)
		assert.Equal(t, "m", flag.Shorthand)
	})

	t.Run("force flag exists", func(t *testing.T) {
		flag := flags.Lookup("force")
		require.NotNil(t, flag)
		assert.Equal(t, "false", flag.DefValue)
	})
}

// The starter template must stay loadable, or init would hand users a
// broken file.
func TestStarterManifest_ParsesAndValidates(t *testing.T) {
	m, err := manifest.ParseManifest([]byte(starterManifest))
	require.NoError(t, err)

	assert.Equal(t, []string{"git", "curl"}, m.Packages)
	assert.Empty(t, m.GlobalTools)
	assert.False(t, m.HasDotfiles())

	list := manifest.NewValidator().Validate(m)
	assert.NoError(t, list.AsError())
}

func TestRunInit_WritesManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "provision.yaml")

	originalPath := initManifestPath
	originalForce := initForce
	defer func() {
		initManifestPath = originalPath
		initForce = originalForce
	}()

	initManifestPath = path
	initForce = false

	output := captureStdout(t, func() {
		require.NoError(t, runInit(nil, nil))
	})

	assert.Contains(t, output, "Manifest created: "+path)
	assert.Contains(t, output, "provision plan")

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, starterManifest, string(written))
}

func TestRunInit_RefusesExistingWithoutForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "provision.yaml")
	require.NoError(t, os.WriteFile(path, []byte("packages: [zsh]\n"), 0o644))

	originalPath := initManifestPath
	originalForce := initForce
	defer func() {
		initManifestPath = originalPath
		initForce = originalForce
	}()

	initManifestPath = path
	initForce = false

	output := captureStdout(t, func() {
		require.NoError(t, runInit(nil, nil))
	})

	assert.Contains(t, output, "already exists")

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "packages: [zsh]\n", string(written), "existing manifest must not be touched")
}

func TestRunInit_ForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "provision.yaml")
	require.NoError(t, os.WriteFile(path, []byte("packages: [zsh]\n"), 0o644))

	originalPath := initManifestPath
	originalForce := initForce
	defer func() {
		initManifestPath = originalPath
		initForce = originalForce
	}()

	initManifestPath = path
	initForce = true

	captureStdout(t, func() {
		require.NoError(t, runInit(nil, nil))
	})

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, starterManifest, string(written))
}
