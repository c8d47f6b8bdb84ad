// Package testutil sets up isolated dotfiles environments for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotlink/pkg/paths"
	"github.com/stretchr/testify/require"
)

// TestEnvironment is a dotfiles repository and a home directory under a
// temp dir, with HOME, DOTFILES_ROOT and the XDG variables pointing at it.
type TestEnvironment struct {
	DotfilesRoot string
	HomeDir      string
	XDGConfig    string
	XDGState     string

	Paths paths.Paths

	t *testing.T
}

// NewTestEnvironment creates the directories and sets the environment for
// the duration of the test.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	tempDir := t.TempDir()
	if resolved, err := filepath.EvalSymlinks(tempDir); err == nil {
		tempDir = resolved
	}

	env := &TestEnvironment{
		DotfilesRoot: filepath.Join(tempDir, "dotfiles"),
		HomeDir:      filepath.Join(tempDir, "home"),
		XDGConfig:    filepath.Join(tempDir, "home", ".config"),
		XDGState:     filepath.Join(tempDir, "home", ".local", "state"),
		t:            t,
	}

	for _, dir := range []string{env.DotfilesRoot, env.HomeDir, env.XDGConfig, env.XDGState} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}

	t.Setenv(paths.EnvDotfilesRoot, env.DotfilesRoot)
	t.Setenv(paths.EnvHome, env.HomeDir)
	t.Setenv("XDG_CONFIG_HOME", env.XDGConfig)
	t.Setenv("XDG_STATE_HOME", env.XDGState)
	for _, key := range []string{"DOTLINK_ROOT", "DOTLINK_MANIFEST", "DOTLINK_FORMAT", "DOTLINK_NAME_WIDTH", "NO_COLOR"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	p, err := paths.New(env.DotfilesRoot)
	require.NoError(t, err)
	env.Paths = p

	return env
}

// WriteSource creates a file in the repository and returns its path.
func (env *TestEnvironment) WriteSource(name, content string) string {
	env.t.Helper()
	return env.write(filepath.Join(env.DotfilesRoot, name), content)
}

// WriteManifest writes dotfiles.yaml (or name, when given) to the
// repository root.
func (env *TestEnvironment) WriteManifest(content string, name ...string) string {
	env.t.Helper()
	file := paths.DefaultManifest
	if len(name) > 0 {
		file = name[0]
	}
	return env.write(filepath.Join(env.DotfilesRoot, file), content)
}

// WriteHomeFile creates a regular file under the home directory.
func (env *TestEnvironment) WriteHomeFile(rel, content string) string {
	env.t.Helper()
	return env.write(env.Home(rel), content)
}

// SymlinkHome creates a symlink under the home directory pointing at target.
func (env *TestEnvironment) SymlinkHome(rel, target string) string {
	env.t.Helper()
	link := env.Home(rel)
	require.NoError(env.t, os.MkdirAll(filepath.Dir(link), 0755))
	require.NoError(env.t, os.Symlink(target, link))
	return link
}

// Home returns rel joined to the home directory.
func (env *TestEnvironment) Home(rel string) string {
	return filepath.Join(env.HomeDir, rel)
}

// Source returns name joined to the repository root.
func (env *TestEnvironment) Source(name string) string {
	return filepath.Join(env.DotfilesRoot, name)
}

func (env *TestEnvironment) write(path, content string) string {
	env.t.Helper()
	require.NoError(env.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(env.t, os.WriteFile(path, []byte(content), 0644))
	return path
}
