package install_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotlink/pkg/confirm"
	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/filesystem"
	"github.com/arthur-debert/dotlink/pkg/install"
	"github.com/arthur-debert/dotlink/pkg/manifest"
	"github.com/arthur-debert/dotlink/pkg/paths"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repo     string
	home     string
	resolver paths.Paths
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := t.TempDir()
	home := t.TempDir()
	t.Setenv(paths.EnvHome, home)

	p, err := paths.New(repo)
	require.NoError(t, err)

	return &fixture{repo: p.Root(), home: home, resolver: p}
}

func (f *fixture) source(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.repo, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (f *fixture) dest(name string) string {
	return filepath.Join(f.home, name)
}

func (f *fixture) installer(opts install.Options) *install.Installer {
	if opts.Confirmer == nil {
		opts.Confirmer = confirm.NewScripted()
	}
	return install.New(f.resolver, opts)
}

func assertLinked(t *testing.T, dest, source string) {
	t.Helper()
	info, err := os.Lstat(dest)
	require.NoError(t, err)
	require.True(t, filesystem.IsSymlink(info), "%s should be a symlink", dest)
	target, err := os.Readlink(dest)
	require.NoError(t, err)
	assert.Equal(t, source, target)
}

func TestInstallCreatesSymlink(t *testing.T) {
	f := newFixture(t)
	src := f.source(t, "bashrc", "export A=1")

	result := f.installer(install.Options{}).Install(manifest.Entry{Name: "bashrc", Destination: "~/.bashrc"})

	assert.Equal(t, install.Success, result.Outcome)
	assert.Equal(t, "Installed (symlinked to "+src+")", result.Message)
	assert.Equal(t, f.dest(".bashrc"), result.Destination)
	assertLinked(t, f.dest(".bashrc"), src)
}

func TestInstallCreatesParentDirectories(t *testing.T) {
	f := newFixture(t)
	src := f.source(t, "i3/config", "bar {}")

	result := f.installer(install.Options{}).Install(manifest.Entry{Name: "i3/config", Destination: "~/.config/i3/config"})

	assert.Equal(t, install.Success, result.Outcome)
	assertLinked(t, f.dest(".config/i3/config"), src)
}

func TestInstallIsIdempotent(t *testing.T) {
	f := newFixture(t)
	src := f.source(t, "vimrc", "set nu")
	entry := manifest.Entry{Name: "vimrc", Destination: "~/.vimrc"}
	confirmer := confirm.NewScripted()
	inst := f.installer(install.Options{Confirmer: confirmer})

	first := inst.Install(entry)
	require.Equal(t, install.Success, first.Outcome)

	second := inst.Install(entry)
	assert.Equal(t, install.Success, second.Outcome)
	assert.Equal(t, install.MsgAlreadyInstalled, second.Message)
	assert.Empty(t, confirmer.Requests, "no prompt for a correct link")
	assertLinked(t, f.dest(".vimrc"), src)
}

func TestInstallSourceMissing(t *testing.T) {
	f := newFixture(t)

	result := f.installer(install.Options{}).Install(manifest.Entry{Name: "gone", Destination: "~/.gone"})

	assert.Equal(t, install.Failed, result.Outcome)
	assert.True(t, errors.IsErrorCode(result.Err, errors.ErrSourceNotFound))
	assert.Contains(t, result.Message, filepath.Join(f.repo, "gone"))
	_, err := os.Lstat(f.dest(".gone"))
	assert.True(t, os.IsNotExist(err), "nothing is created for a missing source")
}

func TestInstallExistingFile(t *testing.T) {
	tests := []struct {
		name        string
		force       bool
		dryRun      bool
		answers     []bool
		wantOutcome install.Outcome
		wantMessage func(dest, src string) string
		wantLinked  bool
		wantPrompts int
	}{
		{
			name:        "declined",
			answers:     []bool{false},
			wantOutcome: install.Skipped,
			wantMessage: func(string, string) string { return install.MsgSkippedByUser },
			wantPrompts: 1,
		},
		{
			name:        "accepted",
			answers:     []bool{true},
			wantOutcome: install.Success,
			wantMessage: func(_, src string) string { return "Installed (symlinked to " + src + ")" },
			wantLinked:  true,
			wantPrompts: 1,
		},
		{
			name:        "forced",
			force:       true,
			wantOutcome: install.Success,
			wantMessage: func(_, src string) string { return "Installed (symlinked to " + src + ")" },
			wantLinked:  true,
		},
		{
			name:        "dry run",
			dryRun:      true,
			wantOutcome: install.Success,
			wantMessage: func(string, string) string { return install.MsgWouldPrompt },
		},
		{
			name:        "dry run forced",
			dryRun:      true,
			force:       true,
			wantOutcome: install.Success,
			wantMessage: func(dest, src string) string {
				return "Would create symlink: " + dest + " -> " + src
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			src := f.source(t, "gitconfig", "[user]")
			dest := f.dest(".gitconfig")
			require.NoError(t, os.WriteFile(dest, []byte("local"), 0644))

			confirmer := confirm.NewScripted(tt.answers...)
			result := f.installer(install.Options{
				Force:     tt.force,
				DryRun:    tt.dryRun,
				Confirmer: confirmer,
			}).Install(manifest.Entry{Name: "gitconfig", Destination: "~/.gitconfig"})

			assert.Equal(t, tt.wantOutcome, result.Outcome)
			assert.Equal(t, tt.wantMessage(dest, src), result.Message)
			assert.Len(t, confirmer.Requests, tt.wantPrompts)

			if tt.wantLinked {
				assertLinked(t, dest, src)
				return
			}
			content, err := os.ReadFile(dest)
			require.NoError(t, err, "existing file must survive")
			assert.Equal(t, "local", string(content))
		})
	}
}

func TestInstallWrongSymlink(t *testing.T) {
	f := newFixture(t)
	src := f.source(t, "zshrc", "setopt")
	other := filepath.Join(t.TempDir(), "other-zshrc")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	dest := f.dest(".zshrc")
	require.NoError(t, os.Symlink(other, dest))

	confirmer := confirm.NewScripted(true)
	result := f.installer(install.Options{Confirmer: confirmer}).Install(manifest.Entry{Name: "zshrc", Destination: "~/.zshrc"})

	assert.Equal(t, install.Success, result.Outcome)
	require.Len(t, confirmer.Requests, 1)
	assert.Equal(t, confirm.ReasonExistingFile, confirmer.Requests[0].Reason)
	assertLinked(t, dest, src)

	_, err := os.Stat(other)
	assert.NoError(t, err, "the old link target is untouched")
}

func TestInstallWrongSymlinkDryRunForced(t *testing.T) {
	f := newFixture(t)
	src := f.source(t, "zshrc", "setopt")
	other := filepath.Join(t.TempDir(), "other-zshrc")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	dest := f.dest(".zshrc")
	require.NoError(t, os.Symlink(other, dest))

	confirmer := confirm.NewScripted()
	result := f.installer(install.Options{DryRun: true, Force: true, Confirmer: confirmer}).
		Install(manifest.Entry{Name: "zshrc", Destination: "~/.zshrc"})

	assert.Equal(t, install.Success, result.Outcome)
	assert.Equal(t, "Would create symlink: "+dest+" -> "+src, result.Message)
	assert.Empty(t, confirmer.Requests)
	assertLinked(t, dest, other)
}

func TestInstallBrokenSymlink(t *testing.T) {
	setup := func(t *testing.T) (*fixture, string, string) {
		f := newFixture(t)
		src := f.source(t, "profile", "umask 022")
		dest := f.dest(".profile")
		require.NoError(t, os.Symlink(filepath.Join(t.TempDir(), "vanished"), dest))
		return f, src, dest
	}
	entry := manifest.Entry{Name: "profile", Destination: "~/.profile"}

	t.Run("accepted prompts once", func(t *testing.T) {
		f, src, dest := setup(t)
		confirmer := confirm.NewScripted(true)

		result := f.installer(install.Options{Confirmer: confirmer}).Install(entry)

		assert.Equal(t, install.Success, result.Outcome)
		require.Len(t, confirmer.Requests, 1)
		assert.Equal(t, confirm.ReasonBrokenSymlink, confirmer.Requests[0].Reason)
		assertLinked(t, dest, src)
	})

	t.Run("declined", func(t *testing.T) {
		f, _, dest := setup(t)

		result := f.installer(install.Options{Confirmer: confirm.NewScripted(false)}).Install(entry)

		assert.Equal(t, install.Skipped, result.Outcome)
		assert.Equal(t, install.MsgSkippedByUser, result.Message)
		info, err := os.Lstat(dest)
		require.NoError(t, err)
		assert.True(t, filesystem.IsSymlink(info), "broken link left in place")
	})

	t.Run("forced", func(t *testing.T) {
		f, src, dest := setup(t)
		confirmer := confirm.NewScripted()

		result := f.installer(install.Options{Force: true, Confirmer: confirmer}).Install(entry)

		assert.Equal(t, install.Success, result.Outcome)
		assert.Empty(t, confirmer.Requests)
		assertLinked(t, dest, src)
	})

	t.Run("dry run", func(t *testing.T) {
		f, _, dest := setup(t)
		before, err := os.Readlink(dest)
		require.NoError(t, err)

		result := f.installer(install.Options{DryRun: true}).Install(entry)

		assert.Equal(t, install.Success, result.Outcome)
		assert.Equal(t, install.MsgWouldRemoveBroken, result.Message)
		after, err := os.Readlink(dest)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestInstallDestinationIsDirectory(t *testing.T) {
	f := newFixture(t)
	f.source(t, "nvim", "init")
	dest := f.dest(".config/nvim")
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "lua"), 0755))

	for _, force := range []bool{false, true} {
		result := f.installer(install.Options{Force: force, Confirmer: confirm.Always(true)}).
			Install(manifest.Entry{Name: "nvim", Destination: "~/.config/nvim"})

		assert.Equal(t, install.Failed, result.Outcome)
		assert.True(t, errors.IsErrorCode(result.Err, errors.ErrDestinationIsDir))
		assert.Equal(t, "Destination is a directory: "+dest, result.Message)

		info, err := os.Stat(filepath.Join(dest, "lua"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestInstallDryRunDoesNotTouchDisk(t *testing.T) {
	f := newFixture(t)
	src := f.source(t, "bashrc", "x")

	result := f.installer(install.Options{DryRun: true}).Install(manifest.Entry{Name: "bashrc", Destination: "~/.config/bash/bashrc"})

	dest := f.dest(".config/bash/bashrc")
	assert.Equal(t, install.Success, result.Outcome)
	assert.Equal(t, "Would create symlink: "+dest+" -> "+src, result.Message)
	_, err := os.Lstat(filepath.Dir(dest))
	assert.True(t, os.IsNotExist(err), "parent directories are not created")
}

func TestInstallConfirmerError(t *testing.T) {
	f := newFixture(t)
	f.source(t, "bashrc", "x")
	require.NoError(t, os.WriteFile(f.dest(".bashrc"), []byte("local"), 0644))

	result := f.installer(install.Options{
		Confirmer: confirm.Func(func(confirm.Request) (bool, error) {
			return false, os.ErrClosed
		}),
	}).Install(manifest.Entry{Name: "bashrc", Destination: "~/.bashrc"})

	assert.Equal(t, install.Failed, result.Outcome)
	assert.True(t, errors.IsErrorCode(result.Err, errors.ErrPrompt))
	content, err := os.ReadFile(f.dest(".bashrc"))
	require.NoError(t, err)
	assert.Equal(t, "local", string(content))
}

// mockFS wraps the OS filesystem and lets tests override Symlink.
type mockFS struct {
	filesystem.FS
	mock.Mock
}

func (m *mockFS) Symlink(oldname, newname string) error {
	args := m.Called(oldname, newname)
	return args.Error(0)
}

func TestInstallSymlinkFailure(t *testing.T) {
	f := newFixture(t)
	src := f.source(t, "bashrc", "x")

	fsys := &mockFS{FS: filesystem.NewOS()}
	fsys.On("Symlink", src, f.dest(".bashrc")).Return(os.ErrPermission)

	result := f.installer(install.Options{FileSystem: fsys}).Install(manifest.Entry{Name: "bashrc", Destination: "~/.bashrc"})

	assert.Equal(t, install.Failed, result.Outcome)
	assert.True(t, errors.IsErrorCode(result.Err, errors.ErrSymlinkCreate))
	assert.Contains(t, result.Message, "Failed to create symlink")
	fsys.AssertExpectations(t)
}

type recorder struct {
	events []string
	plan   install.Plan
	final  *install.Summary
}

func (r *recorder) RunStarted(plan install.Plan) {
	r.plan = plan
	r.events = append(r.events, "start")
}

func (r *recorder) EntryStarted(entry manifest.Entry) {
	r.events = append(r.events, "begin:"+entry.Name)
}

func (r *recorder) EntryFinished(result install.Result) {
	r.events = append(r.events, "end:"+result.Name+":"+result.Outcome.String())
}

func (r *recorder) RunFinished(summary *install.Summary) {
	r.final = summary
	r.events = append(r.events, "finish")
}

func TestRun(t *testing.T) {
	f := newFixture(t)
	f.source(t, "bashrc", "x")
	f.source(t, "vimrc", "x")
	require.NoError(t, os.WriteFile(f.dest(".vimrc"), []byte("local"), 0644))

	m, err := manifest.New(
		manifest.Entry{Name: "bashrc", Destination: "~/.bashrc"},
		manifest.Entry{Name: "vimrc", Destination: "~/.vimrc"},
		manifest.Entry{Name: "missing", Destination: "~/.missing"},
	)
	require.NoError(t, err)

	rec := &recorder{}
	summary := f.installer(install.Options{
		Confirmer: confirm.NewScripted(false),
		Observer:  rec,
	}).Run(m, nil)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Skipped)
	assert.True(t, summary.HasFailures())
	assert.Len(t, summary.Results, 3)

	assert.Equal(t, []string{
		"start",
		"begin:bashrc", "end:bashrc:success",
		"begin:vimrc", "end:vimrc:skipped",
		"begin:missing", "end:missing:failed",
		"finish",
	}, rec.events)
	assert.Same(t, summary, rec.final)
	assert.Len(t, rec.plan.Entries, 3)
}

func TestRunSelectedNames(t *testing.T) {
	f := newFixture(t)
	f.source(t, "bashrc", "x")
	f.source(t, "vimrc", "x")

	m, err := manifest.New(
		manifest.Entry{Name: "bashrc", Destination: "~/.bashrc"},
		manifest.Entry{Name: "vimrc", Destination: "~/.vimrc"},
	)
	require.NoError(t, err)

	summary := f.installer(install.Options{}).Run(m, []string{"vimrc", "zshrc"})

	assert.Equal(t, []string{"zshrc"}, summary.Missing)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, "vimrc", summary.Results[0].Name)
	assert.False(t, summary.HasFailures(), "unknown names are not failures")

	_, err = os.Lstat(f.dest(".bashrc"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunOnlySkipsIsNotFailure(t *testing.T) {
	f := newFixture(t)
	f.source(t, "bashrc", "x")
	require.NoError(t, os.WriteFile(f.dest(".bashrc"), []byte("local"), 0644))

	m, err := manifest.New(manifest.Entry{Name: "bashrc", Destination: "~/.bashrc"})
	require.NoError(t, err)

	summary := f.installer(install.Options{Confirmer: confirm.Always(false)}).Run(m, nil)

	assert.Equal(t, 1, summary.Skipped)
	assert.False(t, summary.HasFailures())
}

func TestRunLogsOutcomesBelowWarn(t *testing.T) {
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.WarnLevel)
	t.Cleanup(func() { log.Logger = previous })

	f := newFixture(t)
	m, err := manifest.New(manifest.Entry{Name: "gone", Destination: "~/.gone"})
	require.NoError(t, err)

	summary := f.installer(install.Options{}).Run(m, []string{"gone", "zshrc"})

	assert.Equal(t, 1, summary.Failed)
	assert.Empty(t, buf.String(), "the report already shows failures and unknown names")
}
