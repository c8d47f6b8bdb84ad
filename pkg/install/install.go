// Package install reconciles manifest destinations with their sources by
// creating symbolic links.
//
// Each entry is handled on its own: a missing source or a failed link is
// reported for that entry and the run moves on. Anything already at a
// destination is only removed with Force or after the Confirmer approves.
package install

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotlink/pkg/confirm"
	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/filesystem"
	"github.com/arthur-debert/dotlink/pkg/logging"
	"github.com/arthur-debert/dotlink/pkg/manifest"
	"github.com/arthur-debert/dotlink/pkg/paths"
	"github.com/rs/zerolog"
)

// Messages reported for entries that did not fail.
const (
	MsgAlreadyInstalled  = "Already installed (symlink correct)"
	MsgWouldRemoveBroken = "Would remove broken symlink"
	MsgWouldPrompt       = "Would prompt to overwrite existing file"
	MsgSkippedByUser     = "Skipped by user"
	MsgWouldCreateFormat = "Would create symlink: %s -> %s"
	MsgInstalledFormat   = "Installed (symlinked to %s)"
)

const dirPerm = 0755

// Resolver locates sources in the repository and expands destinations.
// paths.Paths satisfies it.
type Resolver interface {
	paths.Expander
	SourcePath(name string) string
}

// Options configures an Installer.
type Options struct {
	// DryRun reports what would happen without touching the filesystem
	DryRun bool

	// Force replaces existing destinations without asking
	Force bool

	// FileSystem to use (defaults to OS filesystem)
	FileSystem filesystem.FS

	// Confirmer is asked before anything is removed (defaults to a
	// console prompt on stdin/stdout)
	Confirmer confirm.Confirmer

	// Observer follows the run (optional)
	Observer Observer
}

// Installer creates the symlinks described by a manifest.
type Installer struct {
	resolver  Resolver
	fs        filesystem.FS
	confirmer confirm.Confirmer
	observer  Observer
	dryRun    bool
	force     bool
	logger    zerolog.Logger
}

// New creates an Installer.
func New(resolver Resolver, opts Options) *Installer {
	if opts.FileSystem == nil {
		opts.FileSystem = filesystem.NewOS()
	}
	if opts.Confirmer == nil {
		opts.Confirmer = confirm.NewConsole(os.Stdin, os.Stdout)
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}

	return &Installer{
		resolver:  resolver,
		fs:        opts.FileSystem,
		confirmer: opts.Confirmer,
		observer:  opts.Observer,
		dryRun:    opts.DryRun,
		force:     opts.Force,
		logger:    logging.GetLogger("install"),
	}
}

// Run installs the named entries of m, or all of them when names is empty.
// Names the manifest does not know are reported and ignored.
func (i *Installer) Run(m *manifest.Manifest, names []string) *Summary {
	done := logging.LogOperationStart(i.logger, "install")
	defer done()

	entries, missing := m.Select(names)
	if len(missing) > 0 {
		i.logger.Debug().Strs("names", missing).Msg("Files not in manifest")
	}

	summary := &Summary{DryRun: i.dryRun, Missing: missing}
	i.observer.RunStarted(Plan{DryRun: i.dryRun, Entries: entries, Missing: missing})

	for _, entry := range entries {
		i.observer.EntryStarted(entry)
		result := i.Install(entry)
		summary.add(result)
		i.observer.EntryFinished(result)
	}

	i.logger.Info().
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Bool("dryRun", i.dryRun).
		Msg("Install finished")

	i.observer.RunFinished(summary)
	return summary
}

// Install reconciles a single entry.
func (i *Installer) Install(entry manifest.Entry) Result {
	logger := i.logger.With().Str("name", entry.Name).Logger()

	source := i.resolver.SourcePath(entry.Name)
	result := Result{Name: entry.Name, Source: source}

	if _, err := i.fs.Stat(source); err != nil {
		return i.fail(logger, result, errors.Newf(errors.ErrSourceNotFound, "Source file not found: %s", source))
	}

	destination, err := i.resolver.Expand(entry.Destination)
	if err != nil {
		return i.fail(logger, result, err)
	}
	result.Destination = destination
	logger = logger.With().Str("source", source).Str("destination", destination).Logger()

	info, err := i.fs.Lstat(destination)
	switch {
	case err != nil && os.IsNotExist(err):
		logger.Debug().Msg("Destination absent")
		return i.link(logger, result)

	case err != nil:
		return i.fail(logger, result, errors.Wrapf(err, errors.ErrFileAccess, "Cannot inspect %s", destination))

	case filesystem.IsSymlink(info):
		target, err := i.fs.EvalSymlinks(destination)
		if err != nil {
			logger.Debug().Err(err).Msg("Destination is a broken symlink")
			return i.replaceBroken(logger, result)
		}
		if i.sameFile(target, source) {
			return i.succeed(logger, result, MsgAlreadyInstalled)
		}
		logger.Debug().Str("target", target).Msg("Destination links elsewhere")
		return i.replace(logger, result)

	case info.IsDir():
		return i.fail(logger, result, errors.Newf(errors.ErrDestinationIsDir, "Destination is a directory: %s", destination))

	default:
		logger.Debug().Msg("Destination is an existing file")
		return i.replace(logger, result)
	}
}

// replaceBroken removes a dangling symlink, asking first unless forced,
// then links.
func (i *Installer) replaceBroken(logger zerolog.Logger, result Result) Result {
	if i.dryRun {
		return i.succeed(logger, result, MsgWouldRemoveBroken)
	}

	if !i.force {
		approved, err := i.ask(result, confirm.ReasonBrokenSymlink)
		if err != nil {
			return i.fail(logger, result, err)
		}
		if !approved {
			return i.skip(logger, result)
		}
	}

	if err := i.fs.Remove(result.Destination); err != nil {
		return i.fail(logger, result, errors.Wrapf(err, errors.ErrFileRemove, "Failed to remove broken symlink %s", result.Destination))
	}
	logger.Info().Msg("Removed broken symlink")

	return i.link(logger, result)
}

// replace removes a file or a symlink pointing elsewhere, asking first
// unless forced, then links.
func (i *Installer) replace(logger zerolog.Logger, result Result) Result {
	if i.dryRun {
		if !i.force {
			return i.succeed(logger, result, MsgWouldPrompt)
		}
		return i.link(logger, result)
	}

	if !i.force {
		approved, err := i.ask(result, confirm.ReasonExistingFile)
		if err != nil {
			return i.fail(logger, result, err)
		}
		if !approved {
			return i.skip(logger, result)
		}
	}

	if err := i.fs.Remove(result.Destination); err != nil {
		return i.fail(logger, result, errors.Wrapf(err, errors.ErrFileRemove, "Failed to remove %s", result.Destination))
	}
	logger.Info().Msg("Removed existing destination")

	return i.link(logger, result)
}

// link creates parent directories and the symlink itself.
func (i *Installer) link(logger zerolog.Logger, result Result) Result {
	if i.dryRun {
		return i.succeed(logger, result, fmt.Sprintf(MsgWouldCreateFormat, result.Destination, result.Source))
	}

	if err := i.fs.MkdirAll(filepath.Dir(result.Destination), dirPerm); err != nil {
		return i.fail(logger, result, errors.Wrap(err, errors.ErrDirCreate, "Failed to create symlink"))
	}

	if err := i.fs.Symlink(result.Source, result.Destination); err != nil {
		return i.fail(logger, result, errors.Wrap(err, errors.ErrSymlinkCreate, "Failed to create symlink"))
	}

	return i.succeed(logger, result, fmt.Sprintf(MsgInstalledFormat, result.Source))
}

func (i *Installer) ask(result Result, reason confirm.Reason) (bool, error) {
	approved, err := i.confirmer.Confirm(confirm.Request{
		Name:        result.Name,
		Destination: result.Destination,
		Reason:      reason,
	})
	if err != nil && !errors.IsErrorCode(err, errors.ErrPrompt) {
		err = errors.Wrap(err, errors.ErrPrompt, "Confirmation failed")
	}
	return approved, err
}

// sameFile compares a resolved link target with the source, resolving the
// source as well so that symlinked repository paths still match.
func (i *Installer) sameFile(target, source string) bool {
	if resolved, err := i.fs.EvalSymlinks(source); err == nil {
		source = resolved
	}
	return filepath.Clean(target) == filepath.Clean(source)
}

func (i *Installer) succeed(logger zerolog.Logger, result Result, msg string) Result {
	result.Outcome = Success
	result.Message = msg
	logger.Debug().Str("outcome", result.Outcome.String()).Msg(msg)
	return result
}

func (i *Installer) skip(logger zerolog.Logger, result Result) Result {
	result.Outcome = Skipped
	result.Message = MsgSkippedByUser
	logger.Info().Str("outcome", result.Outcome.String()).Msg("Declined by user")
	return result
}

func (i *Installer) fail(logger zerolog.Logger, result Result, err error) Result {
	result.Outcome = Failed
	result.Message = errors.Message(err)
	result.Err = err
	logger.Debug().Err(err).Str("outcome", result.Outcome.String()).Msg("Install failed")
	return result
}
