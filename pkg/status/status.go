// Package status classifies manifest destinations without changing them.
package status

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/filesystem"
	"github.com/arthur-debert/dotlink/pkg/logging"
	"github.com/arthur-debert/dotlink/pkg/manifest"
	"github.com/arthur-debert/dotlink/pkg/paths"
	"github.com/rs/zerolog"
)

// State is the installation state of one entry.
type State int

const (
	NotInstalled State = iota
	OK
	Warning
	Error
)

func (s State) String() string {
	switch s {
	case NotInstalled:
		return "NOT_INSTALLED"
	case OK:
		return "OK"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	default:
		return fmt.Sprintf("STATE(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

const (
	MsgNotInstalled  = "Not installed"
	MsgNotSymlinked  = "File exists but not symlinked"
	MsgBrokenSymlink = "Broken symlink"
)

// EntryStatus is the classification of one manifest entry.
type EntryStatus struct {
	Name        string `json:"name"`
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
	State       State  `json:"state"`
	Message     string `json:"message"`
}

// Report holds the status of every manifest entry, in manifest order.
type Report struct {
	Entries      []EntryStatus `json:"entries"`
	Installed    int           `json:"installed"`
	NotInstalled int           `json:"not_installed"`
	Warnings     int           `json:"warnings"`
	Errors       int           `json:"errors"`
}

func (r *Report) add(s EntryStatus) {
	r.Entries = append(r.Entries, s)
	switch s.State {
	case OK:
		r.Installed++
	case NotInstalled:
		r.NotInstalled++
	case Warning:
		r.Warnings++
	case Error:
		r.Errors++
	}
}

// AllOK reports whether every entry is installed correctly. An empty report
// is OK.
func (r *Report) AllOK() bool {
	return r.Installed == len(r.Entries)
}

// Resolver locates sources in the repository and expands destinations.
type Resolver interface {
	paths.Expander
	SourcePath(name string) string
}

// Checker inspects destinations. It never modifies the filesystem.
type Checker struct {
	resolver Resolver
	fs       filesystem.FS
	logger   zerolog.Logger
}

// NewChecker creates a Checker. A nil fsys uses the OS filesystem.
func NewChecker(resolver Resolver, fsys filesystem.FS) *Checker {
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	return &Checker{
		resolver: resolver,
		fs:       fsys,
		logger:   logging.GetLogger("status"),
	}
}

// CheckAll classifies every entry of m.
func (c *Checker) CheckAll(m *manifest.Manifest) *Report {
	done := logging.LogOperationStart(c.logger, "status")
	defer done()

	report := &Report{Entries: []EntryStatus{}}
	for _, entry := range m.Entries() {
		report.add(c.Check(entry))
	}
	return report
}

// Check classifies a single entry.
func (c *Checker) Check(entry manifest.Entry) EntryStatus {
	source := c.resolver.SourcePath(entry.Name)
	st := EntryStatus{Name: entry.Name, Source: source}

	st = c.classify(st, entry)
	c.logger.Debug().
		Str("name", st.Name).
		Str("source", st.Source).
		Str("destination", st.Destination).
		Str("state", st.State.String()).
		Msg(st.Message)
	return st
}

func (c *Checker) classify(st EntryStatus, entry manifest.Entry) EntryStatus {
	if _, err := c.fs.Stat(st.Source); err != nil {
		return with(st, Error, fmt.Sprintf("Source file missing in repo: %s", st.Source))
	}

	destination, err := c.resolver.Expand(entry.Destination)
	if err != nil {
		return with(st, Error, errors.Message(err))
	}
	st.Destination = destination

	info, err := c.fs.Lstat(destination)
	if err != nil {
		if os.IsNotExist(err) {
			return with(st, NotInstalled, MsgNotInstalled)
		}
		return with(st, Error, errors.Message(errors.Wrapf(err, errors.ErrFileAccess, "Cannot inspect %s", destination)))
	}

	if !filesystem.IsSymlink(info) {
		return with(st, Warning, MsgNotSymlinked)
	}

	target, err := c.fs.EvalSymlinks(destination)
	if err != nil {
		return with(st, Error, MsgBrokenSymlink)
	}

	source := st.Source
	if resolved, err := c.fs.EvalSymlinks(source); err == nil {
		source = resolved
	}
	if filepath.Clean(target) == filepath.Clean(source) {
		return with(st, OK, fmt.Sprintf("Installed (symlinked to %s)", st.Source))
	}

	return with(st, Warning, fmt.Sprintf("Symlink points to wrong location: %s", target))
}

func with(st EntryStatus, state State, msg string) EntryStatus {
	st.State = state
	st.Message = msg
	return st
}
