// Package manifest loads the dotfiles manifest: a document whose
// "dotfiles" key maps repository-relative source names to destination
// paths.
//
// The document is validated into an ordered, immutable list of entries at
// load time. Non-string keys or values, duplicates and empty names are
// rejected here rather than surfacing later during path expansion.
package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/filesystem"
	"github.com/arthur-debert/dotlink/pkg/logging"
)

// RootKey is the required top-level key of a manifest document.
const RootKey = "dotfiles"

// Format identifies the manifest document syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the document format from the file extension.
// Anything that is not .toml is read as YAML, which also covers JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Entry is one source name to destination pair.
type Entry struct {
	Name        string `json:"name"`
	Destination string `json:"destination"`
}

// Manifest is the validated source to destination mapping.
type Manifest struct {
	path    string
	entries []Entry
	index   map[string]int
}

// Load reads and validates the manifest at path from the OS filesystem.
func Load(path string) (*Manifest, error) {
	return LoadFS(filesystem.NewOS(), path)
}

// LoadFS reads and validates the manifest at path.
func LoadFS(fsys filesystem.FS, path string) (*Manifest, error) {
	logger := logging.GetLogger("manifest")

	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrManifestNotFound, "Manifest file not found at %s", path).
				WithDetail("path", path)
		}
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "Failed to read manifest %s", path).
			WithDetail("path", path)
	}

	m, err := Parse(data, FormatFromPath(path))
	if err != nil {
		if dotlinkErr, ok := err.(*errors.DotlinkError); ok {
			dotlinkErr.WithDetail("path", path)
		}
		return nil, err
	}
	m.path = path

	logger.Debug().
		Str("path", path).
		Int("entries", m.Len()).
		Msg("Manifest loaded")

	return m, nil
}

// Parse validates a manifest document held in memory.
func Parse(data []byte, format Format) (*Manifest, error) {
	var (
		entries []Entry
		err     error
	)

	switch format {
	case FormatTOML:
		entries, err = parseTOML(data)
	case FormatYAML, "":
		entries, err = parseYAML(data)
	default:
		return nil, errors.Newf(errors.ErrUnknownFormat, "unknown manifest format %q", format)
	}
	if err != nil {
		return nil, err
	}

	return newManifest(entries)
}

// New builds a manifest from entries, applying the same validation as
// Parse. Mostly useful for tests and callers that assemble entries
// themselves.
func New(entries ...Entry) (*Manifest, error) {
	return newManifest(entries)
}

func newManifest(entries []Entry) (*Manifest, error) {
	m := &Manifest{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			return nil, errors.New(errors.ErrManifestInvalid, "Invalid manifest format - empty source name")
		}
		if strings.TrimSpace(e.Destination) == "" {
			return nil, errors.Newf(errors.ErrManifestInvalid, "Invalid manifest format - empty destination for %q", e.Name)
		}
		if _, dup := m.index[e.Name]; dup {
			return nil, errors.Newf(errors.ErrManifestInvalid, "Invalid manifest format - duplicate source name %q", e.Name)
		}
		m.index[e.Name] = len(m.entries)
		m.entries = append(m.entries, e)
	}
	return m, nil
}

// Path is the file the manifest was loaded from, empty for parsed data.
func (m *Manifest) Path() string {
	return m.path
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	return len(m.entries)
}

// Entries returns a copy of the entries in manifest order.
func (m *Manifest) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Names returns the source names in manifest order.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.entries))
	for i, e := range m.entries {
		names[i] = e.Name
	}
	return names
}

// Lookup returns the destination for a source name.
func (m *Manifest) Lookup(name string) (string, bool) {
	i, ok := m.index[name]
	if !ok {
		return "", false
	}
	return m.entries[i].Destination, true
}

// Select returns the entries named in names, in manifest order, and the
// requested names the manifest does not know. No names selects everything.
func (m *Manifest) Select(names []string) ([]Entry, []string) {
	if len(names) == 0 {
		return m.Entries(), nil
	}

	wanted := make(map[string]bool, len(names))
	var missing []string
	for _, name := range names {
		if wanted[name] {
			continue
		}
		wanted[name] = true
		if _, ok := m.index[name]; !ok {
			missing = append(missing, name)
		}
	}

	var selected []Entry
	for _, e := range m.entries {
		if wanted[e.Name] {
			selected = append(selected, e)
		}
	}
	return selected, missing
}
