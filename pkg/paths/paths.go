package paths

import (
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/logging"
)

// Environment variable names
const (
	// EnvDotfilesRoot locates the dotfiles repository
	EnvDotfilesRoot = "DOTFILES_ROOT"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// DefaultManifest is the manifest file name looked up in the repository
const DefaultManifest = "dotfiles.yaml"

// Expander turns a raw destination from the manifest into an absolute path.
type Expander interface {
	Expand(raw string) (string, error)
}

// Paths resolves everything dotlink needs to locate on disk.
type Paths interface {
	Expander

	// Root is the absolute repository root.
	Root() string
	// UsedFallback reports whether Root fell back to the working directory.
	UsedFallback() bool
	// SourcePath returns the absolute repository path of a manifest name.
	SourcePath(name string) string
	// ManifestPath resolves the manifest location against Root.
	ManifestPath(manifest string) string
}

type paths struct {
	root         string
	usedFallback bool
}

// New creates a Paths for the given repository root. An empty root is
// discovered from DOTFILES_ROOT, then the enclosing git repository, then
// the current working directory.
func New(root string) (Paths, error) {
	p := &paths{}

	if root == "" {
		found, usedFallback, err := findDotfilesRoot()
		if err != nil {
			return nil, err
		}
		p.root = found
		p.usedFallback = usedFallback
	} else {
		p.root = expandHome(root)
	}

	absRoot, err := filepath.Abs(p.root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRootNotFound, "failed to get absolute path for %s", p.root)
	}

	// Symlinked roots (macOS /var -> /private/var) would otherwise never
	// compare equal to resolved link targets.
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}
	p.root = absRoot

	return p, nil
}

func (p *paths) Root() string {
	return p.root
}

func (p *paths) UsedFallback() bool {
	return p.usedFallback
}

func (p *paths) SourcePath(name string) string {
	return filepath.Join(p.root, name)
}

func (p *paths) ManifestPath(manifest string) string {
	if manifest == "" {
		manifest = DefaultManifest
	}
	candidate := expandHome(expandEnv(manifest))
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(p.root, candidate)
	}
	return filepath.Clean(candidate)
}

// Expand expands environment variables, then a leading ~ or ~user, and
// makes the result absolute against the working directory. Variables that
// are not set are left untouched.
func (p *paths) Expand(raw string) (string, error) {
	return Expand(raw)
}

// Expand is the package level form of Paths.Expand.
func Expand(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errors.New(errors.ErrPathExpand, "empty path")
	}

	expanded := expandHome(expandEnv(raw))
	if strings.HasPrefix(expanded, "~") {
		return "", errors.Newf(errors.ErrPathExpand, "cannot expand home directory in %s", raw)
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrPathExpand, "failed to get absolute path for %s", raw)
	}
	return abs, nil
}

// expandEnv replaces $VAR and ${VAR}. Unset variables keep their $VAR form.
func expandEnv(path string) string {
	return os.Expand(path, func(name string) string {
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return "$" + name
	})
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	rest := path[1:]
	name := rest
	if i := strings.IndexAny(rest, `/`+string(filepath.Separator)); i >= 0 {
		name = rest[:i]
		rest = rest[i+1:]
	} else {
		rest = ""
	}

	var homeDir string
	if name == "" {
		homeDir = homeDirectory()
	} else if u, err := user.Lookup(name); err == nil {
		homeDir = u.HomeDir
	}

	// Can't expand, return as-is
	if homeDir == "" {
		return path
	}

	return filepath.Join(homeDir, rest)
}

func homeDirectory() string {
	if home := os.Getenv(EnvHome); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// findDotfilesRoot determines the repository root using the following priority:
// 1. DOTFILES_ROOT environment variable (if set)
// 2. Git repository root (found via 'git rev-parse --show-toplevel')
// 3. Current working directory (fallback)
func findDotfilesRoot() (string, bool, error) {
	logger := logging.GetLogger("paths")

	if root := os.Getenv(EnvDotfilesRoot); root != "" {
		return expandHome(root), false, nil
	}

	gitRoot, err := findGitRoot()
	if err == nil {
		logger.Debug().Str("root", gitRoot).Msg("Using git repository root")
		return gitRoot, false, nil
	}
	logger.Debug().Err(err).Msg("No git repository root, falling back to working directory")

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, errors.Wrap(err, errors.ErrRootNotFound, "failed to get current directory")
	}

	return cwd, true, nil
}

// findGitRoot attempts to find the root of the current git repository
func findGitRoot() (string, error) {
	output, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", err
	}

	gitRoot := strings.TrimSpace(string(output))
	if gitRoot == "" {
		return "", errors.New(errors.ErrRootNotFound, "git root is empty")
	}
	return gitRoot, nil
}
