package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Link dotfiles from a repository into place"
	MsgInstallShort    = "Install dotfiles by creating symlinks to repo files"
	MsgStatusShort     = "Check status and verify dotfiles installation"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgTopicsShort     = "Display available documentation topics"
	MsgTopicsLong      = "Display a list of all available help topics, or one topic when a name is given."

	// Root discovery
	MsgFallbackWarning = "Warning: Not in a git repository and DOTFILES_ROOT not set.\n" +
		"Using current directory: %s\n" +
		"For better results, either:\n" +
		"  - Run from within a git repository containing your dotfiles\n" +
		"  - Set DOTFILES_ROOT environment variable\n\n"

	// Error messages
	MsgErrInstallFailed = "%d of %d dotfiles failed to install"
	MsgErrStatusCheck   = "%d of %d dotfiles are not installed correctly"

	// Flag descriptions
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagRoot     = "Dotfiles repository root (default: DOTFILES_ROOT, git root, or current directory)"
	MsgFlagConfig   = "Config file (default: $XDG_CONFIG_HOME/dotlink/config.yaml)"
	MsgFlagFormat   = "Output format: auto, term, text or json"
	MsgFlagManifest = "Path to manifest file (default: dotfiles.yaml)"
	MsgFlagDryRun   = "Preview changes without making them"
	MsgFlagForce    = "Overwrite existing files without prompting"
	MsgFlagCheck    = "Exit with error code if any dotfiles have issues"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLong string

	//go:embed msgs/install-long.txt
	msgInstallLong string

	//go:embed msgs/install-example.txt
	msgInstallExample string

	//go:embed msgs/status-long.txt
	msgStatusLong string

	//go:embed msgs/status-example.txt
	msgStatusExample string

	//go:embed msgs/usage.txt
	msgUsageTemplate string
)

// Exported accessors trim the trailing newline embedded files carry.
var (
	MsgRootLong       = strings.TrimSpace(msgRootLong)
	MsgInstallLong    = strings.TrimSpace(msgInstallLong)
	MsgInstallExample = strings.TrimRight(msgInstallExample, "\n")
	MsgStatusLong     = strings.TrimSpace(msgStatusLong)
	MsgStatusExample  = strings.TrimRight(msgStatusExample, "\n")
	MsgUsageTemplate  = strings.TrimRight(msgUsageTemplate, "\n") + "\n"
)
