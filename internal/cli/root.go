// Package cli wires dotlink's commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/arthur-debert/dotlink/internal/version"
	"github.com/arthur-debert/dotlink/pkg/config"
	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/logging"
	"github.com/arthur-debert/dotlink/pkg/manifest"
	"github.com/arthur-debert/dotlink/pkg/paths"
	"github.com/arthur-debert/dotlink/pkg/topics"
	"github.com/arthur-debert/dotlink/pkg/ui"
	"github.com/arthur-debert/dotlink/pkg/ui/styles"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	verbosity  int
	root       string
	configFile string
	format     string

	// errors renders fatal errors once the output format is known
	errors ui.Renderer
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&globalOptions{})
}

func newRootCmd(opts *globalOptions) *cobra.Command {
	cobra.AddTemplateFuncs(helpFuncs())

	rootCmd := &cobra.Command{
		Use:     "dotlink",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.StringVar(&opts.root, "root", "", MsgFlagRoot)
	flags.StringVar(&opts.configFile, "config", "", MsgFlagConfig)
	flags.StringVar(&opts.format, "format", "auto", MsgFlagFormat)

	rootCmd.AddCommand(newInstallCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	// Topics are embedded; failing to load them only costs the extra help.
	if tm, err := topics.Embedded(topics.Options{Renderer: topicRenderer()}); err == nil {
		rootCmd.AddCommand(newTopicsCmd(tm))
		tm.Install(rootCmd)
	}

	return rootCmd
}

// Execute runs the command line and returns the process exit code. Errors
// are rendered in the selected format (stderr for text, stdout for JSON),
// except run results whose report was already printed.
func Execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts := &globalOptions{}
	rootCmd := newRootCmd(opts)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	if isRunResult(err) {
		return 1
	}
	if opts.errors == nil || opts.errors.RenderError(err) != nil {
		fmt.Fprintf(stderr, "Error: %s\n", errors.Message(err))
	}
	return 1
}

func isRunResult(err error) bool {
	return errors.IsErrorCode(err, errors.ErrInstallFailed) || errors.IsErrorCode(err, errors.ErrStatusCheck)
}

// session is everything a command needs once flags and config are resolved.
type session struct {
	config   *config.Config
	paths    paths.Paths
	manifest *manifest.Manifest
	format   ui.Format
	renderer ui.Renderer
}

// newSession resolves configuration, the repository root and the manifest.
// manifestFlag overrides the configured manifest when the flag was set.
func newSession(cmd *cobra.Command, opts *globalOptions, manifestFlag string) (*session, error) {
	overrides := map[string]interface{}{}
	if cmd.Flags().Changed("root") {
		overrides[config.KeyRoot] = opts.root
	}
	if cmd.Flags().Changed("format") {
		overrides[config.KeyFormat] = opts.format
	}
	if cmd.Flags().Changed("manifest") {
		overrides[config.KeyManifest] = manifestFlag
	}

	cfg, err := config.Load(config.Options{File: opts.configFile, Overrides: overrides})
	if err != nil {
		return nil, err
	}

	format, err := ui.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	out := cmd.OutOrStdout()
	format = ui.Resolve(format, out)

	errOut := cmd.ErrOrStderr()
	if format == ui.FormatJSON {
		errOut = out
	}
	if opts.errors, err = ui.NewRenderer(format, errOut, ui.Options{}); err != nil {
		return nil, err
	}

	p, err := paths.New(cfg.Root)
	if err != nil {
		return nil, err
	}
	if p.UsedFallback() {
		fmt.Fprintf(cmd.ErrOrStderr(), MsgFallbackWarning, p.Root())
	}

	manifestPath := p.ManifestPath(cfg.Manifest)
	log.Debug().Str("root", p.Root()).Str("manifest", manifestPath).Msg("Resolved locations")

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	renderer, err := ui.NewRenderer(format, out, ui.Options{NameWidth: cfg.NameWidth})
	if err != nil {
		return nil, err
	}

	return &session{
		config:   cfg,
		paths:    p,
		manifest: m,
		format:   format,
		renderer: renderer,
	}, nil
}

// promptOutput keeps prompts out of machine readable output.
func (s *session) promptOutput(cmd *cobra.Command) io.Writer {
	if s.format == ui.FormatJSON {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}

// helpFuncs styles usage headings with the Header style on a terminal.
func helpFuncs() template.FuncMap {
	heading := func(s string) string { return s }
	if ui.DetectFormat(os.Stdout) == ui.FormatTerminal {
		heading = func(s string) string { return styles.Get("Header").Render(s) }
	}
	return template.FuncMap{"heading": heading}
}

func topicRenderer() topics.Renderer {
	if ui.DetectFormat(os.Stdout) == ui.FormatTerminal {
		return topics.NewGlamourRenderer()
	}
	return &topics.PlainRenderer{}
}
