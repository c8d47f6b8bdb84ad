package cli

import (
	"github.com/arthur-debert/dotlink/pkg/confirm"
	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/install"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newInstallCmd(opts *globalOptions) *cobra.Command {
	var (
		dryRun       bool
		force        bool
		manifestPath string
	)

	cmd := &cobra.Command{
		Use:     "install [files...]",
		Short:   MsgInstallShort,
		Long:    MsgInstallLong,
		Example: MsgInstallExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, opts, manifestPath)
			if err != nil {
				return err
			}

			log.Info().
				Str("root", s.paths.Root()).
				Strs("files", args).
				Bool("dryRun", dryRun).
				Bool("force", force).
				Msg("Installing dotfiles")

			installer := install.New(s.paths, install.Options{
				DryRun:    dryRun,
				Force:     force,
				Confirmer: confirm.NewConsole(cmd.InOrStdin(), s.promptOutput(cmd)),
				Observer:  s.renderer,
			})

			summary := installer.Run(s.manifest, args)
			if summary.HasFailures() {
				return errors.Newf(errors.ErrInstallFailed, MsgErrInstallFailed, summary.Failed, len(summary.Results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)
	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	cmd.Flags().StringVar(&manifestPath, "manifest", "", MsgFlagManifest)

	return cmd
}
