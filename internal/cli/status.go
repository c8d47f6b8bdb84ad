package cli

import (
	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/status"
	"github.com/spf13/cobra"
)

func newStatusCmd(opts *globalOptions) *cobra.Command {
	var (
		check        bool
		manifestPath string
	)

	cmd := &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
		Example: MsgStatusExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, opts, manifestPath)
			if err != nil {
				return err
			}

			report := status.NewChecker(s.paths, nil).CheckAll(s.manifest)
			if err := s.renderer.RenderStatus(report); err != nil {
				return errors.Wrap(err, errors.ErrInternal, "failed to render status")
			}

			if check && !report.AllOK() {
				return errors.Newf(errors.ErrStatusCheck, MsgErrStatusCheck, len(report.Entries)-report.Installed, len(report.Entries))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, MsgFlagCheck)
	cmd.Flags().StringVar(&manifestPath, "manifest", "", MsgFlagManifest)

	return cmd
}
