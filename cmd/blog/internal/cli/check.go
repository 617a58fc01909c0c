package cli

import (
	sitecmd "github.com/goliatone/go-blog/internal/commands/site"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/spf13/cobra"
)

func newCheckCommand(a *app) *cobra.Command {
	var publish bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Parse and validate all content without rendering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := a.module(a.cfg)
			if err != nil {
				return err
			}

			var result *generator.CheckResult
			msg := sitecmd.CheckSiteCommand{
				Publish: publish,
				ResultCallback: func(env sitecmd.ResultEnvelope) {
					result = env.Check
				},
			}
			if err := dispatch(cmd.Context(), module.Check, msg); err != nil {
				return err
			}
			printCheckSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&publish, "publish", false, "apply the publish filter and invariant")
	return cmd
}
