package cli

import (
	sitecmd "github.com/goliatone/go-blog/internal/commands/site"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/spf13/cobra"
)

type buildFlags struct {
	publish bool
	output  string
	dryRun  bool
	clean   bool
}

func newBuildCommand(a *app) *cobra.Command {
	flags := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render posts, talks, feeds, and redirects into the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("output") {
				cfg.Generator.OutputDir = flags.output
			}
			module, err := a.module(cfg)
			if err != nil {
				return err
			}

			var result *generator.BuildResult
			msg := sitecmd.BuildSiteCommand{
				Publish: flags.publish,
				DryRun:  flags.dryRun,
				Clean:   flags.clean,
				ResultCallback: func(env sitecmd.ResultEnvelope) {
					result = env.Build
				},
			}
			if err := dispatch(cmd.Context(), module.Build, msg); err != nil {
				return err
			}
			printBuildSummary(cmd.OutOrStdout(), cfg.Generator.OutputDir, result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.publish, "publish", false, "drop drafts and test documents and require dates")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output directory (overrides generator.output_dir)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "render everything without writing")
	cmd.Flags().BoolVar(&flags.clean, "clean", false, "remove the output directory before writing")
	return cmd
}
