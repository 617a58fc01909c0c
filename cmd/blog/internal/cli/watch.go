package cli

import (
	"context"
	"path/filepath"
	"strings"

	sitecmd "github.com/goliatone/go-blog/internal/commands/site"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/watch"
	"github.com/spf13/cobra"
)

func newWatchCommand(a *app) *cobra.Command {
	var publish bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Build, then rebuild whenever content or templates change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			module, err := a.module(cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			build := func(ctx context.Context) error {
				var result *generator.BuildResult
				msg := sitecmd.BuildSiteCommand{
					Publish: publish,
					ResultCallback: func(env sitecmd.ResultEnvelope) {
						result = env.Build
					},
				}
				if err := dispatch(ctx, module.Build, msg); err != nil {
					return err
				}
				printBuildSummary(out, cfg.Generator.OutputDir, result)
				return nil
			}

			if err := build(cmd.Context()); err != nil {
				// keep watching so the next save can fix it
				module.Logger.Error("watch.initial_build.failed", "error", err)
			}

			dirs := []string{cfg.Content.Dir}
			if dir := strings.TrimSpace(cfg.Generator.TemplatesDir); dir != "" {
				dirs = append(dirs, dir)
			}
			w, err := watch.New(watch.Options{
				Dirs:   dirs,
				Ignore: outputIgnore(cfg.Generator.OutputDir),
				Logger: logging.WatchLogger(module.Provider),
			}, func(ctx context.Context, _ []string) error {
				return build(ctx)
			})
			if err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&publish, "publish", false, "drop drafts and test documents and require dates")
	return cmd
}

func outputIgnore(outputDir string) []string {
	dir := filepath.ToSlash(filepath.Clean(outputDir))
	if dir == "." || dir == "" {
		return nil
	}
	return []string{dir, dir + "/**"}
}
