// Package cli implements the blog command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-blog/cmd/blog/internal/bootstrap"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "BLOG"

// Options customise the root command, mostly for tests.
type Options struct {
	Out            io.Writer
	Err            io.Writer
	LoggerProvider interfaces.LoggerProvider
	Now            func() time.Time
}

type app struct {
	opts Options

	cfgFile   string
	logLevel  string
	logFormat string

	cfg runtimeconfig.Config
}

// NewRootCommand returns the blog command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:           "blog",
		Short:         "Build a static blog from Markdown posts and talks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initializeConfig(cmd)
		},
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./blog.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: console, json, pretty")

	root.AddCommand(
		newBuildCommand(a),
		newCheckCommand(a),
		newWatchCommand(a),
	)
	return root
}

func (a *app) initializeConfig(cmd *cobra.Command) error {
	v := viper.New()

	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("blog")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || a.cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}

	// Only the file contents are schema checked; env values arrive as strings.
	if err := runtimeconfig.ValidateDocument(v.AllSettings()); err != nil {
		return err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	cfg := runtimeconfig.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format = a.logFormat
	}

	a.cfg = cfg
	return nil
}

// envKeys lists the scalar settings that can be set through BLOG_* variables
// without appearing in a config file.
var envKeys = []string{
	"content.dir",
	"content.posts_dir",
	"content.talks_dir",
	"content.pattern",
	"markdown.render_summary",
	"generator.output_dir",
	"generator.templates_dir",
	"generator.clean_build",
	"generator.generate_feeds",
	"generator.generate_sitemap",
	"generator.generate_robots",
	"generator.generate_tag_pages",
	"generator.workers",
	"generator.feed_limit",
	"generator.render_timeout",
	"site.title",
	"site.author",
	"site.language",
	"site.canonical_origin",
	"logging.level",
	"logging.format",
}

func (a *app) module(cfg runtimeconfig.Config) (*bootstrap.Module, error) {
	return bootstrap.BuildModule(bootstrap.Options{
		Config:         cfg,
		LoggerProvider: a.opts.LoggerProvider,
		Now:            a.opts.Now,
	})
}
