package bootstrap

import (
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/adapters/filesystem"
	"github.com/goliatone/go-blog/internal/blog"
	"github.com/goliatone/go-blog/internal/commands"
	sitecmd "github.com/goliatone/go-blog/internal/commands/site"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/logging/gologger"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
	"github.com/goliatone/go-blog/internal/site"
	"github.com/goliatone/go-blog/internal/templates"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Options captures what the CLI hands to the bootstrap.
type Options struct {
	Config         runtimeconfig.Config
	LoggerProvider interfaces.LoggerProvider
	// ContentFS overrides the content directory filesystem.
	ContentFS fs.FS
	// Storage overrides the artifact storage rooted at the output directory.
	Storage interfaces.StorageProvider
	Now     func() time.Time
}

// Module holds the wired services used by the CLI commands.
type Module struct {
	Config    runtimeconfig.Config
	Provider  interfaces.LoggerProvider
	Logger    interfaces.Logger
	Site      *site.Site
	Generator generator.Service
	Build     *sitecmd.BuildSiteHandler
	Check     *sitecmd.CheckSiteHandler
}

// NewLoggerProvider builds the go-logger provider described by cfg.
func NewLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	provider, err := gologger.NewProvider(gologger.ConfigFromRuntime(cfg))
	if err != nil {
		return nil, err
	}
	return provider, nil
}

// BuildModule validates the configuration and wires loader, parser, renderer,
// storage, and site into a generator service and its command handlers.
func BuildModule(opts Options) (*Module, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider := opts.LoggerProvider
	if provider == nil {
		var err error
		provider, err = NewLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("initialise logger: %w", err)
		}
	}

	contentFS := opts.ContentFS
	if contentFS == nil {
		contentFS = os.DirFS(cfg.Content.Dir)
	}
	loader, err := markdown.NewLoader(contentFS, markdown.LoaderConfig{Pattern: cfg.Content.Pattern})
	if err != nil {
		return nil, err
	}

	parser := markdown.NewGoldmarkParser(interfaces.ParseOptions{
		Extensions: cloneStrings(cfg.Markdown.Extensions),
		Sanitize:   cfg.Markdown.Sanitize,
		HardWraps:  cfg.Markdown.HardWraps,
		SafeMode:   cfg.Markdown.SafeMode,
	})

	var overrides fs.FS
	if dir := strings.TrimSpace(cfg.Generator.TemplatesDir); dir != "" {
		overrides = os.DirFS(dir)
	}
	renderer := templates.NewRenderer(overrides)

	storage := opts.Storage
	if storage == nil {
		storage = filesystem.NewStorage(cfg.Generator.OutputDir)
	}

	siteValue, err := site.New(cfg.Site, site.Options{
		Now: opts.Now,
		Decode: blog.DecodeOptions{
			RenderSummary: cfg.Markdown.RenderSummary,
			Parser:        parser,
		},
	})
	if err != nil {
		return nil, err
	}

	// The loader is rooted at the content directory and the storage at the
	// output directory, so the generator sees both as relative roots.
	genCfg := generator.ConfigFromRuntime(cfg)
	genCfg.ContentDir = ""
	genCfg.OutputDir = ""

	service := generator.NewService(genCfg, generator.Dependencies{
		Loader:        loader,
		Parser:        parser,
		Renderer:      renderer,
		Storage:       storage,
		Site:          siteValue,
		Logger:        logging.GeneratorLogger(provider),
		ContentLogger: logging.DocumentsLogger(provider),
	})

	commandLogger := commands.CommandLogger(provider, "site")

	return &Module{
		Config:    cfg,
		Provider:  provider,
		Logger:    logging.ModuleLogger(provider, "blog.cli"),
		Site:      siteValue,
		Generator: service,
		Build:     sitecmd.NewBuildSiteHandler(service, commandLogger),
		Check:     sitecmd.NewCheckSiteHandler(service, commandLogger),
	}, nil
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
