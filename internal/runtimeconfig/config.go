package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var ErrContentDirRequired = errors.New("blog config: content directory is required")
var ErrPostsDirRequired = errors.New("blog config: posts directory is required")
var ErrOutputDirRequired = errors.New("blog config: generator output directory is required")
var ErrOutputDirEscapes = errors.New("blog config: generator output directory must not climb out of the working directory")
var ErrOutputDirOverlaps = errors.New("blog config: generator output directory must not overlap the content directory")
var ErrWorkersInvalid = errors.New("blog config: generator workers must be zero or positive")
var ErrFeedLimitInvalid = errors.New("blog config: feed limit must be zero or positive")
var ErrLoggingLevelInvalid = errors.New("blog config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("blog config: logging format is invalid")

// ErrSiteInvalid wraps the field errors of the site section.
var ErrSiteInvalid = errors.New("blog config: site configuration is invalid")

// Config aggregates everything a build needs. Keys use snake_case in config
// files; mapstructure tags keep viper decoding aligned with them.
type Config struct {
	Content   ContentConfig   `mapstructure:"content" json:"content"`
	Markdown  MarkdownConfig  `mapstructure:"markdown" json:"markdown"`
	Generator GeneratorConfig `mapstructure:"generator" json:"generator"`
	Site      SiteConfig      `mapstructure:"site" json:"site"`
	Logging   LoggingConfig   `mapstructure:"logging" json:"logging"`
}

// ContentConfig locates source documents. PostsDir and TalksDir are relative
// to Dir; an empty TalksDir disables talks.
type ContentConfig struct {
	Dir      string `mapstructure:"dir" json:"dir"`
	PostsDir string `mapstructure:"posts_dir" json:"posts_dir"`
	TalksDir string `mapstructure:"talks_dir" json:"talks_dir"`
	Pattern  string `mapstructure:"pattern" json:"pattern"`
}

// MarkdownConfig mirrors interfaces.ParseOptions plus summary rendering.
type MarkdownConfig struct {
	Extensions    []string `mapstructure:"extensions" json:"extensions"`
	Sanitize      bool     `mapstructure:"sanitize" json:"sanitize"`
	HardWraps     bool     `mapstructure:"hard_wraps" json:"hard_wraps"`
	SafeMode      bool     `mapstructure:"safe_mode" json:"safe_mode"`
	RenderSummary bool     `mapstructure:"render_summary" json:"render_summary"`
}

// GeneratorConfig captures behaviour for the static site build.
type GeneratorConfig struct {
	OutputDir        string        `mapstructure:"output_dir" json:"output_dir"`
	TemplatesDir     string        `mapstructure:"templates_dir" json:"templates_dir"`
	CleanBuild       bool          `mapstructure:"clean_build" json:"clean_build"`
	GenerateFeeds    bool          `mapstructure:"generate_feeds" json:"generate_feeds"`
	GenerateSitemap  bool          `mapstructure:"generate_sitemap" json:"generate_sitemap"`
	GenerateRobots   bool          `mapstructure:"generate_robots" json:"generate_robots"`
	GenerateTagPages bool          `mapstructure:"generate_tag_pages" json:"generate_tag_pages"`
	Workers          int           `mapstructure:"workers" json:"workers"`
	FeedLimit        int           `mapstructure:"feed_limit" json:"feed_limit"`
	RenderTimeout    time.Duration `mapstructure:"render_timeout" json:"render_timeout"`
}

// SiteConfig is the site wide metadata shared read-only by a build.
type SiteConfig struct {
	Title           string           `mapstructure:"title" json:"title"`
	Subtitle        string           `mapstructure:"subtitle" json:"subtitle"`
	Author          string           `mapstructure:"author" json:"author"`
	Language        string           `mapstructure:"language" json:"language"`
	Favicon         string           `mapstructure:"favicon" json:"favicon"`
	Thumbnail       string           `mapstructure:"thumbnail" json:"thumbnail"`
	OGTitle         string           `mapstructure:"og_title" json:"og_title"`
	OGImage         string           `mapstructure:"og_image" json:"og_image"`
	CanonicalOrigin string           `mapstructure:"canonical_origin" json:"canonical_origin"`
	ExternalLinks   []map[string]any `mapstructure:"external_links" json:"external_links"`
	Redirects       []RedirectConfig `mapstructure:"redirects" json:"redirects"`
}

// RedirectConfig maps an old path to its new location.
type RedirectConfig struct {
	From string `mapstructure:"from" json:"from"`
	To   string `mapstructure:"to" json:"to"`
}

// LoggingConfig captures go-logger options.
type LoggingConfig struct {
	Level     string   `mapstructure:"level" json:"level"`
	Format    string   `mapstructure:"format" json:"format"`
	AddSource bool     `mapstructure:"add_source" json:"add_source"`
	Focus     []string `mapstructure:"focus" json:"focus"`
}

// DefaultConfig returns defaults for a site laid out as content/posts and
// content/talks, built into dist.
func DefaultConfig() Config {
	return Config{
		Content: ContentConfig{
			Dir:      "content",
			PostsDir: "posts",
			TalksDir: "talks",
		},
		Markdown: MarkdownConfig{
			RenderSummary: true,
		},
		Generator: GeneratorConfig{
			OutputDir:        "dist",
			CleanBuild:       false,
			GenerateFeeds:    true,
			GenerateSitemap:  true,
			GenerateRobots:   false,
			GenerateTagPages: true,
			Workers:          0,
			FeedLimit:        100,
		},
		Site: SiteConfig{
			Title:           "Blog",
			Language:        "en",
			CanonicalOrigin: "http://localhost/",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate performs consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Content.Dir) == "" {
		return ErrContentDirRequired
	}
	if strings.TrimSpace(cfg.Content.PostsDir) == "" {
		return ErrPostsDirRequired
	}
	if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
		return ErrOutputDirRequired
	}
	if err := validateOutputDir(cfg.Content.Dir, cfg.Generator.OutputDir); err != nil {
		return err
	}
	if cfg.Generator.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrWorkersInvalid, cfg.Generator.Workers)
	}
	if cfg.Generator.FeedLimit < 0 {
		return fmt.Errorf("%w: %d", ErrFeedLimitInvalid, cfg.Generator.FeedLimit)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	if err := cfg.Site.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrSiteInvalid, err)
	}
	return nil
}

// validateOutputDir rejects output directories that a clean build could not
// safely empty: relative paths reaching above the working directory, and any
// directory that is, contains or sits inside the content directory.
func validateOutputDir(contentDir, outputDir string) error {
	output := filepath.Clean(strings.TrimSpace(outputDir))
	if !filepath.IsAbs(output) && climbs(output) {
		return fmt.Errorf("%w: %s", ErrOutputDirEscapes, outputDir)
	}

	outputAbs, err := filepath.Abs(output)
	if err != nil {
		return fmt.Errorf("blog config: resolve output directory %q: %w", outputDir, err)
	}
	contentAbs, err := filepath.Abs(filepath.Clean(strings.TrimSpace(contentDir)))
	if err != nil {
		return fmt.Errorf("blog config: resolve content directory %q: %w", contentDir, err)
	}
	if isWithin(contentAbs, outputAbs) || isWithin(outputAbs, contentAbs) {
		return fmt.Errorf("%w: output %s, content %s", ErrOutputDirOverlaps, outputDir, contentDir)
	}
	return nil
}

func climbs(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// isWithin reports whether target is dir or sits below it.
func isWithin(dir, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return false
	}
	return !climbs(rel)
}

// Validate checks the site section.
func (s SiteConfig) Validate() error {
	errs := validation.Errors{}
	if err := validation.ValidateStruct(&s,
		validation.Field(&s.Title, validation.Required),
		validation.Field(&s.CanonicalOrigin, validation.Required, validation.By(absoluteURL)),
	); err != nil {
		var fieldErrs validation.Errors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for key, value := range fieldErrs {
			errs[key] = value
		}
	}
	for idx, redirect := range s.Redirects {
		key := fmt.Sprintf("redirects[%d]", idx)
		if strings.TrimSpace(redirect.From) == "" || strings.TrimSpace(redirect.To) == "" {
			errs[key] = validation.NewError("blog.config.redirect_incomplete", "redirects need both from and to")
			continue
		}
		if !strings.HasPrefix(redirect.From, "/") {
			errs[key] = validation.NewError("blog.config.redirect_relative", "redirect source must start with /")
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func absoluteURL(value any) error {
	raw, _ := value.(string)
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return validation.NewError("blog.config.origin_invalid", "must be an absolute URL")
	}
	return nil
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
