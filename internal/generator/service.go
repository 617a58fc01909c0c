package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"runtime"
	"sync"
	"time"

	"github.com/goliatone/go-blog/internal/adapters/noop"
	"github.com/goliatone/go-blog/internal/blog"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
	"github.com/goliatone/go-blog/internal/site"
	"github.com/goliatone/go-blog/internal/templates"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled  = errors.New("generator: service disabled")
	errRendererRequired = errors.New("generator: template renderer is required")
	errLoaderRequired   = errors.New("generator: document loader is required")
	errSiteRequired     = errors.New("generator: site configuration is required")
)

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Check(ctx context.Context, opts CheckOptions) (*CheckResult, error)
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	ContentDir       string
	PostsDir         string
	TalksDir         string
	OutputDir        string
	RenderSummary    bool
	CleanBuild       bool
	GenerateFeeds    bool
	GenerateSitemap  bool
	GenerateRobots   bool
	GenerateTagPages bool
	Workers          int
	FeedLimit        int
	RenderTimeout    time.Duration
}

// ConfigFromRuntime maps the runtime configuration onto generator settings.
func ConfigFromRuntime(cfg runtimeconfig.Config) Config {
	return Config{
		ContentDir:       cfg.Content.Dir,
		PostsDir:         cfg.Content.PostsDir,
		TalksDir:         cfg.Content.TalksDir,
		OutputDir:        cfg.Generator.OutputDir,
		RenderSummary:    cfg.Markdown.RenderSummary,
		CleanBuild:       cfg.Generator.CleanBuild,
		GenerateFeeds:    cfg.Generator.GenerateFeeds,
		GenerateSitemap:  cfg.Generator.GenerateSitemap,
		GenerateRobots:   cfg.Generator.GenerateRobots,
		GenerateTagPages: cfg.Generator.GenerateTagPages,
		Workers:          cfg.Generator.Workers,
		FeedLimit:        cfg.Generator.FeedLimit,
		RenderTimeout:    cfg.Generator.RenderTimeout,
	}
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	// Publish drops drafts and test documents and requires dates.
	Publish bool
	// DryRun renders everything and writes nothing.
	DryRun bool
	// Clean removes the output directory first, in addition to Config.CleanBuild.
	Clean bool
}

// CheckOptions configures a content check.
type CheckOptions struct {
	Publish bool
}

// Artifact describes one written output file. Path is relative to the
// output directory.
type Artifact struct {
	Path     string
	Category string
	Checksum string
	Size     int64
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	// BuildID is the id every log entry of the build carries.
	BuildID   string
	Posts     int
	Talks     int
	Externals int
	Entries   int
	Documents int
	Tags      int
	Redirects int
	Feeds     int
	Artifacts []Artifact
	Unchanged int
	Removed   []string
	Bytes     int64
	Duration  time.Duration
	Errors    []error
	Publish   bool
	DryRun    bool
}

// CheckResult reports what a build would produce without rendering.
type CheckResult struct {
	BuildID   string
	Posts     int
	Talks     int
	Externals int
	Listed    int
	Unlisted  int
	Entries   int
	Tags      int
	Publish   bool
	Duration  time.Duration
}

// Dependencies lists the services required by the generator.
type Dependencies struct {
	Loader   blog.DirectoryLoader
	Parser   interfaces.MarkdownParser
	Renderer interfaces.TemplateRenderer
	Storage  interfaces.StorageProvider
	Site     *site.Site
	Logger   interfaces.Logger
	// ContentLogger receives per document load events. Defaults to Logger.
	ContentLogger interfaces.Logger
}

// NewService wires a generator implementation with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	if deps.ContentLogger == nil {
		deps.ContentLogger = deps.Logger
	}
	return &service{
		cfg:  cfg,
		deps: deps,
		now:  time.Now,
	}
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg  Config
	deps Dependencies
	now  func() time.Time
}

type disabledService struct{}

// siteContent is the loaded, filtered and ordered input of a build.
type siteContent struct {
	posts     blog.Collection
	talks     blog.Collection
	externals []blog.ExternalLink
	entries   []blog.IndexEntry
}

type renderJob struct {
	template string
	output   string
	category writeCategory
	data     any
	metadata map[string]string
}

type renderedArtifact struct {
	job      renderJob
	html     string
	duration time.Duration
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validateDependencies(); err != nil {
		return nil, err
	}
	if s.deps.Renderer == nil {
		return nil, errRendererRequired
	}

	ctx, buildID := logging.WithBuildID(ctx)
	start := s.now()
	logger := logging.FromContext(ctx, s.deps.Logger)
	logger.Info("generator.build.start",
		"publish", opts.Publish,
		"dry_run", opts.DryRun,
		"output", s.cfg.OutputDir,
	)

	result := &BuildResult{BuildID: buildID, Publish: opts.Publish, DryRun: opts.DryRun}
	fail := func(err error) (*BuildResult, error) {
		result.Errors = append(result.Errors, err)
		result.Duration = s.now().Sub(start)
		logger.Error("generator.build.failed", "error", err)
		return result, err
	}

	content, err := s.loadContent(ctx, opts.Publish)
	if err != nil {
		return fail(err)
	}
	result.Posts = content.posts.Len()
	result.Talks = content.talks.Len()
	result.Externals = len(content.externals)
	result.Entries = len(content.entries)

	var tags *tagIndex
	if s.cfg.GenerateTagPages {
		tags = s.tagIndex(logger, content.entries)
	}

	jobs, err := s.collectJobs(content, tags)
	if err != nil {
		return fail(err)
	}
	rendered, err := s.renderAll(ctx, jobs)
	if err != nil {
		return fail(err)
	}

	previous, err := s.loadManifest(ctx)
	if err != nil {
		logger.Warn("generator.manifest.unreadable", "error", err)
		previous = newBuildManifest()
	}

	writer := newArtifactWriter(s.deps.Storage)
	if opts.DryRun {
		writer = newArtifactWriter(noop.Storage())
	}
	baseDir := normalizeOutputDir(s.cfg.OutputDir)
	clean := s.cfg.CleanBuild || opts.Clean
	if clean {
		if err := writer.Clear(ctx, baseDir); err != nil {
			return fail(fmt.Errorf("generator: clean %s: %w", baseDir, err))
		}
		logger.Debug("generator.output.cleaned", "output", baseDir)
	}

	sink := newArtifactSink(writer, baseDir)
	for _, artifact := range rendered {
		if err := sink.put(ctx, artifact.job.output, artifact.job.category, "text/html; charset=utf-8", []byte(artifact.html), artifact.job.metadata); err != nil {
			return fail(err)
		}
		switch artifact.job.category {
		case categoryDocument:
			result.Documents++
		case categoryTag:
			result.Tags++
		case categoryRedirect:
			result.Redirects++
		}
	}

	if err := s.writeIndexData(ctx, sink, content.entries); err != nil {
		return fail(err)
	}

	if s.cfg.GenerateFeeds {
		written, err := s.writeFeeds(ctx, sink, content.entries)
		result.Feeds = written
		if err != nil {
			return fail(err)
		}
	}

	if s.cfg.GenerateSitemap {
		if err := s.writeSitemap(ctx, sink, content, tags); err != nil {
			return fail(err)
		}
	}

	if s.cfg.GenerateRobots {
		if err := s.writeRobots(ctx, sink); err != nil {
			return fail(err)
		}
	}

	if !clean {
		for _, stale := range previous.stale(sink.artifacts) {
			if err := writer.Remove(ctx, joinOutputPath(baseDir, stale)); err != nil {
				return fail(fmt.Errorf("generator: prune %s: %w", stale, err))
			}
			result.Removed = append(result.Removed, stale)
		}
	}
	for _, artifact := range sink.artifacts {
		if previous.unchanged(artifact) {
			result.Unchanged++
		}
	}

	manifest := newBuildManifest()
	manifest.GeneratedAt = s.deps.Site.Updated()
	manifest.Publish = opts.Publish
	for _, artifact := range sink.artifacts {
		manifest.set(manifestArtifact(artifact))
	}
	if err := s.persistManifest(ctx, sink, manifest); err != nil {
		return fail(err)
	}

	result.Artifacts = sink.artifacts
	result.Bytes = sink.bytes
	result.Duration = s.now().Sub(start)
	logger.Info("generator.build.complete",
		"documents", result.Documents,
		"entries", result.Entries,
		"artifacts", len(result.Artifacts),
		"unchanged", result.Unchanged,
		"dry_run", result.DryRun,
		"duration", result.Duration,
	)
	return result, nil
}

func (s *service) Check(ctx context.Context, opts CheckOptions) (*CheckResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validateDependencies(); err != nil {
		return nil, err
	}

	ctx, buildID := logging.WithBuildID(ctx)
	logger := logging.FromContext(ctx, s.deps.Logger)
	start := s.now()
	content, err := s.loadContent(ctx, opts.Publish)
	if err != nil {
		logger.Error("generator.check.failed", "error", err)
		return nil, err
	}

	listed := content.posts.Listed().Len() + content.talks.Listed().Len()
	result := &CheckResult{
		BuildID:   buildID,
		Posts:     content.posts.Len(),
		Talks:     content.talks.Len(),
		Externals: len(content.externals),
		Listed:    listed,
		Unlisted:  content.posts.Len() + content.talks.Len() - listed,
		Entries:   len(content.entries),
		Publish:   opts.Publish,
	}
	if s.cfg.GenerateTagPages {
		result.Tags = len(s.tagIndex(logger, content.entries).ordered())
	}
	result.Duration = s.now().Sub(start)
	logger.Info("generator.check.complete",
		"posts", result.Posts,
		"talks", result.Talks,
		"entries", result.Entries,
		"publish", result.Publish,
	)
	return result, nil
}

func (s *service) validateDependencies() error {
	if s.deps.Loader == nil {
		return errLoaderRequired
	}
	if s.deps.Site == nil {
		return errSiteRequired
	}
	return nil
}

func (s *service) loadContent(ctx context.Context, publish bool) (*siteContent, error) {
	opts := blog.LoadOptions{
		Decode: blog.DecodeOptions{
			RenderSummary: s.cfg.RenderSummary,
			Parser:        s.deps.Parser,
		},
		Root:   s.cfg.ContentDir,
		Logger: logging.FromContext(ctx, s.deps.ContentLogger),
	}

	posts, err := s.loadCollection(ctx, s.cfg.PostsDir, blog.KindPost, publish, opts)
	if err != nil {
		return nil, err
	}

	talks := blog.Collection{Kind: blog.KindTalk}
	if s.cfg.TalksDir != "" {
		talks, err = s.loadCollection(ctx, s.cfg.TalksDir, blog.KindTalk, publish, opts)
		if errors.Is(err, fs.ErrNotExist) {
			logging.FromContext(ctx, s.deps.Logger).Warn("generator.talks.missing", "dir", s.contentPath(s.cfg.TalksDir))
			talks, err = blog.Collection{Kind: blog.KindTalk}, nil
		}
		if err != nil {
			return nil, err
		}
	}

	externals := s.deps.Site.ExternalLinks()
	return &siteContent{
		posts:     posts,
		talks:     talks,
		externals: externals,
		entries:   blog.Assemble(posts.Listed().Documents, talks.Listed().Documents, externals),
	}, nil
}

func (s *service) loadCollection(
	ctx context.Context,
	dir string,
	kind blog.Kind,
	publish bool,
	opts blog.LoadOptions,
) (blog.Collection, error) {
	collection, err := blog.Load(ctx, s.deps.Loader, s.contentPath(dir), kind, opts)
	if err != nil {
		return blog.Collection{}, err
	}
	filtered, err := collection.Filter(publish)
	if err != nil {
		return blog.Collection{}, err
	}
	return filtered.Order(), nil
}

func (s *service) contentPath(dir string) string {
	if s.cfg.ContentDir == "" {
		return path.Clean(dir)
	}
	return path.Join(s.cfg.ContentDir, dir)
}

func (s *service) tagIndex(logger interfaces.Logger, entries []blog.IndexEntry) *tagIndex {
	idx := buildTagIndex(entries, s.deps.Site.Metadata().Language, s.deps.Site.CanonicalURL)
	for _, tag := range idx.skipped {
		logger.Warn("generator.tag.skipped", "tag", tag)
	}
	return idx
}

// collectJobs lists every page to render: documents (unlisted included), the
// index, tag pages and redirects. Two jobs writing the same path is an error.
func (s *service) collectJobs(content *siteContent, tags *tagIndex) ([]renderJob, error) {
	docs := append(append([]*blog.Document(nil), content.posts.Documents...), content.talks.Documents...)
	jobs := make([]renderJob, 0, len(docs)+1)
	for _, doc := range docs {
		name := templates.Post
		if doc.Kind == blog.KindTalk {
			name = templates.Talk
		}
		jobs = append(jobs, renderJob{
			template: name,
			output:   doc.Path,
			category: categoryDocument,
			data:     s.documentView(doc, tags),
			metadata: map[string]string{
				"kind":   string(doc.Kind),
				"source": doc.Source,
				"status": string(doc.Status()),
			},
		})
	}

	jobs = append(jobs, renderJob{
		template: templates.Index,
		output:   "index.html",
		category: categoryIndex,
		data: IndexView{
			Site:    s.deps.Site.Metadata(),
			Entries: s.entryViews(content.entries, tags),
		},
		metadata: map[string]string{"entries": fmt.Sprint(len(content.entries))},
	})

	for _, page := range tags.ordered() {
		jobs = append(jobs, renderJob{
			template: templates.Tag,
			output:   page.Path,
			category: categoryTag,
			data: TagView{
				Site:    s.deps.Site.Metadata(),
				Tag:     TagLink{Name: page.Name, URL: page.URL},
				Title:   page.Title,
				Entries: s.entryViews(page.Entries, tags),
			},
			metadata: map[string]string{"tag": page.Name, "slug": page.Slug},
		})
	}

	redirects, err := s.redirectJobs()
	if err != nil {
		return nil, err
	}
	jobs = append(jobs, redirects...)

	owners := make(map[string]string, len(jobs))
	for _, job := range jobs {
		owner := job.metadata["source"]
		if owner == "" {
			owner = string(job.category)
		}
		if previous, ok := owners[job.output]; ok {
			return nil, fmt.Errorf("generator: %s is produced by both %s and %s", job.output, previous, owner)
		}
		owners[job.output] = owner
	}
	return jobs, nil
}

func (s *service) renderAll(ctx context.Context, jobs []renderJob) ([]renderedArtifact, error) {
	if len(jobs) == 0 {
		return nil, nil
	}
	return s.renderConcurrently(ctx, jobs, s.effectiveWorkerCount(len(jobs)))
}

// renderConcurrently renders jobs on a worker pool. Results keep the job
// order; the first failure cancels the remaining work.
func (s *service) renderConcurrently(ctx context.Context, jobs []renderJob, workers int) ([]renderedArtifact, error) {
	var cancel context.CancelFunc
	if s.cfg.RenderTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RenderTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	var (
		results  = make([]renderedArtifact, len(jobs))
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				if ctx.Err() != nil {
					continue
				}
				out, err := s.renderJob(jobs[idx])
				if err != nil {
					fail(err)
					continue
				}
				results[idx] = out
			}
		}()
	}

feed:
	for idx := range jobs {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- idx:
		}
	}
	close(indexes)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *service) renderJob(job renderJob) (renderedArtifact, error) {
	start := time.Now()
	html, err := s.deps.Renderer.RenderTemplate(job.template, job.data)
	if err != nil {
		return renderedArtifact{}, fmt.Errorf("generator: render %s with template %q: %w", job.output, job.template, err)
	}
	return renderedArtifact{job: job, html: html, duration: time.Since(start)}, nil
}

func (s *service) writeIndexData(ctx context.Context, sink *artifactSink, entries []blog.IndexEntry) error {
	if entries == nil {
		entries = []blog.IndexEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("generator: encode index: %w", err)
	}
	return sink.put(ctx, "index.json", categoryData, "application/json", data, map[string]string{
		"entries": fmt.Sprint(len(entries)),
	})
}

func (s *service) writeSitemap(ctx context.Context, sink *artifactSink, content *siteContent, tags *tagIndex) error {
	updated := s.deps.Site.Updated()
	entries := []sitemapEntry{{Location: s.deps.Site.CanonicalOrigin(), LastMod: updated}}
	for _, entry := range content.entries {
		if entry.EntryKind() == blog.KindExternal {
			continue
		}
		lastMod := updated
		if date, ok := entry.EntryDate(); ok {
			lastMod = date.Time()
		}
		entries = append(entries, sitemapEntry{
			Location: s.deps.Site.CanonicalURL(entry.EntryLink()),
			LastMod:  lastMod,
		})
	}
	for _, page := range tags.ordered() {
		entries = append(entries, sitemapEntry{Location: page.URL, LastMod: updated})
	}
	document := buildSitemap(entries)
	return sink.put(ctx, "sitemap.xml", categorySitemap, "application/xml", []byte(document), map[string]string{
		"generated_at": updated.UTC().Format(time.RFC3339),
	})
}

func (s *service) writeRobots(ctx context.Context, sink *artifactSink) error {
	sitemapURL := ""
	if s.cfg.GenerateSitemap {
		sitemapURL = s.deps.Site.CanonicalURL("sitemap.xml")
	}
	content := buildRobots(sitemapURL)
	return sink.put(ctx, "robots.txt", categoryRobots, "text/plain; charset=utf-8", []byte(content), map[string]string{
		"generated_at": s.deps.Site.Updated().UTC().Format(time.RFC3339),
	})
}

func (s *service) effectiveWorkerCount(jobCount int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if jobCount > 0 && workers > jobCount {
		return jobCount
	}
	return workers
}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Check(context.Context, CheckOptions) (*CheckResult, error) {
	return nil, ErrServiceDisabled
}
