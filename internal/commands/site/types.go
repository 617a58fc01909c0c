package sitecmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-blog/internal/generator"
)

const (
	buildSiteMessageType = "blog.site.build"
	checkSiteMessageType = "blog.site.check"
)

// ResultCallback receives the outcome of a site command. It is optional and
// runs synchronously inside the handler.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope carries whichever result the command produced.
type ResultEnvelope struct {
	Build    *generator.BuildResult
	Check    *generator.CheckResult
	Metadata map[string]any
}

// BuildSiteCommand renders the site into the output directory.
type BuildSiteCommand struct {
	Publish        bool           `json:"publish,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	Clean          bool           `json:"clean,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate rejects a clean dry run, which would have nothing to remove.
func (m BuildSiteCommand) Validate() error {
	errs := validation.Errors{}
	if m.Clean && m.DryRun {
		errs["clean"] = validation.NewError("blog.site.build.clean_dry_run", "clean cannot be combined with dry_run")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CheckSiteCommand loads and validates all content without rendering.
type CheckSiteCommand struct {
	Publish        bool           `json:"publish,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (CheckSiteCommand) Type() string { return checkSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CheckSiteCommand) Validate() error { return nil }
