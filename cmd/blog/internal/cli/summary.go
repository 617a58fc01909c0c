package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/goliatone/go-blog/internal/generator"
)

type printStyles struct {
	header lipgloss.Style
	label  lipgloss.Style
	ok     lipgloss.Style
	warn   lipgloss.Style
	dim    lipgloss.Style
}

func newPrintStyles() printStyles {
	return printStyles{
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label:  lipgloss.NewStyle().Width(12),
		ok:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func printBuildSummary(w io.Writer, outputDir string, result *generator.BuildResult) {
	if result == nil {
		return
	}
	styles := newPrintStyles()

	title := "Build complete"
	if result.DryRun {
		title = "Dry run complete"
	}
	if result.Publish {
		title += " (publish)"
	}
	fmt.Fprintln(w, styles.header.Render(title))

	row := func(label string, value any) {
		fmt.Fprintf(w, "  %s %v\n", styles.label.Render(label), value)
	}
	row("posts", result.Posts)
	row("talks", result.Talks)
	row("externals", result.Externals)
	row("entries", result.Entries)
	row("tags", result.Tags)
	row("redirects", result.Redirects)
	row("feeds", result.Feeds)
	row("artifacts", fmt.Sprintf("%d (%d unchanged, %d removed)", len(result.Artifacts), result.Unchanged, len(result.Removed)))
	row("bytes", result.Bytes)

	status := styles.ok.Render(fmt.Sprintf("wrote %s", outputDir))
	if result.DryRun {
		status = styles.warn.Render("nothing written")
	}
	fmt.Fprintf(w, "  %s %s\n", status, styles.dim.Render(result.Duration.String()))
}

func printCheckSummary(w io.Writer, result *generator.CheckResult) {
	if result == nil {
		return
	}
	styles := newPrintStyles()

	title := "Content OK"
	if result.Publish {
		title += " (publish)"
	}
	fmt.Fprintln(w, styles.header.Render(title))

	row := func(label string, value any) {
		fmt.Fprintf(w, "  %s %v\n", styles.label.Render(label), value)
	}
	row("posts", result.Posts)
	row("talks", result.Talks)
	row("externals", result.Externals)
	row("listed", result.Listed)
	row("unlisted", result.Unlisted)
	row("entries", result.Entries)
	row("tags", result.Tags)
	fmt.Fprintf(w, "  %s\n", styles.dim.Render(result.Duration.String()))
}
