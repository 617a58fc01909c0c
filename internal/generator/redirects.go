package generator

import (
	"fmt"

	"github.com/goliatone/go-blog/internal/templates"
)

// redirectJobs prepares one page per configured redirect. The target is
// resolved against the canonical origin unless it is already absolute.
func (s *service) redirectJobs() ([]renderJob, error) {
	redirects := s.deps.Site.Redirects()
	jobs := make([]renderJob, 0, len(redirects))
	for _, redirect := range redirects {
		if redirect.From == "" || redirect.To == "" {
			return nil, fmt.Errorf("generator: redirect %q -> %q is incomplete", redirect.From, redirect.To)
		}
		jobs = append(jobs, renderJob{
			template: templates.Redirect,
			output:   redirect.OutputPath(),
			category: categoryRedirect,
			data: RedirectView{
				From: redirect.From,
				To:   s.deps.Site.CanonicalURL(redirect.To),
			},
			metadata: map[string]string{"from": redirect.From, "to": redirect.To},
		})
	}
	return jobs, nil
}
