package generator

import (
	"slices"
	"strings"
	"testing"
)

func TestManifestRoundTripIsOrdered(t *testing.T) {
	manifest := newBuildManifest()
	manifest.set(manifestArtifact{Path: "posts/b.html", Category: "document", Checksum: "b"})
	manifest.set(manifestArtifact{Path: "index.html", Category: "index", Checksum: "i"})
	manifest.set(manifestArtifact{Path: " "})

	data, err := manifest.marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Index(string(data), "index.html") > strings.Index(string(data), "posts/b.html") {
		t.Fatalf("expected artifacts sorted by path:\n%s", data)
	}

	parsed, err := parseManifest(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed.Artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(parsed.Artifacts))
	}
	if !parsed.unchanged(Artifact{Path: "index.html", Checksum: "i"}) {
		t.Fatalf("expected index.html unchanged")
	}
	if parsed.unchanged(Artifact{Path: "index.html", Checksum: "other"}) {
		t.Fatalf("expected checksum mismatch to count as changed")
	}
}

func TestManifestStale(t *testing.T) {
	manifest := newBuildManifest()
	for _, p := range []string{"a.html", "b.html", manifestFileName} {
		manifest.set(manifestArtifact{Path: p})
	}
	stale := manifest.stale([]Artifact{{Path: "a.html"}})
	if !slices.Equal(stale, []string{"b.html"}) {
		t.Fatalf("unexpected stale list %v", stale)
	}
}

func TestManifestStaleSkipsPathsOutsideOutput(t *testing.T) {
	data := []byte(`{"version":1,"artifacts":[
		{"path":"posts/gone.html"},
		{"path":"../x"},
		{"path":"posts/../../y"},
		{"path":"/etc/passwd"},
		{"path":"."}
	]}`)
	manifest, err := parseManifest(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	stale := manifest.stale(nil)
	if !slices.Equal(stale, []string{"posts/gone.html"}) {
		t.Fatalf("expected only local paths to be stale, got %v", stale)
	}
}

func TestParseManifestRejectsGarbage(t *testing.T) {
	if _, err := parseManifest([]byte("{")); err == nil {
		t.Fatalf("expected parse error")
	}
	empty, err := parseManifest(nil)
	if err != nil || len(empty.Artifacts) != 0 {
		t.Fatalf("expected empty manifest, got %v %v", empty, err)
	}
}

func TestJoinOutputPath(t *testing.T) {
	cases := []struct {
		base, rel, want string
	}{
		{"", "/index.html", "index.html"},
		{"dist", "posts/a.html", "dist/posts/a.html"},
		{"/tmp/site", "feed.xml", "/tmp/site/feed.xml"},
	}
	for _, tc := range cases {
		if got := joinOutputPath(tc.base, tc.rel); got != tc.want {
			t.Fatalf("joinOutputPath(%q, %q) = %q, want %q", tc.base, tc.rel, got, tc.want)
		}
	}
	if got := normalizeOutputDir(" ./dist/ "); got != "dist" {
		t.Fatalf("unexpected normalized dir %q", got)
	}
	if got := normalizeOutputDir("."); got != "" {
		t.Fatalf("expected empty dir for ., got %q", got)
	}
}

func TestBuildRobots(t *testing.T) {
	if got := buildRobots(""); strings.Contains(got, "Sitemap") {
		t.Fatalf("unexpected sitemap line:\n%s", got)
	}
	if got := buildRobots("https://example.com/sitemap.xml"); !strings.Contains(got, "Sitemap: https://example.com/sitemap.xml") {
		t.Fatalf("missing sitemap line:\n%s", got)
	}
}
