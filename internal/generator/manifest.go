package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-blog/pkg/storage"
)

const (
	manifestFileName    = ".build-manifest.json"
	manifestFileVersion = 1
)

// buildManifest records the artifacts of the last successful build so the
// next one can report unchanged files and prune stale ones.
type buildManifest struct {
	Version     int                         `json:"version"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Publish     bool                        `json:"publish"`
	Artifacts   map[string]manifestArtifact `json:"artifacts"`
}

type manifestArtifact struct {
	Path     string `json:"path"`
	Category string `json:"category"`
	Checksum string `json:"checksum"`
	Size     int64  `json:"size"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version:   manifestFileVersion,
		Artifacts: map[string]manifestArtifact{},
	}
}

func parseManifest(data []byte) (*buildManifest, error) {
	if len(data) == 0 {
		return newBuildManifest(), nil
	}
	var raw struct {
		Version     int                `json:"version"`
		GeneratedAt time.Time          `json:"generated_at"`
		Publish     bool               `json:"publish"`
		Artifacts   []manifestArtifact `json:"artifacts"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	manifest := newBuildManifest()
	manifest.GeneratedAt = raw.GeneratedAt
	manifest.Publish = raw.Publish
	if raw.Version != 0 {
		manifest.Version = raw.Version
	}
	for _, entry := range raw.Artifacts {
		manifest.set(entry)
	}
	return manifest, nil
}

func (m *buildManifest) marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	// Stable ordering for deterministic output.
	type orderedManifest struct {
		Version     int                `json:"version"`
		GeneratedAt time.Time          `json:"generated_at"`
		Publish     bool               `json:"publish"`
		Artifacts   []manifestArtifact `json:"artifacts"`
	}
	ordered := orderedManifest{
		Version:     m.Version,
		GeneratedAt: m.GeneratedAt,
		Publish:     m.Publish,
		Artifacts:   make([]manifestArtifact, 0, len(m.Artifacts)),
	}
	if ordered.Version == 0 {
		ordered.Version = manifestFileVersion
	}
	for _, entry := range m.Artifacts {
		ordered.Artifacts = append(ordered.Artifacts, entry)
	}
	sort.Slice(ordered.Artifacts, func(i, j int) bool {
		return ordered.Artifacts[i].Path < ordered.Artifacts[j].Path
	})
	return json.MarshalIndent(ordered, "", "  ")
}

func (m *buildManifest) set(entry manifestArtifact) {
	key := strings.TrimSpace(entry.Path)
	if key == "" {
		return
	}
	if m.Artifacts == nil {
		m.Artifacts = map[string]manifestArtifact{}
	}
	m.Artifacts[key] = entry
}

func (m *buildManifest) unchanged(artifact Artifact) bool {
	if m == nil {
		return false
	}
	entry, ok := m.Artifacts[artifact.Path]
	return ok && entry.Checksum == artifact.Checksum
}

// stale lists previously written paths that the current build did not produce.
// Entries that are not local slash separated paths, such as "../x", are never
// reported.
func (m *buildManifest) stale(current []Artifact) []string {
	if m == nil || len(m.Artifacts) == 0 {
		return nil
	}
	produced := make(map[string]struct{}, len(current))
	for _, artifact := range current {
		produced[artifact.Path] = struct{}{}
	}
	var out []string
	for key := range m.Artifacts {
		if key == manifestFileName || !fs.ValidPath(key) || key == "." {
			continue
		}
		if _, ok := produced[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func (s *service) manifestTargetPath() string {
	return joinOutputPath(normalizeOutputDir(s.cfg.OutputDir), manifestFileName)
}

func (s *service) loadManifest(ctx context.Context) (*buildManifest, error) {
	if s.deps.Storage == nil {
		return newBuildManifest(), nil
	}
	rows, err := s.deps.Storage.Query(ctx, storage.OpRead, s.manifestTargetPath())
	if err != nil {
		return nil, fmt.Errorf("generator: read manifest: %w", err)
	}
	if rows == nil {
		return newBuildManifest(), nil
	}
	defer rows.Close()
	if !rows.Next() {
		return newBuildManifest(), nil
	}
	var data []byte
	if err := rows.Scan(&data); err != nil {
		return nil, fmt.Errorf("generator: scan manifest: %w", err)
	}
	return parseManifest(data)
}

func (s *service) persistManifest(ctx context.Context, sink *artifactSink, manifest *buildManifest) error {
	data, err := manifest.marshal()
	if err != nil {
		return err
	}
	metadata := map[string]string{
		"version": fmt.Sprint(manifest.Version),
	}
	if !manifest.GeneratedAt.IsZero() {
		metadata["generated_at"] = manifest.GeneratedAt.UTC().Format(time.RFC3339)
	}
	return sink.put(ctx, manifestFileName, categoryManifest, "application/json", data, metadata)
}
