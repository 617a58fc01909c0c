package generator

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/pkg/storage"
)

type writeCategory string

const (
	categoryDocument writeCategory = "document"
	categoryIndex    writeCategory = "index"
	categoryData     writeCategory = "data"
	categoryFeed     writeCategory = "feed"
	categoryRedirect writeCategory = "redirect"
	categoryTag      writeCategory = "tag"
	categorySitemap  writeCategory = "sitemap"
	categoryRobots   writeCategory = "robots"
	categoryManifest writeCategory = "manifest"
)

// writeFileRequest describes a file write operation routed through the artifact writer.
type writeFileRequest struct {
	Path        string
	Content     io.Reader
	Size        int64
	Category    writeCategory
	ContentType string
	Checksum    string
	Metadata    map[string]string
}

// artifactWriter abstracts storage provider specifics for generator outputs.
type artifactWriter interface {
	EnsureDir(ctx context.Context, path string) error
	Remove(ctx context.Context, path string) error
	Clear(ctx context.Context, dir string) error
	WriteFile(ctx context.Context, req writeFileRequest) error
}

func newArtifactWriter(provider interfaces.StorageProvider) artifactWriter {
	if provider == nil {
		return noopWriter{}
	}
	return &storageWriter{storage: provider}
}

type storageWriter struct {
	storage interfaces.StorageProvider
}

func (w *storageWriter) EnsureDir(ctx context.Context, dir string) error {
	if strings.TrimSpace(dir) == "" || dir == "." {
		return nil
	}
	_, err := w.storage.Exec(ctx, storage.OpEnsureDir, dir)
	return err
}

func (w *storageWriter) Remove(ctx context.Context, target string) error {
	if strings.TrimSpace(target) == "" || target == "." || target == "/" {
		return errors.New("generator: refusing to remove an empty or root path")
	}
	_, err := w.storage.Exec(ctx, storage.OpRemove, target)
	return err
}

// Clear empties dir. An empty dir means the storage root.
func (w *storageWriter) Clear(ctx context.Context, dir string) error {
	_, err := w.storage.Exec(ctx, storage.OpClear, dir)
	return err
}

func (w *storageWriter) WriteFile(ctx context.Context, req writeFileRequest) error {
	if req.Content == nil {
		return errors.New("generator: write requires content reader")
	}
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("generator: write requires path")
	}
	if req.Metadata == nil {
		req.Metadata = map[string]string{}
	}
	args := []any{
		req.Path,
		req.Content,
		req.Size,
		string(req.Category),
		req.ContentType,
		req.Checksum,
		req.Metadata,
	}
	_, err := w.storage.Exec(ctx, storage.OpWrite, args...)
	return err
}

type noopWriter struct{}

func (noopWriter) EnsureDir(context.Context, string) error { return nil }

func (noopWriter) Remove(context.Context, string) error { return nil }

func (noopWriter) Clear(context.Context, string) error { return nil }

func (noopWriter) WriteFile(context.Context, writeFileRequest) error { return nil }

// artifactSink writes build outputs under the output directory and records
// what it wrote. It is used from a single goroutine.
type artifactSink struct {
	writer    artifactWriter
	baseDir   string
	dirs      map[string]struct{}
	artifacts []Artifact
	bytes     int64
}

func newArtifactSink(writer artifactWriter, baseDir string) *artifactSink {
	return &artifactSink{
		writer:  writer,
		baseDir: baseDir,
		dirs:    map[string]struct{}{},
	}
}

func (s *artifactSink) put(
	ctx context.Context,
	rel string,
	category writeCategory,
	contentType string,
	content []byte,
	metadata map[string]string,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rel = strings.TrimLeft(path.Clean("/"+rel), "/")
	fullPath := joinOutputPath(s.baseDir, rel)
	if err := ensureDir(ctx, s.writer, s.dirs, path.Dir(fullPath)); err != nil {
		return err
	}
	checksum := computeHash(content)
	req := writeFileRequest{
		Path:        fullPath,
		Content:     bytes.NewReader(content),
		Size:        int64(len(content)),
		Category:    category,
		ContentType: contentType,
		Checksum:    checksum,
		Metadata:    metadata,
	}
	if err := s.writer.WriteFile(ctx, req); err != nil {
		return err
	}
	s.bytes += int64(len(content))
	s.artifacts = append(s.artifacts, Artifact{
		Path:     rel,
		Category: string(category),
		Checksum: checksum,
		Size:     int64(len(content)),
	})
	return nil
}
