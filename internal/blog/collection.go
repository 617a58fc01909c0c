package blog

import (
	"context"
	"errors"
	"io/fs"
	"slices"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// DirectoryLoader lists and reads the regular files directly inside a
// directory. *markdown.Loader satisfies it.
type DirectoryLoader interface {
	LoadDirectory(ctx context.Context, dir string) ([]*markdown.File, error)
}

// LoadOptions configures collection loading.
type LoadOptions struct {
	Decode DecodeOptions
	// Root is stripped from every document path after construction.
	Root   string
	Logger interfaces.Logger
}

// Collection is an ordered set of documents of one kind.
type Collection struct {
	Kind      Kind
	Documents []*Document
}

// Load parses every file directly inside dir. The first failing file aborts
// the load.
func Load(ctx context.Context, loader DirectoryLoader, dir string, kind Kind, opts LoadOptions) (Collection, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	files, err := loader.LoadDirectory(ctx, dir)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Collection{}, err
		}
		return Collection{}, &Error{Kind: ErrFilesystem, Path: failingPath(err, dir), Err: err}
	}

	docs := make([]*Document, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return Collection{}, err
		}
		decode := opts.Decode
		decode.Path = file.Path
		docLogger := logging.WithDocumentContext(logger, file.Path, string(kind))
		doc, err := NewDocument(kind, file.Path, file.Source, decode)
		if err != nil {
			err = withPath(err, file.Path)
			docLogger.Warn("blog.document.rejected", "error", err)
			return Collection{}, err
		}
		doc.StripRoot(opts.Root)
		docLogger.Debug("blog.document.loaded", "output", doc.Path, "status", doc.Status())
		docs = append(docs, doc)
	}

	logger.Debug("blog.collection.loaded", "dir", dir, "kind", kind, "documents", len(docs))
	return Collection{Kind: kind, Documents: docs}, nil
}

// Filter applies the publish policy. In publish mode only Published and
// Unlisted documents are kept and each of them must carry a date. Outside
// publish mode the collection is returned unchanged.
func (c Collection) Filter(publish bool) (Collection, error) {
	if !publish {
		return c, nil
	}
	kept := make([]*Document, 0, len(c.Documents))
	for _, doc := range c.Documents {
		if !doc.Status().Publishable() {
			continue
		}
		if _, ok := doc.SortDate(); !ok {
			return Collection{}, &Error{Kind: ErrPublishInvariantViolation, Path: doc.Source, Field: "date"}
		}
		kept = append(kept, doc)
	}
	return Collection{Kind: c.Kind, Documents: kept}, nil
}

// Order returns the documents newest first using the index ordering.
func (c Collection) Order() Collection {
	docs := slices.Clone(c.Documents)
	slices.SortStableFunc(docs, func(a, b *Document) int {
		return compareKeys(documentKey(a), documentKey(b))
	})
	return Collection{Kind: c.Kind, Documents: docs}
}

// Listed drops Unlisted documents. The result feeds the index, feeds, tag
// pages and sitemap; unlisted documents are still rendered.
func (c Collection) Listed() Collection {
	docs := make([]*Document, 0, len(c.Documents))
	for _, doc := range c.Documents {
		if doc.Status().Listed() {
			docs = append(docs, doc)
		}
	}
	return Collection{Kind: c.Kind, Documents: docs}
}

// Len returns the number of documents.
func (c Collection) Len() int {
	return len(c.Documents)
}

func documentKey(doc *Document) sortKey {
	date, ok := doc.SortDate()
	return sortKey{date: date, hasDate: ok, title: doc.Metadata.Title, link: doc.Path, kind: doc.Kind.rank()}
}

func failingPath(err error, fallback string) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) && pathErr.Path != "" {
		return pathErr.Path
	}
	return fallback
}
