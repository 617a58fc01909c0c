package commands

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-blog/internal/blog"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

type rebuildCommand struct {
	Reason string
}

func (rebuildCommand) Type() string { return "blog.test.rebuild" }

func (rebuildCommand) Validate() error { return nil }

type strictRebuildCommand struct {
	Reason string
}

func (strictRebuildCommand) Type() string { return "blog.test.rebuild_strict" }

func (m strictRebuildCommand) Validate() error {
	if m.Reason == "" {
		return errors.New("reason required")
	}
	return nil
}

func TestDispatchRetriesTransientWriteFailure(t *testing.T) {
	var attempts atomic.Int32
	handler := NewHandler(func(ctx context.Context, msg rebuildCommand) error {
		if attempts.Add(1) == 1 {
			return &blog.Error{Kind: blog.ErrFilesystem, Path: "dist/index.html"}
		}
		return nil
	}, WithTimeout[rebuildCommand](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), rebuildCommand{Reason: "posts/a.md"}); err != nil {
		t.Fatalf("dispatch: expected retry to succeed, got %v", err)
	}
	if got := attempts.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestDispatchSurfacesContentErrorAfterRetries(t *testing.T) {
	var attempts atomic.Int32
	handler := NewHandler(func(ctx context.Context, msg rebuildCommand) error {
		attempts.Add(1)
		return &blog.Error{Kind: blog.ErrMalformedFrontmatter, Path: "posts/broken.md"}
	}, WithTimeout[rebuildCommand](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	err := dispatcher.Dispatch(context.Background(), rebuildCommand{Reason: "posts/broken.md"})
	if err == nil {
		t.Fatal("expected dispatch to fail")
	}
	if got := attempts.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestDispatchRejectsInvalidMessage(t *testing.T) {
	called := false
	handler := NewHandler(func(ctx context.Context, msg strictRebuildCommand) error {
		called = true
		return nil
	})

	sub := dispatcher.SubscribeCommand(handler)
	t.Cleanup(sub.Unsubscribe)

	err := dispatcher.Dispatch(context.Background(), strictRebuildCommand{})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if called {
		t.Fatal("expected handler body not to run")
	}
}
