package sitecmd

import (
	"context"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

var (
	_ command.Commander[BuildSiteCommand] = (*BuildSiteHandler)(nil)
	_ command.Commander[CheckSiteCommand] = (*CheckSiteHandler)(nil)
)

// BuildSiteHandler runs generator builds through the shared command handler.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to the provided generator service.
func NewBuildSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil {
			return generator.ErrServiceDisabled
		}
		result, err := service.Build(ctx, generator.BuildOptions{
			Publish: msg.Publish,
			DryRun:  msg.DryRun,
			Clean:   msg.Clean,
		})
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Build: result,
			Metadata: map[string]any{
				"operation": "build",
				"publish":   msg.Publish,
				"dry_run":   msg.DryRun,
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand]("site.build"),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{}
			if msg.Publish {
				fields["publish"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			if msg.Clean {
				fields["clean"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CheckSiteHandler validates content without writing anything.
type CheckSiteHandler struct {
	inner *commands.Handler[CheckSiteCommand]
}

// NewCheckSiteHandler constructs a handler that runs generator checks.
func NewCheckSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CheckSiteCommand]) *CheckSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg CheckSiteCommand) error {
		if service == nil {
			return generator.ErrServiceDisabled
		}
		result, err := service.Check(ctx, generator.CheckOptions{Publish: msg.Publish})
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Check: result,
			Metadata: map[string]any{
				"operation": "check",
				"publish":   msg.Publish,
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[CheckSiteCommand]{
		commands.WithLogger[CheckSiteCommand](baseLogger),
		commands.WithOperation[CheckSiteCommand]("site.check"),
		commands.WithMessageFields(func(msg CheckSiteCommand) map[string]any {
			if !msg.Publish {
				return nil
			}
			return map[string]any{"publish": true}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CheckSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CheckSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CheckSiteCommand].
func (h *CheckSiteHandler) Execute(ctx context.Context, msg CheckSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
