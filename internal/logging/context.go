package logging

import (
	"context"
	"maps"

	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/google/uuid"
)

type contextKey string

const contextFieldsKey contextKey = "blog.logging.fields"

// FieldBuildID correlates every entry logged on behalf of one build or check.
const FieldBuildID = "build_id"

// ContextWithFields returns a context carrying logging fields, merged over any
// fields already present.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}

	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, contextFieldsKey, merged)
}

// ContextFields returns a copy of the fields stored on ctx.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, ok := ctx.Value(contextFieldsKey).(map[string]any)
	if !ok || len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

// WithBuildID stamps a random build id onto ctx. An id already present is
// kept, so a command and the build it triggers share one.
func WithBuildID(ctx context.Context) (context.Context, string) {
	if ctx == nil {
		ctx = context.Background()
	}
	if id, ok := ContextFields(ctx)[FieldBuildID].(string); ok && id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return ContextWithFields(ctx, map[string]any{FieldBuildID: id}), id
}

// FromContext attaches the fields stored on ctx to logger.
func FromContext(ctx context.Context, logger interfaces.Logger) interfaces.Logger {
	return WithFields(logger, ContextFields(ctx))
}
