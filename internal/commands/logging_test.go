package commands

import (
	"context"
	"testing"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

type fieldsLogger struct {
	fields map[string]any
}

func (l *fieldsLogger) Trace(string, ...any)                          {}
func (l *fieldsLogger) Debug(string, ...any)                          {}
func (l *fieldsLogger) Info(string, ...any)                           {}
func (l *fieldsLogger) Warn(string, ...any)                           {}
func (l *fieldsLogger) Error(string, ...any)                          {}
func (l *fieldsLogger) Fatal(string, ...any)                          {}
func (l *fieldsLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l *fieldsLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := map[string]any{}
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &fieldsLogger{fields: merged}
}

type namedProvider struct {
	names []string
}

func (p *namedProvider) GetLogger(name string) interfaces.Logger {
	p.names = append(p.names, name)
	return &fieldsLogger{}
}

func TestCommandLoggerTagsModule(t *testing.T) {
	provider := &namedProvider{}
	logger := CommandLogger(provider, " site ")

	if len(provider.names) != 1 || provider.names[0] != "blog.commands" {
		t.Fatalf("expected blog.commands logger, got %v", provider.names)
	}
	fl, ok := logger.(*fieldsLogger)
	if !ok {
		t.Fatalf("expected fields logger, got %T", logger)
	}
	if fl.fields["command_module"] != "site" || fl.fields["component"] != "command" {
		t.Fatalf("unexpected fields %v", fl.fields)
	}
	if fl.fields["module"] != "blog.commands" {
		t.Fatalf("expected module field, got %v", fl.fields["module"])
	}
}
