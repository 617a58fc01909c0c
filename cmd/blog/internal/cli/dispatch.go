package cli

import (
	"context"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
)

// dispatch routes msg through the go-command dispatcher to handler. The
// subscription lives only for the call so repeated runs in one process do not
// stack handlers.
func dispatch[T command.Message](ctx context.Context, handler command.Commander[T], msg T) error {
	sub := dispatcher.SubscribeCommand(handler)
	defer sub.Unsubscribe()
	return dispatcher.Dispatch(ctx, msg)
}
