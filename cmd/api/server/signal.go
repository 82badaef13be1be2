package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// SignalError is the cancellation cause recorded by WithSignal.
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("received %s", e.Signal)
}

// WithSignal returns a context that is canceled with a *SignalError cause on
// the first SIGINT or SIGTERM. A second signal calls force, which defaults to
// exiting with status 130.
func WithSignal(ctx context.Context, force func()) (context.Context, context.CancelFunc) {
	if force == nil {
		force = func() { os.Exit(130) }
	}
	ctx, cancel := context.WithCancelCause(ctx)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig, ok := <-sigCh:
			if !ok {
				return
			}
			cancel(&SignalError{Signal: sig})
		case <-ctx.Done():
			return
		}
		if _, ok := <-sigCh; ok {
			force()
		}
	}()

	return ctx, func() {
		cancel(context.Canceled)
		signal.Stop(sigCh)
		close(sigCh)
	}
}
