// internal/browser/session/context.go
package session

import (
	"context"
	"time"
)

// CombineContext derives a context that is cancelled when either input
// context is done. The result inherits values and deadline from parentCtx;
// secondaryCtx contributes only its cancellation signal.
func CombineContext(parentCtx, secondaryCtx context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(parentCtx)

	go func() {
		select {
		case <-secondaryCtx.Done():
			cancel()
		case <-combinedCtx.Done():
			// Already cancelled from the parent or a direct call, just exit.
		}
	}()

	return combinedCtx, cancel
}

// valueOnlyContext wraps a parent context to create a "detached" context.
// It inherits all values (like the CDP target information) from its parent,
// but ignores the parent's deadline and cancellation signal. Cleanup tasks
// that must run even after the triggering operation was cancelled use this.
type valueOnlyContext struct {
	context.Context
}

// Deadline always reports that no deadline is set.
func (valueOnlyContext) Deadline() (deadline time.Time, ok bool) { return }

// Done returns nil, indicating this context is never cancelled.
func (valueOnlyContext) Done() <-chan struct{} { return nil }

// Err always returns nil.
func (valueOnlyContext) Err() error { return nil }
