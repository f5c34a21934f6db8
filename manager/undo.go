package manager

import (
	"context"
	"log/slog"
)

// undoStack accumulates rollback closures that are executed in reverse
// order when a multi-step install fails partway through. Each closure
// undoes one kernel-side effect (remove a filter, detach a qdisc).
type undoStack []func(context.Context) error

// push appends a rollback closure to the stack.
func (u *undoStack) push(fn func(context.Context) error) {
	*u = append(*u, fn)
}

// rollback executes all closures in reverse order, logging failures.
// Rollback is best-effort; a failing step does not stop the rest.
func (u undoStack) rollback(ctx context.Context, logger *slog.Logger) {
	for i := len(u) - 1; i >= 0; i-- {
		if err := u[i](ctx); err != nil {
			logger.Error("rollback step failed", "step", i, "error", err)
		}
	}
}
