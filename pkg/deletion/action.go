package deletion

import "context"

// Action is one idempotent-in-intent operation against one backend. Execute
// must not return or panic on backend failure: failures are converted into
// WorkflowError entries on the target, so that every action in a chain always
// gets its turn.
type Action[T any] interface {
	Execute(ctx context.Context, target T)
}

// Container runs a fixed, ordered list of actions against one workflow target
// with no early exit.
type Container[T any] struct {
	actions []Action[T]
}

// NewContainer creates a container running the given actions in order.
func NewContainer[T any](actions ...Action[T]) *Container[T] {
	return &Container[T]{actions: actions}
}

// ExecuteAll runs every registered action sequentially. Individual failures
// end up on the target; ExecuteAll itself cannot fail.
func (c *Container[T]) ExecuteAll(ctx context.Context, target T) {
	for _, action := range c.actions {
		action.Execute(ctx, target)
	}
}
