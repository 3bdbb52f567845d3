package async

import "context"

// Await starts an operation and blocks until it settles or ctx is done.
// start wires resolve and reject into the operation's callback; each
// operation settles at most once. When ctx ends first the operation is
// cancelled and ctx.Err is returned.
func Await[T any](ctx context.Context, start func(resolve func(T), reject func(error)) OperationTask) (T, error) {
	type outcome struct {
		value T
		err   error
	}
	settled := make(chan outcome, 1)
	send := func(o outcome) {
		select {
		case settled <- o:
		default:
		}
	}

	task := start(
		func(v T) { send(outcome{value: v}) },
		func(err error) { send(outcome{err: err}) },
	)

	select {
	case o := <-settled:
		return o.value, o.err
	case <-ctx.Done():
		if task != nil {
			task.Cancel()
		}
		var zero T
		return zero, ctx.Err()
	}
}
