package async

// RequestTask is a Task that owns the caller's callback delegate. The
// delegate is handed out at most once, and never after cancellation.
type RequestTask[C any] struct {
	Task
	callback C
}

// NewRequestTask creates a pending task owning callback.
func NewRequestTask[C any](callback C) *RequestTask[C] {
	return &RequestTask[C]{callback: callback}
}

// Cancel cancels the task and drops the delegate.
func (t *RequestTask[C]) Cancel() {
	t.mu.Lock()
	if t.state == StatePending {
		t.release()
	}
	t.mu.Unlock()
	t.Task.Cancel()
}

// Deliver marks the task done and calls fn with the delegate. It returns
// false without calling fn if the task is already cancelled or done.
// fn runs outside the task lock, so it may safely call back into the task.
func (t *RequestTask[C]) Deliver(fn func(C)) bool {
	cb, ok := t.Claim()
	if !ok {
		return false
	}
	fn(cb)
	return true
}

// Claim marks the task done and hands out the delegate. It returns false
// if the task is already cancelled or done. Use it when the outcome must
// be settled before it is dispatched.
func (t *RequestTask[C]) Claim() (C, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.markDoneLocked() {
		var zero C
		return zero, false
	}
	cb := t.callback
	t.release()
	return cb, true
}

// DeliverOn dispatches Deliver onto executor. The terminal-state check runs
// on the executor, so a Cancel that lands first suppresses the callback.
func (t *RequestTask[C]) DeliverOn(executor Executor, fn func(C)) {
	executor.Execute(func() {
		t.Deliver(fn)
	})
}

// release drops the delegate reference (caller must hold lock).
func (t *RequestTask[C]) release() {
	var zero C
	t.callback = zero
}
