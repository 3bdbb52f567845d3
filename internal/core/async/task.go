package async

import "sync"

// State is the lifecycle state of a task.
type State int

// Task states. Done and Cancelled are terminal.
const (
	StatePending State = iota
	StateDone
	StateCancelled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Cancelable is anything that can be asked to stop.
type Cancelable interface {
	Cancel()
}

// OperationTask is the handle returned for an asynchronous operation.
type OperationTask interface {
	Cancelable
	IsDone() bool
	IsCancelled() bool
}

var _ OperationTask = (*Task)(nil)

// Task is a cancellable operation handle. It owns child tasks that are
// cancelled with it, and an optional hook run on cancellation.
type Task struct {
	mu       sync.Mutex
	state    State
	onCancel func()
	children []Cancelable
}

// NewTask creates a pending task.
func NewTask() *Task {
	return &Task{}
}

// State returns the current state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// IsDone reports whether the task completed.
func (t *Task) IsDone() bool {
	return t.State() == StateDone
}

// IsCancelled reports whether the task was cancelled.
func (t *Task) IsCancelled() bool {
	return t.State() == StateCancelled
}

// IsPending reports whether the task has not reached a terminal state.
func (t *Task) IsPending() bool {
	return t.State() == StatePending
}

// Cancel moves a pending task to cancelled, runs the cancel hook and
// cancels all children. It is idempotent and a no-op once done.
func (t *Task) Cancel() {
	t.mu.Lock()
	if t.state != StatePending {
		t.mu.Unlock()
		return
	}
	t.state = StateCancelled
	hook := t.onCancel
	children := t.children
	t.onCancel = nil
	t.children = nil
	t.mu.Unlock()

	if hook != nil {
		hook()
	}
	for _, c := range children {
		c.Cancel()
	}
}

// MarkDone moves a pending task to done and releases its hook and
// children. It returns false if the task was already terminal.
func (t *Task) MarkDone() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.markDoneLocked()
}

func (t *Task) markDoneLocked() bool {
	if t.state != StatePending {
		return false
	}
	t.state = StateDone
	t.onCancel = nil
	t.children = nil
	return true
}

// SetOnCancel registers fn to run when the task is cancelled. If the task
// is already cancelled fn runs immediately; if it is done fn is dropped.
func (t *Task) SetOnCancel(fn func()) {
	t.mu.Lock()
	switch t.state {
	case StatePending:
		t.onCancel = fn
		t.mu.Unlock()
	case StateCancelled:
		t.mu.Unlock()
		if fn != nil {
			fn()
		}
	default:
		t.mu.Unlock()
	}
}

// AddChild attaches a child that is cancelled together with this task.
// A child added to an already cancelled task is cancelled immediately.
func (t *Task) AddChild(child Cancelable) {
	if child == nil {
		return
	}
	t.mu.Lock()
	switch t.state {
	case StatePending:
		t.children = append(t.children, child)
		t.mu.Unlock()
	case StateCancelled:
		t.mu.Unlock()
		child.Cancel()
	default:
		t.mu.Unlock()
	}
}
