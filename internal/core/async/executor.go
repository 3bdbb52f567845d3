package async

import (
	"sync"
)

// Executor runs functions, possibly on another goroutine.
type Executor interface {
	Execute(fn func())
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(fn func())

// Execute calls f(fn).
func (f ExecutorFunc) Execute(fn func()) {
	f(fn)
}

var (
	// Immediate runs functions on the calling goroutine.
	Immediate Executor = ExecutorFunc(func(fn func()) { fn() })

	// Goroutine runs every function on a new goroutine.
	Goroutine Executor = ExecutorFunc(func(fn func()) { go fn() })
)

// WorkerPool runs functions on a fixed number of goroutines in FIFO order.
// A pool of one worker is a serial executor. The queue is unbounded so
// Execute never blocks the caller.
type WorkerPool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	closed  bool
	wg      sync.WaitGroup
	workers int
}

// NewWorkerPool starts a pool with the given number of workers.
// Values below one are treated as one.
func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	p := &WorkerPool{workers: workers}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.run()
	}
	return p
}

// Execute queues fn. Functions queued after Close are dropped.
func (p *WorkerPool) Execute(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.queue = append(p.queue, fn)
	p.cond.Signal()
}

// Workers returns the pool size.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// Close stops accepting work, drains the queue and waits for workers.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *WorkerPool) run() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		fn := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()

		fn()
	}
}
