// Package workerpool implements a fixed-parallelism fork-join pool: a batch
// of tasks is handed to Run, the caller's own goroutine executes its share
// of them, and Run blocks until every task — caller's and workers' — has
// completed (spec.md §4.4/§5).
package workerpool

import (
	"log/slog"
	"runtime"
	"sync"
)

// Task is a unit of work submitted to a Run call.
type Task func()

// Pool runs batches of tasks across a fixed number of goroutines. The
// parallelism is fixed at construction; Run may be called repeatedly, but
// never while a previous Run on the same Pool is still in flight.
type Pool struct {
	parallelism int

	mu              sync.Mutex
	cond            *sync.Cond // signaled on new tasks available, or stop
	doneCond        *sync.Cond // signaled when tasksToComplete reaches 0
	tasks           []Task     // one slot per worker goroutine; nil means idle this batch
	tasksToComplete int
	stop            bool

	wg sync.WaitGroup
}

// New creates a pool with the given parallelism (the caller's goroutine
// counts as one of them, so parallelism-1 extra goroutines are spawned).
// parallelism below 1 is treated as 1.
func New(parallelism int) *Pool {
	if parallelism < 1 {
		parallelism = 1
	}

	p := &Pool{
		parallelism: parallelism,
		tasks:       make([]Task, parallelism-1),
	}
	p.cond = sync.NewCond(&p.mu)
	p.doneCond = sync.NewCond(&p.mu)

	for t := 0; t < parallelism-1; t++ {
		p.wg.Add(1)
		go p.loop(t)
	}

	return p
}

// Parallelism returns the pool's fixed degree of parallelism.
func (p *Pool) Parallelism() int { return p.parallelism }

// Run executes tasks and blocks until all of them complete. If there are
// more tasks than worker goroutines, the excess run inline on the caller
// before the caller waits on the workers' share; the last min(len(tasks)-1,
// len(workers)) tasks are the ones queued to workers, so the caller always
// executes at least the first task.
func (p *Pool) Run(tasks []Task) {
	if len(tasks) == 0 {
		return
	}

	numWorkers := len(p.tasks)
	queued := len(tasks) - 1
	if queued > numWorkers {
		queued = numWorkers
	}

	p.mu.Lock()
	for t := 0; t < numWorkers; t++ {
		if t < queued {
			p.tasks[t] = tasks[len(tasks)-queued+t]
		} else {
			p.tasks[t] = nil
		}
	}
	p.tasksToComplete = queued
	p.mu.Unlock()
	p.cond.Broadcast()

	// Whatever didn't get queued to a worker runs inline.
	for t := 0; t < len(tasks)-queued; t++ {
		tasks[t]()
	}

	p.mu.Lock()
	for p.tasksToComplete > 0 {
		p.doneCond.Wait()
	}
	p.mu.Unlock()
}

// Close stops all worker goroutines and waits for them to exit. A Pool must
// not be used after Close.
func (p *Pool) Close() {
	p.mu.Lock()
	p.stop = true
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
}

func (p *Pool) loop(t int) {
	defer p.wg.Done()

	initWorkerThread(t)

	for {
		p.mu.Lock()
		for !p.stop && p.tasks[t] == nil {
			p.cond.Wait()
		}
		if p.stop {
			p.mu.Unlock()
			return
		}
		task := p.tasks[t]
		p.tasks[t] = nil
		p.mu.Unlock()

		if task != nil {
			task()
		}

		p.mu.Lock()
		p.tasksToComplete--
		if p.tasksToComplete == 0 {
			p.doneCond.Broadcast()
		}
		p.mu.Unlock()
	}
}

// initWorkerThread runs once per pool worker goroutine, before it ever
// dequeues a task. It locks the goroutine to its OS thread and engages that
// thread's denormal control word (spec.md §5: "every thread, on creation,
// sets flush-to-zero / denormals-are-zero on its SIMD control word"). The
// lock is never released: these goroutines live for the pool's lifetime, so
// there is no thread to hand back.
func initWorkerThread(t int) {
	runtime.LockOSThread()
	setDenormalControl()
	slog.Debug("worker thread starting", "worker", t, "denormal_control_engaged", denormalControlAvailable)
}
