package concurrent

import (
	"errors"
	"time"
)

var ErrScheduleTimeout = errors.New("schedule error: goroutine pool is full")

// WorkerPool bounds the number of goroutines serving connection handlers.
// based on the gopool pattern from
// https://sergey.kamardin.org/articles/million-websocket-and-go/
type WorkerPool struct {
	sem  chan struct{}
	work chan func()
}

func NewWorkerPool(maxWorkers, queueSize int) *WorkerPool {
	return &WorkerPool{
		sem:  make(chan struct{}, maxWorkers),
		work: make(chan func(), queueSize),
	}
}

// Spawn starts n resident workers up front.
func (p *WorkerPool) Spawn(n int) {
	for i := 0; i < n; i++ {
		p.sem <- struct{}{}
		go p.worker(func() {})
	}
}

// Schedule runs task on an existing worker, or lazily starts a new one while
// the worker budget allows. blocks when the pool is saturated.
func (p *WorkerPool) Schedule(task func()) {
	select {
	case p.work <- task:
	case p.sem <- struct{}{}:
		go p.worker(task)
	}
}

// ScheduleTimeout is Schedule bounded by timeout; a full pool returns
// ErrScheduleTimeout instead of blocking forever.
func (p *WorkerPool) ScheduleTimeout(timeout time.Duration, task func()) error {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case p.work <- task:
		return nil
	case p.sem <- struct{}{}:
		go p.worker(task)
		return nil
	case <-t.C:
		return ErrScheduleTimeout
	}
}

func (p *WorkerPool) worker(task func()) {
	defer func() { <-p.sem }()

	task()
	for task := range p.work {
		task()
	}
}

func (p *WorkerPool) Close() {
	close(p.work)
}
