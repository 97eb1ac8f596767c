package board

import (
	"context"
)

// Task is a single-shot asynchronous image load.
type Task struct {
	gen  uint64
	done chan struct{}
	err  error
}

func newTask(gen uint64) *Task {
	return &Task{gen: gen, done: make(chan struct{})}
}

// finished returns a task that has already completed with err.
func finished(gen uint64, err error) *Task {
	t := newTask(gen)
	t.finish(err)
	return t
}

func (t *Task) finish(err error) {
	t.err = err
	close(t.done)
}

// Generation returns the load order of the task on its board.
func (t *Task) Generation() uint64 {
	return t.gen
}

// Done is closed when the task completes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the result of the task. It is nil until Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the task completes or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
