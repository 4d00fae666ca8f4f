// Package coroutine drives long computations in chunks so the render loop is
// never blocked by them.
//
// A Coroutine receives a yield function and calls it at each suspension point.
// yield reports false once the coroutine has been cancelled; the coroutine must
// then return promptly without touching any state it was filling in.
package coroutine

import (
	"errors"
	"iter"
)

var ErrCanceled = errors.New("coroutine: canceled")

type Coroutine func(yield func() bool) error

// Scheduler is the host primitive that resumes a suspended coroutine later,
// typically on the next frame.
type Scheduler interface {
	Schedule(step func())
}

// RunSync drives co to completion without ever suspending.
func RunSync(co Coroutine) error {
	return co(func() bool { return true })
}

// Task is an asynchronously driven coroutine. Cancel and the scheduled steps
// must run on the same goroutine as RunAsync.
type Task struct {
	sched Scheduler
	next  func() (struct{}, bool)
	stop  func()
	done  chan struct{}

	coErr    error
	err      error
	finished bool
	resumes  int
	onDone   []func(err error)
}

// RunAsync runs co up to its first suspension point immediately and then
// resumes it once per suspension through sched until it returns.
func RunAsync(co Coroutine, sched Scheduler) *Task {
	t := &Task{
		sched: sched,
		done:  make(chan struct{}),
	}
	seq := func(yield func(struct{}) bool) {
		t.coErr = co(func() bool { return yield(struct{}{}) })
	}
	t.next, t.stop = iter.Pull(iter.Seq[struct{}](seq))
	t.step()
	return t
}

func (t *Task) step() {
	if t.finished {
		return
	}
	if _, ok := t.next(); !ok {
		t.finish(t.coErr)
		return
	}
	t.sched.Schedule(t.resume)
}

func (t *Task) resume() {
	if t.finished {
		return
	}
	t.resumes++
	t.step()
}

func (t *Task) finish(err error) {
	t.finished = true
	t.stop()
	t.err = err
	close(t.done)
	for _, fn := range t.onDone {
		fn(err)
	}
	t.onDone = nil
}

// Cancel stops resuming. The coroutine observes yield returning false and
// unwinds; Err reports ErrCanceled. Calling Cancel on a finished task is a no-op.
func (t *Task) Cancel() {
	if t.finished {
		return
	}
	t.finish(ErrCanceled)
}

// OnDone registers fn to run on the task's goroutine when it finishes.
// If the task already finished, fn runs immediately.
func (t *Task) OnDone(fn func(err error)) {
	if t.finished {
		fn(t.err)
		return
	}
	t.onDone = append(t.onDone, fn)
}

func (t *Task) Done() <-chan struct{} { return t.done }

// Err is the coroutine's result; nil until Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Resumes is the number of times the task was resumed after a suspension.
func (t *Task) Resumes() int { return t.resumes }
