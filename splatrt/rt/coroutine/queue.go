package coroutine

import (
	"context"
	"sync"
)

// FrameQueue is a Scheduler whose steps run when the host pumps it, usually
// once per frame on the render goroutine.
type FrameQueue struct {
	mu      sync.Mutex
	pending []func()
}

func NewFrameQueue() *FrameQueue {
	return &FrameQueue{}
}

func (q *FrameQueue) Schedule(step func()) {
	q.mu.Lock()
	q.pending = append(q.pending, step)
	q.mu.Unlock()
}

// Pump runs the steps that were queued before the call. Steps scheduled while
// pumping run on the next Pump. Returns the number of steps run.
func (q *FrameQueue) Pump() int {
	q.mu.Lock()
	steps := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, step := range steps {
		step()
	}
	return len(steps)
}

func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Await pumps q until t finishes or ctx is done.
func Await(ctx context.Context, q *FrameQueue, t *Task) error {
	for {
		select {
		case <-t.Done():
			return t.Err()
		default:
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if q.Pump() == 0 {
			select {
			case <-t.Done():
				return t.Err()
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
