package coroutine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter processes n items, suspending every batch items.
func counter(n, batch int, progress *int) Coroutine {
	return func(yield func() bool) error {
		for i := 0; i < n; i++ {
			*progress = i + 1
			if (i+1)%batch == 0 && i+1 < n {
				if !yield() {
					return ErrCanceled
				}
			}
		}
		return nil
	}
}

func TestRunSync_NeverSuspends(t *testing.T) {
	progress := 0
	require.NoError(t, RunSync(counter(100, 10, &progress)))
	assert.Equal(t, 100, progress)
}

func TestRunAsync_OneResumePerSuspension(t *testing.T) {
	q := NewFrameQueue()
	progress := 0
	task := RunAsync(counter(100, 30, &progress), q)

	// First chunk runs inline.
	assert.Equal(t, 30, progress)
	assert.Equal(t, 1, q.Len())

	frames := 0
	for {
		select {
		case <-task.Done():
			require.NoError(t, task.Err())
			assert.Equal(t, 100, progress)
			assert.Equal(t, 3, frames)
			assert.Equal(t, 3, task.Resumes())
			assert.Equal(t, 0, q.Len())
			return
		default:
		}
		require.Equal(t, 1, q.Pump(), "exactly one pending step per suspension")
		frames++
	}
}

func TestRunAsync_NoSuspensionFinishesInline(t *testing.T) {
	q := NewFrameQueue()
	progress := 0
	task := RunAsync(counter(5, 10, &progress), q)

	select {
	case <-task.Done():
	default:
		t.Fatal("task should be done without pumping")
	}
	assert.Equal(t, 0, q.Len())
	assert.NoError(t, task.Err())
}

func TestTask_CancelStopsResuming(t *testing.T) {
	q := NewFrameQueue()
	progress := 0
	var unwound bool
	co := func(yield func() bool) error {
		defer func() { unwound = true }()
		return counter(100, 10, &progress)(yield)
	}
	task := RunAsync(co, q)
	require.Equal(t, 10, progress)

	var gotErr error
	task.OnDone(func(err error) { gotErr = err })
	task.Cancel()
	task.Cancel()

	assert.True(t, unwound)
	assert.ErrorIs(t, task.Err(), ErrCanceled)
	assert.ErrorIs(t, gotErr, ErrCanceled)

	// The step queued before cancellation must not advance the coroutine.
	q.Pump()
	assert.Equal(t, 10, progress)
}

func TestTask_PropagatesError(t *testing.T) {
	q := NewFrameQueue()
	boom := errors.New("boom")
	task := RunAsync(func(yield func() bool) error {
		if !yield() {
			return ErrCanceled
		}
		return boom
	}, q)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.ErrorIs(t, Await(ctx, q, task), boom)

	called := false
	task.OnDone(func(err error) {
		called = true
		assert.ErrorIs(t, err, boom)
	})
	assert.True(t, called)
}
