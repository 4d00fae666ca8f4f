// Package sorter computes back-to-front splat orderings on a background
// goroutine. The render goroutine talks to it only through channels: it posts
// a model-view matrix and later receives a permutation it then owns.
package sorter

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Result is a finished sort. Indices is handed over to the receiver.
type Result struct {
	Indices []uint32
	Seq     uint64
}

type request struct {
	modelView mgl32.Mat4
	seq       uint64
}

type Sorter struct {
	count int
	seq   uint64

	requests  chan request
	positions chan []float32
	results   chan Result
	done      chan struct{}
	stopOnce  sync.Once
}

// Start launches a sorter over count splats. positions holds xyz triples and
// is owned by the sorter from now on.
func Start(positions []float32, count int) *Sorter {
	s := &Sorter{
		count:     count,
		requests:  make(chan request, 1),
		positions: make(chan []float32, 1),
		results:   make(chan Result, 1),
		done:      make(chan struct{}),
	}
	go s.run(positions)
	return s
}

func (s *Sorter) Count() int { return s.count }

// Post queues a sort for modelView without blocking. It returns the request
// sequence number, or false when a request is already queued or the sorter
// was terminated.
func (s *Sorter) Post(modelView mgl32.Mat4) (uint64, bool) {
	select {
	case <-s.done:
		return 0, false
	default:
	}
	s.seq++
	select {
	case s.requests <- request{modelView: modelView, seq: s.seq}:
		return s.seq, true
	default:
		s.seq--
		return 0, false
	}
}

// SetPositions replaces the splat positions used by later sorts. len(p) must be
// 3*Count(). A replacement that was not yet picked up is superseded.
func (s *Sorter) SetPositions(p []float32) {
	for {
		select {
		case <-s.done:
			return
		case s.positions <- p:
			return
		default:
		}
		select {
		case <-s.positions:
		default:
		}
	}
}

func (s *Sorter) Results() <-chan Result { return s.results }

// Terminate stops the background goroutine. Safe to call more than once;
// results still buffered are never delivered.
func (s *Sorter) Terminate() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

func (s *Sorter) Terminated() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Sorter) run(positions []float32) {
	var scratch Buffers

	for {
		select {
		case <-s.done:
			return
		case p := <-s.positions:
			positions = p
		case req := <-s.requests:
			// Positions posted before this request must win over the old ones.
			select {
			case p := <-s.positions:
				positions = p
			default:
			}

			indices := make([]uint32, s.count)
			scratch.SortByDepth(indices, positions, req.modelView)

			select {
			case s.results <- Result{Indices: indices, Seq: req.seq}:
			case <-s.done:
				return
			}
		}
	}
}
