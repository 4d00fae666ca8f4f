package gsplat

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Profiler accumulates CPU time per named scope across frames and keeps the
// latest value of named counters.
type Profiler struct {
	order  []string
	scopes map[string]*scopeStats
	counts map[string]int
}

type scopeStats struct {
	total time.Duration
	last  time.Duration
	max   time.Duration
	calls int
}

func NewProfiler() *Profiler {
	return &Profiler{
		scopes: make(map[string]*scopeStats),
		counts: make(map[string]int),
	}
}

// Measure runs fn and records its duration under name.
func (p *Profiler) Measure(name string, fn func()) {
	start := time.Now()
	fn()
	p.Record(name, time.Since(start))
}

func (p *Profiler) Record(name string, d time.Duration) {
	s, ok := p.scopes[name]
	if !ok {
		s = &scopeStats{}
		p.scopes[name] = s
		p.order = append(p.order, name)
	}
	s.total += d
	s.last = d
	s.max = max(s.max, d)
	s.calls++
}

func (p *Profiler) SetCount(name string, count int) {
	p.counts[name] = count
}

func (p *Profiler) Count(name string) int { return p.counts[name] }

// Calls is how many times name was recorded.
func (p *Profiler) Calls(name string) int {
	if s, ok := p.scopes[name]; ok {
		return s.calls
	}
	return 0
}

func (p *Profiler) String() string {
	var sb strings.Builder

	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.order {
		s := p.scopes[name]
		avg := s.total / time.Duration(s.calls)
		fmt.Fprintf(&sb, "  %-15s: avg %.2f ms, max %.2f ms, %d calls\n",
			name, ms(avg), ms(s.max), s.calls)
	}

	sb.WriteString("Stats:\n")
	keys := make([]string, 0, len(p.counts))
	for k := range p.counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-15s: %d\n", k, p.counts[k])
	}
	return sb.String()
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
