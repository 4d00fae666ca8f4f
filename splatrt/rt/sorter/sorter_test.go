package sorter

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookDownNegZ() mgl32.Mat4 {
	return mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
}

func waitResult(t *testing.T, s *Sorter) Result {
	t.Helper()
	select {
	case r := <-s.Results():
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for sort result")
	}
	return Result{}
}

func TestSortByDepth_FarthestFirst(t *testing.T) {
	positions := []float32{
		0, 0, -5,
		0, 0, -50,
		0, 0, -1,
		0, 0, -20,
	}
	dst := make([]uint32, 4)
	SortByDepth(dst, positions, lookDownNegZ())
	assert.Equal(t, []uint32{1, 3, 0, 2}, dst)
}

func TestSortByDepth_FlatDepthIsIdentity(t *testing.T) {
	positions := []float32{
		1, 0, -5,
		2, 0, -5,
		3, 0, -5,
	}
	dst := make([]uint32, 3)
	SortByDepth(dst, positions, lookDownNegZ())
	assert.Equal(t, []uint32{0, 1, 2}, dst)
}

func TestSortByDepth_IsPermutation(t *testing.T) {
	const n = 10000
	positions := make([]float32, 3*n)
	for i := 0; i < n; i++ {
		positions[3*i] = float32(i%17) - 8
		positions[3*i+1] = float32(i%5) - 2
		positions[3*i+2] = -float32((i*7919)%1000) / 10
	}
	dst := make([]uint32, n)
	SortByDepth(dst, positions, lookDownNegZ())

	seen := make([]bool, n)
	for _, idx := range dst {
		require.False(t, seen[idx])
		seen[idx] = true
	}
	view := lookDownNegZ()
	for i := 1; i < n; i++ {
		a, b := dst[i-1], dst[i]
		da := Depth(view, positions[3*a], positions[3*a+1], positions[3*a+2])
		db := Depth(view, positions[3*b], positions[3*b+1], positions[3*b+2])
		// Quantisation may merge neighbours, never invert distant ones.
		assert.GreaterOrEqual(t, da+0.01, db)
	}
}

func TestSorter_PostAndReceive(t *testing.T) {
	s := Start([]float32{0, 0, -1, 0, 0, -10}, 2)
	defer s.Terminate()

	seq, ok := s.Post(lookDownNegZ())
	require.True(t, ok)
	r := waitResult(t, s)
	assert.Equal(t, seq, r.Seq)
	assert.Equal(t, []uint32{1, 0}, r.Indices)
}

func TestSorter_SetPositionsAppliesBeforeNextSort(t *testing.T) {
	s := Start([]float32{0, 0, -1, 0, 0, -10}, 2)
	defer s.Terminate()

	s.SetPositions([]float32{0, 0, -10, 0, 0, -1})
	_, ok := s.Post(lookDownNegZ())
	require.True(t, ok)
	assert.Equal(t, []uint32{0, 1}, waitResult(t, s).Indices)
}

func TestSorter_TerminateIsIdempotent(t *testing.T) {
	s := Start([]float32{0, 0, -1}, 1)
	s.Terminate()
	s.Terminate()
	assert.True(t, s.Terminated())

	_, ok := s.Post(lookDownNegZ())
	assert.False(t, ok)
	s.SetPositions([]float32{0, 0, -2})
}
