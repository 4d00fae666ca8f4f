package sorter

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const bucketCount = 1 << 16

// Depth is the distance of (x, y, z) in front of the camera along the view axis
// for a right-handed view looking down -Z.
func Depth(modelView mgl32.Mat4, x, y, z float32) float32 {
	return -(modelView[2]*x + modelView[6]*y + modelView[10]*z + modelView[14])
}

// Buffers is reusable scratch space for SortByDepth.
type Buffers struct {
	keys   []uint32
	counts []uint32
}

// SortByDepth writes into dst the permutation of splats ordered by descending
// depth, farthest first. positions holds xyz triples for len(dst) splats.
func SortByDepth(dst []uint32, positions []float32, modelView mgl32.Mat4) {
	var b Buffers
	b.SortByDepth(dst, positions, modelView)
}

// SortByDepth is a counting sort over depth quantised to 16 bits. Splats that
// land in the same bucket keep their index order.
func (b *Buffers) SortByDepth(dst []uint32, positions []float32, modelView mgl32.Mat4) {
	n := len(dst)
	if n == 0 {
		return
	}
	if cap(b.keys) < n {
		b.keys = make([]uint32, n)
	}
	keys := b.keys[:n]
	if b.counts == nil {
		b.counts = make([]uint32, bucketCount)
	}
	counts := b.counts

	minDepth := float32(math.MaxFloat32)
	maxDepth := float32(-math.MaxFloat32)
	for i := 0; i < n; i++ {
		d := Depth(modelView, positions[3*i], positions[3*i+1], positions[3*i+2])
		if d < minDepth {
			minDepth = d
		}
		if d > maxDepth {
			maxDepth = d
		}
	}

	depthRange := maxDepth - minDepth
	if !(depthRange > 0) {
		for i := range dst {
			dst[i] = uint32(i)
		}
		return
	}

	scale := float32(bucketCount-1) / depthRange
	clear(counts)
	for i := 0; i < n; i++ {
		d := Depth(modelView, positions[3*i], positions[3*i+1], positions[3*i+2])
		k := (maxDepth - d) * scale
		key := uint32(bucketCount - 1)
		if k >= 0 && k < bucketCount-1 {
			key = uint32(k)
		}
		keys[i] = key
		counts[key]++
	}

	var sum uint32
	for k := range counts {
		c := counts[k]
		counts[k] = sum
		sum += c
	}

	for i := 0; i < n; i++ {
		key := keys[i]
		dst[counts[key]] = uint32(i)
		counts[key]++
	}
}
