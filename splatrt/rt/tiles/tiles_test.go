package tiles

import (
	"context"
	"testing"

	"github.com/gekko3d/gsplat/splatrt/rt/coroutine"
	"github.com/gekko3d/gsplat/splatrt/rt/gpu"
	"github.com/gekko3d/gsplat/splatrt/rt/splat"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallOptions() Options {
	opts := DefaultOptions()
	opts.Columns = 2
	opts.Rows = 3
	opts.SplatsPerTile = 500
	return opts
}

func TestGenerate_GridIsDeterministic(t *testing.T) {
	opts := smallOptions()
	a, err := Generate(context.Background(), opts)
	require.NoError(t, err)
	opts.Workers = 1
	b, err := Generate(context.Background(), opts)
	require.NoError(t, err)

	require.Len(t, a, 6)
	for i := range a {
		assert.Equal(t, a[i].Name, b[i].Name)
		assert.Equal(t, a[i].Origin, b[i].Origin)
		assert.Equal(t, a[i].Attributes.Positions, b[i].Attributes.Positions)
	}
	assert.Equal(t, "tile_1_2", a[5].Name)
	assert.Equal(t, float32(0), a[5].Origin.X())
	assert.Equal(t, float32(-16), a[0].Origin.X())

	n, err := a[0].Attributes.Count()
	require.NoError(t, err)
	assert.Equal(t, 500, n)
	assert.NotEqual(t, a[0].Attributes.Positions, a[1].Attributes.Positions, "tiles use distinct streams")
}

func TestGenerate_RejectsBadOptions(t *testing.T) {
	opts := smallOptions()
	opts.Columns = 0
	_, err := Generate(context.Background(), opts)
	assert.Error(t, err)

	opts = smallOptions()
	opts.SHDegree = 4
	_, err = Generate(context.Background(), opts)
	assert.Error(t, err)
}

func TestGenerate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Generate(ctx, smallOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSynthesize_WithinTileAndSH(t *testing.T) {
	a := Synthesize(7, 0, 200, 10, 3, mgl32.Vec3{})
	require.Len(t, a.SH, 200*45)
	for i := 0; i < 200; i++ {
		x, z := a.Positions[3*i], a.Positions[3*i+2]
		assert.True(t, x >= 0 && x <= 10, "x %v", x)
		assert.True(t, z >= 0 && z <= 10, "z %v", z)
		assert.True(t, a.Opacities[i] >= 0.6 && a.Opacities[i] <= 1)
	}
}

func TestLoader_BuildsDrawableTiles(t *testing.T) {
	opts := smallOptions()
	opts.SHDegree = 1
	data, err := Generate(context.Background(), opts)
	require.NoError(t, err)

	dev := gpu.NewHostDevice()
	q := coroutine.NewFrameQueue()
	cfg := splat.DefaultConfig()
	cfg.BatchSize = 200
	l := &Loader{Device: dev, Config: cfg, Sched: q}

	root, tasks, err := l.Build(data)
	require.NoError(t, err)
	require.Len(t, root.Children, 6)
	require.Len(t, tasks, 6)

	for _, task := range tasks {
		require.NoError(t, coroutine.Await(context.Background(), q, task))
	}
	for _, tile := range root.Children {
		m := tile.Content.(*splat.Mesh)
		assert.True(t, m.Enabled())
		assert.Equal(t, 500, m.Count())
		assert.Equal(t, 1, m.SHDegree())
	}
	assert.True(t, data[4].Origin.ApproxEqual(root.Children[4].Transform.Origin()))

	root.Release()
	assert.Equal(t, 0, dev.Live())
}

func TestLoader_ReleasesOnFailure(t *testing.T) {
	data, err := Generate(context.Background(), smallOptions())
	require.NoError(t, err)
	data[3].Attributes.Rotations = nil

	dev := gpu.NewHostDevice()
	l := &Loader{Device: dev, Config: splat.DefaultConfig(), Sched: coroutine.NewFrameQueue()}
	_, _, err = l.Build(data)
	var missing *splat.MissingAttributeError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, err.Error(), "tile_1_1")
	assert.Equal(t, 0, dev.Live())
}
