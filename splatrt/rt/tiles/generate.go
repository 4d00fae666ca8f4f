// Package tiles is an in-memory tile source: it synthesises splat attribute
// sets laid out on a grid and streams them into a tile tree of splat meshes.
package tiles

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"

	"github.com/chewxy/math32"
	"github.com/gekko3d/gsplat/splatrt/rt/splat"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Columns       int
	Rows          int
	SplatsPerTile int
	TileSize      float32
	SHDegree      int
	Seed          uint64
	// Workers bounds concurrent generation; 0 means GOMAXPROCS.
	Workers int
}

func DefaultOptions() Options {
	return Options{
		Columns:       3,
		Rows:          3,
		SplatsPerTile: 50000,
		TileSize:      16,
		Seed:          1,
	}
}

// Data is one generated tile: its attributes in tile-local space and the
// tile's origin in world space.
type Data struct {
	Name       string
	Column     int
	Row        int
	Origin     mgl32.Vec3
	Attributes *splat.Attributes
}

// Generate synthesises all tiles of the grid concurrently. The result is
// ordered row-major and depends only on opts.
func Generate(ctx context.Context, opts Options) ([]Data, error) {
	if opts.Columns <= 0 || opts.Rows <= 0 {
		return nil, fmt.Errorf("tiles: grid %dx%d is empty", opts.Columns, opts.Rows)
	}
	if opts.SplatsPerTile <= 0 {
		return nil, fmt.Errorf("tiles: %d splats per tile", opts.SplatsPerTile)
	}
	if opts.SHDegree < 0 || opts.SHDegree > 3 {
		return nil, fmt.Errorf("tiles: sh degree %d out of range", opts.SHDegree)
	}
	if opts.TileSize <= 0 {
		opts.TileSize = DefaultOptions().TileSize
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]Data, opts.Columns*opts.Rows)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for row := 0; row < opts.Rows; row++ {
		for col := 0; col < opts.Columns; col++ {
			idx := row*opts.Columns + col
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				// Grid centred on the world origin.
				origin := mgl32.Vec3{
					(float32(col) - float32(opts.Columns)/2) * opts.TileSize,
					0,
					(float32(row) - float32(opts.Rows)/2) * opts.TileSize,
				}
				out[idx] = Data{
					Name:       fmt.Sprintf("tile_%d_%d", col, row),
					Column:     col,
					Row:        row,
					Origin:     origin,
					Attributes: Synthesize(opts.Seed, uint64(idx), opts.SplatsPerTile, opts.TileSize, opts.SHDegree, origin),
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Synthesize builds n splats covering a rolling height field over one tile.
// origin only shifts the height field so neighbouring tiles line up.
func Synthesize(seed, stream uint64, n int, size float32, shDegree int, origin mgl32.Vec3) *splat.Attributes {
	rng := rand.New(rand.NewPCG(seed, stream))
	native := splat.ConventionNative
	a := &splat.Attributes{
		Positions:  make([]float32, 3*n),
		Scales:     make([]float32, 3*n),
		Rotations:  make([]float32, 4*n),
		Colors:     make([]uint8, 4*n),
		Opacities:  make([]float32, n),
		Convention: &native,
	}
	shPer := 0
	if shDegree > 0 {
		shPer = 3 * ((shDegree+1)*(shDegree+1) - 1)
		a.SH = make([]float32, shPer*n)
	}

	// Splat footprint roughly matches the average spacing.
	logBase := math32.Log(size / math32.Sqrt(float32(n)) * 0.75)

	for i := 0; i < n; i++ {
		x := rng.Float32() * size
		z := rng.Float32() * size
		h := height(origin.X()+x, origin.Z()+z)
		y := h + float32(rng.NormFloat64())*0.05

		a.Positions[3*i+0] = x
		a.Positions[3*i+1] = y
		a.Positions[3*i+2] = z

		a.Scales[3*i+0] = logBase + float32(rng.NormFloat64())*0.2
		a.Scales[3*i+1] = logBase - 1.5
		a.Scales[3*i+2] = logBase + float32(rng.NormFloat64())*0.2

		q := mgl32.QuatRotate(rng.Float32()*2*math32.Pi, mgl32.Vec3{0, 1, 0})
		a.Rotations[4*i+0] = q.V[0]
		a.Rotations[4*i+1] = q.V[1]
		a.Rotations[4*i+2] = q.V[2]
		a.Rotations[4*i+3] = q.W

		c := palette(h)
		jitter := uint8(rng.IntN(24))
		a.Colors[4*i+0] = addClamp(c[0], jitter)
		a.Colors[4*i+1] = addClamp(c[1], jitter)
		a.Colors[4*i+2] = addClamp(c[2], jitter)
		a.Colors[4*i+3] = 255
		a.Opacities[i] = 0.6 + rng.Float32()*0.4

		for k := 0; k < shPer; k++ {
			a.SH[shPer*i+k] = float32(rng.NormFloat64()) * 0.1
		}
	}
	return a
}

func height(x, z float32) float32 {
	return 1.5*math32.Sin(x*0.15)*math32.Cos(z*0.12) + 0.5*math32.Sin(x*0.5+z*0.3)
}

// palette maps terrain height to a colour ramp from water to rock.
func palette(h float32) [3]uint8 {
	switch {
	case h < -1:
		return [3]uint8{40, 80, 160}
	case h < 0:
		return [3]uint8{200, 190, 140}
	case h < 1:
		return [3]uint8{70, 140, 60}
	default:
		return [3]uint8{120, 110, 100}
	}
}

func addClamp(c, d uint8) uint8 {
	if int(c)+int(d) > 255 {
		return 255
	}
	return c + d
}
