package order

import (
	"testing"

	"github.com/gekko3d/gsplat/splatrt/rt/core"
	"github.com/gekko3d/gsplat/splatrt/rt/gpu"
	"github.com/gekko3d/gsplat/splatrt/rt/splat"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Renderable = (*splat.Mesh)(nil)

type fakeRenderable struct {
	bounds   core.AABB
	enabled  bool
	world    mgl32.Mat4
	key      float32
	released int
}

func newFake(min, max mgl32.Vec3) *fakeRenderable {
	return &fakeRenderable{bounds: core.AABB{Min: min, Max: max}, enabled: true, world: mgl32.Ident4()}
}

func (f *fakeRenderable) BoundingVolume() core.AABB     { return f.bounds }
func (f *fakeRenderable) OnBeforeDraw(cam *core.Camera) {}
func (f *fakeRenderable) Release()                      { f.released++ }
func (f *fakeRenderable) Enabled() bool                 { return f.enabled }
func (f *fakeRenderable) SetWorld(world mgl32.Mat4)     { f.world = world }
func (f *fakeRenderable) SetRenderOrder(key float32)    { f.key = key }
func (f *fakeRenderable) RenderOrder() float32          { return f.key }

// Camera at the origin looking down -Z.
func originCamera() *core.Camera {
	return core.NewCamera(mgl32.Ident4(), mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 1000), 100, 100)
}

func unitBox() (mgl32.Vec3, mgl32.Vec3) {
	return mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}
}

func tileAt(name string, r Renderable, pos mgl32.Vec3) *Tile {
	t := NewTile(name, r)
	t.Transform.Position = pos
	return t
}

func TestOrderKey(t *testing.T) {
	view := mgl32.Translate3D(0, 0, -10)
	key := OrderKey(view, mgl32.Translate3D(3, 0, 10), mgl32.Vec3{0, 4, 0})
	assert.InDelta(t, -5, key, 1e-5)
}

func TestCoordinator_SortsFarthestFirst(t *testing.T) {
	near, mid, far := newFake(unitBox()), newFake(unitBox()), newFake(unitBox())
	root := NewTile("root", nil)
	root.AddChild(tileAt("mid", mid, mgl32.Vec3{0, 0, -20}))
	root.AddChild(tileAt("near", near, mgl32.Vec3{0, 0, -5}))
	root.AddChild(tileAt("far", far, mgl32.Vec3{0, 0, -50}))

	c := NewCoordinator(nil)
	got := c.Update(originCamera(), root)
	require.Len(t, got, 3)
	assert.Same(t, far, got[0])
	assert.Same(t, mid, got[1])
	assert.Same(t, near, got[2])

	assert.InDelta(t, -50, far.key, 1e-4)
	assert.InDelta(t, -5, near.key, 1e-4)
	assert.Equal(t, mgl32.Translate3D(0, 0, -20), mid.world)
}

func TestCoordinator_FlattenLocalZ(t *testing.T) {
	// Tall content above a tile: only its footprint should count.
	tall := newFake(mgl32.Vec3{-1, -1, 0}, mgl32.Vec3{1, 1, 40})
	root := NewTile("root", nil)
	root.AddChild(tileAt("tall", tall, mgl32.Vec3{0, 0, -30}))

	c := NewCoordinator(nil)
	c.Update(originCamera(), root)
	assert.InDelta(t, -10, tall.key, 1e-4)

	c.FlattenLocalZ = true
	c.Update(originCamera(), root)
	assert.InDelta(t, -30, tall.key, 1e-4)
}

func TestCoordinator_UsesBoundsCenterAndNesting(t *testing.T) {
	offCenter := newFake(mgl32.Vec3{0, 0, -12}, mgl32.Vec3{2, 2, -8})
	plain := newFake(unitBox())

	root := NewTile("root", nil)
	group := root.AddChild(tileAt("group", nil, mgl32.Vec3{0, 0, -10}))
	group.AddChild(tileAt("child", plain, mgl32.Vec3{0, 0, -5}))
	root.AddChild(NewTile("offCenter", offCenter))

	got := NewCoordinator(nil).Update(originCamera(), root)
	require.Len(t, got, 2)
	assert.Same(t, plain, got[0])
	assert.InDelta(t, -15, plain.key, 1e-4)
	assert.InDelta(t, -mgl32.Vec3{1, 1, -10}.Len(), offCenter.key, 1e-4)
	assert.Equal(t, mgl32.Translate3D(0, 0, -15), plain.world)
}

func TestCoordinator_CullsTilesOutsideFrustum(t *testing.T) {
	front, behind, hiddenChild := newFake(unitBox()), newFake(unitBox()), newFake(unitBox())
	root := NewTile("root", nil)
	root.AddChild(tileAt("front", front, mgl32.Vec3{0, 0, -10}))
	back := root.AddChild(tileAt("behind", behind, mgl32.Vec3{0, 0, 30}))
	back.AddChild(tileAt("hiddenChild", hiddenChild, mgl32.Vec3{0, 0, 1}))

	c := NewCoordinator(nil)
	got := c.Update(originCamera(), root)
	require.Len(t, got, 1)
	assert.Same(t, front, got[0])
	assert.Equal(t, 1, c.Culled())
	assert.True(t, root.Children[0].Visible())
	assert.False(t, back.Visible())
	assert.False(t, back.Children[0].Visible())
}

func TestCoordinator_SkipsDisabledContent(t *testing.T) {
	loading := newFake(unitBox())
	loading.enabled = false
	root := tileAt("loading", loading, mgl32.Vec3{0, 0, -10})

	got := NewCoordinator(nil).Update(originCamera(), root)
	assert.Empty(t, got)
	assert.Equal(t, mgl32.Translate3D(0, 0, -10), loading.world, "placement is still applied")
}

func TestCoordinator_NilInputs(t *testing.T) {
	c := NewCoordinator(nil)
	assert.Empty(t, c.Update(nil, NewTile("root", nil)))
	assert.Empty(t, c.Update(originCamera(), nil))
}

func TestTile_WorldBoundsAndRelease(t *testing.T) {
	a, b := newFake(unitBox()), newFake(unitBox())
	root := NewTile("root", a)
	root.AddChild(tileAt("b", b, mgl32.Vec3{10, 0, 0}))
	root.updateWorld(mgl32.Ident4())

	wb := root.WorldBounds()
	assert.Equal(t, mgl32.Vec3{-1, -1, -1}, wb.Min)
	assert.Equal(t, mgl32.Vec3{11, 1, 1}, wb.Max)
	assert.Same(t, root, root.Children[0].Parent())

	root.Release()
	assert.Equal(t, 1, a.released)
	assert.Equal(t, 1, b.released)
}

func TestCoordinator_PlacesSplatMeshes(t *testing.T) {
	m := splat.NewMesh(gpu.NewHostDevice(), splat.DefaultConfig(), nil)
	defer m.Release()
	require.NoError(t, m.Ingest(&splat.Attributes{
		Positions: []float32{-1, 0, 0, 1, 0, 0},
		Scales:    make([]float32, 6),
		Rotations: []float32{0, 0, 0, 1, 0, 0, 0, 1},
		Colors:    make([]uint8, 8),
	}))

	root := tileAt("splats", m, mgl32.Vec3{0, 0, -8})
	got := NewCoordinator(nil).Update(originCamera(), root)
	require.Len(t, got, 1)
	assert.InDelta(t, -8, m.RenderOrder(), 1e-4)
	assert.Equal(t, mgl32.Translate3D(0, 0, -8), m.World())
}
