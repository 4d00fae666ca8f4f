package order

import (
	"slices"

	"github.com/gekko3d/gsplat/splatrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Coordinator resolves tile visibility and assigns every visible renderable
// an order key of minus its view-space distance, so sorting ascending by key
// draws farthest first.
type Coordinator struct {
	// FlattenLocalZ zeroes the local z of each bounds centre before the key is
	// computed, ranking tiles by their footprint on a z-up local ground plane.
	FlattenLocalZ bool

	log core.Logger

	visible []Renderable
	culled  int
}

func NewCoordinator(log core.Logger) *Coordinator {
	return &Coordinator{log: core.Scope(log, "order")}
}

// OrderKey is -|view * world * center|.
func OrderKey(view, world mgl32.Mat4, center mgl32.Vec3) float32 {
	return -view.Mul4(world).Mul4x1(center.Vec4(1)).Vec3().Len()
}

// Update culls root's subtree against cam, places the visible enabled
// renderables in the world, sets their order keys and returns them sorted
// back-to-front. The returned slice is reused by the next call.
func (c *Coordinator) Update(cam *core.Camera, root *Tile) []Renderable {
	c.visible = c.visible[:0]
	c.culled = 0
	if root == nil || cam == nil {
		return c.visible
	}

	root.updateWorld(mgl32.Ident4())
	planes := cam.Frustum()

	root.Walk(func(t *Tile) bool {
		t.visible = t.worldBounds.IsEmpty() || core.AABBInFrustum(t.worldBounds, planes)
		if !t.visible {
			c.culled++
			// Descendants are hidden along with their parent.
			for _, child := range t.Children {
				child.Walk(func(n *Tile) bool { n.visible = false; return true })
			}
			return false
		}
		r := t.Content
		if r == nil {
			return true
		}
		r.SetWorld(t.world)
		if !r.Enabled() {
			return true
		}
		b := r.BoundingVolume()
		center := mgl32.Vec3{}
		if !b.IsEmpty() {
			center = b.Center()
		}
		if c.FlattenLocalZ {
			center[2] = 0
		}
		r.SetRenderOrder(OrderKey(cam.View, t.world, center))
		c.visible = append(c.visible, r)
		return true
	})

	slices.SortStableFunc(c.visible, func(a, b Renderable) int {
		ka, kb := a.RenderOrder(), b.RenderOrder()
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})

	if c.log.DebugEnabled() {
		c.log.Debugf("order: %d renderables visible, %d tiles culled", len(c.visible), c.culled)
	}
	return c.visible
}

// Culled is the number of subtrees rejected by the last update.
func (c *Coordinator) Culled() int { return c.culled }
