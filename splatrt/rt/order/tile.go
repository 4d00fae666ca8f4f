// Package order places splat renderables in the world and orders them
// back-to-front relative to each other once per frame.
package order

import (
	"github.com/gekko3d/gsplat/splatrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Renderable is a drawable whose placement and cross-renderable draw order are
// set from outside. *splat.Mesh implements it.
type Renderable interface {
	core.Drawable
	Enabled() bool
	SetWorld(world mgl32.Mat4)
	SetRenderOrder(key float32)
	RenderOrder() float32
}

// Tile is one node of a streamed tile tree. Its transform is relative to the
// parent tile. Content is optional: interior tiles often only group children.
type Tile struct {
	Name      string
	Transform *core.Transform
	Content   Renderable
	Children  []*Tile

	// Bounds overrides the tile's local bounds used for culling. When empty
	// the bounds come from the content and the children.
	Bounds core.AABB

	parent      *Tile
	world       mgl32.Mat4
	worldBounds core.AABB
	visible     bool
}

func NewTile(name string, content Renderable) *Tile {
	return &Tile{
		Name:        name,
		Transform:   core.NewTransform(),
		Content:     content,
		Bounds:      core.EmptyAABB(),
		world:       mgl32.Ident4(),
		worldBounds: core.EmptyAABB(),
	}
}

func (t *Tile) AddChild(child *Tile) *Tile {
	child.parent = t
	t.Children = append(t.Children, child)
	return child
}

func (t *Tile) Parent() *Tile { return t.parent }

// World is the local-to-world transform computed by the last update.
func (t *Tile) World() mgl32.Mat4 { return t.world }

// WorldBounds is the world-space box around the tile and its subtree.
func (t *Tile) WorldBounds() core.AABB { return t.worldBounds }

// Visible reports whether the tile survived frustum culling in the last update.
func (t *Tile) Visible() bool { return t.visible }

// Walk visits the tile and its descendants depth first. Returning false from fn
// skips the subtree.
func (t *Tile) Walk(fn func(*Tile) bool) {
	if !fn(t) {
		return
	}
	for _, c := range t.Children {
		c.Walk(fn)
	}
}

// Release releases the content of every tile in the subtree.
func (t *Tile) Release() {
	t.Walk(func(n *Tile) bool {
		if n.Content != nil {
			n.Content.Release()
		}
		return true
	})
}

// updateWorld propagates transforms and rebuilds world bounds bottom up.
func (t *Tile) updateWorld(parentWorld mgl32.Mat4) {
	local := mgl32.Ident4()
	if t.Transform != nil {
		local = t.Transform.Local()
	}
	t.world = parentWorld.Mul4(local)

	bounds := core.EmptyAABB()
	switch {
	case !t.Bounds.IsEmpty():
		bounds = t.Bounds.Transform(t.world)
	case t.Content != nil:
		if b := t.Content.BoundingVolume(); !b.IsEmpty() {
			bounds = b.Transform(t.world)
		}
	}
	for _, c := range t.Children {
		c.updateWorld(t.world)
		if !c.worldBounds.IsEmpty() {
			bounds.Union(c.worldBounds)
		}
	}
	t.worldBounds = bounds
}
