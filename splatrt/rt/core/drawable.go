package core

// Drawable is the capability the host render loop drives once per frame.
type Drawable interface {
	// BoundingVolume is the local-space bounds of the drawable's content.
	BoundingVolume() AABB
	OnBeforeDraw(cam *Camera)
	Release()
}
