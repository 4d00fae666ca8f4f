package splat

// TextureSize returns the data texture dimensions for count splats. Width is
// fixed at maxWidth; height is the smallest power of two giving enough texels.
// When that height would exceed maxWidth it is clamped and a
// CapacityExceededError describes the overflow.
func TextureSize(count, maxWidth int) (width, height int, overflow *CapacityExceededError) {
	width = maxWidth
	height = 1
	for width*height < count {
		height *= 2
	}
	if height > width {
		height = width
		overflow = &CapacityExceededError{
			Count:    count,
			Capacity: width * height,
			Width:    width,
			Height:   height,
		}
	}
	return width, height, overflow
}
