package splat

import "image"

// ColorImage returns the packed colour texture as an image, one pixel per
// texel. Unused texels are transparent black.
func (m *Mesh) ColorImage() *image.RGBA {
	if m.width == 0 || m.height == 0 {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, m.width, m.height))
	copy(img.Pix, m.colors)
	return img
}
