package splat

import "github.com/chewxy/math32"

// shTextureCount is the number of RGBA32Uint textures holding the quantised
// coefficients of one degree; each texel carries 16 coefficient bytes.
func shTextureCount(degree int) int {
	if degree <= 0 {
		return 0
	}
	coeffs := 3 * ((degree+1)*(degree+1) - 1)
	return (coeffs + 15) / 16
}

// QuantizeSH maps a coefficient in roughly [-1, 1] to a byte centred on 128.
func QuantizeSH(v float32) uint8 {
	q := math32.Floor(v*128 + 128.5)
	if !(q > 0) {
		return 0
	}
	if q > 255 {
		return 255
	}
	return uint8(q)
}

// packSH writes the coefficients of splat i into the per-texture word arrays.
func packSH(dst [][]uint32, coeffs []float32, i int) {
	for j, v := range coeffs {
		tex := dst[j/16]
		b := j % 16
		word := 4*i + b/4
		shift := uint(8 * (b % 4))
		tex[word] = tex[word]&^(0xff<<shift) | uint32(QuantizeSH(v))<<shift
	}
}
