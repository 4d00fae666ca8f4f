package core

import "fmt"

type TextureFormat uint32

const (
	TextureFormatRGBA32Float TextureFormat = iota + 1
	TextureFormatRGBA16Float
	TextureFormatRG16Float
	TextureFormatRGBA8Unorm
	TextureFormatRGBA32Uint
)

func (f TextureFormat) BytesPerTexel() int {
	switch f {
	case TextureFormatRGBA32Float, TextureFormatRGBA32Uint:
		return 16
	case TextureFormatRGBA16Float:
		return 8
	case TextureFormatRG16Float, TextureFormatRGBA8Unorm:
		return 4
	}
	return 0
}

func (f TextureFormat) String() string {
	switch f {
	case TextureFormatRGBA32Float:
		return "rgba32float"
	case TextureFormatRGBA16Float:
		return "rgba16float"
	case TextureFormatRG16Float:
		return "rg16float"
	case TextureFormatRGBA8Unorm:
		return "rgba8unorm"
	case TextureFormatRGBA32Uint:
		return "rgba32uint"
	}
	return fmt.Sprintf("TextureFormat(%d)", uint32(f))
}

type TextureDesc struct {
	Label  string
	Width  uint32
	Height uint32
	Format TextureFormat
}

// ByteSize is the number of bytes a full upload of the texture takes.
func (d TextureDesc) ByteSize() int {
	return int(d.Width) * int(d.Height) * d.Format.BytesPerTexel()
}

// Texture is a 2D data texture owned by exactly one renderable.
type Texture interface {
	ID() string
	Desc() TextureDesc
	// Write replaces the full texture contents; len(texels) must equal Desc().ByteSize().
	Write(texels []byte) error
	Release()
}

// IndexBuffer holds the per-instance draw order.
type IndexBuffer interface {
	ID() string
	Len() int
	Write(indices []uint32) error
	Release()
}

// Device creates GPU resources. All calls happen on the render goroutine.
type Device interface {
	CreateTexture(desc TextureDesc) (Texture, error)
	CreateIndexBuffer(label string, count int) (IndexBuffer, error)
}
