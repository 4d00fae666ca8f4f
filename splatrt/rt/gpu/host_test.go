package gpu

import (
	"testing"

	"github.com/gekko3d/gsplat/splatrt/rt/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostDevice_TextureLifecycle(t *testing.T) {
	dev := NewHostDevice()
	tex, err := dev.CreateTexture(core.TextureDesc{Label: "colors", Width: 4, Height: 2, Format: core.TextureFormatRGBA8Unorm})
	require.NoError(t, err)
	assert.Equal(t, 1, dev.Live())
	assert.NotEmpty(t, tex.ID())

	assert.Error(t, tex.Write(make([]byte, 3)))
	data := make([]byte, 32)
	data[5] = 7
	require.NoError(t, tex.Write(data))
	assert.Equal(t, uint8(7), tex.(*HostTexture).Texels[5])

	tex.Release()
	tex.Release()
	assert.Equal(t, 0, dev.Live())
	assert.Equal(t, 1, dev.Created())
	assert.ErrorIs(t, tex.Write(data), ErrReleased)
}

func TestHostDevice_RejectsBadTextures(t *testing.T) {
	dev := NewHostDevice()
	_, err := dev.CreateTexture(core.TextureDesc{Label: "empty", Format: core.TextureFormatRGBA8Unorm})
	assert.Error(t, err)
	_, err = dev.CreateTexture(core.TextureDesc{Label: "odd", Width: 1, Height: 1})
	assert.Error(t, err)
	assert.Equal(t, 0, dev.Live())
}

func TestHostDevice_IndexBuffer(t *testing.T) {
	dev := NewHostDevice()
	buf, err := dev.CreateIndexBuffer("order", 3)
	require.NoError(t, err)
	require.NoError(t, buf.Write([]uint32{2, 0, 1}))
	assert.Equal(t, []uint32{2, 0, 1}, buf.(*HostIndexBuffer).Indices)
	assert.Error(t, buf.Write([]uint32{1}))

	buf.Release()
	assert.ErrorIs(t, buf.Write([]uint32{0, 1, 2}), ErrReleased)
	assert.Equal(t, 0, dev.Live())
}
