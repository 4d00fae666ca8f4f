package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gsplat/splatrt/rt/core"
	"github.com/google/uuid"
)

// WgpuDevice creates splat data textures and index buffers on a WebGPU device.
type WgpuDevice struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue
}

func NewWgpuDevice(device *wgpu.Device) *WgpuDevice {
	return &WgpuDevice{
		Device: device,
		Queue:  device.GetQueue(),
	}
}

func wgpuFormat(f core.TextureFormat) (wgpu.TextureFormat, error) {
	switch f {
	case core.TextureFormatRGBA32Float:
		return wgpu.TextureFormatRGBA32Float, nil
	case core.TextureFormatRGBA16Float:
		return wgpu.TextureFormatRGBA16Float, nil
	case core.TextureFormatRG16Float:
		return wgpu.TextureFormatRG16Float, nil
	case core.TextureFormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm, nil
	case core.TextureFormatRGBA32Uint:
		return wgpu.TextureFormatRGBA32Uint, nil
	}
	return 0, fmt.Errorf("gpu: unsupported texture format %v", f)
}

func (d *WgpuDevice) CreateTexture(desc core.TextureDesc) (core.Texture, error) {
	format, err := wgpuFormat(desc.Format)
	if err != nil {
		return nil, err
	}
	extent := wgpu.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1}
	tex, err := d.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         desc.Label,
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create texture %q: %w", desc.Label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("gpu: create view %q: %w", desc.Label, err)
	}
	return &WgpuTexture{
		id:      uuid.NewString(),
		desc:    desc,
		extent:  extent,
		queue:   d.Queue,
		Texture: tex,
		View:    view,
	}, nil
}

func (d *WgpuDevice) CreateIndexBuffer(label string, count int) (core.IndexBuffer, error) {
	size := uint64(4 * count)
	if size == 0 {
		size = 4
	}
	buf, err := d.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create index buffer %q: %w", label, err)
	}
	return &WgpuIndexBuffer{
		id:     uuid.NewString(),
		count:  count,
		queue:  d.Queue,
		Buffer: buf,
	}, nil
}

type WgpuTexture struct {
	id     string
	desc   core.TextureDesc
	extent wgpu.Extent3D
	queue  *wgpu.Queue

	Texture *wgpu.Texture
	View    *wgpu.TextureView
}

func (t *WgpuTexture) ID() string             { return t.id }
func (t *WgpuTexture) Desc() core.TextureDesc { return t.desc }

func (t *WgpuTexture) Write(texels []byte) error {
	if t.Texture == nil {
		return ErrReleased
	}
	if len(texels) != t.desc.ByteSize() {
		return fmt.Errorf("gpu: texture %q expects %d bytes, got %d", t.desc.Label, t.desc.ByteSize(), len(texels))
	}
	return t.queue.WriteTexture(
		t.Texture.AsImageCopy(),
		texels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  t.desc.Width * uint32(t.desc.Format.BytesPerTexel()),
			RowsPerImage: t.desc.Height,
		},
		&t.extent,
	)
}

func (t *WgpuTexture) Release() {
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
}

type WgpuIndexBuffer struct {
	id    string
	count int
	queue *wgpu.Queue

	Buffer *wgpu.Buffer
}

func (b *WgpuIndexBuffer) ID() string { return b.id }
func (b *WgpuIndexBuffer) Len() int   { return b.count }

func (b *WgpuIndexBuffer) Write(indices []uint32) error {
	if b.Buffer == nil {
		return ErrReleased
	}
	if len(indices) != b.count {
		return fmt.Errorf("gpu: index buffer expects %d indices, got %d", b.count, len(indices))
	}
	if len(indices) == 0 {
		return nil
	}
	return b.queue.WriteBuffer(b.Buffer, 0, wgpu.ToBytes(indices))
}

func (b *WgpuIndexBuffer) Release() {
	if b.Buffer != nil {
		b.Buffer.Release()
		b.Buffer = nil
	}
}
