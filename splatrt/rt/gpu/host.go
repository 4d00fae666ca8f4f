// Package gpu provides the Device implementations splat meshes upload into:
// a host-memory device for headless use and tests, and a WebGPU device.
package gpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gekko3d/gsplat/splatrt/rt/core"
	"github.com/google/uuid"
)

var ErrReleased = errors.New("gpu: resource released")

// HostDevice keeps every resource in host memory, keyed by id.
type HostDevice struct {
	mu       sync.Mutex
	textures map[string]*HostTexture
	buffers  map[string]*HostIndexBuffer
	created  int
}

func NewHostDevice() *HostDevice {
	return &HostDevice{
		textures: make(map[string]*HostTexture),
		buffers:  make(map[string]*HostIndexBuffer),
	}
}

func (d *HostDevice) CreateTexture(desc core.TextureDesc) (core.Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("gpu: texture %q has zero size", desc.Label)
	}
	if desc.Format.BytesPerTexel() == 0 {
		return nil, fmt.Errorf("gpu: texture %q has unknown format %v", desc.Label, desc.Format)
	}
	tex := &HostTexture{
		id:     uuid.NewString(),
		desc:   desc,
		Texels: make([]byte, desc.ByteSize()),
		dev:    d,
	}
	d.mu.Lock()
	d.textures[tex.id] = tex
	d.created++
	d.mu.Unlock()
	return tex, nil
}

func (d *HostDevice) CreateIndexBuffer(label string, count int) (core.IndexBuffer, error) {
	buf := &HostIndexBuffer{
		id:      uuid.NewString(),
		label:   label,
		Indices: make([]uint32, count),
		dev:     d,
	}
	d.mu.Lock()
	d.buffers[buf.id] = buf
	d.created++
	d.mu.Unlock()
	return buf, nil
}

// Live is the number of resources created and not yet released.
func (d *HostDevice) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.textures) + len(d.buffers)
}

// Created is the number of resources ever created.
func (d *HostDevice) Created() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.created
}

func (d *HostDevice) forget(id string) {
	d.mu.Lock()
	delete(d.textures, id)
	delete(d.buffers, id)
	d.mu.Unlock()
}

type HostTexture struct {
	id       string
	desc     core.TextureDesc
	released bool
	dev      *HostDevice

	Texels []byte
}

func (t *HostTexture) ID() string             { return t.id }
func (t *HostTexture) Desc() core.TextureDesc { return t.desc }
func (t *HostTexture) Released() bool         { return t.released }

func (t *HostTexture) Write(texels []byte) error {
	if t.released {
		return ErrReleased
	}
	if len(texels) != len(t.Texels) {
		return fmt.Errorf("gpu: texture %q expects %d bytes, got %d", t.desc.Label, len(t.Texels), len(texels))
	}
	copy(t.Texels, texels)
	return nil
}

func (t *HostTexture) Release() {
	if t.released {
		return
	}
	t.released = true
	t.dev.forget(t.id)
}

type HostIndexBuffer struct {
	id       string
	label    string
	released bool
	dev      *HostDevice

	Indices []uint32
	Writes  int
}

func (b *HostIndexBuffer) ID() string     { return b.id }
func (b *HostIndexBuffer) Len() int       { return len(b.Indices) }
func (b *HostIndexBuffer) Released() bool { return b.released }

func (b *HostIndexBuffer) Write(indices []uint32) error {
	if b.released {
		return ErrReleased
	}
	if len(indices) != len(b.Indices) {
		return fmt.Errorf("gpu: index buffer %q expects %d indices, got %d", b.label, len(b.Indices), len(indices))
	}
	copy(b.Indices, indices)
	b.Writes++
	return nil
}

func (b *HostIndexBuffer) Release() {
	if b.released {
		return
	}
	b.released = true
	b.dev.forget(b.id)
}
