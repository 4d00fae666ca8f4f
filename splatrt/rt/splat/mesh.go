// Package splat packs Gaussian splat attributes into GPU data textures and
// keeps a per-view back-to-front draw order for them.
package splat

import (
	"context"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gekko3d/gsplat/splatrt/rt/core"
	"github.com/gekko3d/gsplat/splatrt/rt/coroutine"
	"github.com/gekko3d/gsplat/splatrt/rt/sorter"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/mrjoshuak/go-openexr/half"
)

// Mesh is one splat renderable: packed data textures, an index buffer holding
// the current draw order and the background sorter producing it.
//
// Every method must be called from the render goroutine.
type Mesh struct {
	ID string

	cfg    Config
	device core.Device
	log    core.Logger

	count    int
	width    int
	height   int
	shDegree int

	enabled   bool
	ready     bool
	released  bool
	ingesting bool
	ingest    *coroutine.Task
	packed    int

	centers []float32
	covA    []half.Half
	covB    []half.Half
	colors  []uint8
	sh      [][]uint32
	order   []uint32

	centersTex core.Texture
	covATex    core.Texture
	covBTex    core.Texture
	colorsTex  core.Texture
	shTex      []core.Texture
	indexBuf   core.IndexBuffer

	bounds      core.AABB
	sphere      core.Sphere
	world       mgl32.Mat4
	renderOrder float32
	uniforms    Uniforms

	sorter     *sorter.Sorter
	canPost    bool
	sortDirty  bool
	posts      int
	oldForward mgl32.Vec3
	camView    mgl32.Mat4
	hasCamera  bool
	frameThis  int64
	frameLast  int64
	inflight   []chan struct{}
	// pending is shared by every request coalesced into the dirty retry.
	pending chan struct{}
}

// NewMesh creates an empty, disabled mesh. A nil logger logs nothing.
func NewMesh(device core.Device, cfg Config, log core.Logger) *Mesh {
	return &Mesh{
		ID:        uuid.NewString(),
		cfg:       cfg.withDefaults(),
		device:    device,
		log:       core.Scope(log, "splat"),
		bounds:    core.EmptyAABB(),
		world:     mgl32.Ident4(),
		frameLast: -1,
	}
}

func (m *Mesh) Count() int           { return m.count }
func (m *Mesh) SHDegree() int        { return m.shDegree }
func (m *Mesh) Enabled() bool        { return m.enabled }
func (m *Mesh) Released() bool       { return m.released }
func (m *Mesh) Bounds() core.AABB    { return m.bounds }
func (m *Mesh) Sphere() core.Sphere  { return m.sphere }
func (m *Mesh) Uniforms() Uniforms   { return m.uniforms }
func (m *Mesh) World() mgl32.Mat4    { return m.world }
func (m *Mesh) RenderOrder() float32 { return m.renderOrder }

// Progress is the number of splats the current or last ingestion packed.
func (m *Mesh) Progress() int   { return m.packed }
func (m *Mesh) Ingesting() bool { return m.ingesting }

// Ready reports whether a sorted draw order has been applied since the mesh
// was last (re)allocated.
func (m *Mesh) Ready() bool { return m.ready }

func (m *Mesh) SetWorld(world mgl32.Mat4)  { m.world = world }
func (m *Mesh) SetRenderOrder(key float32) { m.renderOrder = key }

// TextureSize is the shared width and height of all data textures.
func (m *Mesh) TextureSize() (int, int) { return m.width, m.height }

func (m *Mesh) CentersTexture() core.Texture      { return m.centersTex }
func (m *Mesh) CovariancesATexture() core.Texture { return m.covATex }
func (m *Mesh) CovariancesBTexture() core.Texture { return m.covBTex }
func (m *Mesh) ColorsTexture() core.Texture       { return m.colorsTex }
func (m *Mesh) SHTextures() []core.Texture        { return m.shTex }
func (m *Mesh) IndexBuffer() core.IndexBuffer     { return m.indexBuf }
func (m *Mesh) BoundingVolume() core.AABB         { return m.bounds }
func (m *Mesh) Order() []uint32                   { return m.order }

// Packed is a read-only view of the host copies of the packed data.
type Packed struct {
	Width   int
	Height  int
	Centers []float32 // xyz + covariance factor per texel
	CovA    []half.Half
	CovB    []half.Half
	Colors  []uint8
	SH      [][]uint32
}

func (m *Mesh) Packed() Packed {
	return Packed{
		Width:   m.width,
		Height:  m.height,
		Centers: m.centers,
		CovA:    m.covA,
		CovB:    m.covB,
		Colors:  m.colors,
		SH:      m.sh,
	}
}

// Ingest packs attrs synchronously. On error the mesh keeps its previous state.
func (m *Mesh) Ingest(attrs *Attributes) error {
	job, err := m.beginIngest(attrs, false)
	if err != nil {
		return err
	}
	return coroutine.RunSync(job.run)
}

// IngestAsync packs attrs in chunks of Config.BatchSize, resuming through
// sched. The returned task finishes once the textures are built and the first
// sort was requested. Release cancels it.
func (m *Mesh) IngestAsync(attrs *Attributes, sched coroutine.Scheduler) (*coroutine.Task, error) {
	job, err := m.beginIngest(attrs, true)
	if err != nil {
		return nil, err
	}
	task := coroutine.RunAsync(job.run, sched)
	if m.ingesting {
		m.ingest = task
	}
	return task, nil
}

type packJob struct {
	m     *Mesh
	attrs *Attributes
	async bool

	count      int
	width      int
	height     int
	shDegree   int
	shPer      int
	convention Convention
	covBStride int

	centers       []float32
	sortPositions []float32
	covA          []half.Half
	covB          []half.Half
	colors        []uint8
	sh            [][]uint32
	bounds        core.AABB
}

func (m *Mesh) beginIngest(attrs *Attributes, async bool) (*packJob, error) {
	if m.released {
		return nil, ErrReleased
	}
	if m.ingesting {
		return nil, ErrIngestInProgress
	}
	n, err := attrs.Count()
	if err != nil {
		return nil, err
	}
	degree, _ := attrs.shDegree(n)
	shPer := 0
	if n > 0 {
		shPer = len(attrs.SH) / n
	}

	width, height, overflow := TextureSize(n, m.cfg.MaxTextureWidth)
	if overflow != nil {
		m.log.Warnf("%v", overflow)
		n = overflow.Capacity
	}
	texels := width * height

	job := &packJob{
		m:          m,
		attrs:      attrs,
		async:      async,
		count:      n,
		width:      width,
		height:     height,
		shDegree:   degree,
		shPer:      shPer,
		convention: m.cfg.Convention,
		covBStride: 4,

		centers:       make([]float32, 4*texels),
		sortPositions: make([]float32, 3*n),
		covA:          make([]half.Half, 4*texels),
		colors:        make([]uint8, 4*texels),
		bounds:        core.EmptyAABB(),
	}
	if attrs.Convention != nil {
		job.convention = *attrs.Convention
	}
	if m.cfg.CompactCovariants {
		job.covBStride = 2
	}
	job.covB = make([]half.Half, job.covBStride*texels)
	for i := 0; i < shTextureCount(degree); i++ {
		job.sh = append(job.sh, make([]uint32, 4*texels))
	}

	m.ingesting = true
	m.packed = 0
	m.log.Debugf("splat %s: ingesting %d splats (%dx%d, sh degree %d, async %v)", m.ID, n, width, height, degree, async)
	return job, nil
}

func (j *packJob) run(yield func() bool) error {
	m := j.m
	defer func() {
		m.ingesting = false
		m.ingest = nil
	}()

	batch := m.cfg.BatchSize
	for i := 0; i < j.count; i++ {
		if err := j.packSplat(i); err != nil {
			return fmt.Errorf("splat %d: %w", i, err)
		}
		m.packed = i + 1
		if j.async && (i+1)%batch == 0 && i+1 < j.count {
			if !yield() {
				return coroutine.ErrCanceled
			}
		}
	}
	if m.released {
		return ErrReleased
	}
	return m.commit(j)
}

func (j *packJob) packSplat(i int) error {
	a := j.attrs

	px, py, pz := a.Positions[3*i], a.Positions[3*i+1], a.Positions[3*i+2]
	qx, qy, qz, qw := a.Rotations[4*i], a.Rotations[4*i+1], a.Rotations[4*i+2], a.Rotations[4*i+3]
	if j.convention == ConventionYDownZForward {
		py, pz = -py, -pz
		qy, qz = -qy, -qz
	}
	q := mgl32.Quat{W: qw, V: mgl32.Vec3{qx, qy, qz}}.Normalize()
	scale := mgl32.Vec3{
		math32.Exp(a.Scales[3*i]),
		math32.Exp(a.Scales[3*i+1]),
		math32.Exp(a.Scales[3*i+2]),
	}

	factor, enc, err := EncodeCovariance(Covariance(q, scale))
	if err != nil {
		return err
	}

	j.centers[4*i+0] = px
	j.centers[4*i+1] = py
	j.centers[4*i+2] = pz
	j.centers[4*i+3] = factor

	j.sortPositions[3*i+0] = px
	j.sortPositions[3*i+1] = py
	j.sortPositions[3*i+2] = pz

	j.bounds.Extend(mgl32.Vec3{px, py, pz})

	copy(j.covA[4*i:4*i+4], enc[:4])
	j.covB[j.covBStride*i+0] = enc[4]
	j.covB[j.covBStride*i+1] = enc[5]

	if a.Colors != nil {
		copy(j.colors[4*i:4*i+4], a.Colors[4*i:4*i+4])
	} else {
		for c := 0; c < 4; c++ {
			j.colors[4*i+c] = unitToByte(a.ColorsFloat[4*i+c])
		}
	}
	if a.Opacities != nil {
		j.colors[4*i+3] = unitToByte(a.Opacities[i])
	}

	if j.shDegree > 0 {
		packSH(j.sh, a.SH[j.shPer*i:j.shPer*(i+1)], i)
	}
	return nil
}

func unitToByte(v float32) uint8 {
	v *= 255
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// commit uploads the packed job, swapping it in as the mesh contents.
func (m *Mesh) commit(j *packJob) error {
	realloc := m.centersTex == nil ||
		j.count != m.count ||
		j.width != m.width ||
		j.height != m.height ||
		len(j.sh) != len(m.shTex)

	if realloc {
		if err := m.allocate(j); err != nil {
			return err
		}
	}

	textures := append([]core.Texture{m.centersTex, m.covATex, m.covBTex, m.colorsTex}, m.shTex...)
	data := [][]byte{float32Bytes(j.centers), halfBytes(j.covA), halfBytes(j.covB), j.colors}
	for _, words := range j.sh {
		data = append(data, uint32Bytes(words))
	}
	for i, tex := range textures {
		if err := tex.Write(data[i]); err != nil {
			return fmt.Errorf("upload %s: %w", tex.Desc().Label, err)
		}
	}

	m.centers, m.covA, m.covB, m.colors, m.sh = j.centers, j.covA, j.covB, j.colors, j.sh
	m.shDegree = j.shDegree
	m.bounds = j.bounds
	m.sphere = j.bounds.Sphere()

	if realloc || m.sorter == nil {
		m.restartSorter(j.sortPositions)
	} else {
		m.sorter.SetPositions(j.sortPositions)
		if !m.canPost {
			// The in-flight sort uses stale positions.
			m.sortDirty = true
		}
	}

	m.enabled = true
	m.log.Debugf("splat %s: packed %d splats", m.ID, m.count)
	m.postSort(true)
	return nil
}

// allocate replaces every GPU resource with ones sized for j. On failure the
// previous resources stay in place.
func (m *Mesh) allocate(j *packJob) error {
	var created []interface{ Release() }
	fail := func(err error) error {
		for _, r := range created {
			r.Release()
		}
		return err
	}
	newTexture := func(name string, format core.TextureFormat) (core.Texture, error) {
		tex, err := m.device.CreateTexture(core.TextureDesc{
			Label:  m.ID + "/" + name,
			Width:  uint32(j.width),
			Height: uint32(j.height),
			Format: format,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s texture: %w", name, err)
		}
		created = append(created, tex)
		return tex, nil
	}

	covBFormat := core.TextureFormatRGBA16Float
	if j.covBStride == 2 {
		covBFormat = core.TextureFormatRG16Float
	}

	centers, err := newTexture("centers", core.TextureFormatRGBA32Float)
	if err != nil {
		return fail(err)
	}
	covA, err := newTexture("covariancesA", core.TextureFormatRGBA16Float)
	if err != nil {
		return fail(err)
	}
	covB, err := newTexture("covariancesB", covBFormat)
	if err != nil {
		return fail(err)
	}
	colors, err := newTexture("colors", core.TextureFormatRGBA8Unorm)
	if err != nil {
		return fail(err)
	}
	var shTex []core.Texture
	for i := range j.sh {
		tex, err := newTexture(fmt.Sprintf("sh%d", i), core.TextureFormatRGBA32Uint)
		if err != nil {
			return fail(err)
		}
		shTex = append(shTex, tex)
	}
	indexBuf, err := m.device.CreateIndexBuffer(m.ID+"/splatIndex", j.count)
	if err != nil {
		return fail(fmt.Errorf("create index buffer: %w", err))
	}
	created = append(created, indexBuf)

	order := make([]uint32, j.count)
	for i := range order {
		order[i] = uint32(i)
	}
	if err := indexBuf.Write(order); err != nil {
		return fail(fmt.Errorf("write index buffer: %w", err))
	}

	m.releaseResources()
	m.centersTex, m.covATex, m.covBTex, m.colorsTex, m.shTex = centers, covA, covB, colors, shTex
	m.indexBuf = indexBuf
	m.order = order
	m.count, m.width, m.height = j.count, j.width, j.height
	m.ready = false
	return nil
}

func (m *Mesh) releaseResources() {
	for _, tex := range []core.Texture{m.centersTex, m.covATex, m.covBTex, m.colorsTex} {
		if tex != nil {
			tex.Release()
		}
	}
	for _, tex := range m.shTex {
		tex.Release()
	}
	if m.indexBuf != nil {
		m.indexBuf.Release()
	}
	m.centersTex, m.covATex, m.covBTex, m.colorsTex, m.shTex, m.indexBuf = nil, nil, nil, nil, nil, nil
}

func (m *Mesh) restartSorter(positions []float32) {
	if m.sorter != nil {
		m.sorter.Terminate()
	}
	// Requests to the old sorter will never be answered.
	closeAll(m.inflight)
	m.closePending()
	m.inflight = nil
	m.sortDirty = false

	m.sorter = sorter.Start(positions, m.count)
	m.canPost = true
}

// OnBeforeDraw is called once per frame by the host before the mesh is drawn.
// It applies a finished sort, asks for a new one when the view turned enough,
// and refreshes the shader uniforms. It never waits for the sorter.
func (m *Mesh) OnBeforeDraw(cam *core.Camera) {
	if m.released {
		return
	}
	m.frameThis++
	m.Poll()
	m.SortAsync(cam, false)
	m.updateUniforms(cam)
}

// SortAsync requests a sort for cam. The returned channel closes once the
// resulting order was applied, or at once when nothing needed to be done.
func (m *Mesh) SortAsync(cam *core.Camera, forced bool) <-chan struct{} {
	if m.sorter == nil || cam == nil {
		return closedChan()
	}
	m.camView = cam.View
	m.hasCamera = true
	return m.postSort(forced)
}

func (m *Mesh) postSort(forced bool) <-chan struct{} {
	if m.sorter == nil || !m.hasCamera {
		return closedChan()
	}
	if !forced && m.frameThis == m.frameLast {
		return closedChan()
	}

	modelView := m.camView.Mul4(m.world)
	forward := mgl32.Vec3{-modelView[2], -modelView[6], -modelView[10]}.Normalize()
	dot := forward.Dot(m.oldForward)
	if !forced && math32.Abs(dot-1) < m.cfg.SortDirectionThreshold {
		return closedChan()
	}

	if !m.canPost {
		m.sortDirty = true
		if m.pending == nil {
			m.pending = make(chan struct{})
		}
		return m.pending
	}
	ch := make(chan struct{})
	if _, ok := m.sorter.Post(modelView); !ok {
		return closedChan()
	}
	m.posts++
	m.oldForward = forward
	m.frameLast = m.frameThis
	m.canPost = false
	m.inflight = append(m.inflight, ch)
	return ch
}

// Poll applies a finished sort result without blocking.
func (m *Mesh) Poll() {
	if m.sorter == nil {
		return
	}
	select {
	case r := <-m.sorter.Results():
		m.applySort(r)
	default:
	}
}

// Flush blocks until no sort is in flight, applying results as they arrive.
// Tools and tests use it; the render loop never does.
func (m *Mesh) Flush(ctx context.Context) error {
	for m.sorter != nil && !m.canPost {
		select {
		case r := <-m.sorter.Results():
			m.applySort(r)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *Mesh) applySort(r sorter.Result) {
	if len(r.Indices) == m.count {
		m.order = r.Indices
		if m.indexBuf != nil {
			if err := m.indexBuf.Write(r.Indices); err != nil {
				m.log.Errorf("splat %s: write index buffer: %v", m.ID, err)
			}
		}
		m.ready = true
	}
	m.canPost = true
	closeAll(m.inflight)
	m.inflight = nil

	if m.sortDirty {
		m.sortDirty = false
		waiter := m.pending
		m.pending = nil
		m.postSort(true)
		switch {
		case waiter == nil:
		case m.canPost:
			close(waiter)
		default:
			m.inflight = append(m.inflight, waiter)
		}
	}
}

func (m *Mesh) updateUniforms(cam *core.Camera) {
	if cam == nil {
		return
	}
	m.uniforms = ComputeUniforms(cam, m.width, m.height, m.shDegree)
}

// Release frees every GPU resource, stops the sorter and cancels a running
// ingestion. It may be called any number of times.
func (m *Mesh) Release() {
	if m.released {
		return
	}
	m.released = true
	if m.ingest != nil {
		m.ingest.Cancel()
	}
	m.releaseResources()
	if m.sorter != nil {
		m.sorter.Terminate()
		m.sorter = nil
	}
	closeAll(m.inflight)
	m.closePending()
	m.inflight = nil
	m.canPost = false
	m.enabled = false
	m.ready = false
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (m *Mesh) closePending() {
	if m.pending != nil {
		close(m.pending)
		m.pending = nil
	}
}

func closeAll(chans []chan struct{}) {
	for _, ch := range chans {
		close(ch)
	}
}
