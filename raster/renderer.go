// renderer.go - command buffering, ordering, and flush for the PSX GPU rasterizer
package raster

// VertexBufferLen is the default per-buffer vertex capacity. Exceeding it
// mid-primitive forces an immediate Draw().
const VertexBufferLen = 64 * 1024

// Config parameterizes a Renderer.
type Config struct {
	Backend  Backend
	Capacity uint32 // 0 means VertexBufferLen
	OutXRes  uint16
	OutYRes  uint16
}

// Renderer accumulates draw commands into opaque and semi-transparent
// attribute buffers, stamping each primitive with a monotonically
// increasing draw order used as a depth key, and flushes them to a
// Backend either explicitly or when a buffer would overflow.
type Renderer struct {
	backend Backend

	opaque *opaqueBuffer
	semi   *semiBuffer
	order  uint32

	offset  Point
	scissor Rect

	outX, outY uint16
}

// NewRenderer builds a Renderer over the given Backend.
func NewRenderer(cfg Config) *Renderer {
	cap := cfg.Capacity
	if cap == 0 {
		cap = VertexBufferLen
	}
	return &Renderer{
		backend: cfg.Backend,
		opaque:  newOpaqueBuffer(cap),
		semi:    newSemiBuffer(cap),
		outX:    cfg.OutXRes,
		outY:    cfg.OutYRes,
	}
}

// Order reports the next order value that will be assigned. Exposed for
// tests; not meaningful to callers driving real primitives.
func (r *Renderer) Order() uint32 { return r.order }

// OpaqueVertexCount and SemiTransparentVertexCount report buffer
// occupancy. Exposed for tests.
func (r *Renderer) OpaqueVertexCount() uint32          { return r.opaque.count() }
func (r *Renderer) SemiTransparentVertexCount() uint32 { return r.semi.count() }

// PushTriangle submits a three-vertex triangle. If the triangle's first
// vertex has SemiTransparent set, the same (already order-stamped)
// vertices are also queued into the semi-transparent buffer under mode.
func (r *Renderer) PushTriangle(vertices [3]Vertex, mode SemiTransparencyMode) {
	r.pushPrimitive(Triangles, vertices[:], mode)
}

// PushQuad submits a four-vertex quad as two triangles, (0,1,2) and
// (1,2,3), each independently order-stamped.
func (r *Renderer) PushQuad(vertices [4]Vertex, mode SemiTransparencyMode) {
	r.PushTriangle([3]Vertex{vertices[0], vertices[1], vertices[2]}, mode)
	r.PushTriangle([3]Vertex{vertices[1], vertices[2], vertices[3]}, mode)
}

// PushLine submits a two-vertex line segment.
func (r *Renderer) PushLine(vertices [2]Vertex, mode SemiTransparencyMode) {
	r.pushPrimitive(Lines, vertices[:], mode)
}

// pushPrimitive stamps order and appends to the opaque buffer, forcing a
// flush first if the opaque buffer would overflow. If the primitive is
// semi-transparent it is then also appended to the semi buffer, which
// gets its own independent overflow check and forced flush.
//
// A forced flush resets BOTH buffers (Draw always flushes the whole
// renderer). When only the semi-transparent buffer is full, the opaque
// vertices for the same primitive - already appended to the opaque
// buffer just above - get issued one primitive earlier than they
// otherwise would, as a side effect of a flush that was only needed for
// the other buffer. This is intentional, not a bug: it is preserved
// deliberately rather than patched.
func (r *Renderer) pushPrimitive(kind PrimitiveKind, vertices []Vertex, mode SemiTransparencyMode) {
	n := uint32(len(vertices))

	if r.opaque.wouldOverflow(n) {
		r.Draw()
	}

	for i := range vertices {
		vertices[i].Order = r.order
	}
	r.order++
	r.opaque.push(kind, vertices)

	if vertices[0].SemiTransparent {
		if r.semi.wouldOverflow(n) {
			r.Draw()
		}
		r.semi.push(kind, mode, vertices)
	}
}

// Draw flushes both attribute buffers to the backend and resets draw
// order to zero. The opaque queue is issued in reverse submission order
// (see opaqueBuffer's doc comment); the semi-transparent queue is issued
// forward since semi-transparent primitives don't depth-write and so
// have no overdraw-cutting reason to reorder.
func (r *Renderer) Draw() {
	r.opaque.sealCurrent()
	if n := len(r.opaque.queue); n > 0 {
		runs := make([]Run, n)
		for i, run := range r.opaque.queue {
			runs[n-1-i] = run
		}
		r.backend.DrawOpaque(r.opaque.vertices, runs, r.offset)
	}
	r.opaque.reset()

	r.semi.sealCurrent()
	if len(r.semi.queue) > 0 {
		r.backend.DrawSemiTransparent(r.semi.vertices, r.semi.queue, r.offset)
	}
	r.semi.reset()

	r.order = 0
}

// FillRect flushes pending draws, then bypasses the depth test, drawing
// offset, and buffering entirely: it draws straight to the backend. The
// flush matters because fill_rect is unordered with respect to buffered
// primitives; without it, anything still sitting in the attribute
// buffers at call time would render after this rect instead of before.
func (r *Renderer) FillRect(color [3]uint8, area Rect) {
	r.Draw()
	r.backend.FillRect(color, area)
}

// SetDrawOffset changes the (x,y) offset applied to subsequently pushed
// primitives. Flushes first, so primitives already buffered are drawn
// with the old offset.
func (r *Renderer) SetDrawOffset(offset Point) {
	r.Draw()
	r.offset = offset
}

// SetDrawingArea updates the scissor rectangle, flushing first so that
// primitives submitted under the old area are drawn against it. area
// arrives in VRAM coordinates and is converted to the renderer's output
// resolution via ScaleCoords before being handed to the backend; see
// scaleScissor for the degenerate-rectangle handling this requires.
func (r *Renderer) SetDrawingArea(area Rect) {
	r.Draw()
	r.scissor = scaleScissor(area, r.outX, r.outY)
	r.backend.SetScissor(r.scissor)
}

// LoadImage flushes pending draws, then uploads buf to VRAM.
func (r *Renderer) LoadImage(buf LoadBuffer) {
	r.Draw()
	r.backend.LoadImage(buf)
}

// Display flushes pending draws, then composites VRAM to the window.
func (r *Renderer) Display(visible Rect, depth DisplayDepth) {
	r.Draw()
	r.backend.Display(visible, depth)
}

// Resize changes the host output resolution.
func (r *Renderer) Resize(outX, outY uint16) {
	r.outX, r.outY = outX, outY
	r.backend.Resize(outX, outY)
}

// ScaleCoords maps a VRAM coordinate to the renderer's current output
// resolution.
func (r *Renderer) ScaleCoords(x, y uint16) (uint32, uint32) {
	return ScaleCoords(x, y, r.outX, r.outY)
}
