package raster

import "testing"

func newTestRenderer(capacity uint32) (*Renderer, *fakeBackend) {
	fb := &fakeBackend{}
	r := NewRenderer(Config{Backend: fb, Capacity: capacity, OutXRes: 640, OutYRes: 480})
	return r, fb
}

func TestPushTriangleStampsIncreasingOrder(t *testing.T) {
	r, _ := newTestRenderer(VertexBufferLen)

	var v1, v2 [3]Vertex
	for i := range v1 {
		v1[i] = plainVertex(0, 0)
		v2[i] = plainVertex(0, 0)
	}
	r.PushTriangle(v1, Average)
	r.PushTriangle(v2, Average)

	if r.Order() != 2 {
		t.Fatalf("Order() = %d, want 2", r.Order())
	}
}

func TestPushQuadEmitsTwoOrderedTriangles(t *testing.T) {
	r, _ := newTestRenderer(VertexBufferLen)
	quad := [4]Vertex{plainVertex(0, 0), plainVertex(1, 0), plainVertex(0, 1), plainVertex(1, 1)}
	r.PushQuad(quad, Average)

	if r.Order() != 2 {
		t.Fatalf("Order() = %d, want 2 (one per triangle)", r.Order())
	}
	if r.OpaqueVertexCount() != 6 {
		t.Fatalf("OpaqueVertexCount() = %d, want 6", r.OpaqueVertexCount())
	}
}

func TestPushOpaqueLineDoesNotTouchSemiBuffer(t *testing.T) {
	r, _ := newTestRenderer(VertexBufferLen)
	r.PushLine([2]Vertex{plainVertex(0, 0), plainVertex(1, 1)}, Average)

	if r.SemiTransparentVertexCount() != 0 {
		t.Fatalf("SemiTransparentVertexCount() = %d, want 0", r.SemiTransparentVertexCount())
	}
}

func TestSemiTransparentPrimitiveInsertedIntoBothBuffers(t *testing.T) {
	r, _ := newTestRenderer(VertexBufferLen)
	v := [3]Vertex{semiVertex(0, 0), plainVertex(1, 0), plainVertex(0, 1)}
	r.PushTriangle(v, Add)

	if r.OpaqueVertexCount() != 3 {
		t.Fatalf("OpaqueVertexCount() = %d, want 3", r.OpaqueVertexCount())
	}
	if r.SemiTransparentVertexCount() != 3 {
		t.Fatalf("SemiTransparentVertexCount() = %d, want 3", r.SemiTransparentVertexCount())
	}
}

func TestDrawResetsOrderAndBuffers(t *testing.T) {
	r, fb := newTestRenderer(VertexBufferLen)
	r.PushTriangle([3]Vertex{plainVertex(0, 0), plainVertex(1, 0), plainVertex(0, 1)}, Average)
	r.Draw()

	if r.Order() != 0 {
		t.Fatalf("Order() after Draw = %d, want 0", r.Order())
	}
	if r.OpaqueVertexCount() != 0 {
		t.Fatalf("OpaqueVertexCount() after Draw = %d, want 0", r.OpaqueVertexCount())
	}
	if len(fb.opaqueCalls) != 1 {
		t.Fatalf("opaqueCalls = %d, want 1", len(fb.opaqueCalls))
	}
	if len(fb.opaqueCalls[0].runs) != 1 || fb.opaqueCalls[0].runs[0].Length != 3 {
		t.Fatalf("unexpected run: %+v", fb.opaqueCalls[0].runs)
	}
}

func TestDrawIssuesOpaqueRunsInReverseSubmissionOrder(t *testing.T) {
	r, fb := newTestRenderer(VertexBufferLen)
	tri := func() [3]Vertex { return [3]Vertex{plainVertex(0, 0), plainVertex(1, 0), plainVertex(0, 1)} }
	line := func() [2]Vertex { return [2]Vertex{plainVertex(0, 0), plainVertex(1, 1)} }

	r.PushTriangle(tri(), Average) // run A: triangles, 3 verts
	r.PushLine(line(), Average)    // run B: lines, 2 verts
	r.PushTriangle(tri(), Average) // run C: triangles, 3 verts
	r.Draw()

	runs := fb.opaqueCalls[0].runs
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	// Submitted A,B,C; expect reversed C,B,A.
	if runs[0].Kind != Triangles || runs[0].Start != 5 {
		t.Fatalf("run[0] = %+v, want the last-submitted triangle run", runs[0])
	}
	if runs[1].Kind != Lines {
		t.Fatalf("run[1] = %+v, want the line run", runs[1])
	}
	if runs[2].Kind != Triangles || runs[2].Start != 0 {
		t.Fatalf("run[2] = %+v, want the first-submitted triangle run", runs[2])
	}
}

func TestCapacityOverflowForcesExactlyOneFlush(t *testing.T) {
	// Capacity of 9 vertices = 3 triangles; the 4th triangle (3 more
	// vertices) must trigger exactly one forced Draw before it is
	// buffered.
	r, fb := newTestRenderer(9)
	tri := [3]Vertex{plainVertex(0, 0), plainVertex(1, 0), plainVertex(0, 1)}

	for i := 0; i < 4; i++ {
		r.PushTriangle(tri, Average)
	}

	if len(fb.opaqueCalls) != 1 {
		t.Fatalf("opaqueCalls = %d, want exactly 1 forced flush", len(fb.opaqueCalls))
	}
	if r.OpaqueVertexCount() != 3 {
		t.Fatalf("OpaqueVertexCount() = %d, want 3 (the 4th triangle, post-flush)", r.OpaqueVertexCount())
	}
}

func TestSemiOnlyOverflowStillFlushesOpaqueBuffer(t *testing.T) {
	// Opaque capacity is large, semi capacity is tiny. pushPrimitive
	// already appended the second triangle's vertices to the opaque
	// buffer (6 vertices total) by the time the semi-transparent
	// buffer's own overflow check runs and forces a Draw() - which
	// flushes and resets BOTH buffers, not just the one that overflowed.
	// The opaque half of both triangles gets issued (not lost) one
	// primitive earlier than it otherwise would have been.
	fb := &fakeBackend{}
	r := NewRenderer(Config{Backend: fb, OutXRes: 640, OutYRes: 480})
	r.opaque = newOpaqueBuffer(VertexBufferLen)
	r.semi = newSemiBuffer(3)

	tri := [3]Vertex{semiVertex(0, 0), plainVertex(1, 0), plainVertex(0, 1)}
	r.PushTriangle(tri, Average) // fills semi buffer to capacity (3)
	r.PushTriangle(tri, Average) // semi overflow -> forced Draw() wipes opaque too

	if len(fb.opaqueCalls) != 1 {
		t.Fatalf("opaqueCalls = %d, want 1", len(fb.opaqueCalls))
	}
	if fb.opaqueCalls[0].runs[0].Length != 6 {
		t.Fatalf("flushed opaque run length = %d, want 6 (both triangles)", fb.opaqueCalls[0].runs[0].Length)
	}
	// The opaque buffer was reset by the forced flush and nothing has
	// been appended to it since; only the semi buffer got anything new.
	if r.OpaqueVertexCount() != 0 {
		t.Fatalf("OpaqueVertexCount() = %d, want 0", r.OpaqueVertexCount())
	}
	if r.SemiTransparentVertexCount() != 3 {
		t.Fatalf("SemiTransparentVertexCount() = %d, want 3 (second triangle only)", r.SemiTransparentVertexCount())
	}
}

func TestFillRectFlushesBufferedPrimitivesFirst(t *testing.T) {
	r, fb := newTestRenderer(VertexBufferLen)
	r.PushTriangle([3]Vertex{plainVertex(0, 0), plainVertex(1, 0), plainVertex(0, 1)}, Average)
	r.FillRect([3]uint8{255, 0, 0}, Rect{0, 0, 10, 10})

	if len(fb.fillCalls) != 1 {
		t.Fatalf("fillCalls = %d, want 1", len(fb.fillCalls))
	}
	// The buffered triangle must be issued before the fill, not after:
	// FillRect flushes first, so nothing is left pending.
	if r.OpaqueVertexCount() != 0 {
		t.Fatalf("OpaqueVertexCount() = %d, want 0 (flushed by FillRect)", r.OpaqueVertexCount())
	}
	if len(fb.opaqueCalls) != 1 {
		t.Fatalf("opaqueCalls = %d, want 1 (the flush before the fill)", len(fb.opaqueCalls))
	}
}

func TestSetDrawingAreaFlushesBeforeApplying(t *testing.T) {
	r, fb := newTestRenderer(VertexBufferLen)
	r.PushTriangle([3]Vertex{plainVertex(0, 0), plainVertex(1, 0), plainVertex(0, 1)}, Average)
	r.SetDrawingArea(Rect{0, 0, 100, 100})

	if len(fb.opaqueCalls) != 1 {
		t.Fatalf("opaqueCalls = %d, want 1", len(fb.opaqueCalls))
	}

	left, top := ScaleCoords(0, 0, 640, 480)
	right, bottom := ScaleCoords(100, 100, 640, 480)
	want := Rect{Left: int16(left), Top: int16(bottom), Right: int16(right), Bottom: int16(top)}
	if len(fb.scissor) != 1 || fb.scissor[0] != want {
		t.Fatalf("scissor = %+v, want %+v", fb.scissor, want)
	}
}

func TestSetDrawingAreaDegenerateCollapsesToZeroArea(t *testing.T) {
	r, fb := newTestRenderer(VertexBufferLen)
	// Right/Bottom precede Left/Top here, mimicking the PSX's two
	// independent corner-register writes catching the rectangle mid-update.
	r.SetDrawingArea(Rect{Left: 100, Top: 0, Right: 0, Bottom: 100})

	if len(fb.scissor) != 1 {
		t.Fatalf("scissor calls = %d, want 1", len(fb.scissor))
	}
	got := fb.scissor[0]
	if width := got.Right - got.Left + 1; width != 0 {
		t.Fatalf("degenerate width = %d, want 0", width)
	}
	if height := got.Bottom - got.Top + 1; height != 0 {
		t.Fatalf("degenerate height = %d, want 0", height)
	}
}

func TestDisplayFlushesThenComposites(t *testing.T) {
	r, fb := newTestRenderer(VertexBufferLen)
	r.PushTriangle([3]Vertex{plainVertex(0, 0), plainVertex(1, 0), plainVertex(0, 1)}, Average)
	r.Display(Rect{0, 0, 640, 480}, Display15Bpp)

	if len(fb.opaqueCalls) != 1 {
		t.Fatalf("opaqueCalls = %d, want 1", len(fb.opaqueCalls))
	}
	if fb.displays != 1 {
		t.Fatalf("displays = %d, want 1", fb.displays)
	}
}
