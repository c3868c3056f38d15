package raster

type drawOpaqueCall struct {
	vertices []Vertex
	runs     []Run
	offset   Point
}

type drawSemiCall struct {
	vertices []Vertex
	runs     []SemiRun
	offset   Point
}

// fakeBackend records every call it receives instead of rendering
// anything, so tests can assert on Renderer's buffering and flush
// behavior in isolation from any real GPU or windowing API.
type fakeBackend struct {
	opaqueCalls []drawOpaqueCall
	semiCalls   []drawSemiCall
	fillCalls   []Rect
	scissor     []Rect
	displays    int
	loads       []LoadBuffer
	resizes     int
	closed      bool
}

func (f *fakeBackend) DrawOpaque(vertices []Vertex, runs []Run, offset Point) {
	vcopy := append([]Vertex(nil), vertices...)
	rcopy := append([]Run(nil), runs...)
	f.opaqueCalls = append(f.opaqueCalls, drawOpaqueCall{vcopy, rcopy, offset})
}

func (f *fakeBackend) DrawSemiTransparent(vertices []Vertex, runs []SemiRun, offset Point) {
	vcopy := append([]Vertex(nil), vertices...)
	rcopy := append([]SemiRun(nil), runs...)
	f.semiCalls = append(f.semiCalls, drawSemiCall{vcopy, rcopy, offset})
}

func (f *fakeBackend) FillRect(color [3]uint8, area Rect) { f.fillCalls = append(f.fillCalls, area) }
func (f *fakeBackend) SetScissor(area Rect)               { f.scissor = append(f.scissor, area) }
func (f *fakeBackend) Display(visible Rect, depth DisplayDepth) { f.displays++ }
func (f *fakeBackend) LoadImage(buf LoadBuffer)           { f.loads = append(f.loads, buf) }
func (f *fakeBackend) Resize(outX, outY uint16)           { f.resizes++ }
func (f *fakeBackend) Close() error                       { f.closed = true; return nil }

func plainVertex(x, y int16) Vertex {
	return Vertex{Position: Point{X: x, Y: y}}
}

func semiVertex(x, y int16) Vertex {
	v := plainVertex(x, y)
	v.SemiTransparent = true
	return v
}
