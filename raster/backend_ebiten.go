// backend_ebiten.go - Ebiten presentation window wrapping an accelerated backend
package raster

import (
	"fmt"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

func rectFor(r Rect) image.Rectangle {
	return image.Rect(int(r.Left), int(r.Top), int(r.Right), int(r.Bottom))
}

// framebufferSource is satisfied by accelerated backends (VulkanBackend)
// that render offscreen and expose the result for readback.
type framebufferSource interface {
	Backend
	Snapshot() []byte
}

// HostWindow presents an accelerated backend's rendered VRAM in an Ebiten
// window. draw() stays entirely on the wrapped backend; HostWindow only
// owns display(): the visible sub-rectangle composited at full size, plus
// the entire VRAM underneath at reduced alpha as a diagnostic overview.
type HostWindow struct {
	inner framebufferSource

	mu         sync.RWMutex
	running    bool
	vramImage  *ebiten.Image
	overview   *ebiten.Image
	visible    Rect
	depth      DisplayDepth
	outX, outY int
	vsyncChan  chan struct{}
	frameCount uint64
}

// NewHostWindow wraps inner, whose Snapshot method supplies the pixels
// HostWindow presents.
func NewHostWindow(inner framebufferSource, outX, outY uint16) *HostWindow {
	return &HostWindow{
		inner:     inner,
		outX:      int(outX),
		outY:      int(outY),
		vsyncChan: make(chan struct{}, 1),
	}
}

// Start opens the window and begins the Ebiten run loop in the
// background, returning once the first frame has been presented.
func (w *HostWindow) Start(title string) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	ebiten.SetWindowSize(w.outX, w.outY*2)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)

	go func() {
		if err := ebiten.RunGame(w); err != nil {
			fmt.Printf("ebiten window closed: %v\n", err)
		}
	}()

	<-w.vsyncChan
	return nil
}

func (w *HostWindow) Stop() error {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	return nil
}

// --- Backend interface: delegate everything except Display/Resize ---

func (w *HostWindow) DrawOpaque(vertices []Vertex, runs []Run, offset Point) {
	w.inner.DrawOpaque(vertices, runs, offset)
}

func (w *HostWindow) DrawSemiTransparent(vertices []Vertex, runs []SemiRun, offset Point) {
	w.inner.DrawSemiTransparent(vertices, runs, offset)
}

func (w *HostWindow) FillRect(color [3]uint8, area Rect) { w.inner.FillRect(color, area) }
func (w *HostWindow) SetScissor(area Rect)               { w.inner.SetScissor(area) }
func (w *HostWindow) LoadImage(buf LoadBuffer)           { w.inner.LoadImage(buf) }

func (w *HostWindow) Display(visible Rect, depth DisplayDepth) {
	w.inner.Display(visible, depth)
	w.mu.Lock()
	w.visible = visible
	w.depth = depth
	w.mu.Unlock()
}

func (w *HostWindow) Resize(outX, outY uint16) {
	w.inner.Resize(outX, outY)
	w.mu.Lock()
	w.outX, w.outY = int(outX), int(outY)
	w.mu.Unlock()
	ebiten.SetWindowSize(w.outX, w.outY*2)
}

func (w *HostWindow) Close() error {
	w.Stop()
	return w.inner.Close()
}

// --- ebiten.Game ---

func (w *HostWindow) Update() error {
	w.mu.RLock()
	running := w.running
	w.mu.RUnlock()
	if !running || ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	return nil
}

func (w *HostWindow) Draw(screen *ebiten.Image) {
	w.mu.Lock()
	if w.vramImage == nil {
		w.vramImage = ebiten.NewImage(VRAMWidth, VRAMHeight)
		w.overview = ebiten.NewImage(VRAMWidth, VRAMHeight)
	}
	pixels := w.inner.Snapshot()
	if len(pixels) == VRAMWidth*VRAMHeight*4 {
		w.vramImage.WritePixels(pixels)
		w.overview.WritePixels(pixels)
	}
	visible := w.visible
	outX, outY := w.outX, w.outY
	w.mu.Unlock()

	// Main visible region at full size in the top half.
	top := &ebiten.DrawImageOptions{}
	vw := float64(visible.Right - visible.Left)
	vh := float64(visible.Bottom - visible.Top)
	if vw > 0 && vh > 0 {
		top.GeoM.Scale(float64(outX)/vw, float64(outY)/vh)
		screen.DrawImage(w.vramImage.SubImage(
			rectFor(visible),
		).(*ebiten.Image), top)
	}

	// Whole-VRAM overview at 0.7 alpha in the bottom half.
	bottom := &ebiten.DrawImageOptions{}
	bottom.GeoM.Scale(float64(outX)/VRAMWidth, float64(outY)/VRAMHeight)
	bottom.GeoM.Translate(0, float64(outY))
	bottom.ColorScale.ScaleAlpha(0.7)
	screen.DrawImage(w.overview, bottom)

	w.frameCount++
	select {
	case w.vsyncChan <- struct{}{}:
	default:
	}
}

func (w *HostWindow) Layout(_, _ int) (int, int) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.outX, w.outY * 2
}
