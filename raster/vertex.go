// vertex.go - command vertex and texture attribute types for the rasterizer
package raster

// TextureBlendMode controls how a textured primitive's sampled texel
// combines with its vertex color.
type TextureBlendMode uint8

const (
	BlendUntextured TextureBlendMode = iota
	BlendRaw
	BlendBlended
)

// TextureDepth is the bit depth of the texture page a primitive samples
// from. It determines the shift applied to raw texture coordinates before
// they address a texel within the page.
type TextureDepth uint8

const (
	Depth4Bpp TextureDepth = iota
	Depth8Bpp
	Depth16Bpp
)

// Shift returns the depth_shift value baked into a vertex for this depth.
func (d TextureDepth) Shift() uint8 {
	switch d {
	case Depth4Bpp:
		return 2
	case Depth8Bpp:
		return 1
	default:
		return 0
	}
}

// Point is a VRAM-space coordinate pair. PSX coordinates are signed
// (off-screen vertices are valid and get clipped downstream).
type Point struct {
	X, Y int16
}

// TexCoord is an unsigned coordinate pair addressing a texture page,
// texture coordinate, or CLUT position.
type TexCoord struct {
	X, Y uint16
}

// Vertex is one rasterizer vertex: position, draw-order depth key, color,
// and texture addressing. Order is stamped by Renderer when the vertex is
// pushed, not by the caller.
type Vertex struct {
	Position Point
	Order    uint32
	Color    [3]uint8

	TexturePage  TexCoord
	TextureCoord TexCoord
	Clut         TexCoord
	BlendMode    TextureBlendMode
	DepthShift   uint8

	Dither          bool
	SemiTransparent bool
}

// NewVertex builds a Vertex from its drawing attributes. Order is left at
// zero; Renderer.Push{Triangle,Quad,Line} stamps it on submission.
func NewVertex(pos Point, color [3]uint8, blend TextureBlendMode, texPage, texCoord, clut TexCoord, depth TextureDepth, dither, semiTransparent bool) Vertex {
	return Vertex{
		Position:        pos,
		Color:           color,
		TexturePage:     texPage,
		TextureCoord:    texCoord,
		Clut:            clut,
		BlendMode:       blend,
		DepthShift:      depth.Shift(),
		Dither:          dither,
		SemiTransparent: semiTransparent,
	}
}
