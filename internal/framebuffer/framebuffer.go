// Package framebuffer implements the output image the kernel writes into:
// an RGBA8 color buffer, possibly padded to a power-of-two texture width,
// plus an optional depth buffer at a configured precision.
package framebuffer

import (
	"image"
	"image/png"
	"io"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/HellmannM/deskvox/internal/raycast"
)

// Framebuffer owns the RGBA8 color surface and the optional depth surface
// a frame's kernel launch writes into. Only the width x height sub-rect is
// written by the kernel; texW may exceed width to round up to a
// GPU-friendly texture size.
type Framebuffer struct {
	width, height int
	texW          int
	color         []byte

	depthPrecision raycast.DepthPrecision
	depth          []uint32

	mvp [16]float32
}

// New allocates a framebuffer for the given viewport, rounding the stored
// row stride up to the next power of two the way a texture-backed surface
// would. depthPrecision may be raycast.DepthNone to skip the depth buffer
// entirely.
func New(width, height int, depthPrecision raycast.DepthPrecision) *Framebuffer {
	texW := nextPowerOfTwo(width)
	fb := &Framebuffer{
		width: width, height: height, texW: texW,
		color:          make([]byte, texW*height*4),
		depthPrecision: depthPrecision,
	}
	if depthPrecision != raycast.DepthNone {
		fb.depth = make([]uint32, texW*height)
	}
	return fb
}

// Resize reallocates both the color and depth buffers for a new viewport,
// matching the adapter's resize-on-demand contract.
func (fb *Framebuffer) Resize(width, height int) {
	texW := nextPowerOfTwo(width)
	fb.width, fb.height, fb.texW = width, height, texW
	fb.color = make([]byte, texW*height*4)
	if fb.depthPrecision != raycast.DepthNone {
		fb.depth = make([]uint32, texW*height)
	} else {
		fb.depth = nil
	}
}

// Width and Height report the logical viewport size, not the padded
// texture stride.
func (fb *Framebuffer) Width() int  { return fb.width }
func (fb *Framebuffer) Height() int { return fb.height }

// SetMVP records the frame's model-view-projection matrix, used to derive
// depth values from a kernel result's recorded sample position.
func (fb *Framebuffer) SetMVP(mvp [16]float32) { fb.mvp = mvp }

// SetPixel implements raycast.Sink: it writes the composited RGBA8 bytes
// for one pixel, and, if a depth precision is configured, the quantized
// depth derived from the result's maximum-alpha-increment sample.
func (fb *Framebuffer) SetPixel(x, y int, res raycast.Result) {
	if x < 0 || x >= fb.width || y < 0 || y >= fb.height {
		return
	}
	i := (y*fb.texW + x) * 4
	fb.color[i+0] = byte(res.Color.R * 255)
	fb.color[i+1] = byte(res.Color.G * 255)
	fb.color[i+2] = byte(res.Color.B * 255)
	fb.color[i+3] = byte(res.Color.A * 255)

	if fb.depthPrecision == raycast.DepthNone {
		return
	}
	value, _ := raycast.ExtractDepth(fb.depthPrecision, mgl32.Mat4(fb.mvp), res)
	fb.depth[y*fb.texW+x] = value
}

// Color returns the raw RGBA8 bytes of the width x height sub-rect,
// discarding any power-of-two padding columns.
func (fb *Framebuffer) Color() []byte {
	if fb.texW == fb.width {
		return fb.color
	}
	out := make([]byte, fb.width*fb.height*4)
	for y := 0; y < fb.height; y++ {
		src := fb.color[y*fb.texW*4 : y*fb.texW*4+fb.width*4]
		copy(out[y*fb.width*4:], src)
	}
	return out
}

// Depth returns the raw quantized depth values of the width x height
// sub-rect, or nil if no depth precision was configured.
func (fb *Framebuffer) Depth() []uint32 {
	if fb.depth == nil {
		return nil
	}
	if fb.texW == fb.width {
		return fb.depth
	}
	out := make([]uint32, fb.width*fb.height)
	for y := 0; y < fb.height; y++ {
		src := fb.depth[y*fb.texW : y*fb.texW+fb.width]
		copy(out[y*fb.width:], src)
	}
	return out
}

// WritePNG encodes the color buffer as a PNG, the presentation format the
// external windowing collaborator is out of scope for.
func (fb *Framebuffer) WritePNG(w io.Writer) error {
	img := image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
	copy(img.Pix, fb.Color())
	return png.Encode(w, img)
}

func nextPowerOfTwo(v int) int {
	if v <= 1 {
		return 1
	}
	p := 1
	for p < v {
		p <<= 1
	}
	return p
}
