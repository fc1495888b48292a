package frame

import (
	"image"
	"image/color"
)

// PixelBuffer is an encoder-ready frame: 32-bit packed pixels in BGRA byte
// order, premultiplied alpha, device RGB.
//
// PixelBuffer implements [image.Image] so it can be handed directly to image
// encoders.
type PixelBuffer struct {
	Pix    []byte
	Width  int
	Height int
	Stride int
}

// NewPixelBuffer allocates a zeroed w x h buffer.
func NewPixelBuffer(w, h int) *PixelBuffer {
	return &PixelBuffer{
		Pix:    make([]byte, w*h*4),
		Width:  w,
		Height: h,
		Stride: w * 4,
	}
}

// ColorModel implements [image.Image].
func (b *PixelBuffer) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements [image.Image].
func (b *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// At implements [image.Image].
func (b *PixelBuffer) At(x, y int) color.Color {
	return b.RGBAAt(x, y)
}

// RGBAAt returns the pixel at (x, y) in RGBA order.
func (b *PixelBuffer) RGBAAt(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return color.RGBA{}
	}

	i := y*b.Stride + x*4

	return color.RGBA{R: b.Pix[i+2], G: b.Pix[i+1], B: b.Pix[i], A: b.Pix[i+3]}
}

// fromRGBA swizzles img into a new BGRA buffer.
func fromRGBA(img *image.RGBA) *PixelBuffer {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	buf := NewPixelBuffer(w, h)

	for y := range h {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		dst := buf.Pix[y*buf.Stride : y*buf.Stride+w*4]

		for i := 0; i < len(src); i += 4 {
			dst[i] = src[i+2]
			dst[i+1] = src[i+1]
			dst[i+2] = src[i]
			dst[i+3] = src[i+3]
		}
	}

	return buf
}

// RGBA returns a copy of b as an [image.RGBA].
func (b *PixelBuffer) RGBA() *image.RGBA {
	img := image.NewRGBA(b.Bounds())

	for y := range b.Height {
		src := b.Pix[y*b.Stride : y*b.Stride+b.Width*4]
		dst := img.Pix[y*img.Stride : y*img.Stride+b.Width*4]

		for i := 0; i < len(src); i += 4 {
			dst[i] = src[i+2]
			dst[i+1] = src[i+1]
			dst[i+2] = src[i]
			dst[i+3] = src[i+3]
		}
	}

	return img
}
