package effect

import (
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// canvas is a straight-alpha float RGBA working buffer with the same
// rectangle as the image it was loaded from.
type canvas struct {
	rect image.Rectangle
	w, h int
	pix  []float32
}

func newCanvas(r image.Rectangle) *canvas {
	return &canvas{
		rect: r,
		w:    r.Dx(),
		h:    r.Dy(),
		pix:  make([]float32, r.Dx()*r.Dy()*4),
	}
}

// loadCanvas converts premultiplied 8-bit pixels to straight float.
func loadCanvas(img *image.RGBA) *canvas {
	c := newCanvas(img.Rect)

	rows(c.h, func(y int) {
		src := img.Pix[y*img.Stride : y*img.Stride+c.w*4]
		dst := c.pix[y*c.w*4 : (y+1)*c.w*4]

		for i := 0; i < len(src); i += 4 {
			a := float32(src[i+3]) / 255
			dst[i+3] = a

			if a == 0 {
				continue
			}

			dst[i] = float32(src[i]) / 255 / a
			dst[i+1] = float32(src[i+1]) / 255 / a
			dst[i+2] = float32(src[i+2]) / 255 / a
		}
	})

	return c
}

// image converts back to premultiplied 8-bit pixels, clamping every
// component to [0, 1].
func (c *canvas) image() *image.RGBA {
	out := image.NewRGBA(c.rect)

	rows(c.h, func(y int) {
		src := c.pix[y*c.w*4 : (y+1)*c.w*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+c.w*4]

		for i := 0; i < len(src); i += 4 {
			a := clamp01(src[i+3])
			dst[i] = quantize(clamp01(src[i]) * a)
			dst[i+1] = quantize(clamp01(src[i+1]) * a)
			dst[i+2] = quantize(clamp01(src[i+2]) * a)
			dst[i+3] = quantize(a)
		}
	})

	return out
}

func (c *canvas) at(x, y int) []float32 {
	x = min(max(x, 0), c.w-1)
	y = min(max(y, 0), c.h-1)
	i := (y*c.w + x) * 4

	return c.pix[i : i+4 : i+4]
}

// clone copies img into a fresh image with the same rectangle.
func clone(img *image.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Rect)
	w := img.Rect.Dx() * 4

	for y := range img.Rect.Dy() {
		copy(out.Pix[y*out.Stride:y*out.Stride+w], img.Pix[y*img.Stride:y*img.Stride+w])
	}

	return out
}

// rows runs fn for every row in [0, h), fanning out over GOMAXPROCS
// goroutines in contiguous bands.
func rows(h int, fn func(y int)) {
	workers := min(runtime.GOMAXPROCS(0), h)
	if workers <= 1 {
		for y := range h {
			fn(y)
		}

		return
	}

	band := (h + workers - 1) / workers

	var g errgroup.Group
	for y0 := 0; y0 < h; y0 += band {
		y1 := min(y0+band, h)

		g.Go(func() error {
			for y := y0; y < y1; y++ {
				fn(y)
			}

			return nil
		})
	}

	//nolint:errcheck // Workers never fail.
	g.Wait()
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}

	return v
}

func quantize(v float32) uint8 {
	return uint8(v*255 + 0.5)
}
