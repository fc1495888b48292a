package effect

import (
	"image"
	"math"
)

// blurRadius is the box radius of each of the three blur passes. Three
// passes of width 2*10+1 approximate a Gaussian with sigma 10.
const blurRadius = 10

// pixellateThreshold is the bias below which pixellation is skipped.
const pixellateThreshold = 0.15

// pixellateScale converts a bias into a mosaic block size in pixels.
const pixellateScale = 70

// negative applies bias*c + 1 to every color channel. Alpha is kept.
func negative(c *canvas, bias float64) *canvas {
	b := float32(bias)

	rows(c.h, func(y int) {
		px := c.pix[y*c.w*4 : (y+1)*c.w*4]
		for i := 0; i < len(px); i += 4 {
			px[i] = b*px[i] + 1
			px[i+1] = b*px[i+1] + 1
			px[i+2] = b*px[i+2] + 1
		}
	})

	return c
}

// exposure scales every color channel by 2^ev.
func exposure(c *canvas, ev float32) *canvas {
	k := float32(math.Exp2(float64(ev)))

	rows(c.h, func(y int) {
		px := c.pix[y*c.w*4 : (y+1)*c.w*4]
		for i := 0; i < len(px); i += 4 {
			px[i] *= k
			px[i+1] *= k
			px[i+2] *= k
		}
	})

	return c
}

// hueAdjust rotates chroma by angle radians in YIQ space.
func hueAdjust(c *canvas, angle float32) *canvas {
	m := hueMatrix(float64(angle))

	rows(c.h, func(y int) {
		px := c.pix[y*c.w*4 : (y+1)*c.w*4]
		for i := 0; i < len(px); i += 4 {
			r, g, b := px[i], px[i+1], px[i+2]
			px[i] = m[0]*r + m[1]*g + m[2]*b
			px[i+1] = m[3]*r + m[4]*g + m[5]*b
			px[i+2] = m[6]*r + m[7]*g + m[8]*b
		}
	})

	return c
}

// hueMatrix returns the RGB to RGB matrix of a YIQ hue rotation.
func hueMatrix(angle float64) [9]float32 {
	toYIQ := [9]float64{
		0.299, 0.587, 0.114,
		0.596, -0.274, -0.322,
		0.211, -0.523, 0.312,
	}
	toRGB := [9]float64{
		1, 0.956, 0.621,
		1, -0.272, -0.647,
		1, -1.106, 1.703,
	}

	sin, cos := math.Sincos(angle)
	rot := [9]float64{
		1, 0, 0,
		0, cos, -sin,
		0, sin, cos,
	}

	m := mul3(toRGB, mul3(rot, toYIQ))

	var out [9]float32
	for i, v := range m {
		out[i] = float32(v)
	}

	return out
}

func mul3(a, b [9]float64) [9]float64 {
	var out [9]float64

	for r := range 3 {
		for c := range 3 {
			for k := range 3 {
				out[r*3+c] += a[r*3+k] * b[k*3+c]
			}
		}
	}

	return out
}

// pixellate mosaics img into square blocks of side scale centered on the
// image center, then composites the mosaic over img. Each block takes the
// color of the pixel under its center, clamped to the image.
func pixellate(img *image.RGBA, scale float32) *image.RGBA {
	out := image.NewRGBA(img.Rect)
	w, h := img.Rect.Dx(), img.Rect.Dy()
	s := float64(scale)
	cx, cy := float64(w)/2, float64(h)/2

	sample := func(pos, center float64, limit int) int {
		block := math.Floor((pos + 0.5 - center) / s)
		at := int(math.Floor(center + (block+0.5)*s))

		return min(max(at, 0), limit-1)
	}

	xs := make([]int, w)
	for x := range w {
		xs[x] = sample(float64(x), cx, w)
	}

	rows(h, func(y int) {
		sy := sample(float64(y), cy, h)
		src := img.Pix[sy*img.Stride:]
		bg := img.Pix[y*img.Stride:]
		dst := out.Pix[y*out.Stride:]

		for x, sx := range xs {
			m := src[sx*4 : sx*4+4]
			b := bg[x*4 : x*4+4]
			inv := 255 - uint32(m[3])

			for ch := range 4 {
				dst[x*4+ch] = uint8(uint32(m[ch]) + (uint32(b[ch])*inv+127)/255)
			}
		}
	})

	return out
}

// radialBlur keeps a sharp disk of the given radius around the image center
// and blurs everything outside it.
func radialBlur(img *image.RGBA, radius float64) *image.RGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	cx, cy := float64(w)/2, float64(h)/2

	if radius*radius >= cx*cx+cy*cy {
		return clone(img)
	}

	blurred := boxBlur(img, blurRadius, 3)
	r2 := radius * radius

	rows(h, func(y int) {
		dy := float64(y) + 0.5 - cy
		src := img.Pix[y*img.Stride:]
		dst := blurred.Pix[y*blurred.Stride:]

		for x := range w {
			dx := float64(x) + 0.5 - cx
			if dx*dx+dy*dy < r2 {
				copy(dst[x*4:x*4+4], src[x*4:x*4+4])
			}
		}
	})

	return blurred
}

// boxBlur applies passes of a separable box blur over premultiplied pixels
// with clamped edges.
func boxBlur(img *image.RGBA, radius, passes int) *image.RGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	a := make([]float32, w*h*4)
	b := make([]float32, w*h*4)

	for y := range h {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i, v := range row {
			a[y*w*4+i] = float32(v)
		}
	}

	for range passes {
		rows(h, func(y int) {
			boxLine(a[y*w*4:], b[y*w*4:], w, 4, radius)
		})
		rows(w, func(x int) {
			boxLine(b[x*4:], a[x*4:], h, w*4, radius)
		})
	}

	out := image.NewRGBA(img.Rect)
	for y := range h {
		row := out.Pix[y*out.Stride : y*out.Stride+w*4]
		for i := range row {
			row[i] = uint8(min(max(a[y*w*4+i]+0.5, 0), 255))
		}
	}

	return out
}

// boxLine blurs n pixels of src, each stride floats apart, into dst using a
// running sum over a window of 2*radius+1 with clamped edges.
func boxLine(src, dst []float32, n, stride, radius int) {
	norm := 1 / float32(2*radius+1)

	at := func(i, ch int) float32 {
		i = min(max(i, 0), n-1)

		return src[i*stride+ch]
	}

	for ch := range 4 {
		var sum float32
		for i := -radius; i <= radius; i++ {
			sum += at(i, ch)
		}

		for i := range n {
			dst[i*stride+ch] = sum * norm
			sum += at(i+radius+1, ch) - at(i-radius, ch)
		}
	}
}

// vintage applies sepia, a faint grain layer and vertical scratches.
func vintage(c *canvas, bias float64) *canvas {
	grainAlpha := float32(0.001 + bias*0.1)
	scratchX := 1.5
	scratchY := 25 + 5*bias

	rows(c.h, func(y int) {
		px := c.pix[y*c.w*4 : (y+1)*c.w*4]
		for x := range c.w {
			p := px[x*4 : x*4+4]
			r, g, b := p[0], p[1], p[2]

			// Sepia tone at full intensity.
			sr := clamp01(0.393*r + 0.769*g + 0.189*b)
			sg := clamp01(0.349*r + 0.686*g + 0.168*b)
			sb := clamp01(0.272*r + 0.534*g + 0.131*b)

			// Grain: gray from the green noise channel, alpha from green
			// and alpha noise, composited source-over the sepia.
			ng := noise(x, y, 1)
			na := clamp01(0.00005*ng + grainAlpha*noise(x, y, 3))
			sr = ng*na + sr*(1-na)
			sg = ng*na + sg*(1-na)
			sb = ng*na + sb*(1-na)

			// Scratches: red noise stretched vertically, scaled by 4 and
			// capped at white, multiplied over the result.
			sc := min(4*noiseAt(float64(x)/scratchX, float64(y)/scratchY, 0), 1)

			p[0] = sr * sc
			p[1] = sg * sc
			p[2] = sb * sc
		}
	})

	return c
}

// noiseMultiply multiplies c against the random field translated by
// (dx, dy), using the separable multiply blend with the noise on top.
func noiseMultiply(c *canvas, dx, dy float64) *canvas {
	rows(c.h, func(y int) {
		px := c.pix[y*c.w*4 : (y+1)*c.w*4]
		for x := range c.w {
			p := px[x*4 : x*4+4]
			sx, sy := float64(x)-dx, float64(y)-dy
			sa := noiseAt(sx, sy, 3)
			ba := p[3]
			a := sa + ba - sa*ba

			for ch := range 3 {
				s := noiseAt(sx, sy, ch)
				v := s*sa*(1-ba) + p[ch]*ba*(1-sa) + sa*ba*s*p[ch]

				if a > 0 {
					v /= a
				}

				p[ch] = v
			}

			p[3] = a
		}
	})

	return c
}
