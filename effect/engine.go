package effect

import (
	"image"
	"math/rand/v2"
)

// Engine renders a base image under an effect for a given frame index.
//
// Every kind except [KindNoise] is a pure function of its inputs. Noise
// draws its offset from the Engine's random source, which can be replaced
// with [WithRandom] to make it reproducible.
//
// Create instances with [New]. An Engine is safe for concurrent use as long
// as its random source is.
type Engine struct {
	random func() uint32
	fps    int
}

// Option configures an [Engine].
type Option func(*Engine)

// WithRandom sets the source of the Noise effect's offset.
func WithRandom(fn func() uint32) Option {
	return func(e *Engine) {
		e.random = fn
	}
}

// WithFPS sets the frame rate biases are computed against. Values less than
// 1 are ignored.
func WithFPS(fps int) Option {
	return func(e *Engine) {
		if fps > 0 {
			e.fps = fps
		}
	}
}

// New creates an [Engine] with the given options. The default frame rate is
// [FPS] and the default random source is [rand.Uint32].
func New(opts ...Option) *Engine {
	e := &Engine{
		random: rand.Uint32,
		fps:    FPS,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// FPS returns the frame rate the Engine computes biases against.
func (e *Engine) FPS() int {
	return e.fps
}

// Render returns base transformed by sel at the given frame. The result
// always has the same bounds as base and never aliases it. A non-positive
// duration is treated as one second; use [Selector.Validate] to reject it
// beforehand.
func (e *Engine) Render(base *image.RGBA, sel Selector, frame int) *image.RGBA {
	if base == nil {
		return image.NewRGBA(image.Rectangle{})
	}

	if base.Rect.Empty() {
		return image.NewRGBA(base.Rect)
	}

	d := max(sel.Duration, 1)

	switch sel.Kind {
	case KindVintage:
		return vintage(loadCanvas(base), Bias(frame, e.fps, d)).image()

	case KindNegative:
		return negative(loadCanvas(base), NegativeBias(frame, e.fps, d)).image()

	case KindRadialBlur:
		h := float64(base.Rect.Dy())

		return radialBlur(base, Bias(frame, e.fps, d)*h)

	case KindPixellate:
		bias := PixellateBias(frame, e.fps, d)
		if bias < pixellateThreshold {
			return clone(base)
		}

		return pixellate(base, bias*pixellateScale)

	case KindExposure:
		return exposure(loadCanvas(base), ExposureBias(frame, e.fps, d)).image()

	case KindHueAdjust:
		return hueAdjust(loadCanvas(base), HueAngle(frame, e.fps, d)).image()

	case KindNoise:
		// Whole-number offset; the division truncates before conversion.
		bias := float64(e.random() / 100000)

		return noiseMultiply(loadCanvas(base), bias, bias*0.2).image()
	}

	return clone(base)
}
