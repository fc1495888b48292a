package effect_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/beatvid/effect"
)

func uniform(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}

	return img
}

func checkerboard(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := color.RGBA{A: 255}
			if (x+y)%2 == 0 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}

			img.SetRGBA(x, y, c)
		}
	}

	return img
}

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: 90,
				A: 255,
			})
		}
	}

	return img
}

func fixedRandom(v uint32) func() uint32 {
	return func() uint32 { return v }
}

func TestRenderNoneIsIdentity(t *testing.T) {
	t.Parallel()

	eng := effect.New()

	parent := gradient(40, 30)
	sub, ok := parent.SubImage(image.Rect(5, 3, 37, 21)).(*image.RGBA)
	require.True(t, ok)

	tcs := map[string]struct {
		base *image.RGBA
	}{
		"full image": {base: parent},
		"sub image":  {base: sub},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			for _, f := range []int{0, 7, 1 << 40} {
				out := eng.Render(tc.base, effect.Selector{Kind: effect.KindNone, Duration: 5}, f)
				require.Equal(t, tc.base.Rect, out.Rect)

				for y := tc.base.Rect.Min.Y; y < tc.base.Rect.Max.Y; y++ {
					for x := tc.base.Rect.Min.X; x < tc.base.Rect.Max.X; x++ {
						require.Equal(t, tc.base.RGBAAt(x, y), out.RGBAAt(x, y), "(%d,%d) frame %d", x, y, f)
					}
				}

				// The result must not alias the base.
				out.SetRGBA(tc.base.Rect.Min.X, tc.base.Rect.Min.Y, color.RGBA{R: 1})
				assert.NotEqual(t, color.RGBA{R: 1}, tc.base.RGBAAt(tc.base.Rect.Min.X, tc.base.Rect.Min.Y))
			}
		})
	}
}

func TestRenderKeepsBounds(t *testing.T) {
	t.Parallel()

	eng := effect.New(effect.WithRandom(fixedRandom(123456789)))
	base := gradient(48, 27)

	for _, k := range effect.Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			t.Parallel()

			for _, f := range []int{0, 30, 45, 1000, 1 << 33} {
				out := eng.Render(base, effect.Selector{Kind: k, Duration: 2}, f)
				assert.Equal(t, base.Rect, out.Rect)
				assert.Len(t, out.Pix, len(base.Pix))
			}
		})
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	t.Parallel()

	base := gradient(64, 36)

	for _, k := range effect.Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			t.Parallel()

			a := effect.New(effect.WithRandom(fixedRandom(4_000_000_000)))
			b := effect.New(effect.WithRandom(fixedRandom(4_000_000_000)))

			sel := effect.Selector{Kind: k, Duration: 3}
			assert.Equal(t, a.Render(base, sel, 77).Pix, b.Render(base, sel, 77).Pix)
			assert.Equal(t, a.Render(base, sel, 77).Pix, a.Render(base, sel, 77).Pix)
		})
	}
}

func TestRenderEmptyBase(t *testing.T) {
	t.Parallel()

	eng := effect.New()

	out := eng.Render(image.NewRGBA(image.Rect(0, 0, 0, 10)), effect.Vintage(3), 5)
	assert.True(t, out.Rect.Empty())

	out = eng.Render(nil, effect.Vintage(3), 5)
	assert.True(t, out.Rect.Empty())
}

func TestPixellateThreshold(t *testing.T) {
	t.Parallel()

	eng := effect.New()
	base := checkerboard(64, 64)

	tcs := map[string]struct {
		frame     int
		identical bool
	}{
		"bias zero": {
			frame:     0,
			identical: true,
		},
		"bias just below threshold": {
			// |sin(13/90)| = 0.144
			frame:     13,
			identical: true,
		},
		"bias above threshold": {
			// |sin(14/90)| = 0.155
			frame:     14,
			identical: false,
		},
		"bias near peak": {
			frame:     141,
			identical: false,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			require.Less(t, effect.PixellateBias(13, effect.FPS, 3), float32(0.15))
			require.GreaterOrEqual(t, effect.PixellateBias(14, effect.FPS, 3), float32(0.15))

			out := eng.Render(base, effect.Pixellate(3), tc.frame)
			if tc.identical {
				assert.Equal(t, base.Pix, out.Pix)
			} else {
				assert.NotEqual(t, base.Pix, out.Pix)
			}
		})
	}
}

func TestPixellateBlocksAreUniform(t *testing.T) {
	t.Parallel()

	eng := effect.New()
	base := gradient(200, 120)

	// |sin(141/90)| is almost 1, giving blocks of about 70 pixels around
	// the center.
	out := eng.Render(base, effect.Pixellate(3), 141)

	center := out.RGBAAt(100, 60)
	assert.Equal(t, center, out.RGBAAt(101, 61))
	assert.Equal(t, center, out.RGBAAt(120, 80))
	assert.Equal(t, color.RGBA(center).A, uint8(255))
}

func TestNegative(t *testing.T) {
	t.Parallel()

	eng := effect.New()

	tcs := map[string]struct {
		in   color.RGBA
		want color.RGBA
	}{
		"black becomes white": {
			in:   color.RGBA{A: 255},
			want: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		},
		"white becomes dark gray": {
			// -0.75*1 + 1 = 0.25
			in:   color.RGBA{R: 255, G: 255, B: 255, A: 255},
			want: color.RGBA{R: 64, G: 64, B: 64, A: 255},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out := eng.Render(uniform(8, 8, tc.in), effect.Negative(3), 0)
			assert.Equal(t, tc.want, out.RGBAAt(3, 3))
		})
	}
}

func TestNegativeDarkensOverCycle(t *testing.T) {
	t.Parallel()

	eng := effect.New()
	base := uniform(4, 4, color.RGBA{R: 100, G: 100, B: 100, A: 255})

	start := eng.Render(base, effect.Negative(1), 0).RGBAAt(0, 0)
	peak := eng.Render(base, effect.Negative(1), 47).RGBAAt(0, 0)

	assert.Greater(t, start.R, peak.R)
}

func TestExposure(t *testing.T) {
	t.Parallel()

	eng := effect.New()
	base := gradient(32, 32)

	t.Run("zero at frame zero", func(t *testing.T) {
		t.Parallel()

		out := eng.Render(base, effect.Exposure(3), 0)
		assert.Equal(t, base.Pix, out.Pix)
	})

	t.Run("brightens on positive swing", func(t *testing.T) {
		t.Parallel()

		mid := uniform(4, 4, color.RGBA{R: 40, G: 40, B: 40, A: 255})
		out := eng.Render(mid, effect.Exposure(1), 30)
		assert.Greater(t, out.RGBAAt(0, 0).R, uint8(40))
	})

	t.Run("darkens on negative swing", func(t *testing.T) {
		t.Parallel()

		mid := uniform(4, 4, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		// 300/30 = 10 rad, sin(10) < 0.
		out := eng.Render(mid, effect.Exposure(1), 300)
		assert.Less(t, out.RGBAAt(0, 0).R, uint8(200))
	})
}

func TestHueAdjustAtZeroAngle(t *testing.T) {
	t.Parallel()

	eng := effect.New()
	base := gradient(32, 32)

	out := eng.Render(base, effect.HueAdjust(3), 0)

	for i := range base.Pix {
		assert.InDelta(t, base.Pix[i], out.Pix[i], 2, "index %d", i)
	}
}

func TestHueAdjustRotatesColor(t *testing.T) {
	t.Parallel()

	eng := effect.New()
	red := uniform(4, 4, color.RGBA{R: 220, G: 20, B: 20, A: 255})

	out := eng.Render(red, effect.HueAdjust(1), 45).RGBAAt(1, 1)
	assert.Less(t, out.R, uint8(200))
	assert.Equal(t, uint8(255), out.A)
}

func TestRadialBlur(t *testing.T) {
	t.Parallel()

	eng := effect.New()
	base := checkerboard(64, 64)

	t.Run("uniform image is unchanged", func(t *testing.T) {
		t.Parallel()

		flat := uniform(40, 40, color.RGBA{R: 10, G: 120, B: 200, A: 255})
		out := eng.Render(flat, effect.RadialBlur(3), 0)
		assert.Equal(t, flat.Pix, out.Pix)
	})

	t.Run("zero radius blurs everything", func(t *testing.T) {
		t.Parallel()

		out := eng.Render(base, effect.RadialBlur(3), 0)

		px := out.RGBAAt(32, 32)
		assert.Greater(t, px.R, uint8(100))
		assert.Less(t, px.R, uint8(155))
	})

	t.Run("full radius keeps everything sharp", func(t *testing.T) {
		t.Parallel()

		out := eng.Render(base, effect.RadialBlur(3), 141)
		assert.Equal(t, base.Pix, out.Pix)
	})

	t.Run("center sharp and corner blurred", func(t *testing.T) {
		t.Parallel()

		// |sin(45/90)| * 64 is about 30 pixels.
		out := eng.Render(base, effect.RadialBlur(3), 45)
		assert.Equal(t, base.RGBAAt(32, 32), out.RGBAAt(32, 32))
		assert.NotEqual(t, base.RGBAAt(1, 1), out.RGBAAt(1, 1))
	})
}

func TestVintage(t *testing.T) {
	t.Parallel()

	eng := effect.New()
	base := gradient(64, 64)

	out := eng.Render(base, effect.Vintage(3), 45)
	assert.NotEqual(t, base.Pix, out.Pix)

	for y := range 64 {
		for x := range 64 {
			assert.Equal(t, uint8(255), out.RGBAAt(x, y).A)
		}
	}

	// A later frame changes the grain and scratch strength.
	assert.NotEqual(t, out.Pix, eng.Render(base, effect.Vintage(3), 130).Pix)
}

func TestNoiseUsesRandomSource(t *testing.T) {
	t.Parallel()

	calls := 0
	eng := effect.New(effect.WithRandom(func() uint32 {
		calls++

		return uint32(calls) * 1_000_000
	}))

	base := uniform(32, 32, color.RGBA{R: 200, G: 200, B: 200, A: 255})

	first := eng.Render(base, effect.Noise(3), 0)
	second := eng.Render(base, effect.Noise(3), 0)

	assert.Equal(t, 2, calls)
	assert.NotEqual(t, first.Pix, second.Pix)
	assert.Equal(t, uint8(255), first.RGBAAt(5, 5).A)
}

func TestEngineFPS(t *testing.T) {
	t.Parallel()

	assert.Equal(t, effect.FPS, effect.New().FPS())
	assert.Equal(t, 25, effect.New(effect.WithFPS(25)).FPS())
	assert.Equal(t, effect.FPS, effect.New(effect.WithFPS(0)).FPS())
}
