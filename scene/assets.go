package scene

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// WatermarkImage returns the watermark artwork: two lines of text on a
// translucent panel, at a third of [WatermarkRect]'s size.
func WatermarkImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, WatermarkRect.Dx()/3, WatermarkRect.Dy()/3))
	draw.Draw(img, img.Rect, image.NewUniform(color.RGBA{A: 150}), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}),
		Face: face,
	}

	lines := []string{"made with", "BeatVid"}
	lineH := face.Metrics().Height.Ceil()
	top := (img.Rect.Dy() - lineH*len(lines)) / 2

	for i, line := range lines {
		w := d.MeasureString(line).Ceil()
		d.Dot = fixed.P((img.Rect.Dx()-w)/2, top+lineH*i+face.Metrics().Ascent.Ceil())
		d.DrawString(line)
	}

	return img
}

// Logo returns the built-in sample foreground: concentric rings on a
// transparent square.
func Logo() *image.RGBA {
	const size = 540

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2

	rings := []struct {
		outer float64
		col   color.RGBA
	}{
		{0.48, color.RGBA{R: 236, G: 72, B: 153, A: 255}},
		{0.40, color.RGBA{R: 17, G: 24, B: 39, A: 255}},
		{0.30, color.RGBA{R: 56, G: 189, B: 248, A: 255}},
		{0.18, color.RGBA{R: 250, G: 250, B: 250, A: 255}},
	}

	for y := range size {
		for x := range size {
			d := math.Hypot(float64(x)+0.5-c, float64(y)+0.5-c) / size
			for i := len(rings) - 1; i >= 0; i-- {
				if d <= rings[i].outer {
					img.SetRGBA(x, y, rings[i].col)

					break
				}
			}
		}
	}

	return img
}
