package main

import (
	"image"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
)

// fitCells scales img to fit cols x rows terminal cells, two pixels per cell
// vertically, keeping the aspect ratio. The rest is black.
func fitCells(img image.Image, cols, rows int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, max(cols, 0), max(rows*2, 0)))

	src := img.Bounds()
	if src.Empty() || dst.Rect.Empty() {
		return dst
	}

	scale := min(float64(dst.Rect.Dx())/float64(src.Dx()), float64(dst.Rect.Dy())/float64(src.Dy()))
	w := int(float64(src.Dx()) * scale)
	h := int(float64(src.Dy()) * scale)

	off := image.Pt((dst.Rect.Dx()-w)/2, (dst.Rect.Dy()-h)/2)
	draw.ApproxBiLinear.Scale(dst, image.Rectangle{Min: off, Max: off.Add(image.Pt(w, h))}, img, src, draw.Src, nil)

	return dst
}

// drawHalfBlocks writes img as rows of "▀" cells: the upper pixel is the
// foreground color and the lower pixel the background color. Escape codes
// are only emitted when a color changes.
func drawHalfBlocks(sb *strings.Builder, img *image.RGBA) {
	b := img.Bounds()

	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		var fg, bg color.RGBA

		first := true

		for x := b.Min.X; x < b.Max.X; x++ {
			top := img.RGBAAt(x, y)

			var bot color.RGBA
			if y+1 < b.Max.Y {
				bot = img.RGBAAt(x, y+1)
			}

			if first || top != fg {
				writeColor(sb, "38", top)
			}

			if first || bot != bg {
				writeColor(sb, "48", bot)
			}

			fg, bg, first = top, bot, false

			sb.WriteString("▀")
		}

		sb.WriteString("\x1b[0m\n")
	}
}

func writeColor(sb *strings.Builder, layer string, c color.RGBA) {
	sb.WriteString("\x1b[")
	sb.WriteString(layer)
	sb.WriteString(";2;")
	sb.WriteString(strconv.Itoa(int(c.R)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(c.G)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(c.B)))
	sb.WriteByte('m')
}
