package writer

import (
	"image"

	"go.jacobcolvin.com/beatvid/effect"
)

// Profile is the fixed output format of a silent video.
type Profile struct {
	Codec       string
	Preset      string
	PixelFormat string
	Width       int
	Height      int
	FPS         int
	CRF         int
}

// DefaultProfile is 1080p at 30 frames per second, H.264 with the standard
// consumer preset.
var DefaultProfile = Profile{
	Width:       1920,
	Height:      1080,
	FPS:         effect.FPS,
	Codec:       "libx264",
	Preset:      "medium",
	CRF:         23,
	PixelFormat: "yuv420p",
}

// Size returns the frame dimensions.
func (p Profile) Size() image.Point {
	return image.Pt(p.Width, p.Height)
}
