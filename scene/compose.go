package scene

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"

	"golang.org/x/image/draw"

	// Registered decoders for background and foreground images.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Loader opens the image at path.
type Loader func(path string) (image.Image, error)

// Composer builds base frames from a [Scene].
//
// Create instances with [NewComposer].
type Composer struct {
	load      Loader
	logger    *slog.Logger
	logo      image.Image
	watermark image.Image
}

// ComposerOption configures a [Composer].
type ComposerOption func(*Composer)

// WithLoader replaces the function used to read image files.
func WithLoader(l Loader) ComposerOption {
	return func(c *Composer) {
		c.load = l
	}
}

// WithLogger sets the logger. The default is [slog.Default].
func WithLogger(l *slog.Logger) ComposerOption {
	return func(c *Composer) {
		c.logger = l
	}
}

// NewComposer creates a [Composer] with the given options.
func NewComposer(opts ...ComposerOption) *Composer {
	c := &Composer{
		load:   LoadImage,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logo = Logo()
	c.watermark = WatermarkImage()

	return c
}

// Compose renders s onto a [Width] x [Height] canvas: the background, then
// the foreground source-over into [ForegroundRect], then the watermark
// source-over into [WatermarkRect] if s.Watermark is set.
func (c *Composer) Compose(s Scene) (*image.RGBA, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, Width, Height))

	err := c.drawBackground(canvas, s.Background)
	if err != nil {
		return nil, err
	}

	fg, err := c.foreground(s.Foreground)
	if err != nil {
		return nil, err
	}

	if fg != nil {
		draw.ApproxBiLinear.Scale(canvas, ForegroundRect, fg, fg.Bounds(), draw.Over, nil)
	}

	if s.Watermark {
		draw.ApproxBiLinear.Scale(canvas, WatermarkRect, c.watermark, c.watermark.Bounds(), draw.Over, nil)
	}

	c.logger.Debug("composed scene",
		slog.String("background", s.Background.Kind.String()),
		slog.String("foreground", s.Foreground.Kind.String()),
		slog.Bool("watermark", s.Watermark),
	)

	return canvas, nil
}

func (c *Composer) drawBackground(dst *image.RGBA, bg Background) error {
	fill := func(col color.Color) {
		draw.Draw(dst, dst.Rect, image.NewUniform(col), image.Point{}, draw.Src)
	}

	switch bg.Kind {
	case BackgroundWhite:
		fill(color.White)

	case BackgroundCustomColor:
		col := bg.Color
		col.A = 255
		fill(col)

	case BackgroundImage:
		fill(color.Black)

		if bg.Image == "" {
			c.logger.Warn("background image not set, using black")

			return nil
		}

		img, err := c.load(bg.Image)
		if err != nil {
			return fmt.Errorf("%w: background: %w", ErrImage, err)
		}

		draw.ApproxBiLinear.Scale(dst, fitWidth(img.Bounds().Size(), dst.Rect.Size()), img, img.Bounds(), draw.Over, nil)

	default:
		fill(color.Black)
	}

	return nil
}

func (c *Composer) foreground(fg Foreground) (image.Image, error) {
	switch fg.Kind {
	case ForegroundLogo:
		return c.logo, nil

	case ForegroundImage:
		if fg.Image == "" {
			return nil, nil
		}

		img, err := c.load(fg.Image)
		if err != nil {
			return nil, fmt.Errorf("%w: foreground: %w", ErrImage, err)
		}

		if b := img.Bounds(); b.Dx() != b.Dy() {
			c.logger.Warn("foreground image is not square and will be stretched",
				slog.String("path", fg.Image),
				slog.Int("width", b.Dx()),
				slog.Int("height", b.Dy()),
			)
		}

		return img, nil
	}

	return nil, nil
}

// fitWidth returns the rectangle that scales src to the full width of dst,
// keeping its aspect ratio, centered vertically.
func fitWidth(src, dst image.Point) image.Rectangle {
	if src.X <= 0 || src.Y <= 0 {
		return image.Rectangle{}
	}

	h := dst.X * src.Y / src.X
	y := (dst.Y - h) / 2

	return image.Rect(0, y, dst.X, y+h)
}

// LoadImage decodes the image file at path. PNG, JPEG, GIF, BMP, TIFF and
// WebP are supported.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // Path comes from user configuration.
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // Read-only file.

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return img, nil
}
