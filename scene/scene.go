package scene

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

const (
	// Width and Height are the canvas dimensions.
	Width  = 1920
	Height = 1080
)

var (
	// ForegroundRect is where the foreground is drawn: a centered square
	// the height of the canvas.
	ForegroundRect = image.Rect((Width-Height)/2, 0, (Width-Height)/2+Height, Height)
	// WatermarkRect is where the watermark is drawn, near the top-right
	// corner.
	WatermarkRect = image.Rect(Width-350, 0, Width-50, 150)
)

var (
	// ErrUnknownKind indicates an unrecognized background or foreground
	// discriminant.
	ErrUnknownKind = errors.New("unknown kind")
	// ErrInvalidColor indicates a color string that is not #RRGGBB.
	ErrInvalidColor = errors.New("invalid color")
	// ErrImage indicates that a background or foreground image could not
	// be loaded.
	ErrImage = errors.New("loading image")
)

// BackgroundKind selects how the canvas is filled. Values are persisted.
type BackgroundKind int

const (
	BackgroundBlack BackgroundKind = iota
	BackgroundWhite
	BackgroundImage
	BackgroundCustomColor
)

// ForegroundKind selects what is drawn in [ForegroundRect]. Values are
// persisted.
type ForegroundKind int

const (
	ForegroundNone ForegroundKind = iota
	ForegroundImage
	ForegroundLogo
)

// Background describes the canvas fill. Image is used by
// [BackgroundImage] and Color by [BackgroundCustomColor].
type Background struct {
	Image string
	Kind  BackgroundKind
	Color color.RGBA
}

// Foreground describes the centered overlay. Image is used by
// [ForegroundImage].
type Foreground struct {
	Image string
	Kind  ForegroundKind
}

// Scene is everything that goes into a base frame.
type Scene struct {
	Background Background
	Foreground Foreground
	Watermark  bool
}

// ShowWatermark decides whether the watermark is drawn. It is always drawn
// unless the removal entitlement is unlocked and the user opted out.
func ShowWatermark(unlocked, wanted bool) bool {
	return !unlocked || wanted
}

var backgroundNames = []string{"black", "white", "image", "custom-color"}

var foregroundNames = []string{"none", "image", "logo"}

// String returns the identifier of k.
func (k BackgroundKind) String() string {
	if k < 0 || int(k) >= len(backgroundNames) {
		return fmt.Sprintf("background(%d)", int(k))
	}

	return backgroundNames[k]
}

// String returns the identifier of k.
func (k ForegroundKind) String() string {
	if k < 0 || int(k) >= len(foregroundNames) {
		return fmt.Sprintf("foreground(%d)", int(k))
	}

	return foregroundNames[k]
}

// BackgroundFromValue returns the kind for a persisted discriminant. Unknown
// values yield [BackgroundBlack] and an error.
func BackgroundFromValue(v int) (BackgroundKind, error) {
	if v < 0 || v >= len(backgroundNames) {
		return BackgroundBlack, fmt.Errorf("%w: background %d", ErrUnknownKind, v)
	}

	return BackgroundKind(v), nil
}

// ForegroundFromValue returns the kind for a persisted discriminant. Unknown
// values yield [ForegroundNone] and an error.
func ForegroundFromValue(v int) (ForegroundKind, error) {
	if v < 0 || v >= len(foregroundNames) {
		return ForegroundNone, fmt.Errorf("%w: foreground %d", ErrUnknownKind, v)
	}

	return ForegroundKind(v), nil
}

// ParseBackgroundKind parses an identifier as returned by
// [BackgroundKind.String].
func ParseBackgroundKind(s string) (BackgroundKind, error) {
	for i, n := range backgroundNames {
		if strings.EqualFold(s, n) {
			return BackgroundKind(i), nil
		}
	}

	return BackgroundBlack, fmt.Errorf("%w: background %q", ErrUnknownKind, s)
}

// ParseForegroundKind parses an identifier as returned by
// [ForegroundKind.String].
func ParseForegroundKind(s string) (ForegroundKind, error) {
	for i, n := range foregroundNames {
		if strings.EqualFold(s, n) {
			return ForegroundKind(i), nil
		}
	}

	return ForegroundNone, fmt.Errorf("%w: foreground %q", ErrUnknownKind, s)
}

// GetAllBackgroundStrings returns every background identifier.
func GetAllBackgroundStrings() []string {
	return append([]string(nil), backgroundNames...)
}

// GetAllForegroundStrings returns every foreground identifier.
func GetAllForegroundStrings() []string {
	return append([]string(nil), foregroundNames...)
}

// ParseColor parses "#RRGGBB" or "RRGGBB" into an opaque color.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// FormatColor returns c as "#rrggbb".
func FormatColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
