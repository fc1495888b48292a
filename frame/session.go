package frame

import (
	"errors"
	"fmt"
	"image"
	"sync/atomic"

	"golang.org/x/image/draw"

	"go.jacobcolvin.com/beatvid/effect"
)

// ErrUnavailable indicates that a frame could not be produced. It is
// transient: callers should skip the frame and retry.
var ErrUnavailable = errors.New("frame unavailable")

// Session binds one base image to one effect and renders frames of it by
// index.
//
// Frames can be requested in any order and from multiple goroutines. The
// only state is the preview counter advanced by [Session.Next]; the export
// path addresses frames explicitly with [Session.At].
//
// Create instances with [NewSession].
type Session struct {
	engine *effect.Engine
	base   *image.RGBA
	size   image.Point
	sel    effect.Selector
	next   atomic.Int64
}

// Option configures a [Session].
type Option func(*Session)

// WithEngine sets the [effect.Engine] used to render frames.
func WithEngine(e *effect.Engine) Option {
	return func(s *Session) {
		s.engine = e
	}
}

// WithSize scales every pixel buffer to w x h. By default buffers have the
// size of the base image.
func WithSize(w, h int) Option {
	return func(s *Session) {
		s.size = image.Pt(w, h)
	}
}

// NewSession creates a [Session] for base and sel. The selector is
// validated here; base is captured as is and must not be modified while the
// session is in use.
func NewSession(base *image.RGBA, sel effect.Selector, opts ...Option) (*Session, error) {
	err := sel.Validate()
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}

	s := &Session{
		base: base,
		sel:  sel,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.engine == nil {
		s.engine = effect.New()
	}

	if s.size == (image.Point{}) && base != nil {
		s.size = base.Rect.Size()
	}

	return s, nil
}

// Selector returns the effect bound to the session.
func (s *Session) Selector() effect.Selector {
	return s.sel
}

// Size returns the dimensions of the pixel buffers produced by [Session.At].
func (s *Session) Size() image.Point {
	return s.size
}

// Render returns the effect output for the given frame at the base image's
// size. It returns [ErrUnavailable] if the base image is missing or empty.
func (s *Session) Render(frame int) (*image.RGBA, error) {
	if s.base == nil || s.base.Rect.Empty() {
		return nil, fmt.Errorf("%w: empty base image", ErrUnavailable)
	}

	if frame < 0 {
		return nil, fmt.Errorf("%w: negative frame index %d", ErrUnavailable, frame)
	}

	return s.engine.Render(s.base, s.sel, frame), nil
}

// At renders the given frame and converts it to a [PixelBuffer] of
// [Session.Size]. It returns [ErrUnavailable] if the frame cannot be
// produced.
func (s *Session) At(frame int) (*PixelBuffer, error) {
	img, err := s.Render(frame)
	if err != nil {
		return nil, err
	}

	if s.size.X <= 0 || s.size.Y <= 0 {
		return nil, fmt.Errorf("%w: degenerate output size %v", ErrUnavailable, s.size)
	}

	if img.Rect.Size() != s.size {
		scaled := image.NewRGBA(image.Rectangle{Max: s.size})
		draw.ApproxBiLinear.Scale(scaled, scaled.Rect, img, img.Rect, draw.Src, nil)
		img = scaled
	}

	return fromRGBA(img), nil
}

// Next renders the frame at the preview counter and advances it. It returns
// the image together with the index it was rendered for.
func (s *Session) Next() (*image.RGBA, int, error) {
	frame := int(s.next.Add(1) - 1)

	img, err := s.Render(frame)
	if err != nil {
		return nil, frame, err
	}

	return img, frame, nil
}

// Reset rewinds the preview counter to frame zero.
func (s *Session) Reset() {
	s.next.Store(0)
}
