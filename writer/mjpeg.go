package writer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"

	"github.com/icza/mjpeg"

	"go.jacobcolvin.com/beatvid/frame"
)

var (
	// ErrOutOfOrder indicates a frame appended at an unexpected
	// presentation time.
	ErrOutOfOrder = errors.New("frame out of order")
	// ErrFrameSize indicates a frame whose dimensions differ from the
	// profile.
	ErrFrameSize = errors.New("frame size does not match profile")
)

// MJPEGBackend writes Motion JPEG AVI files without external tools.
type MJPEGBackend struct {
	// Quality is the JPEG quality, 1 to 100. Zero means 90.
	Quality int
}

// Ext implements [Backend].
func (MJPEGBackend) Ext() string { return ".avi" }

// Open implements [Backend].
func (b MJPEGBackend) Open(_ context.Context, path string, p Profile) (Sink, error) {
	aw, err := mjpeg.New(path, int32(p.Width), int32(p.Height), int32(p.FPS))
	if err != nil {
		return nil, fmt.Errorf("create avi: %w", err)
	}

	q := b.Quality
	if q == 0 {
		q = 90
	}

	return &mjpegSink{aw: aw, profile: p, quality: q}, nil
}

type mjpegSink struct {
	aw      mjpeg.AviWriter
	profile Profile
	buf     bytes.Buffer
	next    int64
	quality int
}

func (s *mjpegSink) Ready() <-chan struct{} { return AlwaysReady() }

func (s *mjpegSink) Append(pb *frame.PixelBuffer, pts Time) error {
	err := CheckFrame(pb, pts, s.profile, s.next)
	if err != nil {
		return err
	}

	s.buf.Reset()

	err = jpeg.Encode(&s.buf, pb.RGBA(), &jpeg.Options{Quality: s.quality})
	if err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}

	err = s.aw.AddFrame(s.buf.Bytes())
	if err != nil {
		return fmt.Errorf("add frame: %w", err)
	}

	s.next++

	return nil
}

func (s *mjpegSink) Finish(_ context.Context) error {
	err := s.aw.Close()
	if err != nil {
		return fmt.Errorf("close avi: %w", err)
	}

	return nil
}

func (s *mjpegSink) Abort() error {
	return s.aw.Close()
}

// CheckFrame verifies that pb has the dimensions of p and that pts is the
// presentation time of frame next. Sinks use it to enforce gapless,
// in-order input.
func CheckFrame(pb *frame.PixelBuffer, pts Time, p Profile, next int64) error {
	if pb.Width != p.Width || pb.Height != p.Height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d",
			ErrFrameSize, pb.Width, pb.Height, p.Width, p.Height)
	}

	want := FrameTime(next, int32(p.FPS))
	if pts.Cmp(want) != 0 {
		return fmt.Errorf("%w: got %s, want %s", ErrOutOfOrder, pts, want)
	}

	return nil
}
