package writer

import (
	"context"

	"go.jacobcolvin.com/beatvid/frame"
)

// Source produces the pixel buffer for a frame index. It returns an error
// wrapping [frame.ErrUnavailable] when the frame should be retried.
type Source interface {
	At(frame int) (*frame.PixelBuffer, error)
}

// Sink is an open video container being written.
//
// The writer waits for a value on [Sink.Ready] before every [Sink.Append];
// each value is permission to append exactly one frame. Frames are appended
// in strictly increasing presentation time with no gaps.
type Sink interface {
	// Ready delivers one value each time the sink can accept a frame.
	Ready() <-chan struct{}
	// Append writes buf at presentation time pts.
	Append(buf *frame.PixelBuffer, pts Time) error
	// Finish marks the input complete, flushes and closes the container.
	Finish(ctx context.Context) error
	// Abort stops writing and releases resources. The file is left
	// incomplete.
	Abort() error
}

// Backend opens sinks.
type Backend interface {
	// Open creates a container at path for video in profile p.
	Open(ctx context.Context, path string, p Profile) (Sink, error)
	// Ext returns the container file extension, including the dot.
	Ext() string
}

// alwaysReady is a closed channel, so receives never block.
var alwaysReady = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)

	return ch
}()

// AlwaysReady returns a readiness channel for sinks that accept frames
// synchronously and never need to apply back pressure.
func AlwaysReady() <-chan struct{} {
	return alwaysReady
}
