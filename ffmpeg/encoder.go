package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"go.jacobcolvin.com/beatvid/frame"
	"go.jacobcolvin.com/beatvid/writer"
)

// DefaultQueueDepth is how many frames may be queued ahead of the encoder.
const DefaultQueueDepth = 4

// Encoder is a [writer.Backend] that pipes raw BGRA frames into an ffmpeg
// H.264 encoder.
//
// Readiness follows the encoder: a sink hands out one token per free queue
// slot and returns a token each time a frame has been written to ffmpeg's
// standard input.
type Encoder struct {
	exec  *Executor
	depth int
}

// NewEncoder creates an [Encoder] backed by e. A depth less than 1 uses
// [DefaultQueueDepth].
func NewEncoder(e *Executor, depth int) *Encoder {
	if depth < 1 {
		depth = DefaultQueueDepth
	}

	return &Encoder{exec: e, depth: depth}
}

// Ext implements [writer.Backend].
func (*Encoder) Ext() string { return ".mp4" }

// Open implements [writer.Backend]. It starts ffmpeg and returns
// immediately; start-up failures surface from the first
// [writer.Sink.Append] or from [writer.Sink.Finish].
func (enc *Encoder) Open(ctx context.Context, path string, p writer.Profile) (writer.Sink, error) {
	if p.Width <= 0 || p.Height <= 0 || p.FPS <= 0 {
		return nil, fmt.Errorf("%w: invalid profile %dx%d@%d",
			writer.ErrFrameSize, p.Width, p.Height, p.FPS)
	}

	ctx, cancel := context.WithCancel(ctx)

	s := &encoderSink{
		profile: p,
		frames:  make(chan *frame.PixelBuffer, enc.depth),
		ready:   make(chan struct{}, enc.depth),
		done:    make(chan struct{}),
		cancel:  cancel,
	}
	for range enc.depth {
		s.ready <- struct{}{}
	}

	args := EncodeArgs(p, path)

	go func() {
		defer close(s.done)

		s.err = enc.exec.Run(ctx, RunOptions{Args: args, Feed: s.feed})
		s.closeReady()

		if s.err != nil {
			enc.exec.logger.Debug("encoder exited", slog.String("path", path), slog.Any("err", s.err))
		}
	}()

	return s, nil
}

// EncodeArgs returns the ffmpeg arguments that encode raw BGRA frames of
// profile p read from standard input into path.
func EncodeArgs(p writer.Profile, path string) []string {
	codec := p.Codec
	if codec == "" {
		codec = writer.DefaultProfile.Codec
	}

	args := []string{
		"-f", "rawvideo",
		"-pix_fmt", "bgra",
		"-s", strconv.Itoa(p.Width) + "x" + strconv.Itoa(p.Height),
		"-r", strconv.Itoa(p.FPS),
		"-i", "pipe:0",
		"-an",
		"-c:v", codec,
	}
	if p.Preset != "" {
		args = append(args, "-preset", p.Preset)
	}

	if p.CRF > 0 {
		args = append(args, "-crf", strconv.Itoa(p.CRF))
	}

	if p.PixelFormat != "" {
		args = append(args, "-pix_fmt", p.PixelFormat)
	}

	return append(args, "-r", strconv.Itoa(p.FPS), path)
}

type encoderSink struct {
	err         error
	frames      chan *frame.PixelBuffer
	ready       chan struct{}
	done        chan struct{}
	cancel      context.CancelFunc
	profile     writer.Profile
	next        int64
	closeFrames sync.Once
	readyOnce   sync.Once
}

func (s *encoderSink) Ready() <-chan struct{} { return s.ready }

// Append queues buf for the encoder. buf must not be modified afterwards.
func (s *encoderSink) Append(buf *frame.PixelBuffer, pts writer.Time) error {
	err := writer.CheckFrame(buf, pts, s.profile, s.next)
	if err != nil {
		return err
	}

	select {
	case <-s.done:
		return s.exitErr()
	default:
	}

	select {
	case <-s.done:
		return s.exitErr()
	case s.frames <- buf:
	}

	s.next++

	return nil
}

func (s *encoderSink) Finish(ctx context.Context) error {
	s.closeFrames.Do(func() { close(s.frames) })

	select {
	case <-s.done:
	case <-ctx.Done():
		s.cancel()
		<-s.done

		return fmt.Errorf("finish encoder: %w", ctx.Err())
	}

	s.cancel()

	return s.err
}

func (s *encoderSink) Abort() error {
	s.cancel()
	s.closeFrames.Do(func() { close(s.frames) })
	<-s.done

	return nil
}

func (s *encoderSink) exitErr() error {
	if s.err != nil {
		return s.err
	}

	return fmt.Errorf("%w: encoder exited early", ErrFailed)
}

func (s *encoderSink) closeReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// feed writes queued frames to ffmpeg's standard input. When it stops the
// readiness channel is closed so a waiting writer proceeds to an Append that
// reports the failure.
func (s *encoderSink) feed(ctx context.Context, w io.Writer) error {
	defer s.closeReady()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case buf, ok := <-s.frames:
			if !ok {
				return nil
			}

			err := writePixels(w, buf)
			if err != nil {
				return fmt.Errorf("write frame: %w", err)
			}

			s.ready <- struct{}{}
		}
	}
}

func writePixels(w io.Writer, buf *frame.PixelBuffer) error {
	row := buf.Width * 4
	if buf.Stride == row {
		_, err := w.Write(buf.Pix[:row*buf.Height])

		return err //nolint:wrapcheck // Wrapped by the caller.
	}

	for y := range buf.Height {
		_, err := w.Write(buf.Pix[y*buf.Stride : y*buf.Stride+row])
		if err != nil {
			return err //nolint:wrapcheck // Wrapped by the caller.
		}
	}

	return nil
}
