package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"go.jacobcolvin.com/beatvid/frame"
)

const (
	// DefaultMaxRetries is how many consecutive times one frame may be
	// unavailable before writing fails.
	DefaultMaxRetries = 30
	// DefaultRetryInterval is the pause between attempts at an unavailable
	// frame.
	DefaultRetryInterval = 10 * time.Millisecond
)

var (
	// ErrFrameStarved indicates a frame stayed unavailable past the retry
	// limit.
	ErrFrameStarved = errors.New("frame source starved")
	// ErrNoFrames indicates a request to write zero frames.
	ErrNoFrames = errors.New("no frames to write")
	// ErrNotIdle indicates [Writer.Write] was called more than once.
	ErrNotIdle = errors.New("writer already started")
)

// State is a stage of the [Writer] lifecycle.
type State int32

const (
	StateIdle State = iota
	StateWriting
	StateDraining
	StateFinished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWriting:
		return "writing"
	case StateDraining:
		return "draining"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	}

	return fmt.Sprintf("state(%d)", int32(s))
}

// Result describes a finished silent video.
type Result struct {
	Path     string
	Frames   int
	Duration Time
}

// Writer writes one silent video from a [Source].
//
// Create instances with [New]. A Writer is single use.
type Writer struct {
	backend       Backend
	logger        *slog.Logger
	tempDir       string
	profile       Profile
	maxRetries    int
	retryInterval time.Duration
	state         atomic.Int32
}

// Option configures a [Writer].
type Option func(*Writer)

// WithProfile sets the output profile. The default is [DefaultProfile].
func WithProfile(p Profile) Option {
	return func(w *Writer) {
		w.profile = p
	}
}

// WithLogger sets the logger. The default is [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) {
		w.logger = l
	}
}

// WithTempDir sets the directory the video is written to. The default is
// [os.TempDir].
func WithTempDir(dir string) Option {
	return func(w *Writer) {
		w.tempDir = dir
	}
}

// WithMaxRetries sets how many consecutive unavailable results one frame
// may produce. Values less than 1 are clamped to 1.
func WithMaxRetries(n int) Option {
	return func(w *Writer) {
		w.maxRetries = max(n, 1)
	}
}

// WithRetryInterval sets the pause between attempts at an unavailable
// frame.
func WithRetryInterval(d time.Duration) Option {
	return func(w *Writer) {
		w.retryInterval = d
	}
}

// New creates a [Writer] that writes through backend.
func New(backend Backend, opts ...Option) *Writer {
	w := &Writer{
		backend:       backend,
		logger:        slog.Default(),
		tempDir:       os.TempDir(),
		profile:       DefaultProfile,
		maxRetries:    DefaultMaxRetries,
		retryInterval: DefaultRetryInterval,
	}
	for _, opt := range opts {
		opt(w)
	}

	return w
}

// State returns the current lifecycle stage.
func (w *Writer) State() State {
	return State(w.state.Load())
}

// Profile returns the output profile.
func (w *Writer) Profile() Profile {
	return w.profile
}

func (w *Writer) transition(to State) {
	from := State(w.state.Swap(int32(to)))
	w.logger.Debug("writer state", slog.String("from", from.String()), slog.String("to", to.String()))
}

// Write renders totalFrames frames from src into a new container in the
// temporary directory and returns its location.
//
// Each frame is appended after a readiness pulse from the sink, at
// presentation time frame/FPS. onProgress, if not nil, is called after every
// append with the fraction of frames written. A frame that is unavailable
// is retried within the same pulse; after the retry limit Write fails with
// [ErrFrameStarved]. Cancelling ctx aborts the write. On failure the partial
// file is removed.
func (w *Writer) Write(ctx context.Context, src Source, totalFrames int, onProgress func(float64)) (*Result, error) {
	if !w.state.CompareAndSwap(int32(StateIdle), int32(StateWriting)) {
		return nil, ErrNotIdle
	}

	if totalFrames <= 0 {
		w.transition(StateFailed)

		return nil, fmt.Errorf("%w: %d", ErrNoFrames, totalFrames)
	}

	path := filepath.Join(w.tempDir, uuid.NewString()+w.backend.Ext())

	w.logger.Debug("opening silent video",
		slog.String("path", path),
		slog.Int("frames", totalFrames),
		slog.Int("fps", w.profile.FPS),
	)

	sink, err := w.backend.Open(ctx, path, w.profile)
	if err != nil {
		w.transition(StateFailed)

		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	err = w.writeFrames(ctx, sink, src, totalFrames, onProgress)
	if err != nil {
		w.fail(sink, path)

		return nil, err
	}

	w.transition(StateDraining)

	err = sink.Finish(ctx)
	if err != nil {
		w.fail(sink, path)

		return nil, fmt.Errorf("finish %s: %w", path, err)
	}

	w.transition(StateFinished)

	return &Result{
		Path:     path,
		Frames:   totalFrames,
		Duration: FrameTime(int64(totalFrames), int32(w.profile.FPS)),
	}, nil
}

func (w *Writer) writeFrames(ctx context.Context, sink Sink, src Source, total int, onProgress func(float64)) error {
	fps := int32(w.profile.FPS)

	for n := 0; n < total; n++ {
		err := ctx.Err()
		if err != nil {
			return fmt.Errorf("writing frame %d: %w", n, err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("writing frame %d: %w", n, ctx.Err())
		case <-sink.Ready():
		}

		buf, err := w.pull(ctx, src, n)
		if err != nil {
			return err
		}

		err = sink.Append(buf, FrameTime(int64(n), fps))
		if err != nil {
			return fmt.Errorf("append frame %d: %w", n, err)
		}

		if onProgress != nil {
			onProgress(float64(n+1) / float64(total))
		}
	}

	return nil
}

// pull gets frame n from src, retrying while it is unavailable.
func (w *Writer) pull(ctx context.Context, src Source, n int) (*frame.PixelBuffer, error) {
	for attempt := 1; ; attempt++ {
		buf, err := src.At(n)
		if err == nil {
			return buf, nil
		}

		if !errors.Is(err, frame.ErrUnavailable) {
			return nil, fmt.Errorf("frame %d: %w", n, err)
		}

		if attempt >= w.maxRetries {
			w.logger.Error("giving up on frame",
				slog.Int("frame", n),
				slog.Int("attempts", attempt),
				slog.Any("err", err),
			)

			return nil, fmt.Errorf("%w: frame %d unavailable after %d attempts: %w",
				ErrFrameStarved, n, attempt, err)
		}

		w.logger.Warn("frame unavailable, retrying",
			slog.Int("frame", n),
			slog.Int("attempt", attempt),
			slog.Any("err", err),
		)

		timer := time.NewTimer(w.retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()

			return nil, fmt.Errorf("writing frame %d: %w", n, ctx.Err())
		case <-timer.C:
		}
	}
}

func (w *Writer) fail(sink Sink, path string) {
	w.transition(StateFailed)

	err := sink.Abort()
	if err != nil {
		w.logger.Warn("abort silent video", slog.String("path", path), slog.Any("err", err))
	}

	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		w.logger.Warn("remove partial video", slog.String("path", path), slog.Any("err", err))
	}
}
